package model

import (
	"time"
)

// UserProgressSnapshot 每用户一行的冗余进度汇总，供仪表盘快速读取。
// 派生数据：任何时刻都可以由 challenges + element_completions 重建，
// 唯一写入方是 ProgressService 的 recompute。
//
// 字段约定沿用既有表结构：total_weeks/completed_weeks 按挑战行计数，
// total_challenges/completed_challenges 按元素累加。
// 不变式：longest_streak >= current_streak，completed_* <= total_*。
// swagger:model UserProgressSnapshot
type UserProgressSnapshot struct {
	ID                          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                      uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	TotalWeeks                  int       `gorm:"default:0" json:"totalWeeks"`
	CompletedWeeks              int       `gorm:"default:0" json:"completedWeeks"`
	TotalChallenges             int       `gorm:"default:0" json:"totalChallenges"`
	CompletedChallenges         int       `gorm:"default:0" json:"completedChallenges"`
	OverallCompletionPercentage float64   `gorm:"type:decimal(5,2);default:0" json:"overallCompletionPercentage"`
	CurrentStreak               int       `gorm:"default:0" json:"currentStreak"`
	LongestStreak               int       `gorm:"default:0" json:"longestStreak"`
	LastActivityDate            time.Time `json:"lastActivityDate"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

func (UserProgressSnapshot) TableName() string {
	return "user_progress_snapshots"
}

// ChallengeStats StatsAggregator 的计算结果
type ChallengeStats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Percentage  float64 `json:"percentage"`
	IsCompleted bool    `json:"isCompleted"`
}
