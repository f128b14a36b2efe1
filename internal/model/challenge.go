package model

import (
	"gorm.io/gorm"
)

// Challenge 一周的主题挑战，由若干元素组成；
// 统计字段是冗余快照，由 StatsAggregator 在元素状态变更后刷新
// swagger:model Challenge
type Challenge struct {
	gorm.Model
	UserID      uint   `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Theme       string `gorm:"size:100" json:"theme"`
	WeekNumber  int    `gorm:"default:1" json:"weekNumber"`

	// 冗余统计：completed_elements <= total_elements，
	// is_week_completed 当且仅当全部元素完成且元素数大于 0
	TotalElements       int     `gorm:"default:0" json:"totalElements"`
	CompletedElements   int     `gorm:"default:0" json:"completedElements"`
	CompletedPercentage float64 `gorm:"type:decimal(5,2);default:0" json:"completedPercentage"`
	IsWeekCompleted     bool    `gorm:"default:false" json:"isWeekCompleted"`

	Elements []ChallengeElement `gorm:"foreignKey:ChallengeID" json:"elements,omitempty"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// ChallengeElement 挑战中的单个可完成项
// swagger:model ChallengeElement
type ChallengeElement struct {
	gorm.Model
	ChallengeID uint   `gorm:"index;not null" json:"challengeId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (ChallengeElement) TableName() string {
	return "challenge_elements"
}
