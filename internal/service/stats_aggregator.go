package service

import (
	"fmt"
	"math"

	"emohub_backend/internal/model"
	"emohub_backend/internal/repository"
	"emohub_backend/internal/util"
)

// StatsAggregator 重算单个挑战的完成统计并写回挑战行。
// 同一挑战上的并发重算按挑战 ID 排队，避免互相覆盖。
type StatsAggregator struct {
	ChallengeRepo  *repository.ChallengeRepository
	CompletionRepo *repository.CompletionRepository
	locks          *keyedMutex
}

func NewStatsAggregator(challengeRepo *repository.ChallengeRepository, completionRepo *repository.CompletionRepository) *StatsAggregator {
	return &StatsAggregator{
		ChallengeRepo:  challengeRepo,
		CompletionRepo: completionRepo,
		locks:          newKeyedMutex(),
	}
}

// RecomputeChallengeStats 调用方负责保证挑战存在；
// 完成数按挑战归属用户统计。失败一律是存储层错误。
func (a *StatsAggregator) RecomputeChallengeStats(challengeID uint) (*model.ChallengeStats, error) {
	unlock := a.locks.Lock(fmt.Sprintf("challenge:%d", challengeID))
	defer unlock()

	challenge, err := a.ChallengeRepo.FindByID(challengeID)
	if err != nil {
		return nil, util.NewStorageError("load challenge", err)
	}

	total, err := a.ChallengeRepo.CountElements(challengeID)
	if err != nil {
		return nil, util.NewStorageError("count challenge elements", err)
	}

	completed, err := a.CompletionRepo.CountByChallengeAndUser(challengeID, challenge.UserID)
	if err != nil {
		return nil, util.NewStorageError("count completed elements", err)
	}

	stats := &model.ChallengeStats{
		Total:     int(total),
		Completed: int(completed),
	}
	if total > 0 {
		stats.Percentage = roundPercent(float64(completed) / float64(total) * 100)
		stats.IsCompleted = completed == total
	}

	if err := a.ChallengeRepo.SaveStats(challengeID, stats); err != nil {
		return nil, util.NewStorageError("save challenge stats", err)
	}

	return stats, nil
}

// roundPercent 百分比保留两位小数
func roundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}
