package service

import (
	"errors"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/internal/repository"
	"emohub_backend/internal/util"

	"gorm.io/gorm"
)

// ChallengeTotals 用户全部挑战的累计值。
// 周计数按挑战行数，元素计数按各挑战的冗余统计累加。
type ChallengeTotals struct {
	TotalWeeks        int
	CompletedWeeks    int
	TotalElements     int
	CompletedElements int
}

// SnapshotWriter 把聚合结果与连续打卡合并成一行快照落库。
// 不存在则插入、存在则整行更新；相同输入重复执行结果一致
// （updated_at 除外）。
type SnapshotWriter struct {
	SnapshotRepo *repository.SnapshotRepository
	Location     *time.Location
}

func NewSnapshotWriter(snapshotRepo *repository.SnapshotRepository, loc *time.Location) *SnapshotWriter {
	if loc == nil {
		loc = time.UTC
	}
	return &SnapshotWriter{SnapshotRepo: snapshotRepo, Location: loc}
}

func (w *SnapshotWriter) UpsertSnapshot(userID uint, totals ChallengeTotals, streaks Streaks) error {
	snapshot, err := w.SnapshotRepo.FindByUserID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return util.NewStorageError("load snapshot", err)
		}
		snapshot = &model.UserProgressSnapshot{UserID: userID}
	}

	overall := 0.0
	if totals.TotalElements > 0 {
		overall = roundPercent(float64(totals.CompletedElements) / float64(totals.TotalElements) * 100)
	}

	// 最长纪录只增不减
	longest := streaks.Longest
	if streaks.Current > longest {
		longest = streaks.Current
	}
	if snapshot.LongestStreak > longest {
		longest = snapshot.LongestStreak
	}

	snapshot.TotalWeeks = totals.TotalWeeks
	snapshot.CompletedWeeks = totals.CompletedWeeks
	snapshot.TotalChallenges = totals.TotalElements
	snapshot.CompletedChallenges = totals.CompletedElements
	snapshot.OverallCompletionPercentage = overall
	snapshot.CurrentStreak = streaks.Current
	snapshot.LongestStreak = longest
	snapshot.LastActivityDate = time.Now().In(w.Location)

	if snapshot.ID == 0 {
		if err := w.SnapshotRepo.Create(snapshot); err != nil {
			return util.NewStorageError("insert snapshot", err)
		}
		return nil
	}
	if err := w.SnapshotRepo.Save(snapshot); err != nil {
		return util.NewStorageError("update snapshot", err)
	}
	return nil
}
