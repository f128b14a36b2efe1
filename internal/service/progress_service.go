package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/internal/repository"
	"emohub_backend/internal/util"
	"emohub_backend/pkg/logger"
	"emohub_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService 进度重算的唯一入口。完成状态变更后调用 Recompute：
// 汇总该用户全部挑战的冗余统计 → 重算连续打卡 → 快照落库。
//
// 快照是显式缓存：唯一写入方是这里，任何时刻都可以从事件日志重建，
// 重算失败只会让快照暂时滞后，不影响已落库的完成事件。
// 同一用户的 Recompute 按用户 ID 串行执行。
type ProgressService struct {
	ChallengeRepo *repository.ChallengeRepository
	SnapshotRepo  *repository.SnapshotRepository
	Streaks       *StreakCalculator
	Writer        *SnapshotWriter
	Redis         *redis.Client
	CacheTTL      time.Duration
	locks         *keyedMutex
}

func NewProgressService(
	challengeRepo *repository.ChallengeRepository,
	snapshotRepo *repository.SnapshotRepository,
	streaks *StreakCalculator,
	writer *SnapshotWriter,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *ProgressService {
	return &ProgressService{
		ChallengeRepo: challengeRepo,
		SnapshotRepo:  snapshotRepo,
		Streaks:       streaks,
		Writer:        writer,
		Redis:         rdb,
		CacheTTL:      cacheTTL,
		locks:         newKeyedMutex(),
	}
}

// Recompute 失败时快照保持上一次成功的值，不存在写了一半的状态；
// 调用方（或对账任务）重试即可恢复。
func (s *ProgressService) Recompute(userID uint) error {
	unlock := s.locks.Lock(fmt.Sprintf("user:%d", userID))
	defer unlock()

	timer := prometheus.NewTimer(monitoring.RecomputeDuration)
	defer timer.ObserveDuration()

	if err := s.recompute(userID); err != nil {
		monitoring.RecomputeCounter.WithLabelValues("error").Inc()
		logger.Log.Error("progress recompute failed",
			zap.Uint("userId", userID),
			zap.Error(err))
		return util.NewRecomputeError(userID, err)
	}

	monitoring.RecomputeCounter.WithLabelValues("ok").Inc()
	return nil
}

func (s *ProgressService) recompute(userID uint) error {
	challenges, err := s.ChallengeRepo.FindByUserID(userID)
	if err != nil {
		return util.NewStorageError("list challenges", err)
	}

	var totals ChallengeTotals
	totals.TotalWeeks = len(challenges)
	for _, c := range challenges {
		if c.TotalElements < 0 || c.CompletedElements < 0 || c.CompletedElements > c.TotalElements {
			return fmt.Errorf("%w: challenge %d reports %d/%d completed elements",
				util.ErrInvariantViolated, c.ID, c.CompletedElements, c.TotalElements)
		}
		if c.IsWeekCompleted {
			totals.CompletedWeeks++
		}
		totals.TotalElements += c.TotalElements
		totals.CompletedElements += c.CompletedElements
	}

	streaks, err := s.Streaks.ComputeStreaks(userID)
	if err != nil {
		return err
	}

	if err := s.Writer.UpsertSnapshot(userID, totals, streaks); err != nil {
		return err
	}

	s.invalidateCache(userID)
	return nil
}

// GetSnapshot 点查快照，短 TTL 的 Redis 缓存挡在数据库前面；
// 读取不触发重算
func (s *ProgressService) GetSnapshot(userID uint) (*model.UserProgressSnapshot, error) {
	key := snapshotCacheKey(userID)

	if s.Redis != nil {
		if raw, err := s.Redis.Get(context.Background(), key).Result(); err == nil {
			var snapshot model.UserProgressSnapshot
			if err := json.Unmarshal([]byte(raw), &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	snapshot, err := s.SnapshotRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSnapshotNotFound
		}
		return nil, util.NewStorageError("load snapshot", err)
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(snapshot); err == nil {
			s.Redis.Set(context.Background(), key, raw, s.CacheTTL)
		}
	}

	return snapshot, nil
}

func (s *ProgressService) invalidateCache(userID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), snapshotCacheKey(userID)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate snapshot cache",
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}

func snapshotCacheKey(userID uint) string {
	return fmt.Sprintf("progress_snapshot:u:%d", userID)
}
