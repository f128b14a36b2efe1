package service

import (
	"sync"
	"testing"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeCreatesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(1)

	c1 := env.seedChallenge(t, userID, 3)
	c2 := env.seedChallenge(t, userID, 2)

	// c1 完成一个元素，c2 全部完成
	_, err := env.Challenge.ToggleElementCompletion(userID, c1.Elements[0].ID)
	require.NoError(t, err)
	for _, e := range c2.Elements {
		_, err := env.Challenge.ToggleElementCompletion(userID, e.ID)
		require.NoError(t, err)
	}

	snapshot, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)

	assert.Equal(t, 2, snapshot.TotalWeeks)
	assert.Equal(t, 1, snapshot.CompletedWeeks)
	assert.Equal(t, 5, snapshot.TotalChallenges)
	assert.Equal(t, 3, snapshot.CompletedChallenges)
	assert.Equal(t, 60.0, snapshot.OverallCompletionPercentage)
	assert.Equal(t, 1, snapshot.CurrentStreak, "all completions happened today")
	assert.Equal(t, 1, snapshot.LongestStreak)
	assert.GreaterOrEqual(t, snapshot.LongestStreak, snapshot.CurrentStreak)
	assert.False(t, snapshot.LastActivityDate.IsZero())
}

func TestRecomputeUpsertsSingleRow(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(2)

	env.seedChallenge(t, userID, 1)

	require.NoError(t, env.Progress.Recompute(userID))
	require.NoError(t, env.Progress.Recompute(userID))
	require.NoError(t, env.Progress.Recompute(userID))

	var count int64
	require.NoError(t, env.DB.Model(&model.UserProgressSnapshot{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecomputeIdempotent(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(3)

	challenge := env.seedChallenge(t, userID, 2)
	_, err := env.Challenge.ToggleElementCompletion(userID, challenge.Elements[0].ID)
	require.NoError(t, err)

	first, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)

	require.NoError(t, env.Progress.Recompute(userID))

	second, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)

	assert.Equal(t, first.TotalWeeks, second.TotalWeeks)
	assert.Equal(t, first.CompletedWeeks, second.CompletedWeeks)
	assert.Equal(t, first.TotalChallenges, second.TotalChallenges)
	assert.Equal(t, first.CompletedChallenges, second.CompletedChallenges)
	assert.Equal(t, first.OverallCompletionPercentage, second.OverallCompletionPercentage)
	assert.Equal(t, first.CurrentStreak, second.CurrentStreak)
	assert.Equal(t, first.LongestStreak, second.LongestStreak)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecomputeKeepsLongestStreak(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(4)

	challenge := env.seedChallenge(t, userID, 3)

	// 十天前的三天连续完成，连续已断但历史纪录在
	base := time.Now().UTC().AddDate(0, 0, -10)
	for i, e := range challenge.Elements {
		env.seedCompletionAt(t, userID, e.ID, challenge.ID, base.AddDate(0, 0, i))
	}

	require.NoError(t, env.Progress.Recompute(userID))

	snapshot, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.CurrentStreak)
	assert.Equal(t, 3, snapshot.LongestStreak)

	// 删除历史事件后重算，最长纪录不回退
	require.NoError(t, env.DB.Where("user_id = ?", userID).
		Delete(&model.ElementCompletion{}).Error)
	require.NoError(t, env.Progress.Recompute(userID))

	snapshot, err = env.Progress.GetSnapshot(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.CurrentStreak)
	assert.Equal(t, 3, snapshot.LongestStreak)
}

func TestRecomputeInvariantViolation(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(5)

	challenge := env.seedChallenge(t, userID, 1)

	// 模拟脏数据：完成数超过元素总数
	require.NoError(t, env.DB.Model(&model.Challenge{}).
		Where("id = ?", challenge.ID).
		Update("completed_elements", 9).Error)

	err := env.Progress.Recompute(userID)
	require.Error(t, err)

	var recomputeErr *util.RecomputeError
	assert.ErrorAs(t, err, &recomputeErr)
	assert.ErrorIs(t, err, util.ErrInvariantViolated)
}

func TestConcurrentRecomputeMatchesSequential(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(6)

	challenge := env.seedChallenge(t, userID, 4)
	for _, e := range challenge.Elements[:2] {
		_, err := env.Challenge.ToggleElementCompletion(userID, e.ID)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.Progress.Recompute(userID))
		}()
	}
	wg.Wait()

	concurrent, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)

	// 与单次串行重算的结果一致，没有丢失更新
	require.NoError(t, env.Progress.Recompute(userID))
	sequential, err := env.Progress.GetSnapshot(userID)
	require.NoError(t, err)

	assert.Equal(t, sequential.TotalChallenges, concurrent.TotalChallenges)
	assert.Equal(t, sequential.CompletedChallenges, concurrent.CompletedChallenges)
	assert.Equal(t, sequential.OverallCompletionPercentage, concurrent.OverallCompletionPercentage)
	assert.Equal(t, sequential.CurrentStreak, concurrent.CurrentStreak)
	assert.Equal(t, sequential.LongestStreak, concurrent.LongestStreak)

	var count int64
	require.NoError(t, env.DB.Model(&model.UserProgressSnapshot{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetSnapshotMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Progress.GetSnapshot(999)
	assert.ErrorIs(t, err, util.ErrSnapshotNotFound)
}
