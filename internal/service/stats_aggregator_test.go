package service

import (
	"testing"
	"time"

	"emohub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeChallengeStats(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(1)

	challenge := env.seedChallenge(t, userID, 3)
	elements := challenge.Elements
	require.Len(t, elements, 3)

	env.seedCompletionAt(t, userID, elements[0].ID, challenge.ID, time.Now())

	stats, err := env.Aggregator.RecomputeChallengeStats(challenge.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 33.33, stats.Percentage, 0.001)
	assert.False(t, stats.IsCompleted)

	// 统计已写回挑战行
	stored, err := env.Challenges.FindByID(challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalElements)
	assert.Equal(t, 1, stored.CompletedElements)
	assert.InDelta(t, 33.33, stored.CompletedPercentage, 0.001)
	assert.False(t, stored.IsWeekCompleted)
}

func TestRecomputeChallengeStatsAllCompleted(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(1)

	challenge := env.seedChallenge(t, userID, 2)
	for _, e := range challenge.Elements {
		env.seedCompletionAt(t, userID, e.ID, challenge.ID, time.Now())
	}

	stats, err := env.Aggregator.RecomputeChallengeStats(challenge.ID)
	require.NoError(t, err)

	assert.Equal(t, 100.0, stats.Percentage)
	assert.True(t, stats.IsCompleted)
}

func TestRecomputeChallengeStatsNoElements(t *testing.T) {
	env := newTestEnv(t)

	challenge := env.seedChallenge(t, 1, 0)

	stats, err := env.Aggregator.RecomputeChallengeStats(challenge.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Completed)
	assert.Equal(t, 0.0, stats.Percentage)
	assert.False(t, stats.IsCompleted, "empty challenge never counts as a completed week")
}

func TestToggleElementCompletion(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(7)

	challenge := env.seedChallenge(t, userID, 4)
	elements := challenge.Elements

	completed, err := env.Challenge.ToggleElementCompletion(userID, elements[0].ID)
	require.NoError(t, err)
	assert.True(t, completed)

	completed, err = env.Challenge.ToggleElementCompletion(userID, elements[1].ID)
	require.NoError(t, err)
	assert.True(t, completed)

	stored, err := env.Challenges.FindByID(challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CompletedElements)
	assert.Equal(t, 50.0, stored.CompletedPercentage)

	// 再次切换同一元素即取消完成，事件被物理删除
	completed, err = env.Challenge.ToggleElementCompletion(userID, elements[0].ID)
	require.NoError(t, err)
	assert.False(t, completed)

	stored, err = env.Challenges.FindByID(challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CompletedElements)
	assert.Equal(t, 25.0, stored.CompletedPercentage)

	var count int64
	require.NoError(t, env.DB.Table("element_completions").
		Where("user_id = ? AND element_id = ?", userID, elements[0].ID).
		Count(&count).Error)
	assert.Zero(t, count, "undone completion leaves no tombstone")
}

func TestToggleElementCompletionWrongOwner(t *testing.T) {
	env := newTestEnv(t)

	challenge := env.seedChallenge(t, 1, 1)

	_, err := env.Challenge.ToggleElementCompletion(2, challenge.Elements[0].ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}
