package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestCompletionHardDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompletionRepository(db)

	completion := &model.ElementCompletion{
		UserID:      1,
		ElementID:   10,
		ChallengeID: 5,
		CompletedAt: time.Now(),
	}
	require.NoError(t, repo.Create(completion))
	assert.NotEmpty(t, completion.ID, "uuid assigned on create")

	found, err := repo.FindByUserAndElement(1, 10)
	require.NoError(t, err)
	assert.Equal(t, completion.ID, found.ID)

	require.NoError(t, repo.Delete(found))

	// 物理删除：连带 Unscoped 查询也找不到
	var count int64
	require.NoError(t, db.Unscoped().Model(&model.ElementCompletion{}).
		Where("user_id = ? AND element_id = ?", 1, 10).Count(&count).Error)
	assert.Zero(t, count)

	_, err = repo.FindByUserAndElement(1, 10)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListAllCompletionTimesCrossesChallenges(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompletionRepository(db)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []struct {
		element   uint
		challenge uint
		at        time.Time
	}{
		{element: 1, challenge: 1, at: base.AddDate(0, 0, 2)},
		{element: 2, challenge: 2, at: base},
		{element: 3, challenge: 3, at: base.AddDate(0, 0, 1)},
	}
	for _, s := range seed {
		require.NoError(t, repo.Create(&model.ElementCompletion{
			UserID:      1,
			ElementID:   s.element,
			ChallengeID: s.challenge,
			CompletedAt: s.at,
		}))
	}
	// 其他用户的事件不掺入
	require.NoError(t, repo.Create(&model.ElementCompletion{
		UserID:      2,
		ElementID:   4,
		ChallengeID: 1,
		CompletedAt: base,
	}))

	times, err := repo.ListAllCompletionTimes(1)
	require.NoError(t, err)
	require.Len(t, times, 3)

	for i := 1; i < len(times); i++ {
		assert.False(t, times[i].Before(times[i-1]), "timestamps ascend")
	}
}
