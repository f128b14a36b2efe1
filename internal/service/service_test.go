package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/internal/repository"
	"emohub_backend/pkg/database"
	"emohub_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	DB         *gorm.DB
	Challenges *repository.ChallengeRepository
	Completion *repository.CompletionRepository
	Snapshots  *repository.SnapshotRepository
	Aggregator *StatsAggregator
	Streaks    *StreakCalculator
	Writer     *SnapshotWriter
	Progress   *ProgressService
	Challenge  *ChallengeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger.Log = zap.NewNop()

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

	challengeRepo := repository.NewChallengeRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	aggregator := NewStatsAggregator(challengeRepo, completionRepo)
	streaks := NewStreakCalculator(completionRepo, time.UTC)
	writer := NewSnapshotWriter(snapshotRepo, time.UTC)
	progress := NewProgressService(challengeRepo, snapshotRepo, streaks, writer, nil, 0)
	challenge := NewChallengeService(challengeRepo, completionRepo, aggregator, progress)

	return &testEnv{
		DB:         db,
		Challenges: challengeRepo,
		Completion: completionRepo,
		Snapshots:  snapshotRepo,
		Aggregator: aggregator,
		Streaks:    streaks,
		Writer:     writer,
		Progress:   progress,
		Challenge:  challenge,
	}
}

func (e *testEnv) seedChallenge(t *testing.T, userID uint, elementCount int) *model.Challenge {
	t.Helper()

	req := ChallengeRequest{Title: "mindfulness week"}
	for i := 0; i < elementCount; i++ {
		req.Elements = append(req.Elements, ElementRequest{Title: fmt.Sprintf("element %d", i+1)})
	}

	challenge, err := e.Challenge.CreateChallenge(userID, req)
	require.NoError(t, err)
	return challenge
}

func (e *testEnv) seedCompletionAt(t *testing.T, userID, elementID, challengeID uint, at time.Time) {
	t.Helper()

	require.NoError(t, e.Completion.Create(&model.ElementCompletion{
		UserID:      userID,
		ElementID:   elementID,
		ChallengeID: challengeID,
		CompletedAt: at,
	}))
}
