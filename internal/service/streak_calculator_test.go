package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(now time.Time, offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func TestCalculateStreaks(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		offsets []int
		current int
		longest int
	}{
		{
			name:    "three consecutive days ending today",
			offsets: []int{0, -1, -2},
			current: 3,
			longest: 3,
		},
		{
			name:    "activity stopped three days ago",
			offsets: []int{-3, -4},
			current: 0,
			longest: 2,
		},
		{
			name:    "short active run with longer historical run",
			offsets: []int{0, -1, -5, -6, -7},
			current: 2,
			longest: 3,
		},
		{
			name:    "no completions",
			offsets: nil,
			current: 0,
			longest: 0,
		},
		{
			name:    "single completion today",
			offsets: []int{0},
			current: 1,
			longest: 1,
		},
		{
			name:    "most recent activity yesterday keeps the streak alive",
			offsets: []int{-1, -2},
			current: 2,
			longest: 2,
		},
		{
			name:    "gap yesterday leaves only today counting",
			offsets: []int{0, -3},
			current: 1,
			longest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var times []time.Time
			for _, offset := range tt.offsets {
				times = append(times, day(now, offset))
			}

			streaks := calculateStreaks(times, now)

			assert.Equal(t, tt.current, streaks.Current, "current streak")
			assert.Equal(t, tt.longest, streaks.Longest, "longest streak")
			assert.GreaterOrEqual(t, streaks.Longest, streaks.Current)
		})
	}
}

func TestCalculateStreaksSameDayCollapse(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	// 同一天的多次完成只算一天
	times := []time.Time{
		now.Add(-1 * time.Hour),
		now.Add(-2 * time.Hour),
		now.Add(-5 * time.Hour),
		day(now, -1),
	}

	streaks := calculateStreaks(times, now)

	assert.Equal(t, 2, streaks.Current)
	assert.Equal(t, 2, streaks.Longest)
}

func TestCalculateStreaksUsesReferenceTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// UTC 2025-06-14 23:00 在东京已经是 6 月 15 日
	completion := time.Date(2025, 6, 14, 23, 0, 0, 0, time.UTC)

	nowTokyo := time.Date(2025, 6, 15, 9, 0, 0, 0, tokyo)
	streaks := calculateStreaks([]time.Time{completion}, nowTokyo)
	assert.Equal(t, 1, streaks.Current, "completion lands on today in Tokyo")

	nowUTC := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	streaks = calculateStreaks([]time.Time{completion}, nowUTC)
	assert.Equal(t, 1, streaks.Current, "completion lands on yesterday in UTC")
}
