package service

import (
	"sort"
	"time"

	"emohub_backend/internal/repository"
	"emohub_backend/internal/util"
)

// Streaks 当前连续天数与历史最长连续天数
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// StreakCalculator 由用户的全部完成事件推导连续打卡天数。
// 连续打卡是用户级属性，跨所有挑战统计，不限定单个挑战。
//
// 日界统一使用注入的时区（progress.streak_timezone）：
// 所有时间戳先换算到该时区再截断到天，"今天/昨天"的判定同理。
// 不读取服务器本地时间，避免部署环境时区影响结果。
type StreakCalculator struct {
	CompletionRepo *repository.CompletionRepository
	Location       *time.Location
}

func NewStreakCalculator(completionRepo *repository.CompletionRepository, loc *time.Location) *StreakCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakCalculator{CompletionRepo: completionRepo, Location: loc}
}

func (s *StreakCalculator) ComputeStreaks(userID uint) (Streaks, error) {
	times, err := s.CompletionRepo.ListAllCompletionTimes(userID)
	if err != nil {
		return Streaks{}, util.NewStorageError("list completion timestamps", err)
	}
	return calculateStreaks(times, time.Now().In(s.Location)), nil
}

// calculateStreaks 纯计算部分。
//
// 规则：
//   - 时间戳按 now 的时区截断到天，同一天的多次完成只算一天；
//   - 当前连续：以最近一次完成日为起点，它必须是今天或昨天，
//     否则连续已断、计 0；从起点向前逐日回溯，遇到缺口停止；
//   - 最长连续：升序扫一遍，缺口处计数器归 1，记录最大值；
//     只要有任何完成日，最长连续至少为 1，与当前是否在连不相关。
func calculateStreaks(times []time.Time, now time.Time) Streaks {
	loc := now.Location()

	daySet := make(map[time.Time]struct{}, len(times))
	for _, t := range times {
		local := t.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		daySet[day] = struct{}{}
	}
	if len(daySet) == 0 {
		return Streaks{}
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	yesterday := today.AddDate(0, 0, -1)

	current := 0
	if !days[len(days)-1].Before(yesterday) {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i].AddDate(0, 0, 1).Equal(days[i+1]) {
				current++
			} else {
				break
			}
		}
	}

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	if current > longest {
		longest = current
	}

	return Streaks{Current: current, Longest: longest}
}
