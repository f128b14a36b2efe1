package service

import (
	"errors"
	"time"

	"emohub_backend/internal/model"
	"emohub_backend/internal/repository"
	"emohub_backend/internal/util"
	"emohub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeService 挑战与完成事件的入口。
// 元素状态切换先落事件日志，再刷新该挑战的统计，最后触发用户级重算；
// 派生数据的刷新失败不回滚事件本身，只记日志等待重试。
type ChallengeService struct {
	ChallengeRepo  *repository.ChallengeRepository
	CompletionRepo *repository.CompletionRepository
	Aggregator     *StatsAggregator
	Progress       *ProgressService
}

func NewChallengeService(
	challengeRepo *repository.ChallengeRepository,
	completionRepo *repository.CompletionRepository,
	aggregator *StatsAggregator,
	progress *ProgressService,
) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo:  challengeRepo,
		CompletionRepo: completionRepo,
		Aggregator:     aggregator,
		Progress:       progress,
	}
}

type ElementRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type ChallengeRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Theme       string           `json:"theme"`
	WeekNumber  int              `json:"weekNumber"`
	Elements    []ElementRequest `json:"elements"`
}

// ElementStatus 元素与该用户的完成状态
type ElementStatus struct {
	model.ChallengeElement
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type ChallengeDetail struct {
	model.Challenge
	ElementStatuses []ElementStatus `json:"elementStatuses"`
}

func (s *ChallengeService) CreateChallenge(userID uint, req ChallengeRequest) (*model.Challenge, error) {
	weekNumber := req.WeekNumber
	if weekNumber <= 0 {
		weekNumber = 1
	}

	challenge := &model.Challenge{
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		Theme:         req.Theme,
		WeekNumber:    weekNumber,
		TotalElements: len(req.Elements),
	}
	for i, e := range req.Elements {
		order := e.Order
		if order == 0 {
			order = i + 1
		}
		challenge.Elements = append(challenge.Elements, model.ChallengeElement{
			Title:       e.Title,
			Description: e.Description,
			Order:       order,
		})
	}

	if err := s.ChallengeRepo.Create(challenge); err != nil {
		return nil, util.NewStorageError("create challenge", err)
	}

	// 新挑战改变了用户级汇总；快照刷新失败不影响创建本身
	if err := s.Progress.Recompute(userID); err != nil {
		logger.Log.Warn("snapshot stale after challenge creation",
			zap.Uint("userId", userID), zap.Error(err))
	}

	return challenge, nil
}

func (s *ChallengeService) AddElement(userID, challengeID uint, req ElementRequest) (*model.ChallengeElement, error) {
	challenge, err := s.ChallengeRepo.FindByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, util.NewStorageError("load challenge", err)
	}
	if challenge.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	element := &model.ChallengeElement{
		ChallengeID: challengeID,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.ChallengeRepo.CreateElement(element); err != nil {
		return nil, util.NewStorageError("create challenge element", err)
	}

	s.refreshDerived(userID, challengeID)
	return element, nil
}

// ToggleElementCompletion 完成事件存在则删除（取消完成），否则插入。
// 返回切换后的完成状态。
func (s *ChallengeService) ToggleElementCompletion(userID, elementID uint) (bool, error) {
	element, err := s.ChallengeRepo.FindElementByID(elementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrElementNotFound
		}
		return false, util.NewStorageError("load challenge element", err)
	}

	challenge, err := s.ChallengeRepo.FindByID(element.ChallengeID)
	if err != nil {
		return false, util.NewStorageError("load challenge", err)
	}
	if challenge.UserID != userID {
		return false, util.ErrPermissionDenied
	}

	completed := false
	existing, err := s.CompletionRepo.FindByUserAndElement(userID, elementID)
	switch {
	case err == nil:
		if err := s.CompletionRepo.Delete(existing); err != nil {
			return false, util.NewStorageError("delete completion event", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		completion := &model.ElementCompletion{
			UserID:      userID,
			ElementID:   elementID,
			ChallengeID: element.ChallengeID,
			CompletedAt: time.Now(),
		}
		if err := s.CompletionRepo.Create(completion); err != nil {
			return false, util.NewStorageError("create completion event", err)
		}
		completed = true
	default:
		return false, util.NewStorageError("load completion event", err)
	}

	s.refreshDerived(userID, element.ChallengeID)
	return completed, nil
}

// refreshDerived 事件已落库后刷新派生数据。失败降级为"统计暂时滞后"，
// 不向上冒泡，POST /progress/recompute 是补偿入口。
func (s *ChallengeService) refreshDerived(userID, challengeID uint) {
	if _, err := s.Aggregator.RecomputeChallengeStats(challengeID); err != nil {
		logger.Log.Warn("challenge stats stale after completion change",
			zap.Uint("userId", userID),
			zap.Uint("challengeId", challengeID),
			zap.Error(err))
	}
	if err := s.Progress.Recompute(userID); err != nil {
		logger.Log.Warn("progress snapshot stale after completion change",
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}

func (s *ChallengeService) ListChallenges(userID uint) ([]model.Challenge, error) {
	challenges, err := s.ChallengeRepo.FindByUserID(userID)
	if err != nil {
		return nil, util.NewStorageError("list challenges", err)
	}
	return challenges, nil
}

func (s *ChallengeService) GetChallenge(userID, challengeID uint) (*ChallengeDetail, error) {
	challenge, err := s.ChallengeRepo.FindByIDWithElements(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, util.NewStorageError("load challenge", err)
	}
	if challenge.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	completions, err := s.CompletionRepo.ListByChallengeAndUser(challengeID, userID)
	if err != nil {
		return nil, util.NewStorageError("list completion events", err)
	}
	completedAt := make(map[uint]time.Time, len(completions))
	for _, c := range completions {
		completedAt[c.ElementID] = c.CompletedAt
	}

	detail := &ChallengeDetail{Challenge: *challenge}
	for _, e := range challenge.Elements {
		status := ElementStatus{ChallengeElement: e}
		if at, ok := completedAt[e.ID]; ok {
			status.Completed = true
			t := at
			status.CompletedAt = &t
		}
		detail.ElementStatuses = append(detail.ElementStatuses, status)
	}
	return detail, nil
}
