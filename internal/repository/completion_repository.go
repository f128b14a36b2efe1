package repository

import (
	"emohub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

func (r *CompletionRepository) Create(completion *model.ElementCompletion) error {
	return r.DB.Create(completion).Error
}

// Delete 物理删除完成事件；事件不存在即"未完成"，不做软删
func (r *CompletionRepository) Delete(completion *model.ElementCompletion) error {
	return r.DB.Delete(completion).Error
}

func (r *CompletionRepository) FindByUserAndElement(userID, elementID uint) (*model.ElementCompletion, error) {
	var completion model.ElementCompletion
	err := r.DB.Where("user_id = ? AND element_id = ?", userID, elementID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// CountByChallengeAndUser 统计用户在某挑战下已完成的元素数
func (r *CompletionRepository) CountByChallengeAndUser(challengeID, userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ElementCompletion{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Count(&count).Error
	return count, err
}

func (r *CompletionRepository) ListByChallengeAndUser(challengeID, userID uint) ([]model.ElementCompletion, error) {
	var completions []model.ElementCompletion
	err := r.DB.Where("challenge_id = ? AND user_id = ?", challengeID, userID).Find(&completions).Error
	return completions, err
}

// ListAllCompletionTimes 返回用户跨所有挑战的全部完成时间戳，
// 连续打卡是用户级属性，不限定单个挑战
func (r *CompletionRepository) ListAllCompletionTimes(userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.ElementCompletion{}).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Pluck("completed_at", &times).Error
	return times, err
}
