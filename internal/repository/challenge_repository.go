package repository

import (
	"emohub_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Create(challenge).Error
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.First(&challenge, id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) FindByIDWithElements(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.Preload("Elements", func(db *gorm.DB) *gorm.DB {
		return db.Order("challenge_elements.`order` ASC, challenge_elements.id ASC")
	}).First(&challenge, id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// FindByUserID 返回用户的全部挑战（仅统计字段，不加载元素）
func (r *ChallengeRepository) FindByUserID(userID uint) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.DB.Where("user_id = ?", userID).Order("week_number ASC, id ASC").Find(&challenges).Error
	return challenges, err
}

func (r *ChallengeRepository) CreateElement(element *model.ChallengeElement) error {
	return r.DB.Create(element).Error
}

func (r *ChallengeRepository) FindElementByID(id uint) (*model.ChallengeElement, error) {
	var element model.ChallengeElement
	err := r.DB.First(&element, id).Error
	if err != nil {
		return nil, err
	}
	return &element, nil
}

func (r *ChallengeRepository) CountElements(challengeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ChallengeElement{}).Where("challenge_id = ?", challengeID).Count(&count).Error
	return count, err
}

// SaveStats 把重算后的统计写回挑战行并刷新 updated_at
func (r *ChallengeRepository) SaveStats(challengeID uint, stats *model.ChallengeStats) error {
	return r.DB.Model(&model.Challenge{}).Where("id = ?", challengeID).Updates(map[string]interface{}{
		"total_elements":       stats.Total,
		"completed_elements":   stats.Completed,
		"completed_percentage": stats.Percentage,
		"is_week_completed":    stats.IsCompleted,
	}).Error
}
