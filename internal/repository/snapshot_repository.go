package repository

import (
	"emohub_backend/internal/model"

	"gorm.io/gorm"
)

type SnapshotRepository struct {
	DB *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// FindByUserID 每用户至多一行；未找到时返回 gorm.ErrRecordNotFound
func (r *SnapshotRepository) FindByUserID(userID uint) (*model.UserProgressSnapshot, error) {
	var snapshot model.UserProgressSnapshot
	err := r.DB.Where("user_id = ?", userID).First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *SnapshotRepository) Create(snapshot *model.UserProgressSnapshot) error {
	return r.DB.Create(snapshot).Error
}

func (r *SnapshotRepository) Save(snapshot *model.UserProgressSnapshot) error {
	return r.DB.Save(snapshot).Error
}
