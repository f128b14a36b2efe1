package model

import (
	"time"

	"gorm.io/gorm"
)

// ElementCompletion 完成事件日志：用户在某时间点完成了某个挑战元素。
// 取消完成时记录被物理删除（非软删），"未完成"即事件不存在。
// swagger:model ElementCompletion
type ElementCompletion struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      uint      `gorm:"index:idx_user_element,unique;type:bigint unsigned;not null" json:"userId"`
	ElementID   uint      `gorm:"index:idx_user_element,unique;not null" json:"elementId"`
	ChallengeID uint      `gorm:"index;not null" json:"challengeId"`
	CompletedAt time.Time `gorm:"not null;index" json:"completedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *ElementCompletion) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = GenerateUUID()
	}
	return
}

func (ElementCompletion) TableName() string {
	return "element_completions"
}
