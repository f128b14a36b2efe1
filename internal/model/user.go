package model

import (
	"time"
)

type UserRole string

const (
	Member    UserRole = "member"
	Moderator UserRole = "moderator"
	Admin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"Name"`
	Email    string   `gorm:"size:100;unique;not null" json:"Email"`
	Role     UserRole `gorm:"size:20;default:'member'" json:"Role"`
	Language string   `gorm:"size:10;default:'en'" json:"Language"`
	Avatar   string   `gorm:"size:255" json:"avatar"`
	// 用户偏好的日界时区（IANA 名称），为空时使用服务端配置的默认时区
	Timezone string    `gorm:"size:64" json:"Timezone"`
	Disabled bool      `gorm:"default:false" json:"Disabled"`
	LastSeen time.Time `json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}
