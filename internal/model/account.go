package model

import "time"

// ==================== 账号模型 ====================

// Account 发布账号（个人业主、经纪人、机构成员共用）
// 仅承担会话提供方的最小职责：登录换取 JWT，向导按 OwnerID 限定读写范围
type Account struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Name     string `gorm:"size:128"`
	Phone    string `gorm:"size:32"`

	// 角色: user (个人), broker (经纪人), admin (后台)
	Role string `gorm:"size:20;default:'user'"`

	IsActive bool `gorm:"default:true"`
}

func (Account) TableName() string {
	return "accounts"
}
