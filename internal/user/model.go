package user

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'user'" json:"role"`
	FullName     string    `gorm:"size:128" json:"fullName"`
	TargetJob    string    `gorm:"size:128" json:"targetJob"`    // target job title used by coaching prompts
	Experience   string    `gorm:"size:32" json:"experience"`    // entry / mid / senior / executive
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
