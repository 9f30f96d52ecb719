package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authenticated principal. TenantID is nullable only for legacy
// global accounts, which are visible across tenants in super-admin context.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"`
	FullName     string     `gorm:"type:text" json:"full_name"`
	Email        string     `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Role         string     `gorm:"type:text;default:'agent'" json:"role"`
	IsSuperAdmin bool       `gorm:"not null;default:false" json:"is_super_admin"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Tenant *Tenant `gorm:"foreignKey:TenantID;references:ID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
