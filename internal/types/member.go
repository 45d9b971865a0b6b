package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// HouseholdMember ties an authenticated user to a household. DisplayName and
// Color are the member's visual identity on the weekly grid and are the only
// fields a member edits about themselves.
type HouseholdMember struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID uuid.UUID  `gorm:"type:uuid;not null;index:idx_household_user,unique" json:"household_id"`
	Household   *Household `gorm:"constraint:OnDelete:CASCADE;foreignKey:HouseholdID;references:ID" json:"household,omitempty"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_household_user,unique" json:"user_id"`
	Role        string     `gorm:"not null;default:'member';column:role" json:"role"`
	DisplayName string     `gorm:"column:display_name" json:"display_name"`
	Color       string     `gorm:"column:color" json:"color"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (HouseholdMember) TableName() string { return "household_members" }
