package types

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingItem is a derived row keyed logically by (household, week,
// lowercased name, unit). Checked is the only field users mutate directly and
// must survive re-aggregation.
type ShoppingItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID uuid.UUID  `gorm:"type:uuid;not null;index:idx_shopping_week" json:"household_id"`
	Household   *Household `gorm:"constraint:OnDelete:CASCADE;foreignKey:HouseholdID;references:ID" json:"household,omitempty"`
	WeekStart   time.Time  `gorm:"type:date;not null;index:idx_shopping_week;column:week_start" json:"week_start"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Quantity    *float64   `gorm:"column:quantity" json:"quantity"`
	Unit        *string    `gorm:"column:unit" json:"unit"`
	Category    string     `gorm:"not null;default:'other';column:category" json:"category"`
	Checked     bool       `gorm:"not null;default:false;column:checked" json:"checked"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (ShoppingItem) TableName() string { return "shopping_list_items" }
