package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TaskTypeChore = "chore"
	TaskTypeMeal  = "meal"
	TaskTypeEvent = "event"
	TaskTypeTodo  = "todo"
)

const (
	StateProposed = "proposed"
	StateAccepted = "accepted"
	StateDeclined = "declined"
	StateDone     = "done"
)

const (
	RecurrenceWeekly   = "weekly"
	RecurrenceBiweekly = "biweekly"
	RecurrenceMonthly  = "monthly"
)

// Ingredient is one entry of a meal task's shopping input. Quantity and Unit
// are nullable: "salt" with no amount is a valid line.
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Category string   `json:"category"`
}

// Task is the unit of negotiation between household members. DayWindow nil
// means the task sits in the backlog; when DayWindow is set, WeekStart holds
// the Monday of the week it is scheduled into. The two are set and cleared
// together — a task is never half scheduled.
//
// Revision increases on every confirmed write and orders change events for
// subscribers reconciling optimistic local state.
type Task struct {
	ID              uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID     uuid.UUID                       `gorm:"type:uuid;not null;index" json:"household_id"`
	Household       *Household                      `gorm:"constraint:OnDelete:CASCADE;foreignKey:HouseholdID;references:ID" json:"household,omitempty"`
	Title           string                          `gorm:"not null;column:title" json:"title"`
	Description     string                          `gorm:"column:description" json:"description"`
	TaskType        string                          `gorm:"not null;default:'chore';column:task_type" json:"task_type"`
	State           string                          `gorm:"not null;default:'proposed';column:state" json:"state"`
	ProposedBy      uuid.UUID                       `gorm:"type:uuid;not null;column:proposed_by" json:"proposed_by"`
	AssignedTo      *uuid.UUID                      `gorm:"type:uuid;column:assigned_to" json:"assigned_to"`
	DayWindow       *string                         `gorm:"column:day_window" json:"day_window"`
	WeekStart       *time.Time                      `gorm:"type:date;column:week_start;index" json:"week_start"`
	TimeOfDay       *string                         `gorm:"column:time_of_day" json:"time_of_day"`
	DurationMinutes *int                            `gorm:"column:duration_minutes" json:"duration_minutes"`
	Recurrence      *string                         `gorm:"column:recurrence" json:"recurrence"`
	Ingredients     datatypes.JSONSlice[Ingredient] `gorm:"type:jsonb;column:ingredients" json:"ingredients"`
	Revision        int64                           `gorm:"not null;default:0;column:revision" json:"revision"`
	CreatedAt       time.Time                       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time                       `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Clone returns a deep value copy, safe to hold as a rollback snapshot while
// the original keeps mutating.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		cp.AssignedTo = &v
	}
	if t.DayWindow != nil {
		v := *t.DayWindow
		cp.DayWindow = &v
	}
	if t.WeekStart != nil {
		v := *t.WeekStart
		cp.WeekStart = &v
	}
	if t.TimeOfDay != nil {
		v := *t.TimeOfDay
		cp.TimeOfDay = &v
	}
	if t.DurationMinutes != nil {
		v := *t.DurationMinutes
		cp.DurationMinutes = &v
	}
	if t.Recurrence != nil {
		v := *t.Recurrence
		cp.Recurrence = &v
	}
	if t.Ingredients != nil {
		ings := make([]Ingredient, len(t.Ingredients))
		for i, ing := range t.Ingredients {
			c := ing
			if ing.Quantity != nil {
				q := *ing.Quantity
				c.Quantity = &q
			}
			if ing.Unit != nil {
				u := *ing.Unit
				c.Unit = &u
			}
			ings[i] = c
		}
		cp.Ingredients = ings
	}
	return &cp
}
