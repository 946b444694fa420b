package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ActionStatus string

const (
	ActionStatusNew        ActionStatus = "new"
	ActionStatusInProgress ActionStatus = "in_progress"
	ActionStatusBlocked    ActionStatus = "blocked"
	ActionStatusDone       ActionStatus = "done"
	ActionStatusCancelled  ActionStatus = "cancelled"
)

// ValidActionStatus reports whether s belongs to the closed status set.
func ValidActionStatus(s ActionStatus) bool {
	switch s {
	case ActionStatusNew, ActionStatusInProgress, ActionStatusBlocked,
		ActionStatusDone, ActionStatusCancelled:
		return true
	}
	return false
}

// Action is a self-referencing work-item node scoped to a root sujet.
// ParentID == nil marks a root action for that sujet.
type Action struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SujetID     int64           `gorm:"not null;index;column:sujet_id" json:"sujet_id"`
	ParentID    *int64          `gorm:"index;column:parent_id" json:"parent_id,omitempty"`
	Task        string          `gorm:"not null;column:task" json:"task"`
	Responsible string          `gorm:"column:responsible" json:"responsible,omitempty"`
	DueDate     *datatypes.Date `gorm:"column:due_date" json:"due_date,omitempty"`
	Status      ActionStatus    `gorm:"not null;column:status" json:"status"`
	ProductLine string          `gorm:"column:product_line" json:"product_line,omitempty"`
	PlantSite   string          `gorm:"column:plant_site" json:"plant_site,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (Action) TableName() string {
	return "actions"
}

// ActionNode is the transient nested representation built for API responses.
type ActionNode struct {
	Action
	Children []*ActionNode `json:"children"`
}
