package domain

import "time"

// Sujet is a self-referencing subject node. ParentID == nil marks a root
// subject directly under the owning conversation; children reference another
// sujet of the same conversation. Hierarchy is resolved at read time from the
// flat adjacency rows, never stored as embedded lists.
type Sujet struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64     `gorm:"not null;index;column:conversation_id" json:"conversation_id"`
	ParentID       *int64    `gorm:"index;column:parent_id" json:"parent_id,omitempty"`
	Label          string    `gorm:"not null;column:label" json:"label"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (Sujet) TableName() string {
	return "sujets"
}

// SujetNode is the transient nested representation built for API responses.
type SujetNode struct {
	Sujet
	Children []*SujetNode `json:"children"`
}
