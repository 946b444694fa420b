package domain

import "time"

// Conversation is a persisted free-text log, optionally with an attached
// image. Rows are immutable after creation and never deleted.
type Conversation struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserName         string    `gorm:"not null;column:user_name" json:"user_name"`
	Body             string    `gorm:"not null;type:text;column:conversation" json:"conversation"`
	DateConversation time.Time `gorm:"not null;index;column:date_conversation" json:"date_conversation"`
	ImageData        []byte    `gorm:"column:image_data" json:"-"`
	ImageMime        string    `gorm:"column:image_mime" json:"image_mime,omitempty"`
	ImageName        string    `gorm:"column:image_name" json:"image_name,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) HasImage() bool {
	return len(c.ImageData) > 0
}

// ConversationSummary is the paged listing shape; image bytes are never
// loaded for listings.
type ConversationSummary struct {
	ID               int64     `json:"id"`
	UserName         string    `json:"user_name"`
	DateConversation time.Time `json:"date_conversation"`
	HasImage         bool      `json:"has_image"`
}
