package models

import (
	"time"
)

// Delivery kinds.
const (
	KindWelcome    = "welcome"
	KindNudge      = "nudge"
	KindInvitation = "invitation"
	KindInline     = "inline"
)

// Delivery statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery records one outbound Telegram call made by the bot
type Delivery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Chat         string    `gorm:"index;type:varchar(64)" json:"chat"` // numeric id or @channel, empty for inline answers
	MessageID    int       `json:"message_id"`
	Kind         string    `gorm:"type:varchar(20);not null" json:"kind"`
	ReferralCode string    `gorm:"type:varchar(255)" json:"referral_code"`
	Status       string    `gorm:"type:varchar(20);not null" json:"status"`
	Error        string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Delivery) TableName() string {
	return "deliveries"
}
