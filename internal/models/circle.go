package models

import (
	"time"

	"github.com/google/uuid"
)

// SupportCircle is a small peer group users join for mutual support.
type SupportCircle struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Topic       string    `json:"topic"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// CircleMessage is one message posted inside a support circle.
type CircleMessage struct {
	ID        uuid.UUID `json:"id"`
	CircleID  uuid.UUID `json:"circle_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
