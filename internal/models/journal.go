package models

import (
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
)

// Journal is a note attached to a fast. It is immutable once created.
type Journal struct {
	ID         string               `json:"id"`
	FastID     string               `json:"fastId"`
	UserID     string               `json:"userId,omitempty"`
	Title      string               `json:"title,omitempty"`
	Body       string               `json:"body"`
	Visibility constants.Visibility `json:"visibility"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

type CreateJournalPayload struct {
	Title      string               `json:"title,omitempty"`
	Body       string               `json:"body"`
	Visibility constants.Visibility `json:"visibility,omitempty"`
}

// JournalComment is an append-only reply to a journal entry
type JournalComment struct {
	ID        string    `json:"id"`
	JournalID string    `json:"journalId"`
	FastID    string    `json:"fastId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCommentPayload struct {
	Body string `json:"body"`
}
