package fasting

import (
	"context"
	"fmt"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/models"
)

// Destination is where the entry screen sends the user
type Destination string

const (
	// FastingList is the new-user state: no fasts yet
	FastingList Destination = "FastingList"
	// PastFasts means the user only has fasts that are not active
	PastFasts Destination = "PastFasts"
	// ActivelyFasting means a fast is in progress
	ActivelyFasting Destination = "ActivelyFasting"
)

// Decision is the result of entry routing
type Decision struct {
	Destination Destination  `json:"destination"`
	Active      *models.Fast `json:"active,omitempty"`
}

// Route decides the entry destination from the backend's current state. It is
// evaluated fresh on every call so fasts created elsewhere are picked up.
func (s *Service) Route(ctx context.Context) (Decision, error) {
	active, err := s.backend.ListFasts(ctx, models.ListFilter{Page: 1, Limit: 1, Status: constants.FastStatusActive})
	if err != nil {
		return Decision{}, fmt.Errorf("list active fasts: %w", err)
	}
	if len(active.Items) > 0 {
		fast := active.Items[0]
		return Decision{Destination: ActivelyFasting, Active: &fast}, nil
	}

	all, err := s.backend.ListFasts(ctx, models.ListFilter{Page: 1, Limit: 1})
	if err != nil {
		return Decision{}, fmt.Errorf("list fasts: %w", err)
	}
	if all.Total > 0 || len(all.Items) > 0 {
		return Decision{Destination: PastFasts}, nil
	}
	return Decision{Destination: FastingList}, nil
}
