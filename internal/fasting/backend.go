// Package fasting orchestrates the fast lifecycle over a Backend.
package fasting

import (
	"context"

	"github.com/julianstephens/fastwell/internal/models"
)

// Backend persists fasts and their sub-resources. It is implemented by the
// HTTP client for the remote service and by the local store.
type Backend interface {
	// Fasts
	CreateFast(ctx context.Context, payload models.CreateFastPayload) (models.Fast, error)
	ListFasts(ctx context.Context, filter models.ListFilter) (models.Page[models.Fast], error)
	GetFast(ctx context.Context, id string) (models.Fast, error)
	UpdateFast(ctx context.Context, id string, payload models.UpdateFastPayload) (models.Fast, error)
	CompleteFast(ctx context.Context, id string) (models.Fast, error)
	BreakFast(ctx context.Context, id string) (models.Fast, error)

	// Prayer log and check-ins
	LogPrayer(ctx context.Context, fastID string, payload models.PrayerLogPayload) (models.PrayerLog, error)
	ListPrayers(ctx context.Context, fastID string) ([]models.PrayerLog, error)
	RecordProgress(ctx context.Context, fastID string, payload models.ProgressEntryPayload) (models.ProgressEntry, error)

	// Journals
	ListJournals(ctx context.Context, fastID string) ([]models.Journal, error)
	CreateJournal(ctx context.Context, fastID string, payload models.CreateJournalPayload) (models.Journal, error)
	GetJournal(ctx context.Context, fastID, journalID string) (models.Journal, error)
	ListComments(ctx context.Context, fastID, journalID string) ([]models.JournalComment, error)
	AddComment(ctx context.Context, fastID, journalID string, payload models.CreateCommentPayload) (models.JournalComment, error)

	// Accountability partners
	ListActiveFasters(ctx context.Context, page, limit int) (models.Page[models.ActiveFaster], error)
	AddPartner(ctx context.Context, payload models.AddPartnerPayload) error
}
