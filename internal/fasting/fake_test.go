package fasting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
)

// memBackend is an in-memory Backend for service tests
type memBackend struct {
	mu       sync.Mutex
	now      func() time.Time
	seq      int
	fasts    []models.Fast
	prayers  map[string][]models.PrayerLog
	entries  map[string][]models.ProgressEntry
	journals map[string][]models.Journal
	comments map[string][]models.JournalComment
	partners []string
	calls    map[string]int
	failWith error
}

func newMemBackend(now func() time.Time) *memBackend {
	return &memBackend{
		now:      now,
		prayers:  make(map[string][]models.PrayerLog),
		entries:  make(map[string][]models.ProgressEntry),
		journals: make(map[string][]models.Journal),
		comments: make(map[string][]models.JournalComment),
		calls:    make(map[string]int),
	}
}

func (m *memBackend) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memBackend) track(name string) error {
	m.calls[name]++
	return m.failWith
}

func (m *memBackend) find(id string) (int, error) {
	for i, f := range m.fasts {
		if f.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("fast %s: %w", id, apperrors.ErrNotFound)
}

func (m *memBackend) CreateFast(_ context.Context, p models.CreateFastPayload) (models.Fast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("CreateFast"); err != nil {
		return models.Fast{}, err
	}
	now := m.now()
	f := models.Fast{
		ID:                        m.nextID("fast"),
		UserID:                    constants.LocalUserID,
		Type:                      p.Type,
		Schedule:                  p.Schedule,
		Status:                    models.InitialStatus(p.Schedule, now),
		Goal:                      p.Goal,
		SmartGoal:                 p.SmartGoal,
		PrayerTimes:               p.PrayerTimes,
		ReminderEnabled:           p.ReminderEnabled,
		AddAccountabilityPartners: p.AddAccountabilityPartners,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
	m.fasts = append(m.fasts, f)
	return f, nil
}

func (m *memBackend) ListFasts(_ context.Context, filter models.ListFilter) (models.Page[models.Fast], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("ListFasts"); err != nil {
		return models.Page[models.Fast]{}, err
	}
	var matched []models.Fast
	for _, f := range m.fasts {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Type != "" && f.Type != filter.Type {
			continue
		}
		matched = append(matched, f)
	}
	page := models.Page[models.Fast]{Items: []models.Fast{}, Total: len(matched), Page: filter.Page, Limit: filter.Limit}
	start := (filter.Page - 1) * filter.Limit
	if start < len(matched) {
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = matched[start:end]
	}
	return page, nil
}

func (m *memBackend) GetFast(_ context.Context, id string) (models.Fast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("GetFast"); err != nil {
		return models.Fast{}, err
	}
	i, err := m.find(id)
	if err != nil {
		return models.Fast{}, err
	}
	return m.fasts[i], nil
}

func (m *memBackend) UpdateFast(_ context.Context, id string, p models.UpdateFastPayload) (models.Fast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("UpdateFast"); err != nil {
		return models.Fast{}, err
	}
	i, err := m.find(id)
	if err != nil {
		return models.Fast{}, err
	}
	if p.Goal != nil {
		m.fasts[i].Goal = *p.Goal
	}
	if p.PrayerTimes != nil {
		m.fasts[i].PrayerTimes = *p.PrayerTimes
	}
	return m.fasts[i], nil
}

func (m *memBackend) setStatus(name, id string, status constants.FastStatus) (models.Fast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track(name); err != nil {
		return models.Fast{}, err
	}
	i, err := m.find(id)
	if err != nil {
		return models.Fast{}, err
	}
	now := m.now()
	m.fasts[i].Status = status
	if status == constants.FastStatusCompleted {
		m.fasts[i].CompletedAt = &now
	} else {
		m.fasts[i].BrokenAt = &now
	}
	return m.fasts[i], nil
}

func (m *memBackend) CompleteFast(_ context.Context, id string) (models.Fast, error) {
	return m.setStatus("CompleteFast", id, constants.FastStatusCompleted)
}

func (m *memBackend) BreakFast(_ context.Context, id string) (models.Fast, error) {
	return m.setStatus("BreakFast", id, constants.FastStatusFailed)
}

func (m *memBackend) LogPrayer(_ context.Context, fastID string, p models.PrayerLogPayload) (models.PrayerLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("LogPrayer"); err != nil {
		return models.PrayerLog{}, err
	}
	log := models.PrayerLog{ID: m.nextID("prayer"), FastID: fastID, Time: p.Time, Note: p.Note, PrayedAt: *p.PrayedAt}
	m.prayers[fastID] = append(m.prayers[fastID], log)
	return log, nil
}

func (m *memBackend) ListPrayers(_ context.Context, fastID string) ([]models.PrayerLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prayers[fastID], m.track("ListPrayers")
}

func (m *memBackend) RecordProgress(_ context.Context, fastID string, p models.ProgressEntryPayload) (models.ProgressEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("RecordProgress"); err != nil {
		return models.ProgressEntry{}, err
	}
	e := models.ProgressEntry{
		ID:                 m.nextID("entry"),
		FastID:             fastID,
		HungerLevel:        p.HungerLevel,
		SpiritualClarity:   p.SpiritualClarity,
		TemptationStrength: p.TemptationStrength,
		Breakthrough:       p.Breakthrough,
		Note:               p.Note,
		RecordedAt:         m.now(),
	}
	m.entries[fastID] = append(m.entries[fastID], e)
	return e, nil
}

func (m *memBackend) ListJournals(_ context.Context, fastID string) ([]models.Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.journals[fastID], m.track("ListJournals")
}

func (m *memBackend) CreateJournal(_ context.Context, fastID string, p models.CreateJournalPayload) (models.Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("CreateJournal"); err != nil {
		return models.Journal{}, err
	}
	j := models.Journal{ID: m.nextID("journal"), FastID: fastID, Title: p.Title, Body: p.Body, Visibility: p.Visibility, CreatedAt: m.now()}
	m.journals[fastID] = append(m.journals[fastID], j)
	return j, nil
}

func (m *memBackend) GetJournal(_ context.Context, fastID, journalID string) (models.Journal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("GetJournal"); err != nil {
		return models.Journal{}, err
	}
	for _, j := range m.journals[fastID] {
		if j.ID == journalID {
			return j, nil
		}
	}
	return models.Journal{}, apperrors.ErrNotFound
}

func (m *memBackend) ListComments(_ context.Context, _ string, journalID string) ([]models.JournalComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[journalID], m.track("ListComments")
}

func (m *memBackend) AddComment(_ context.Context, fastID, journalID string, p models.CreateCommentPayload) (models.JournalComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.track("AddComment"); err != nil {
		return models.JournalComment{}, err
	}
	c := models.JournalComment{ID: m.nextID("comment"), JournalID: journalID, FastID: fastID, AuthorID: constants.LocalUserID, Body: p.Body, CreatedAt: m.now()}
	m.comments[journalID] = append(m.comments[journalID], c)
	return c, nil
}

func (m *memBackend) ListActiveFasters(_ context.Context, page, limit int) (models.Page[models.ActiveFaster], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.Page[models.ActiveFaster]{Items: []models.ActiveFaster{}, Page: page, Limit: limit}, m.track("ListActiveFasters")
}

func (m *memBackend) AddPartner(_ context.Context, p models.AddPartnerPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners = append(m.partners, p.PartnerID)
	return m.track("AddPartner")
}
