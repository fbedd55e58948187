package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/models"
)

func (s *Store) LogPrayer(ctx context.Context, fastID string, p models.PrayerLogPayload) (models.PrayerLog, error) {
	now := s.now()
	if _, err := s.getOwnedFast(ctx, fastID, auth.UserID(ctx), now); err != nil {
		return models.PrayerLog{}, err
	}

	prayedAt := now
	if p.PrayedAt != nil {
		prayedAt = *p.PrayedAt
	}
	entry := models.PrayerLog{
		ID:       uuid.NewString(),
		FastID:   fastID,
		Time:     p.Time,
		Note:     p.Note,
		PrayedAt: prayedAt.UTC().Truncate(time.Second),
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO prayer_logs (id, fast_id, time, note, prayed_at) VALUES (?, ?, ?, ?, ?)`),
		entry.ID, entry.FastID, entry.Time, entry.Note, formatInstant(entry.PrayedAt),
	)
	if err != nil {
		return models.PrayerLog{}, fmt.Errorf("failed to insert prayer log: %w", err)
	}
	return entry, nil
}

func (s *Store) ListPrayers(ctx context.Context, fastID string) ([]models.PrayerLog, error) {
	if _, err := s.getOwnedFast(ctx, fastID, auth.UserID(ctx), s.now()); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, fast_id, time, note, prayed_at FROM prayer_logs
		WHERE fast_id = ? ORDER BY prayed_at, id`), fastID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayer logs: %w", err)
	}
	defer rows.Close()

	logs := []models.PrayerLog{}
	for rows.Next() {
		var l models.PrayerLog
		var prayedAt string
		if err := rows.Scan(&l.ID, &l.FastID, &l.Time, &l.Note, &prayedAt); err != nil {
			return nil, err
		}
		if l.PrayedAt, err = parseInstant(prayedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *Store) RecordProgress(ctx context.Context, fastID string, p models.ProgressEntryPayload) (models.ProgressEntry, error) {
	now := s.now()
	if _, err := s.getOwnedFast(ctx, fastID, auth.UserID(ctx), now); err != nil {
		return models.ProgressEntry{}, err
	}

	entry := models.ProgressEntry{
		ID:                 uuid.NewString(),
		FastID:             fastID,
		HungerLevel:        p.HungerLevel,
		SpiritualClarity:   p.SpiritualClarity,
		TemptationStrength: p.TemptationStrength,
		Breakthrough:       p.Breakthrough,
		Note:               p.Note,
		RecordedAt:         now.UTC().Truncate(time.Second),
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO progress_entries (id, fast_id, hunger_level, spiritual_clarity,
			temptation_strength, breakthrough, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.FastID, entry.HungerLevel, entry.SpiritualClarity,
		entry.TemptationStrength, entry.Breakthrough, entry.Note, formatInstant(entry.RecordedAt),
	)
	if err != nil {
		return models.ProgressEntry{}, fmt.Errorf("failed to insert progress entry: %w", err)
	}
	return entry, nil
}

// ListProgress returns a fast's check-ins, oldest first
func (s *Store) ListProgress(ctx context.Context, fastID string) ([]models.ProgressEntry, error) {
	if _, err := s.getOwnedFast(ctx, fastID, auth.UserID(ctx), s.now()); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, fast_id, hunger_level, spiritual_clarity, temptation_strength, breakthrough, note, recorded_at
		FROM progress_entries WHERE fast_id = ? ORDER BY recorded_at, id`), fastID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress entries: %w", err)
	}
	defer rows.Close()

	entries := []models.ProgressEntry{}
	for rows.Next() {
		var e models.ProgressEntry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.FastID, &e.HungerLevel, &e.SpiritualClarity,
			&e.TemptationStrength, &e.Breakthrough, &e.Note, &recordedAt); err != nil {
			return nil, err
		}
		if e.RecordedAt, err = parseInstant(recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
