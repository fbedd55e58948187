package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/schedule"
)

const fastColumns = `id, user_id, type, schedule, status, goal, smart_goal, prayer_times, verse,
	prayer_focus, reminder_enabled, add_partners, created_at, updated_at, completed_at, broken_at`

func (s *Store) CreateFast(ctx context.Context, p models.CreateFastPayload) (models.Fast, error) {
	now := s.now().UTC().Truncate(time.Second)
	f := models.Fast{
		ID:                        uuid.NewString(),
		UserID:                    auth.UserID(ctx),
		Type:                      p.Type,
		Schedule:                  p.Schedule,
		Status:                    models.InitialStatus(p.Schedule, now),
		Goal:                      p.Goal,
		SmartGoal:                 p.SmartGoal,
		PrayerTimes:               p.PrayerTimes,
		Verse:                     p.Verse,
		PrayerFocus:               p.PrayerFocus,
		ReminderEnabled:           p.ReminderEnabled,
		AddAccountabilityPartners: p.AddAccountabilityPartners,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	sched, err := json.Marshal(f.Schedule)
	if err != nil {
		return models.Fast{}, fmt.Errorf("failed to encode schedule: %w", err)
	}
	prayers, err := encodePrayerTimes(f.PrayerTimes)
	if err != nil {
		return models.Fast{}, err
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO fasts (id, user_id, type, schedule_kind, schedule, start_at, end_at, status,
			goal, smart_goal, prayer_times, verse, prayer_focus, reminder_enabled, add_partners,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		f.ID, f.UserID, string(f.Type), string(f.Schedule.Kind), string(sched),
		nullInstant(f.Schedule.StartAt), nullInstant(f.Schedule.EndAt), string(f.Status),
		f.Goal, f.SmartGoal, prayers, f.Verse, f.PrayerFocus, f.ReminderEnabled,
		f.AddAccountabilityPartners, formatInstant(f.CreatedAt), formatInstant(f.UpdatedAt),
	)
	if err != nil {
		return models.Fast{}, fmt.Errorf("failed to insert fast: %w", err)
	}

	s.decorate(&f, now)
	return f, nil
}

func (s *Store) ListFasts(ctx context.Context, filter models.ListFilter) (models.Page[models.Fast], error) {
	userID := auth.UserID(ctx)
	now := s.now()
	if err := s.refreshStatuses(ctx, userID, now); err != nil {
		return models.Page[models.Fast]{}, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}

	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.StartDate != nil {
		where = append(where, "COALESCE(start_at, created_at) >= ?")
		args = append(args, formatInstant(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "COALESCE(start_at, created_at) <= ?")
		args = append(args, formatInstant(*filter.EndDate))
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM fasts WHERE "+clause), args...).Scan(&total); err != nil {
		return models.Page[models.Fast]{}, fmt.Errorf("failed to count fasts: %w", err)
	}

	query := "SELECT " + fastColumns + " FROM fasts WHERE " + clause +
		" ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, s.rebind(query), append(args, limit, (page-1)*limit)...)
	if err != nil {
		return models.Page[models.Fast]{}, fmt.Errorf("failed to list fasts: %w", err)
	}
	defer rows.Close()

	items := []models.Fast{}
	for rows.Next() {
		f, err := scanFast(rows)
		if err != nil {
			return models.Page[models.Fast]{}, err
		}
		s.decorate(&f, now)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.Fast]{}, err
	}

	return models.Page[models.Fast]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Store) GetFast(ctx context.Context, id string) (models.Fast, error) {
	userID := auth.UserID(ctx)
	now := s.now()
	if err := s.refreshStatuses(ctx, userID, now); err != nil {
		return models.Fast{}, err
	}
	return s.getOwnedFast(ctx, id, userID, now)
}

func (s *Store) getOwnedFast(ctx context.Context, id, userID string, now time.Time) (models.Fast, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+fastColumns+" FROM fasts WHERE id = ? AND user_id = ?"), id, userID)
	f, err := scanFast(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Fast{}, fmt.Errorf("fast %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Fast{}, err
	}
	s.decorate(&f, now)
	return f, nil
}

func (s *Store) UpdateFast(ctx context.Context, id string, p models.UpdateFastPayload) (models.Fast, error) {
	userID := auth.UserID(ctx)
	now := s.now()

	sets := []string{"updated_at = ?"}
	args := []any{formatInstant(now)}
	if p.Goal != nil {
		sets = append(sets, "goal = ?")
		args = append(args, *p.Goal)
	}
	if p.PrayerTimes != nil {
		prayers, err := encodePrayerTimes(*p.PrayerTimes)
		if err != nil {
			return models.Fast{}, err
		}
		sets = append(sets, "prayer_times = ?")
		args = append(args, prayers)
	}
	args = append(args, id, userID)

	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE fasts SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?"), args...)
	if err != nil {
		return models.Fast{}, fmt.Errorf("failed to update fast: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Fast{}, fmt.Errorf("fast %s: %w", id, apperrors.ErrNotFound)
	}
	return s.getOwnedFast(ctx, id, userID, now)
}

func (s *Store) CompleteFast(ctx context.Context, id string) (models.Fast, error) {
	return s.finish(ctx, id, constants.FastStatusCompleted, "completed_at")
}

func (s *Store) BreakFast(ctx context.Context, id string) (models.Fast, error) {
	return s.finish(ctx, id, constants.FastStatusFailed, "broken_at")
}

// finish moves a fast into a terminal status. A fast that already ended is a
// conflict.
func (s *Store) finish(ctx context.Context, id string, status constants.FastStatus, column string) (models.Fast, error) {
	userID := auth.UserID(ctx)
	now := s.now()
	stamp := formatInstant(now)

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE fasts SET status = ?, `+column+` = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND status NOT IN (?, ?)`),
		string(status), stamp, stamp, id, userID,
		string(constants.FastStatusCompleted), string(constants.FastStatusFailed),
	)
	if err != nil {
		return models.Fast{}, fmt.Errorf("failed to update fast status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Fast{}, err
	}
	if n == 0 {
		existing, err := s.getOwnedFast(ctx, id, userID, now)
		if err != nil {
			return models.Fast{}, err
		}
		return models.Fast{}, fmt.Errorf("%w: fast %s has already ended (%s)", apperrors.ErrConflict, id, existing.Status)
	}
	return s.getOwnedFast(ctx, id, userID, now)
}

// refreshStatuses applies fixed-window transitions that are due at now. An
// empty userID refreshes every user's fasts.
func (s *Store) refreshStatuses(ctx context.Context, userID string, now time.Time) error {
	stamp := formatInstant(now)
	scope, scopeArgs := "", []any{}
	if userID != "" {
		scope = " AND user_id = ?"
		scopeArgs = append(scopeArgs, userID)
	}

	activate := `UPDATE fasts SET status = ?, updated_at = ?
		WHERE schedule_kind = ? AND status = ? AND start_at <= ? AND end_at > ?` + scope
	args := append([]any{
		string(constants.FastStatusActive), stamp,
		string(constants.ScheduleFixed), string(constants.FastStatusUpcoming), stamp, stamp,
	}, scopeArgs...)
	if _, err := s.db.ExecContext(ctx, s.rebind(activate), args...); err != nil {
		return fmt.Errorf("failed to refresh fast statuses: %w", err)
	}

	complete := `UPDATE fasts SET status = ?, completed_at = end_at, updated_at = ?
		WHERE schedule_kind = ? AND status IN (?, ?) AND end_at <= ?` + scope
	args = append([]any{
		string(constants.FastStatusCompleted), stamp,
		string(constants.ScheduleFixed), string(constants.FastStatusUpcoming), string(constants.FastStatusActive), stamp,
	}, scopeArgs...)
	if _, err := s.db.ExecContext(ctx, s.rebind(complete), args...); err != nil {
		return fmt.Errorf("failed to refresh fast statuses: %w", err)
	}
	return nil
}

// decorate fills derived fields: the latest occurrence start and the status
// implied by the window at now.
func (s *Store) decorate(f *models.Fast, now time.Time) {
	f.Status = f.EffectiveStatus(now)
	if f.Schedule.IsFixed() {
		f.StartTime = f.Schedule.StartAt
		return
	}
	if start, ok := schedule.LatestOccurrence(f.Schedule, now); ok {
		f.StartTime = &start
	}
}

func scanFast(row scanner) (models.Fast, error) {
	var f models.Fast
	var fastType, status, sched, prayers, createdAt, updatedAt string
	var completedAt, brokenAt sql.NullString

	err := row.Scan(
		&f.ID, &f.UserID, &fastType, &sched, &status, &f.Goal, &f.SmartGoal, &prayers, &f.Verse,
		&f.PrayerFocus, &f.ReminderEnabled, &f.AddAccountabilityPartners, &createdAt, &updatedAt,
		&completedAt, &brokenAt,
	)
	if err != nil {
		return models.Fast{}, err
	}

	f.Type = constants.FastType(fastType)
	f.Status = constants.FastStatus(status)
	if err := json.Unmarshal([]byte(sched), &f.Schedule); err != nil {
		return models.Fast{}, fmt.Errorf("fast %s: invalid stored schedule: %w", f.ID, err)
	}
	if prayers != "" {
		if err := json.Unmarshal([]byte(prayers), &f.PrayerTimes); err != nil {
			return models.Fast{}, fmt.Errorf("fast %s: invalid stored prayer times: %w", f.ID, err)
		}
	}
	if f.CreatedAt, err = parseInstant(createdAt); err != nil {
		return models.Fast{}, err
	}
	if f.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return models.Fast{}, err
	}
	if f.CompletedAt, err = parseNullInstant(completedAt); err != nil {
		return models.Fast{}, err
	}
	if f.BrokenAt, err = parseNullInstant(brokenAt); err != nil {
		return models.Fast{}, err
	}
	return f, nil
}

func encodePrayerTimes(times []string) (string, error) {
	if times == nil {
		times = []string{}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("failed to encode prayer times: %w", err)
	}
	return string(data), nil
}
