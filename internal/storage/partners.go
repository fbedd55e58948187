package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/schedule"
)

// AddPartner lets payload.PartnerID follow the caller's shared fasts. Adding
// the same partner twice is a no-op.
func (s *Store) AddPartner(ctx context.Context, p models.AddPartnerPayload) error {
	caller := auth.UserID(ctx)
	if p.PartnerID == "" {
		return apperrors.NewValidation("partner id is required",
			apperrors.Issue{Field: "partnerId", Reason: apperrors.ReasonRequired})
	}
	if p.PartnerID == caller {
		return apperrors.NewValidation("you cannot add yourself as a partner",
			apperrors.Issue{Field: "partnerId", Value: p.PartnerID, Reason: apperrors.ReasonInvalid})
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO partners (user_id, partner_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, partner_id) DO NOTHING`),
		caller, p.PartnerID, formatInstant(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to add partner: %w", err)
	}
	return nil
}

// ListActiveFasters returns the active shared fasts of users who added the
// caller as a partner.
func (s *Store) ListActiveFasters(ctx context.Context, page, limit int) (models.Page[models.ActiveFaster], error) {
	caller := auth.UserID(ctx)
	now := s.now()
	if err := s.refreshStatuses(ctx, "", now); err != nil {
		return models.Page[models.ActiveFaster]{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = constants.DefaultPageLimit
	}

	from := `FROM fasts f JOIN partners p ON p.user_id = f.user_id
		WHERE p.partner_id = ? AND f.add_partners = ? AND f.status = ?`
	args := []any{caller, true, string(constants.FastStatusActive)}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) "+from), args...).Scan(&total); err != nil {
		return models.Page[models.ActiveFaster]{}, fmt.Errorf("failed to count active fasters: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT f.user_id, f.id, f.type, f.goal, f.schedule, f.status "+from+
			" ORDER BY f.created_at DESC, f.id LIMIT ? OFFSET ?"),
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return models.Page[models.ActiveFaster]{}, fmt.Errorf("failed to list active fasters: %w", err)
	}
	defer rows.Close()

	items := []models.ActiveFaster{}
	for rows.Next() {
		var a models.ActiveFaster
		var fastType, sched, status string
		if err := rows.Scan(&a.UserID, &a.FastID, &fastType, &a.Goal, &sched, &status); err != nil {
			return models.Page[models.ActiveFaster]{}, err
		}
		a.Type = constants.FastType(fastType)
		a.Status = constants.FastStatus(status)
		if err := json.Unmarshal([]byte(sched), &a.Schedule); err != nil {
			return models.Page[models.ActiveFaster]{}, fmt.Errorf("fast %s: invalid stored schedule: %w", a.FastID, err)
		}
		if a.Schedule.IsFixed() {
			a.StartTime = a.Schedule.StartAt
		} else if start, ok := schedule.LatestOccurrence(a.Schedule, now); ok {
			a.StartTime = &start
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return models.Page[models.ActiveFaster]{}, err
	}
	return models.Page[models.ActiveFaster]{Items: items, Total: total, Page: page, Limit: limit}, nil
}
