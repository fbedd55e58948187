package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
)

type access int

const (
	accessNone access = iota
	accessPartner
	accessOwner
)

// fastAccess reports how the caller relates to a fast. Partners only reach
// fasts whose owner opted into accountability sharing.
func (s *Store) fastAccess(ctx context.Context, fastID string) (access, error) {
	caller := auth.UserID(ctx)

	var owner string
	var sharing bool
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT user_id, add_partners FROM fasts WHERE id = ?"), fastID).
		Scan(&owner, &sharing)
	if errors.Is(err, sql.ErrNoRows) {
		return accessNone, fmt.Errorf("fast %s: %w", fastID, apperrors.ErrNotFound)
	}
	if err != nil {
		return accessNone, fmt.Errorf("failed to load fast: %w", err)
	}
	if owner == caller {
		return accessOwner, nil
	}
	if !sharing {
		return accessNone, fmt.Errorf("fast %s: %w", fastID, apperrors.ErrNotFound)
	}

	var n int
	err = s.db.QueryRowContext(ctx, s.rebind("SELECT COUNT(*) FROM partners WHERE user_id = ? AND partner_id = ?"), owner, caller).
		Scan(&n)
	if err != nil {
		return accessNone, fmt.Errorf("failed to check partner access: %w", err)
	}
	if n == 0 {
		return accessNone, fmt.Errorf("fast %s: %w", fastID, apperrors.ErrNotFound)
	}
	return accessPartner, nil
}

const journalColumns = "id, fast_id, user_id, title, body, visibility, created_at, updated_at"

func (s *Store) ListJournals(ctx context.Context, fastID string) ([]models.Journal, error) {
	level, err := s.fastAccess(ctx, fastID)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + journalColumns + " FROM journals WHERE fast_id = ?"
	args := []any{fastID}
	if level == accessPartner {
		query += " AND visibility = ?"
		args = append(args, string(constants.VisibilityPartner))
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		journals = append(journals, j)
	}
	return journals, rows.Err()
}

func (s *Store) CreateJournal(ctx context.Context, fastID string, p models.CreateJournalPayload) (models.Journal, error) {
	level, err := s.fastAccess(ctx, fastID)
	if err != nil {
		return models.Journal{}, err
	}
	if level != accessOwner {
		return models.Journal{}, fmt.Errorf("%w: only the owner can write journal entries", apperrors.ErrForbidden)
	}

	visibility := p.Visibility
	if visibility == "" {
		visibility = constants.VisibilityPrivate
	}
	now := s.now().UTC().Truncate(time.Second)
	j := models.Journal{
		ID:         uuid.NewString(),
		FastID:     fastID,
		UserID:     auth.UserID(ctx),
		Title:      p.Title,
		Body:       p.Body,
		Visibility: visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journals (`+journalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		j.ID, j.FastID, j.UserID, j.Title, j.Body, string(j.Visibility),
		formatInstant(j.CreatedAt), formatInstant(j.UpdatedAt),
	)
	if err != nil {
		return models.Journal{}, fmt.Errorf("failed to insert journal: %w", err)
	}
	return j, nil
}

func (s *Store) GetJournal(ctx context.Context, fastID, journalID string) (models.Journal, error) {
	level, err := s.fastAccess(ctx, fastID)
	if err != nil {
		return models.Journal{}, err
	}
	return s.visibleJournal(ctx, level, fastID, journalID)
}

func (s *Store) visibleJournal(ctx context.Context, level access, fastID, journalID string) (models.Journal, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+journalColumns+" FROM journals WHERE id = ? AND fast_id = ?"), journalID, fastID)
	j, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Journal{}, fmt.Errorf("journal %s: %w", journalID, apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Journal{}, err
	}
	if level == accessPartner && j.Visibility != constants.VisibilityPartner {
		return models.Journal{}, fmt.Errorf("journal %s: %w", journalID, apperrors.ErrNotFound)
	}
	return j, nil
}

func (s *Store) ListComments(ctx context.Context, fastID, journalID string) ([]models.JournalComment, error) {
	level, err := s.fastAccess(ctx, fastID)
	if err != nil {
		return nil, err
	}
	if _, err := s.visibleJournal(ctx, level, fastID, journalID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, journal_id, fast_id, author_id, body, created_at FROM journal_comments
		WHERE journal_id = ? ORDER BY created_at, id`), journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.JournalComment{}
	for rows.Next() {
		var c models.JournalComment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.JournalID, &c.FastID, &c.AuthorID, &c.Body, &createdAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseInstant(createdAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) AddComment(ctx context.Context, fastID, journalID string, p models.CreateCommentPayload) (models.JournalComment, error) {
	level, err := s.fastAccess(ctx, fastID)
	if err != nil {
		return models.JournalComment{}, err
	}
	if _, err := s.visibleJournal(ctx, level, fastID, journalID); err != nil {
		return models.JournalComment{}, err
	}

	c := models.JournalComment{
		ID:        uuid.NewString(),
		JournalID: journalID,
		FastID:    fastID,
		AuthorID:  auth.UserID(ctx),
		Body:      p.Body,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journal_comments (id, journal_id, fast_id, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		c.ID, c.JournalID, c.FastID, c.AuthorID, c.Body, formatInstant(c.CreatedAt),
	)
	if err != nil {
		return models.JournalComment{}, fmt.Errorf("failed to insert comment: %w", err)
	}
	return c, nil
}

func scanJournal(row scanner) (models.Journal, error) {
	var j models.Journal
	var visibility, createdAt, updatedAt string
	if err := row.Scan(&j.ID, &j.FastID, &j.UserID, &j.Title, &j.Body, &visibility, &createdAt, &updatedAt); err != nil {
		return models.Journal{}, err
	}
	j.Visibility = constants.Visibility(visibility)
	var err error
	if j.CreatedAt, err = parseInstant(createdAt); err != nil {
		return models.Journal{}, err
	}
	if j.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return models.Journal{}, err
	}
	return j, nil
}
