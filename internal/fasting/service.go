package fasting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/schedule"
	"github.com/julianstephens/fastwell/internal/utils"
)

// Config tunes a Service
type Config struct {
	// Strict rejects input the configuration model would otherwise correct
	Strict bool
	// PageLimit is used when a listing does not ask for a limit
	PageLimit int
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

// Service validates requests locally and then delegates to the backend.
// Backend errors are returned unchanged.
type Service struct {
	backend   Backend
	opts      schedule.Options
	pageLimit int
	now       func() time.Time
}

func NewService(backend Backend, cfg Config) *Service {
	limit := cfg.PageLimit
	if limit <= 0 || limit > constants.MaxPageLimit {
		limit = constants.DefaultPageLimit
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		backend:   backend,
		opts:      schedule.Options{Strict: cfg.Strict},
		pageLimit: limit,
		now:       now,
	}
}

// Draft is a fast described by user selections rather than a built schedule
type Draft struct {
	Selection                 schedule.Selection
	Goal                      string
	SmartGoal                 string
	PrayerTimes               []string
	Verse                     string
	PrayerFocus               string
	ReminderEnabled           bool
	AddAccountabilityPartners bool
}

// CreateFromSelection builds the schedule from a draft and creates the fast.
// Corrections made while building are returned as advisories.
func (s *Service) CreateFromSelection(ctx context.Context, d Draft) (models.Fast, []utils.Advisory, error) {
	res, err := schedule.Build(d.Selection, s.opts)
	if err != nil {
		return models.Fast{}, nil, err
	}
	fast, err := s.Create(ctx, models.CreateFastPayload{
		Type:                      d.Selection.Type,
		Schedule:                  res.Schedule,
		Goal:                      d.Goal,
		SmartGoal:                 d.SmartGoal,
		PrayerTimes:               d.PrayerTimes,
		Verse:                     d.Verse,
		PrayerFocus:               d.PrayerFocus,
		ReminderEnabled:           d.ReminderEnabled,
		AddAccountabilityPartners: d.AddAccountabilityPartners,
	})
	if err != nil {
		return models.Fast{}, res.Advisories, err
	}
	return fast, res.Advisories, nil
}

// Create validates the payload and persists a new fast. At most one fast may
// be active at a time, so a new fast may not overlap any active or upcoming
// fast.
func (s *Service) Create(ctx context.Context, payload models.CreateFastPayload) (models.Fast, error) {
	if !payload.Type.Valid() {
		return models.Fast{}, apperrors.NewValidation("unknown fast type",
			apperrors.Issue{Field: "type", Value: string(payload.Type), Reason: apperrors.ReasonInvalid})
	}

	sched := payload.Schedule
	if payload.Type == constants.FastTypeBreakthrough {
		if !sched.IsFixed() || sched.StartAt == nil {
			return models.Fast{}, apperrors.NewValidation("breakthrough fasts require a fixed start",
				apperrors.Issue{Field: "schedule.kind", Value: string(sched.Kind), Reason: apperrors.ReasonInvalid})
		}
		end := sched.StartAt.Add(constants.BreakthroughDuration)
		sched.EndAt = &end
	}
	if err := sched.Validate(); err != nil {
		return models.Fast{}, err
	}
	payload.Schedule = sched

	if len(payload.PrayerTimes) > 0 {
		times, err := schedule.CheckPrayerTimes(payload.PrayerTimes, sched)
		if err != nil {
			return models.Fast{}, err
		}
		payload.PrayerTimes = times
	}

	if err := s.checkOverlap(ctx, sched); err != nil {
		return models.Fast{}, err
	}

	fast, err := s.backend.CreateFast(ctx, payload)
	if err != nil {
		return models.Fast{}, err
	}
	logger.Info("Fast created", "id", fast.ID, "type", fast.Type, "status", fast.Status)
	return fast, nil
}

// List returns one page of fasts. Page and limit are normalized.
func (s *Service) List(ctx context.Context, filter models.ListFilter) (models.Page[models.Fast], error) {
	filter.Page, filter.Limit = s.pagination(filter.Page, filter.Limit)
	if filter.Status != "" && !filter.Status.Valid() {
		return models.Page[models.Fast]{}, apperrors.NewValidation("unknown fast status",
			apperrors.Issue{Field: "status", Value: string(filter.Status), Reason: apperrors.ReasonInvalid})
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return models.Page[models.Fast]{}, apperrors.NewValidation("unknown fast type",
			apperrors.Issue{Field: "type", Value: string(filter.Type), Reason: apperrors.ReasonInvalid})
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return models.Page[models.Fast]{}, apperrors.NewValidation("endDate must not be before startDate",
			apperrors.Issue{Field: "endDate", Value: filter.EndDate.Format(constants.DateFormat), Reason: apperrors.ReasonInvalid})
	}
	return s.backend.ListFasts(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (models.Fast, error) {
	if err := requireID("id", id); err != nil {
		return models.Fast{}, err
	}
	return s.backend.GetFast(ctx, id)
}

// Update changes the goal or prayer times of a fast that has not ended.
// Prayer times are revalidated against the fast's own window.
func (s *Service) Update(ctx context.Context, id string, payload models.UpdateFastPayload) (models.Fast, error) {
	fast, err := s.Get(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	if err := notEnded(fast); err != nil {
		return models.Fast{}, err
	}
	if payload.PrayerTimes != nil {
		times, err := schedule.CheckPrayerTimes(*payload.PrayerTimes, fast.Schedule)
		if err != nil {
			return models.Fast{}, err
		}
		if times == nil {
			times = []string{}
		}
		payload.PrayerTimes = &times
	}
	return s.backend.UpdateFast(ctx, id, payload)
}

// Complete marks a fast completed. A fixed fast can only be completed once
// its window has elapsed.
func (s *Service) Complete(ctx context.Context, id string) (models.Fast, error) {
	fast, err := s.Get(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	if err := notEnded(fast); err != nil {
		return models.Fast{}, err
	}
	now := s.now()
	if fast.EffectiveStatus(now) == constants.FastStatusUpcoming {
		return models.Fast{}, apperrors.NewValidation("this fast has not started yet",
			apperrors.Issue{Field: "status", Value: string(constants.FastStatusUpcoming), Reason: apperrors.ReasonInvalid})
	}
	if fast.Schedule.IsFixed() && fast.Schedule.EndAt != nil && now.Before(*fast.Schedule.EndAt) {
		return models.Fast{}, apperrors.NewValidation("this fast's window has not elapsed yet; end it early instead",
			apperrors.Issue{Field: "endAt", Value: fast.Schedule.EndAt.Format(time.RFC3339), Reason: apperrors.ReasonInvalid})
	}

	done, err := s.backend.CompleteFast(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	logger.Info("Fast completed", "id", id)
	return done, nil
}

// EndEarly breaks a fast. It cannot be undone; confirming is up to the caller.
func (s *Service) EndEarly(ctx context.Context, id string) (models.Fast, error) {
	fast, err := s.Get(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	if err := notEnded(fast); err != nil {
		return models.Fast{}, err
	}

	broken, err := s.backend.BreakFast(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	logger.Info("Fast ended early", "id", id)
	return broken, nil
}

// LogPrayer records a prayer on an active fast. The time defaults to now in
// the fast's timezone.
func (s *Service) LogPrayer(ctx context.Context, fastID string, payload models.PrayerLogPayload) (models.PrayerLog, error) {
	fast, err := s.activeFast(ctx, fastID)
	if err != nil {
		return models.PrayerLog{}, err
	}

	now := s.now()
	if payload.PrayedAt == nil {
		payload.PrayedAt = &now
	}
	if strings.TrimSpace(payload.Time) == "" {
		loc, err := fast.Schedule.Location()
		if err != nil {
			return models.PrayerLog{}, err
		}
		payload.Time = utils.TimeOfDay(payload.PrayedAt.In(loc))
	}
	normalized, ok := utils.ParseTimeTo24h(payload.Time)
	if !ok {
		return models.PrayerLog{}, apperrors.NewValidation("invalid prayer time",
			apperrors.Issue{Field: "time", Value: payload.Time, Reason: apperrors.ReasonInvalid})
	}
	payload.Time = normalized
	return s.backend.LogPrayer(ctx, fastID, payload)
}

func (s *Service) ListPrayers(ctx context.Context, fastID string) ([]models.PrayerLog, error) {
	if err := requireID("fastId", fastID); err != nil {
		return nil, err
	}
	return s.backend.ListPrayers(ctx, fastID)
}

// RecordProgress stores a manual check-in on an active fast
func (s *Service) RecordProgress(ctx context.Context, fastID string, payload models.ProgressEntryPayload) (models.ProgressEntry, error) {
	var issues []apperrors.Issue
	for _, lvl := range []struct {
		field string
		value int
	}{
		{"hungerLevel", payload.HungerLevel},
		{"spiritualClarity", payload.SpiritualClarity},
		{"temptationStrength", payload.TemptationStrength},
	} {
		if lvl.value < constants.MinCheckInLevel || lvl.value > constants.MaxCheckInLevel {
			issues = append(issues, apperrors.Issue{Field: lvl.field, Value: fmt.Sprint(lvl.value), Reason: apperrors.ReasonRange})
		}
	}
	if len(issues) > 0 {
		return models.ProgressEntry{}, apperrors.NewValidation(
			fmt.Sprintf("check-in levels must be between %d and %d", constants.MinCheckInLevel, constants.MaxCheckInLevel),
			issues...)
	}
	if _, err := s.activeFast(ctx, fastID); err != nil {
		return models.ProgressEntry{}, err
	}
	return s.backend.RecordProgress(ctx, fastID, payload)
}

func (s *Service) ListJournals(ctx context.Context, fastID string) ([]models.Journal, error) {
	if err := requireID("fastId", fastID); err != nil {
		return nil, err
	}
	return s.backend.ListJournals(ctx, fastID)
}

// CreateJournal attaches a journal entry to an active fast
func (s *Service) CreateJournal(ctx context.Context, fastID string, payload models.CreateJournalPayload) (models.Journal, error) {
	payload.Body = strings.TrimSpace(payload.Body)
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Body == "" {
		return models.Journal{}, apperrors.NewValidation("journal body is required",
			apperrors.Issue{Field: "body", Reason: apperrors.ReasonRequired})
	}
	switch payload.Visibility {
	case "":
		payload.Visibility = constants.VisibilityPrivate
	case constants.VisibilityPrivate, constants.VisibilityPartner:
	default:
		return models.Journal{}, apperrors.NewValidation("unknown journal visibility",
			apperrors.Issue{Field: "visibility", Value: string(payload.Visibility), Reason: apperrors.ReasonInvalid})
	}
	if _, err := s.activeFast(ctx, fastID); err != nil {
		return models.Journal{}, err
	}
	return s.backend.CreateJournal(ctx, fastID, payload)
}

func (s *Service) GetJournal(ctx context.Context, fastID, journalID string) (models.Journal, error) {
	if err := requireID("fastId", fastID); err != nil {
		return models.Journal{}, err
	}
	if err := requireID("journalId", journalID); err != nil {
		return models.Journal{}, err
	}
	return s.backend.GetJournal(ctx, fastID, journalID)
}

func (s *Service) ListComments(ctx context.Context, fastID, journalID string) ([]models.JournalComment, error) {
	if err := requireID("journalId", journalID); err != nil {
		return nil, err
	}
	return s.backend.ListComments(ctx, fastID, journalID)
}

// AddComment appends a reply to a journal entry
func (s *Service) AddComment(ctx context.Context, fastID, journalID string, payload models.CreateCommentPayload) (models.JournalComment, error) {
	if err := requireID("journalId", journalID); err != nil {
		return models.JournalComment{}, err
	}
	payload.Body = strings.TrimSpace(payload.Body)
	if payload.Body == "" {
		return models.JournalComment{}, apperrors.NewValidation("comment body is required",
			apperrors.Issue{Field: "body", Reason: apperrors.ReasonRequired})
	}
	return s.backend.AddComment(ctx, fastID, journalID, payload)
}

// ActiveFasters lists partners' in-progress fasts
func (s *Service) ActiveFasters(ctx context.Context, page, limit int) (models.Page[models.ActiveFaster], error) {
	page, limit = s.pagination(page, limit)
	return s.backend.ListActiveFasters(ctx, page, limit)
}

// AddPartner grants another user partner access to the caller's fasts
func (s *Service) AddPartner(ctx context.Context, partnerID string) error {
	partnerID = strings.TrimSpace(partnerID)
	if err := requireID("partnerId", partnerID); err != nil {
		return err
	}
	return s.backend.AddPartner(ctx, models.AddPartnerPayload{PartnerID: partnerID})
}

func (s *Service) activeFast(ctx context.Context, id string) (models.Fast, error) {
	fast, err := s.Get(ctx, id)
	if err != nil {
		return models.Fast{}, err
	}
	if status := fast.EffectiveStatus(s.now()); status != constants.FastStatusActive {
		return models.Fast{}, apperrors.NewValidation("this fast is not active",
			apperrors.Issue{Field: "status", Value: string(status), Reason: apperrors.ReasonInvalid})
	}
	return fast, nil
}

// checkOverlap rejects sched when its active span meets the span of any
// fast that is active or upcoming at now
func (s *Service) checkOverlap(ctx context.Context, sched models.Schedule) error {
	now := s.now()
	if (models.Fast{Schedule: sched, Status: models.InitialStatus(sched, now)}).EffectiveStatus(now).IsTerminal() {
		return nil
	}
	start, end := span(sched, now)
	for _, status := range []constants.FastStatus{constants.FastStatusActive, constants.FastStatusUpcoming} {
		for page := 1; ; page++ {
			res, err := s.backend.ListFasts(ctx, models.ListFilter{Page: page, Limit: constants.MaxPageLimit, Status: status})
			if err != nil {
				return fmt.Errorf("check overlapping fasts: %w", err)
			}
			for _, f := range res.Items {
				if f.EffectiveStatus(now).IsTerminal() {
					continue
				}
				fStart, fEnd := span(f.Schedule, now)
				if overlaps(start, end, fStart, fEnd) {
					return fmt.Errorf("%w: fast %s is %s and overlaps this one; complete or end it first",
						apperrors.ErrConflict, f.ID, f.EffectiveStatus(now))
				}
			}
			if len(res.Items) == 0 || page*constants.MaxPageLimit >= res.Total {
				break
			}
		}
	}
	return nil
}

// span is the interval during which a schedule keeps its fast active. A
// recurring fast is active from now until it is ended, so its end is nil.
func span(sched models.Schedule, now time.Time) (time.Time, *time.Time) {
	if sched.IsFixed() && sched.StartAt != nil && sched.EndAt != nil {
		return *sched.StartAt, sched.EndAt
	}
	return now, nil
}

// overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect. A nil
// end is unbounded.
func overlaps(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	return (aEnd == nil || bStart.Before(*aEnd)) && (bEnd == nil || aStart.Before(*bEnd))
}

func (s *Service) pagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pageLimit
	}
	if limit > constants.MaxPageLimit {
		limit = constants.MaxPageLimit
	}
	return page, limit
}

func notEnded(f models.Fast) error {
	if f.Status.IsTerminal() {
		return apperrors.NewValidation(fmt.Sprintf("this fast has already ended (%s)", f.Status),
			apperrors.Issue{Field: "status", Value: string(f.Status), Reason: apperrors.ReasonInvalid})
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidation(field+" is required",
			apperrors.Issue{Field: field, Reason: apperrors.ReasonRequired})
	}
	return nil
}
