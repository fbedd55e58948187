package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/julianstephens/fastwell/internal/models"
)

func fastPath(id string, rest ...string) string {
	p := "/fasts/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// ListQuery encodes a filter the way GET /fasts expects it
func ListQuery(f models.ListFilter) url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	return q
}

func (c *Client) CreateFast(ctx context.Context, p models.CreateFastPayload) (models.Fast, error) {
	var f models.Fast
	err := c.do(ctx, http.MethodPost, "/fasts", nil, p, &f)
	return f, err
}

func (c *Client) ListFasts(ctx context.Context, filter models.ListFilter) (models.Page[models.Fast], error) {
	var page models.Page[models.Fast]
	err := c.do(ctx, http.MethodGet, "/fasts", ListQuery(filter), nil, &page)
	return page, err
}

func (c *Client) GetFast(ctx context.Context, id string) (models.Fast, error) {
	var f models.Fast
	err := c.do(ctx, http.MethodGet, fastPath(id), nil, nil, &f)
	return f, err
}

func (c *Client) UpdateFast(ctx context.Context, id string, p models.UpdateFastPayload) (models.Fast, error) {
	var f models.Fast
	err := c.do(ctx, http.MethodPut, fastPath(id), nil, p, &f)
	return f, err
}

func (c *Client) CompleteFast(ctx context.Context, id string) (models.Fast, error) {
	var f models.Fast
	err := c.do(ctx, http.MethodPost, fastPath(id, "complete"), nil, nil, &f)
	return f, err
}

func (c *Client) BreakFast(ctx context.Context, id string) (models.Fast, error) {
	var f models.Fast
	err := c.do(ctx, http.MethodPost, fastPath(id, "break"), nil, nil, &f)
	return f, err
}

func (c *Client) LogPrayer(ctx context.Context, fastID string, p models.PrayerLogPayload) (models.PrayerLog, error) {
	var l models.PrayerLog
	err := c.do(ctx, http.MethodPost, fastPath(fastID, "prayers"), nil, p, &l)
	return l, err
}

func (c *Client) ListPrayers(ctx context.Context, fastID string) ([]models.PrayerLog, error) {
	var logs []models.PrayerLog
	err := c.do(ctx, http.MethodGet, fastPath(fastID, "prayers"), nil, nil, &logs)
	return logs, err
}

func (c *Client) RecordProgress(ctx context.Context, fastID string, p models.ProgressEntryPayload) (models.ProgressEntry, error) {
	var e models.ProgressEntry
	err := c.do(ctx, http.MethodPost, fastPath(fastID, "progress"), nil, p, &e)
	return e, err
}

func (c *Client) ListJournals(ctx context.Context, fastID string) ([]models.Journal, error) {
	var js []models.Journal
	err := c.do(ctx, http.MethodGet, fastPath(fastID, "journals"), nil, nil, &js)
	return js, err
}

func (c *Client) CreateJournal(ctx context.Context, fastID string, p models.CreateJournalPayload) (models.Journal, error) {
	var j models.Journal
	err := c.do(ctx, http.MethodPost, fastPath(fastID, "journals"), nil, p, &j)
	return j, err
}

func (c *Client) GetJournal(ctx context.Context, fastID, journalID string) (models.Journal, error) {
	var j models.Journal
	err := c.do(ctx, http.MethodGet, fastPath(fastID, "journals", journalID), nil, nil, &j)
	return j, err
}

func (c *Client) ListComments(ctx context.Context, fastID, journalID string) ([]models.JournalComment, error) {
	var cs []models.JournalComment
	err := c.do(ctx, http.MethodGet, fastPath(fastID, "journals", journalID, "comments"), nil, nil, &cs)
	return cs, err
}

func (c *Client) AddComment(ctx context.Context, fastID, journalID string, p models.CreateCommentPayload) (models.JournalComment, error) {
	var cm models.JournalComment
	err := c.do(ctx, http.MethodPost, fastPath(fastID, "journals", journalID, "comments"), nil, p, &cm)
	return cm, err
}

func (c *Client) ListActiveFasters(ctx context.Context, page, limit int) (models.Page[models.ActiveFaster], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out models.Page[models.ActiveFaster]
	err := c.do(ctx, http.MethodGet, "/fasts/partner/active-fasters", q, nil, &out)
	return out, err
}

func (c *Client) AddPartner(ctx context.Context, p models.AddPartnerPayload) error {
	return c.do(ctx, http.MethodPost, "/partners", nil, p, nil)
}
