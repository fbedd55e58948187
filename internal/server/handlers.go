package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
)

func (h *Handler) createFast(w http.ResponseWriter, r *http.Request) {
	var p models.CreateFastPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.svc.Create(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) listFasts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getFast(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) updateFast(w http.ResponseWriter, r *http.Request) {
	var p models.UpdateFastPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) completeFast(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) breakFast(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.EndEarly(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) logPrayer(w http.ResponseWriter, r *http.Request) {
	var p models.PrayerLogPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.svc.LogPrayer(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) listPrayers(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.ListPrayers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) recordProgress(w http.ResponseWriter, r *http.Request) {
	var p models.ProgressEntryPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.RecordProgress(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) listJournals(w http.ResponseWriter, r *http.Request) {
	js, err := h.svc.ListJournals(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, js)
}

func (h *Handler) createJournal(w http.ResponseWriter, r *http.Request) {
	var p models.CreateJournalPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	j, err := h.svc.CreateJournal(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (h *Handler) getJournal(w http.ResponseWriter, r *http.Request) {
	j, err := h.svc.GetJournal(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "journalId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "journalId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var p models.CreateCommentPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.AddComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "journalId"), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) activeFasters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.ActiveFasters(r.Context(), page, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addPartner(w http.ResponseWriter, r *http.Request) {
	var p models.AddPartnerPayload
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.AddPartner(r.Context(), p.PartnerID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var f models.ListFilter
	var err error
	if f.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return f, err
	}
	f.Status = constants.FastStatus(q.Get("status"))
	f.Type = constants.FastType(q.Get("type"))
	if f.StartDate, err = dateParam(q.Get("startDate"), "startDate", false); err != nil {
		return f, err
	}
	if f.EndDate, err = dateParam(q.Get("endDate"), "endDate", true); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(v, field string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperrors.NewValidation("invalid query parameter",
			apperrors.Issue{Field: field, Value: v, Reason: apperrors.ReasonInvalid})
	}
	return n, nil
}

// dateParam accepts RFC 3339 instants and YYYY-MM-DD dates in UTC. A date
// is its midnight, or its last second when endOfDay is set.
func dateParam(v, field string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(constants.DateFormat, v); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Second)
		}
		return &t, nil
	}
	return nil, apperrors.NewValidation("invalid query parameter",
		apperrors.Issue{Field: field, Value: v, Reason: apperrors.ReasonInvalid})
}
