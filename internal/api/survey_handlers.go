package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/scoring"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

func (h *Handlers) ListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.jtbd.ListSurveys(r.Context(), OrgIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, surveys)
}

// UpsertSurvey creates or updates the survey named by {code}.
func (h *Handlers) UpsertSurvey(w http.ResponseWriter, r *http.Request) {
	var in jtbd.SurveyInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	s, err := h.jtbd.UpsertSurvey(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "code"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, s)
}

// UpsertOutcomeResult records one outcome's scores for a survey. A new
// result answers 201, a replaced one 200.
func (h *Handlers) UpsertOutcomeResult(w http.ResponseWriter, r *http.Request) {
	var in jtbd.ResultInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	res, created, err := h.jtbd.UpsertOutcomeResult(r.Context(), OrgIDFrom(r.Context()),
		chi.URLParam(r, "code"), chi.URLParam(r, "outcomeSlug"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if created {
		httputil.Created(w, res)
		return
	}
	httputil.OK(w, res)
}

// GetProjection ranks a survey's outcomes after shifting every rating by
// d_imp and d_sat.
func (h *Handlers) GetProjection(w http.ResponseWriter, r *http.Request) {
	var v scoring.Variation
	var ok bool
	if v.DeltaImportance, ok = queryFloat(w, r, "d_imp"); !ok {
		return
	}
	if v.DeltaSatisfaction, ok = queryFloat(w, r, "d_sat"); !ok {
		return
	}
	ranked, err := h.jtbd.Projection(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "code"), v)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, ranked)
}

// GetOutcomesLong returns the flat outcome x survey table. Every filter takes
// a comma-separated list.
func (h *Handlers) GetOutcomesLong(w http.ResponseWriter, r *http.Request) {
	rows, err := h.jtbd.OutcomesLong(r.Context(), OrgIDFrom(r.Context()), jtbd.Filter{
		SurveyCodes:    queryList(r, "survey_codes"),
		BigJobSlugs:    queryList(r, "big_job_slugs"),
		LittleJobSlugs: queryList(r, "little_job_slugs"),
		OutcomeSlugs:   queryList(r, "outcome_slugs"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, rows)
}

func (h *Handlers) GetResearchRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.jtbd.ResearchRounds(r.Context(), OrgIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, rounds)
}

// GetChangeLogs returns recent audit entries; ?limit= defaults to 50.
func (h *Handlers) GetChangeLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.BadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}
	logs, err := h.jtbd.ChangeLog(r.Context(), OrgIDFrom(r.Context()), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, logs)
}

// queryFloat reads an optional float parameter; a missing one is 0.
func queryFloat(w http.ResponseWriter, r *http.Request, key string) (float64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		httputil.BadRequest(w, key+" must be a number")
		return 0, false
	}
	return f, true
}
