package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/errors"
	"github.com/hpungsan/fittrack/internal/ops"
	"github.com/hpungsan/fittrack/internal/tracker"
)

// maxFormBytes caps POST bodies; every form here is a handful of short fields.
const maxFormBytes = 64 << 10

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	tr       *tracker.Tracker
	cfg      *config.Config
	renderer *Renderer
}

// HandleDashboard handles GET / and renders goals, activities and the chart.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := ops.Dashboard(h.tr, h.cfg, ops.DashboardInput{
		Policy:      r.URL.Query().Get("policy"),
		RecentLimit: parseIntParam(r, "recent", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "dashboard", DashboardPageData{
		PageData:  h.renderer.page("Dashboard", "dashboard"),
		Dashboard: *d,
		Chart:     layoutChart(d.Chart),
		Today:     tracker.Day(h.tr.Now()),
		Flash:     r.URL.Query().Get("flash"),
	})
}

// HandleDashboardJSON handles GET /api/dashboard.
func (h *Handlers) HandleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	d, err := ops.Dashboard(h.tr, h.cfg, ops.DashboardInput{
		Policy:      r.URL.Query().Get("policy"),
		RecentLimit: parseIntParam(r, "recent", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, d)
}

// HandleReport handles GET /report and renders the Markdown report as HTML.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Report(h.tr, h.cfg, ops.ReportInput{Policy: r.URL.Query().Get("policy")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(out.Markdown))
		return
	}

	h.renderer.renderPage(w, "report", ReportPageData{
		PageData:     h.renderer.page("Report", "report"),
		RenderedHTML: h.renderer.renderMarkdown(out.Markdown),
		Markdown:     out.Markdown,
	})
}

// HandleAddGoal handles POST /goals.
func (h *Handlers) HandleAddGoal(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	target, err := parseAmount(r.PostFormValue("target"), "target")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	_, err = ops.AddGoal(r.Context(), h.tr, ops.AddGoalInput{
		Title:  r.PostFormValue("title"),
		Target: target,
		Unit:   r.PostFormValue("unit"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "goal added")
}

// HandleRenameGoal handles POST /goals/{id}/rename.
func (h *Handlers) HandleRenameGoal(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	input := ops.RenameGoalInput{ID: chi.URLParam(r, "id")}
	if _, ok := r.PostForm["title"]; ok {
		title := r.PostFormValue("title")
		input.Title = &title
	}

	if _, err := ops.RenameGoal(r.Context(), h.tr, input); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "goal renamed")
}

// HandleRemoveGoal handles POST /goals/{id}/delete.
func (h *Handlers) HandleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	_, err := ops.RemoveGoal(r.Context(), h.tr, ops.RemoveGoalInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "goal removed")
}

// HandleLogActivity handles POST /activities.
func (h *Handlers) HandleLogActivity(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	amount, err := parseAmount(r.PostFormValue("amount"), "amount")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	_, err = ops.LogActivity(r.Context(), h.tr, ops.LogActivityInput{
		Type:   r.PostFormValue("type"),
		Amount: amount,
		Unit:   r.PostFormValue("unit"),
		Date:   r.PostFormValue("date"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "activity logged")
}

// HandleRemoveActivity handles POST /activities/{id}/delete.
func (h *Handlers) HandleRemoveActivity(w http.ResponseWriter, r *http.Request) {
	_, err := ops.RemoveActivity(r.Context(), h.tr, ops.RemoveActivityInput{ID: chi.URLParam(r, "id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "activity removed")
}

// HandleClear handles POST /clear. The form must carry confirm=yes.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	_, err := ops.Clear(r.Context(), h.tr, ops.ClearInput{Confirm: r.PostFormValue("confirm") == "yes"})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "all data cleared")
}

// HandleSample handles POST /sample.
func (h *Handlers) HandleSample(w http.ResponseWriter, r *http.Request) {
	if _, err := ops.Sample(r.Context(), h.tr); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	redirectHome(w, r, "sample data loaded")
}

// Helpers

func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form body"))
		return false
	}
	return true
}

// redirectHome answers a successful form post with 303 See Other.
func redirectHome(w http.ResponseWriter, r *http.Request, flash string) {
	http.Redirect(w, r, "/?flash="+strings.ReplaceAll(flash, " ", "+"), http.StatusSeeOther)
}

// parseAmount parses a decimal form field. A comma decimal separator is accepted.
func parseAmount(s, field string) (float64, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, errors.NewInvalidRequest(field + " is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(field + " must be a number")
	}
	return v, nil
}

// parseIntParam extracts an integer query parameter, returning defaultVal if missing or invalid.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
