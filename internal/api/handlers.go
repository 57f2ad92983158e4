package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"allswell/internal/auth"
	"allswell/internal/chart"
	"allswell/internal/datekey"
	"allswell/internal/planner"
	"allswell/internal/view"
)

// ChartSize is the square viewport of the rendered pie, in pixels.
const ChartSize = 350

// Handler wires the HTTP surface to the planner core.
type Handler struct {
	auth       *auth.Manager
	hub        *planner.Hub
	tasks      *planner.TaskService
	categories *planner.CategoryService
	goals      *planner.GoalService
	profile    *planner.ProfileService
	log        *slog.Logger
}

func NewHandler(
	mgr *auth.Manager,
	hub *planner.Hub,
	tasks *planner.TaskService,
	categories *planner.CategoryService,
	goals *planner.GoalService,
	profile *planner.ProfileService,
	log *slog.Logger,
) *Handler {
	return &Handler{
		auth:       mgr,
		hub:        hub,
		tasks:      tasks,
		categories: categories,
		goals:      goals,
		profile:    profile,
		log:        log,
	}
}

type sessionResponse struct {
	User  auth.Identity `json:"user"`
	Token string        `json:"token"`
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	identity, token, err := h.auth.SignUp(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: *identity, Token: token})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	identity, token, err := h.auth.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: *identity, Token: token})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	h.hub.Close(identity.UID)
	h.auth.SignOut(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := h.auth.ChangePassword(r.Context(), bearerToken(r), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	title, err := h.profile.Title(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *Handler) PutTitle(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	title, err := h.profile.SaveTitle(r.Context(), identity.UID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	categories, err := h.categories.List(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	h.saveCategory(w, r, "")
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	h.saveCategory(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) saveCategory(w http.ResponseWriter, r *http.Request, editingID string) {
	identity, _ := identityFrom(r.Context())
	var input planner.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	cat, err := h.categories.Save(r.Context(), identity.UID, editingID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if editingID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, cat)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	session := h.hub.Session(identity.UID)

	err := h.categories.Delete(r.Context(), identity.UID, chi.URLParam(r, "id"), session.Cache.Keys())
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDayTasks(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	key, ok := dateKeyParam(w, r)
	if !ok {
		return
	}

	session := h.hub.Session(identity.UID)
	tasks, err := session.EnsureDay(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := h.categories.List(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.BuildTaskList(key, tasks, categories))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	key, ok := dateKeyParam(w, r)
	if !ok {
		return
	}
	var input planner.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	task, err := h.tasks.Create(r.Context(), identity.UID, key, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	key, ok := dateKeyParam(w, r)
	if !ok {
		return
	}
	var input planner.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := h.tasks.Update(r.Context(), identity.UID, key, chi.URLParam(r, "id"), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	key, ok := dateKeyParam(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.Toggle(r.Context(), identity.UID, key, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	key, ok := dateKeyParam(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), identity.UID, key, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	month, ok := monthParam(w, r)
	if !ok {
		return
	}

	session := h.hub.Session(identity.UID)
	session.SetViewingMonth(month)

	days := planner.ZeroMonth(month)
	if meta, fresh := session.MonthMetadata(r.Context(), month); fresh {
		days = meta.Days
	}

	grid := view.BuildMonthGrid(month, session.SelectedDate(), time.Now(), days)
	writeJSON(w, http.StatusOK, grid)
}

// SelectDate moves the selection and returns both refreshed render models,
// mirroring the select-then-re-render-both transition of the UI.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	var req struct {
		DateKey datekey.Key `json:"dateKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.DateKey.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date key"))
		return
	}
	day, err := datekey.Parse(req.DateKey)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date key"))
		return
	}

	session := h.hub.Session(identity.UID)
	session.SelectDate(day)

	tasks, err := session.EnsureDay(r.Context(), req.DateKey)
	if err != nil {
		writeError(w, err)
		return
	}
	categories, err := h.categories.List(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return
	}

	month := session.ViewingMonth()
	days := planner.ZeroMonth(month)
	if meta, fresh := session.MonthMetadata(r.Context(), month); fresh {
		days = meta.Days
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"calendar": view.BuildMonthGrid(month, day, time.Now(), days),
		"tasks":    view.BuildTaskList(req.DateKey, tasks, categories),
	})
}

func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	goal, err := h.goals.Load(r.Context(), identity.UID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) PutGoal(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFrom(r.Context())
	month, ok := monthParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Goal string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := h.goals.Save(r.Context(), identity.UID, month, req.Goal); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	pie, ok := h.buildPie(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pie)
}

func (h *Handler) GetChartSVG(w http.ResponseWriter, r *http.Request) {
	pie, ok := h.buildPie(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(chart.RenderSVG(pie)))
}

// buildPie force-loads every day of the requested month so the distribution
// covers the whole month rather than only previously visited days.
func (h *Handler) buildPie(w http.ResponseWriter, r *http.Request) (chart.Pie, bool) {
	identity, _ := identityFrom(r.Context())
	month, ok := monthParam(w, r)
	if !ok {
		return chart.Pie{}, false
	}

	session := h.hub.Session(identity.UID)
	if err := session.LoadMonth(r.Context(), month); err != nil {
		writeError(w, err)
		return chart.Pie{}, false
	}
	categories, err := h.categories.List(r.Context(), identity.UID)
	if err != nil {
		writeError(w, err)
		return chart.Pie{}, false
	}

	entries := chart.Distribution(session.Cache, categories, month)
	return chart.Layout(entries, ChartSize), true
}

func dateKeyParam(w http.ResponseWriter, r *http.Request) (datekey.Key, bool) {
	key := datekey.Key(chi.URLParam(r, "dateKey"))
	if !key.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid date key"))
		return "", false
	}
	return key, true
}

func monthParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	month, err := datekey.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid month key"))
		return time.Time{}, false
	}
	return month, true
}
