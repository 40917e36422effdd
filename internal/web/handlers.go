package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/client"
	"github.com/rlanders/weatherview/internal/lifecycle"
	"github.com/rlanders/weatherview/internal/observability"
	"github.com/rlanders/weatherview/internal/persist"
	"github.com/rlanders/weatherview/internal/service"
	"github.com/rlanders/weatherview/internal/validation"
)

// Handler holds dependencies for the HTML and JSON handlers.
type Handler struct {
	dispatcher     *service.Dispatcher
	sessions       *SessionManager
	renderer       *Renderer
	writer         persist.Writer
	logger         *zap.Logger
	locationMaxLen int
}

func NewHandler(
	dispatcher *service.Dispatcher,
	sessions *SessionManager,
	renderer *Renderer,
	writer persist.Writer,
	logger *zap.Logger,
	locationMaxLen int,
) *Handler {
	return &Handler{
		dispatcher:     dispatcher,
		sessions:       sessions,
		renderer:       renderer,
		writer:         writer,
		logger:         logger,
		locationMaxLen: locationMaxLen,
	}
}

// NewRouter assembles the route table with the standard middleware chain.
func NewRouter(h *Handler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.HandleFunc("/", h.GetIndex).Methods("GET")
	router.HandleFunc("/", h.PostIndex).Methods("POST")
	router.HandleFunc("/toggle-data-collection", h.PostToggle).Methods("POST")
	router.HandleFunc("/search", h.GetSearch).Methods("GET")
	router.HandleFunc("/about", h.GetAbout).Methods("GET")
	router.HandleFunc("/health", h.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")
	return router
}

// GetIndex renders the search form and any queued flash messages.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	view := indexView{
		CollectData: h.sessions.CollectFlag(r),
		Flashes:     h.sessions.ConsumeFlashes(w, r),
		CurrentYear: currentYear(),
	}
	h.render(w, r, http.StatusOK, "index.html", view)
}

// PostIndex handles a weather lookup. An empty location never reaches the
// upstream client; it flashes a validation message and redirects back.
func (h *Handler) PostIndex(w http.ResponseWriter, r *http.Request) {
	location, err := validation.ValidateLocation(r.FormValue("location"), h.locationMaxLen)
	if err != nil {
		message := "Please enter a location"
		if errors.Is(err, validation.ErrLocationTooLong) {
			message = "That location is too long. Please shorten it and try again."
		}
		_ = h.sessions.AddFlash(w, r, "error", message)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	collect := h.sessions.CollectFlag(r)
	result := h.dispatcher.Handle(r.Context(), location, collect)

	view := indexView{
		Query:       location,
		CollectData: collect,
		Flashes:     h.sessions.ConsumeFlashes(w, r),
		CurrentYear: currentYear(),
	}

	if result.FetchErr != nil {
		view.Error = fetchErrorMessage(result.FetchErr)
		h.render(w, r, http.StatusOK, "index.html", view)
		return
	}

	view.Weather = result.Envelope
	switch {
	case result.Saved:
		view.Flashes = append(view.Flashes, Flash{Category: "success", Message: "Weather data saved to the time-series store."})
	case result.SaveErr != nil:
		view.Flashes = append(view.Flashes, Flash{Category: "error", Message: "Failed to save weather data to the time-series store."})
	case result.SaveSkipped && !collect:
		view.Flashes = append(view.Flashes, Flash{Category: "info", Message: "Weather data displayed but not saved (data collection is disabled)."})
	}
	// Flag on with an unconfigured store stays silent: the lookup worked
	// and there is nothing actionable for the visitor.

	h.render(w, r, http.StatusOK, "index.html", view)
}

// PostToggle flips the session data-collection flag and redirects home.
// No re-fetch happens on toggle.
func (h *Handler) PostToggle(w http.ResponseWriter, r *http.Request) {
	next, err := h.sessions.ToggleCollectFlag(w, r)
	if err != nil {
		h.logger.Error("toggle session save failed", zap.Error(err))
	}
	state := "off"
	if next {
		state = "on"
	}
	observability.CollectionTogglesTotal.WithLabelValues(state).Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetSearch handles GET /search?q=… and returns provider location matches
// as JSON, for form suggestions.
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	query, err := validation.ValidateLocation(r.URL.Query().Get("q"), h.locationMaxLen)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
		return
	}

	matches, err := h.dispatcher.Search(r.Context(), query)
	if err != nil {
		if logger := requestLogger(r); logger != nil {
			logger.Warn("location search failed", zap.Error(err))
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "location search unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetAbout renders the static about page.
func (h *Handler) GetAbout(w http.ResponseWriter, r *http.Request) {
	view := aboutView{
		Flashes:     h.sessions.ConsumeFlashes(w, r),
		CurrentYear: currentYear(),
	}
	h.render(w, r, http.StatusOK, "about.html", view)
}

// GetHealth reports service status. Persistence reachability is checked
// only when the store is configured; a disabled store is not unhealthy.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	if lifecycle.IsDraining() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "shutting-down",
			"service":   "weatherview",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	status := "healthy"
	statusCode := http.StatusOK
	checks := map[string]string{
		"weatherApi": "configured",
	}

	if h.writer.Enabled() {
		if err := h.writer.Ping(r.Context()); err != nil {
			checks["persistence"] = "unhealthy"
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		} else {
			checks["persistence"] = "healthy"
		}
	} else {
		checks["persistence"] = "disabled"
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "weatherview",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// render writes the page or, on template failure, a plain 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	if err := h.renderer.Render(w, status, page, data); err != nil {
		if logger := requestLogger(r); logger != nil {
			logger.Error("render failed", zap.String("page", page), zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func requestLogger(r *http.Request) *zap.Logger {
	if v := r.Context().Value("logger"); v != nil {
		if logger, ok := v.(*zap.Logger); ok {
			return logger
		}
	}
	return nil
}

// fetchErrorMessage maps an upstream failure to user-facing copy. No
// partial weather card is ever rendered alongside these.
func fetchErrorMessage(err error) string {
	switch client.CategorizeError(err) {
	case client.ErrorCategoryLocationNotFound:
		return "We couldn't find that location. Please check the spelling and try again."
	case client.ErrorCategoryRateLimited:
		return "The weather service is busy right now. Please try again in a moment."
	case client.ErrorCategoryInvalidAPIKey:
		return "The weather service is misconfigured. Please try again later."
	default:
		return "Unable to retrieve weather data for the specified location. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
