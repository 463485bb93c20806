package handlers

import (
	"net/http"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
)

// ReferenceHandler serves session-independent lookups: the facility list,
// the event type catalogue and address suggestions.
type ReferenceHandler struct {
	svc    continuity.Service
	logger logging.Logger
}

// NewReferenceHandler creates a ReferenceHandler.
func NewReferenceHandler(svc continuity.Service, logger logging.Logger) *ReferenceHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReferenceHandler{svc: svc, logger: logger}
}

// Facilities handles GET /facilities.
func (h *ReferenceHandler) Facilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": h.svc.Facilities(r.Context()),
	})
}

// EventTypes handles GET /event-types.
func (h *ReferenceHandler) EventTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event_types": h.svc.EventTypes(),
	})
}

// Suggest handles GET /geocode/suggest?q=.  Short queries and upstream
// failures both answer with an empty list.
func (h *ReferenceHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if locs == nil {
		locs = []nominatim.Location{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": locs})
}

//Personal.AI order the ending
