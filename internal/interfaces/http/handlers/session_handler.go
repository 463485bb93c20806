package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Default body limits.
const (
	DefaultMaxUploadBytes = 20 << 20
	DefaultMaxZoneBytes   = 1 << 20
)

// uploadField is the multipart form field carrying the employee table.
const uploadField = "file"

// SessionHandler serves the per-session workflow: upload, filter, draw,
// report, export and geocode.
type SessionHandler struct {
	svc            continuity.Service
	logger         logging.Logger
	maxUploadBytes int64
	maxZoneBytes   int64
}

// SessionHandlerOption tunes a SessionHandler.
type SessionHandlerOption func(*SessionHandler)

// WithMaxUploadBytes bounds the employee table body.
func WithMaxUploadBytes(n int64) SessionHandlerOption {
	return func(h *SessionHandler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// WithMaxZoneBytes bounds the GeoJSON zone body.
func WithMaxZoneBytes(n int64) SessionHandlerOption {
	return func(h *SessionHandler) {
		if n > 0 {
			h.maxZoneBytes = n
		}
	}
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(svc continuity.Service, logger logging.Logger, opts ...SessionHandlerOption) *SessionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &SessionHandler{
		svc:            svc,
		logger:         logger,
		maxUploadBytes: DefaultMaxUploadBytes,
		maxZoneBytes:   DefaultMaxZoneBytes,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.CreateSession(r.Context())
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// Get handles GET /sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.GetSession(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Delete handles DELETE /sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), sessionID(r)); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Upload handles POST /sessions/{sessionID}/dataset.  The table is either
// the raw request body or the "file" part of a multipart form.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, err := h.readUpload(w, r)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Upload(r.Context(), sessionID(r), data)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *SessionHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return readBody(r, h.maxUploadBytes)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	file, _, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "multipart upload has no file part").WithDetail(uploadField)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReadFailed, "uploaded file could not be read")
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, errors.New(errors.ErrCodeBadRequest, "uploaded file too large")
	}
	return data, nil
}

// Overview handles GET /sessions/{sessionID}/dataset/overview.
func (h *SessionHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// GetFilters handles GET /sessions/{sessionID}/filters.
func (h *SessionHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.FilterDomain(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// PutFilters handles PUT /sessions/{sessionID}/filters.
func (h *SessionHandler) PutFilters(w http.ResponseWriter, r *http.Request) {
	var c personnel.Criteria
	if err := decodeJSON(r, &c); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	st, err := h.svc.ApplyFilter(r.Context(), sessionID(r), c)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DrawZone handles POST /sessions/{sessionID}/zone.  An empty shape clears
// the zone and answers 204.
func (h *SessionHandler) DrawZone(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, h.maxZoneBytes)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	rep, err := h.svc.DrawZone(r.Context(), sessionID(r), body)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if rep == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Report handles GET /sessions/{sessionID}/report.
func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ExportCSV handles GET /sessions/{sessionID}/report/export.csv.
func (h *SessionHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	exp, err := h.svc.ExportCSV(r.Context(), sessionID(r))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.writeExport(w, exp)
}

// ExportDocument handles POST /sessions/{sessionID}/report/document.
func (h *SessionHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	var in continuity.DocumentInput
	if err := decodeJSON(r, &in); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	exp, err := h.svc.ExportDocument(r.Context(), sessionID(r), &in)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	h.writeExport(w, exp)
}

// writeExport sends the file; an archived copy is announced by header.
func (h *SessionHandler) writeExport(w http.ResponseWriter, exp *continuity.Export) {
	if exp.Archived != nil {
		w.Header().Set("X-Archive-Key", exp.Archived.ObjectKey)
		if exp.Archived.URL != "" {
			w.Header().Set("X-Archive-URL", exp.Archived.URL)
		}
	}
	writeFile(w, exp.FileName, exp.ContentType, exp.Data)
}

// GeocodeRequest is the body of POST /sessions/{sessionID}/geocode.
type GeocodeRequest struct {
	Address string `json:"address"`
}

// Geocode handles POST /sessions/{sessionID}/geocode and stores the result
// as the session's emergency location.
func (h *SessionHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	var req GeocodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	loc, err := h.svc.Geocode(r.Context(), sessionID(r), req.Address)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

//Personal.AI order the ending
