// Package continuity is the application service behind every surface: it
// owns operator sessions and runs upload, filter, zone, report, export and
// geocoding steps against them.
package continuity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/domain/zone"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/storage/minio"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Content types of the exports.
const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

// Service defines the operations available to the HTTP and CLI surfaces.
type Service interface {
	CreateSession(ctx context.Context) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	Upload(ctx context.Context, sessionID string, data []byte) (*UploadResult, error)
	Overview(ctx context.Context, sessionID string) (*reporting.Overview, error)
	FilterDomain(ctx context.Context, sessionID string) (*FilterState, error)
	ApplyFilter(ctx context.Context, sessionID string, c personnel.Criteria) (*FilterState, error)

	DrawZone(ctx context.Context, sessionID string, geometry []byte) (*reporting.Report, error)
	Report(ctx context.Context, sessionID string) (*reporting.Report, error)
	ExportCSV(ctx context.Context, sessionID string) (*Export, error)
	ExportDocument(ctx context.Context, sessionID string, in *DocumentInput) (*Export, error)

	Geocode(ctx context.Context, sessionID, address string) (*nominatim.Location, error)
	Suggest(ctx context.Context, query string) ([]nominatim.Location, error)
	Facilities(ctx context.Context) []facility.FixedLocation
	EventTypes() []string
}

// UploadResult describes an accepted upload.
type UploadResult struct {
	Digest       string                       `json:"digest"`
	InputRows    int                          `json:"input_rows"`
	Kept         int                          `json:"kept"`
	TotalClean   int                          `json:"total_clean"`
	Dropped      int                          `json:"dropped"`
	Drops        map[personnel.DropReason]int `json:"drops"`
	Sampled      bool                         `json:"sampled"`
	SampleNotice string                       `json:"sample_notice,omitempty"`
	Cached       bool                         `json:"cached"`
}

// FilterState is the active criteria with the selectable values.
type FilterState struct {
	Criteria personnel.Criteria     `json:"criteria"`
	Domain   personnel.DomainValues `json:"domain"`
	Matched  int                    `json:"matched"`
	Total    int                    `json:"total"`
}

// DocumentInput carries the operator-entered event details.
type DocumentInput struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
}

// Export is one generated file.
type Export struct {
	FileName    string                `json:"file_name"`
	ContentType string                `json:"content_type"`
	Data        []byte                `json:"-"`
	Archived    *minio.ArchivedObject `json:"archived,omitempty"`
}

// DefaultPublishTimeout bounds delivery of one report event.
const DefaultPublishTimeout = 2 * time.Second

// Options tunes ingestion and event delivery.
type Options struct {
	MaxRecords     int
	SampleSeed     *int64
	MaxUploadBytes int64
	PublishTimeout time.Duration
	Now            func() time.Time
}

// Dependencies wires the service.  Registry and Documents are required;
// every other collaborator is optional.
type Dependencies struct {
	Store     SessionStore
	Registry  *facility.Registry
	Documents DocumentRenderer
	Cache     DatasetCache
	Archive   ExportArchive
	Publisher ReportPublisher
	Geocoder  Geocoder
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
}

type serviceImpl struct {
	store     SessionStore
	registry  *facility.Registry
	documents DocumentRenderer
	cache     DatasetCache
	archive   ExportArchive
	publisher ReportPublisher
	geocoder  Geocoder
	metrics   *prometheus.AppMetrics
	logger    logging.Logger
	opts      Options
}

// NewService creates the continuity application service.
func NewService(deps Dependencies, opts Options) (Service, error) {
	if deps.Registry == nil {
		return nil, errors.New(errors.ErrCodeFacilityConfig, "facility registry is required")
	}
	if deps.Documents == nil {
		return nil, errors.Internal("document renderer is required")
	}
	if deps.Store == nil {
		deps.Store = NewMemorySessionStore()
	}
	if deps.Cache == nil {
		deps.Cache = noopDatasetCache{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if opts.MaxRecords == 0 {
		opts.MaxRecords = personnel.DefaultMaxRecords
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &serviceImpl{
		store:     deps.Store,
		registry:  deps.Registry,
		documents: deps.Documents,
		cache:     deps.Cache,
		archive:   deps.Archive,
		publisher: deps.Publisher,
		geocoder:  deps.Geocoder,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		opts:      opts,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sessions
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) CreateSession(ctx context.Context) (*SessionInfo, error) {
	sess, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.WithLabelValues().Inc()
	}
	s.logger.Info("session created", logging.SessionID(sess.ID()))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.info(), nil
}

func (s *serviceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.info(), nil
}

func (s *serviceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.WithLabelValues().Dec()
	}
	if s.archive != nil {
		if err := s.archive.DeleteSession(ctx, sessionID); err != nil {
			s.logger.Warn("archived exports not removed", logging.SessionID(sessionID), logging.Err(err))
		}
	}
	s.logger.Info("session deleted", logging.SessionID(sessionID))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Dataset
// ─────────────────────────────────────────────────────────────────────────────

// Upload validates data and makes it the session dataset.  On any error the
// prior dataset, filters and report are kept.
func (s *serviceImpl) Upload(ctx context.Context, sessionID string, data []byte) (*UploadResult, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, s.uploadFailed(errors.New(errors.ErrCodeEmptyInput, "uploaded file is empty"))
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return nil, s.uploadFailed(errors.New(errors.ErrCodeBadRequest, "upload too large"))
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	opts := personnel.ValidateOptions{MaxRecords: s.opts.MaxRecords, Seed: s.opts.SampleSeed}
	ds, cached, err := s.cache.LoadOrValidate(ctx, datasetKey(digest, opts), func(context.Context) (*personnel.CleanDataset, error) {
		table, err := personnel.ReadCSV(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return personnel.Validate(table, opts)
	})
	if err != nil {
		return nil, s.uploadFailed(err)
	}
	if s.metrics != nil {
		prometheus.RecordDatasetCache(s.metrics, cached)
		drops := make(map[string]int, len(ds.Drops))
		if !cached {
			for reason, n := range ds.Drops {
				drops[string(reason)] = n
			}
		}
		prometheus.RecordUpload(s.metrics, drops, nil)
	}

	sess.mu.Lock()
	sess.digest = digest
	sess.dataset = ds
	sess.domain = personnel.Domain(ds.Records)
	sess.criteria = personnel.Criteria{}
	sess.updatedAt = s.opts.Now()
	rebuilt := s.reevaluate(ctx, sess)
	sess.mu.Unlock()
	s.publish(ctx, sessionID, rebuilt)

	s.logger.Info("dataset uploaded",
		logging.SessionID(sessionID),
		logging.Int("input_rows", ds.InputRows),
		logging.Int("kept", len(ds.Records)),
		logging.Int("dropped", ds.Dropped()),
		logging.Bool("sampled", ds.Sampled),
		logging.Bool("cached", cached))

	return &UploadResult{
		Digest:       digest,
		InputRows:    ds.InputRows,
		Kept:         len(ds.Records),
		TotalClean:   ds.TotalClean,
		Dropped:      ds.Dropped(),
		Drops:        ds.Drops,
		Sampled:      ds.Sampled,
		SampleNotice: ds.SampleNotice(),
		Cached:       cached,
	}, nil
}

// datasetKey identifies a validated dataset.  The same bytes sampled under a
// different cap or seed are a different dataset.
func datasetKey(digest string, opts personnel.ValidateOptions) string {
	seed := "rand"
	if opts.Seed != nil {
		seed = strconv.FormatInt(*opts.Seed, 10)
	}
	return digest + ":" + strconv.Itoa(opts.MaxRecords) + ":" + seed
}

func (s *serviceImpl) uploadFailed(err error) error {
	if s.metrics != nil {
		prometheus.RecordUpload(s.metrics, nil, err)
	}
	s.logger.Warn("upload rejected", logging.Err(err))
	return err
}

func (s *serviceImpl) Overview(ctx context.Context, sessionID string) (*reporting.Overview, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		return nil, errNoDataset()
	}
	ov := reporting.DatasetOverview(sess.dataset)
	return &ov, nil
}

func (s *serviceImpl) FilterDomain(ctx context.Context, sessionID string) (*FilterState, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		return nil, errNoDataset()
	}
	return sess.filterState(), nil
}

// ApplyFilter replaces the session criteria.  Values outside the dataset
// domain are rejected and the prior criteria kept.  When a zone is drawn the
// report is rebuilt over the newly filtered records.
func (s *serviceImpl) ApplyFilter(ctx context.Context, sessionID string, c personnel.Criteria) (*FilterState, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state, rebuilt, err := s.applyFilter(ctx, sess, c)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sessionID, rebuilt)
	return state, nil
}

func (s *serviceImpl) applyFilter(ctx context.Context, sess *Session, c personnel.Criteria) (*FilterState, *reporting.Report, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		return nil, nil, errNoDataset()
	}
	c = c.Normalize()
	if err := c.Validate(sess.domain); err != nil {
		return nil, nil, err
	}
	sess.criteria = c
	sess.updatedAt = s.opts.Now()
	rebuilt := s.reevaluate(ctx, sess)
	return sess.filterState(), rebuilt, nil
}

func errNoDataset() error {
	return errors.New(errors.ErrCodeEmptyInput, "no dataset uploaded")
}

// ─────────────────────────────────────────────────────────────────────────────
// Zone and report
// ─────────────────────────────────────────────────────────────────────────────

// DrawZone evaluates a drawn geometry.  An absent geometry clears the zone
// and returns no report and no error.  A malformed geometry keeps the prior
// report.
func (s *serviceImpl) DrawZone(ctx context.Context, sessionID string, geometry []byte) (*reporting.Report, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	r, err := s.drawZone(ctx, sess, geometry)
	if err != nil || r == nil {
		return nil, err
	}
	s.publish(ctx, sessionID, r)
	return r, nil
}

func (s *serviceImpl) drawZone(ctx context.Context, sess *Session, geometry []byte) (*reporting.Report, error) {
	z, err := zone.Parse(geometry)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNoZone) {
			sess.zone = nil
			sess.report = nil
			sess.updatedAt = s.opts.Now()
			return nil, nil
		}
		s.logger.Warn("zone rejected", logging.SessionID(sess.id), logging.Err(err))
		return nil, err
	}

	r, err := s.evaluate(ctx, sess, z)
	if err != nil {
		return nil, err
	}
	sess.zone = z
	sess.report = r
	sess.updatedAt = s.opts.Now()
	return r, nil
}

// reevaluate rebuilds the report after a dataset or filter change and
// returns it, or nil when there is no zone.  It must be called with sess.mu
// held.
func (s *serviceImpl) reevaluate(ctx context.Context, sess *Session) *reporting.Report {
	if sess.zone == nil {
		sess.report = nil
		return nil
	}
	r, err := s.evaluate(ctx, sess, sess.zone)
	if err != nil {
		s.logger.Error("report not rebuilt", logging.SessionID(sess.id), logging.Err(err))
		sess.report = nil
		return nil
	}
	sess.report = r
	return r
}

// evaluate must be called with sess.mu held.
func (s *serviceImpl) evaluate(ctx context.Context, sess *Session, z *zone.Zone) (*reporting.Report, error) {
	var records []personnel.PointRecord
	if sess.dataset != nil {
		records = personnel.Filter(sess.dataset.Records, sess.criteria)
	}

	start := time.Now()
	sets, err := zone.ComputeAffected(z, records, s.registry.All())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	r, err := reporting.BuildReport(sets, z, reporting.WithClock(s.opts.Now))
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		prometheus.RecordReport(s.metrics, string(z.Kind()), r.TotalEmployees(), elapsed)
	}
	s.logger.Info("zone report generated",
		logging.SessionID(sess.id),
		logging.ReportID(r.ID()),
		logging.String("zone_kind", string(z.Kind())),
		logging.Int("employees", r.TotalEmployees()),
		logging.Int("facilities", r.TotalFacilities()),
		logging.Duration("elapsed", elapsed))
	return r, nil
}

// publish announces r on a best-effort basis.  It must be called without
// the session lock held; delivery is bounded by Options.PublishTimeout.
func (s *serviceImpl) publish(ctx context.Context, sessionID string, r *reporting.Report) {
	if s.publisher == nil || r == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.PublishTimeout)
	defer cancel()
	err := s.publisher.PublishZoneReport(ctx, kafka.ZoneReportGenerated{
		SessionID:          sessionID,
		ReportID:           r.ID(),
		ZoneKind:           string(r.Zone().Kind()),
		AffectedEmployees:  r.TotalEmployees(),
		AffectedFacilities: r.TotalFacilities(),
		FacilityNames:      r.FacilityNames(),
		GeneratedAt:        r.GeneratedAt(),
	})
	if s.metrics != nil {
		prometheus.RecordEventPublished(s.metrics, kafka.EventZoneReportGenerated, err)
	}
	if err != nil {
		s.logger.Warn("report event dropped", logging.SessionID(sessionID), logging.ReportID(r.ID()), logging.Err(err))
	}
}

func (s *serviceImpl) Report(ctx context.Context, sessionID string) (*reporting.Report, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.report == nil {
		return nil, errors.New(errors.ErrCodeReportMissing, "no zone drawn")
	}
	return sess.report, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Exports
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ExportCSV(ctx context.Context, sessionID string) (*Export, error) {
	r, err := s.Report(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := reporting.ExportCSV(r)
	if err != nil {
		return nil, err
	}
	out := &Export{FileName: reporting.CSVFileName, ContentType: ContentTypeCSV, Data: data}
	out.Archived = s.archiveExport(ctx, sessionID, r.ID(), "csv", out)
	return out, nil
}

// ExportDocument renders the emergency PDF.  A render failure leaves the
// report untouched.
func (s *serviceImpl) ExportDocument(ctx context.Context, sessionID string, in *DocumentInput) (*Export, error) {
	if in == nil {
		in = &DocumentInput{}
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	r := sess.report
	var loc *reporting.EmergencyLocation
	if sess.location != nil {
		l := *sess.location
		loc = &l
	}
	sess.mu.Unlock()
	if r == nil {
		return nil, errors.New(errors.ErrCodeReportMissing, "no zone drawn")
	}

	start := time.Now()
	doc, err := s.documents.Render(ctx, r, reporting.DocumentRequest{
		EventType:   in.EventType,
		Description: in.Description,
		Location:    loc,
	})
	if s.metrics != nil {
		prometheus.RecordDocument(s.metrics, time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("document not rendered", logging.SessionID(sessionID), logging.ReportID(r.ID()), logging.Err(err))
		return nil, err
	}
	out := &Export{FileName: doc.FileName, ContentType: ContentTypePDF, Data: doc.PDF}
	out.Archived = s.archiveExport(ctx, sessionID, r.ID(), "pdf", out)
	return out, nil
}

func (s *serviceImpl) archiveExport(ctx context.Context, sessionID, reportID, ext string, e *Export) *minio.ArchivedObject {
	if s.archive == nil {
		return nil
	}
	obj, err := s.archive.Archive(ctx, &minio.ArchiveRequest{
		SessionID:   sessionID,
		ReportID:    reportID,
		Extension:   ext,
		ContentType: e.ContentType,
		FileName:    e.FileName,
		Data:        e.Data,
	})
	if s.metrics != nil {
		prometheus.RecordArchive(s.metrics, ext, err)
	}
	if err != nil {
		s.logger.Warn("export not archived", logging.SessionID(sessionID), logging.ReportID(reportID), logging.Err(err))
		return nil
	}
	return obj
}

// ─────────────────────────────────────────────────────────────────────────────
// Geocoding and reference data
// ─────────────────────────────────────────────────────────────────────────────

// Geocode resolves address and stores it as the session emergency location.
// On failure the prior location is kept.
func (s *serviceImpl) Geocode(ctx context.Context, sessionID, address string) (*nominatim.Location, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.geocoder == nil {
		return nil, errors.New(errors.ErrCodeGeocodeNotFound, "geocoding disabled")
	}
	start := time.Now()
	loc, err := s.geocoder.Search(ctx, address)
	if s.metrics != nil {
		prometheus.RecordGeocode(s.metrics, "search", time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.location = &reporting.EmergencyLocation{
		Address:   loc.Address,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}
	sess.updatedAt = s.opts.Now()
	sess.mu.Unlock()
	return loc, nil
}

// Suggest never fails the caller; lookups that fail yield no suggestions.
func (s *serviceImpl) Suggest(ctx context.Context, query string) ([]nominatim.Location, error) {
	if s.geocoder == nil {
		return []nominatim.Location{}, nil
	}
	start := time.Now()
	out, err := s.geocoder.Suggest(ctx, query)
	if s.metrics != nil {
		prometheus.RecordGeocode(s.metrics, "suggest", time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("address suggestions unavailable", logging.Err(err))
		return []nominatim.Location{}, nil
	}
	return out, nil
}

func (s *serviceImpl) Facilities(_ context.Context) []facility.FixedLocation {
	return s.registry.All()
}

func (s *serviceImpl) EventTypes() []string {
	return s.documents.EventTypes()
}

//Personal.AI order the ending
