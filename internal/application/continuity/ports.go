package continuity

import (
	"context"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/storage/minio"
)

// DatasetCache stores validated datasets by dataset key.  On a miss it runs
// validate and keeps the result; the bool reports a cache hit.
// Implemented by redis.DatasetCache.
type DatasetCache interface {
	LoadOrValidate(ctx context.Context, key string, validate func(ctx context.Context) (*personnel.CleanDataset, error)) (*personnel.CleanDataset, bool, error)
}

// ExportArchive keeps generated exports.  Implemented by minio.ReportArchive.
type ExportArchive interface {
	Archive(ctx context.Context, req *minio.ArchiveRequest) (*minio.ArchivedObject, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// ReportPublisher announces new reports.  Implemented by kafka.ReportPublisher.
type ReportPublisher interface {
	PublishZoneReport(ctx context.Context, ev kafka.ZoneReportGenerated) error
}

// Geocoder resolves addresses.  Implemented by nominatim.Client.
type Geocoder interface {
	Search(ctx context.Context, query string) (*nominatim.Location, error)
	Suggest(ctx context.Context, query string) ([]nominatim.Location, error)
}

// DocumentRenderer produces the emergency PDF.  Implemented by
// reporting.DocumentRenderer.
type DocumentRenderer interface {
	Render(ctx context.Context, r *reporting.Report, req reporting.DocumentRequest) (*reporting.Document, error)
	EventTypes() []string
}

var (
	_ DatasetCache     = (*noopDatasetCache)(nil)
	_ DocumentRenderer = (*reporting.DocumentRenderer)(nil)
	_ Geocoder         = (*nominatim.Client)(nil)
	_ ExportArchive    = (*minio.ReportArchive)(nil)
	_ ReportPublisher  = (*kafka.ReportPublisher)(nil)
)

type noopDatasetCache struct{}

func (noopDatasetCache) LoadOrValidate(ctx context.Context, _ string, validate func(ctx context.Context) (*personnel.CleanDataset, error)) (*personnel.CleanDataset, bool, error) {
	ds, err := validate(ctx)
	return ds, false, err
}

//Personal.AI order the ending
