package cli

import (
	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
)

// newLocalService builds an in-process continuity service from the loaded
// configuration.  The CLI runs one session per invocation, so nothing is
// cached, archived or published.
func newLocalService(cliCtx *CLIContext, seed int64) (continuity.Service, error) {
	cfg := cliCtx.Config

	registry, err := facility.NewRegistry(cfg.Facilities)
	if err != nil {
		return nil, err
	}
	docOpts, err := reporting.DocumentOptionsFromConfig(cfg.Report)
	if err != nil {
		return nil, err
	}
	documents := reporting.NewDocumentRenderer(docOpts, reporting.NewPNGChartRenderer(0, 0), cliCtx.Logger)

	opts := continuity.Options{
		MaxRecords:     cfg.Ingest.MaxRecords,
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
	}
	if seed == 0 {
		seed = cfg.Ingest.SampleSeed
	}
	if seed != 0 {
		opts.SampleSeed = &seed
	}

	return continuity.NewService(continuity.Dependencies{
		Registry:  registry,
		Documents: documents,
		Geocoder:  nominatim.NewClient(cfg.Geocoding, cliCtx.Logger),
		Logger:    cliCtx.Logger,
	}, opts)
}

//Personal.AI order the ending
