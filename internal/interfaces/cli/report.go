package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// Column limits of the affected-employee table.
const (
	tableNameWidth = 25
	tableSiteWidth = 20
)

type reportOptions struct {
	employees   string
	zone        string
	criteria    personnel.Criteria
	csvOut      string
	pdfOut      string
	eventType   string
	description string
	address     string
	seed        int64
	limit       int
}

// ReportResult is the outcome of cmap report.
type ReportResult struct {
	Report   *reporting.Report   `json:"report"`
	Criteria personnel.Criteria  `json:"criteria"`
	Files    []string            `json:"files,omitempty"`
	Location *reportLocationJSON `json:"location,omitempty"`

	limit int
}

type reportLocationJSON struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewReportCmd intersects an employee file with a zone and writes the
// requested exports.
func NewReportCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report employees and facilities inside an emergency zone",
		Long: "Loads the employee file, applies the optional filters, intersects the\n" +
			"result with the GeoJSON zone and prints the affected population.  The\n" +
			"CSV and PDF exports are written when their output paths are given.",
		Example: "  cmap report -e colaboradores.csv -z zona.geojson\n" +
			"  cmap report -e colaboradores.csv -z zona.geojson --criticality Alta --csv afectados.csv\n" +
			"  cmap report -e colaboradores.csv -z zona.geojson --pdf reporte.pdf --event-type Otro --address \"Calle 100, Bogotá\"",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.employees, "employees", "e", "", "employee CSV file (required)")
	f.StringVarP(&opts.zone, "zone", "z", "", "GeoJSON zone file (required)")
	f.StringVar(&opts.criteria.City, "city", "", "only employees in this city")
	f.StringVar(&opts.criteria.Criticality, "criticality", "", "only employees with this criticality")
	f.StringVar(&opts.criteria.Subprocess, "subprocess", "", "only employees in this subprocess")
	f.StringVar(&opts.csvOut, "csv", "", "write the affected employees CSV to this path")
	f.StringVar(&opts.pdfOut, "pdf", "", "write the emergency PDF to this path")
	f.StringVar(&opts.eventType, "event-type", "", "event type printed on the PDF (see cmap event-types)")
	f.StringVar(&opts.description, "description", "", "event description printed on the PDF")
	f.StringVar(&opts.address, "address", "", "geocode this address as the emergency location")
	f.Int64Var(&opts.seed, "seed", 0, "sampling seed for reproducible output on oversized files")
	f.IntVar(&opts.limit, "limit", 20, "affected employees listed in text and table output")
	_ = cmd.MarkFlagRequired("employees")
	_ = cmd.MarkFlagRequired("zone")
	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if opts.pdfOut != "" && strings.TrimSpace(opts.eventType) == "" {
		return errors.New(errors.ErrCodeEventTypeInvalid, "--event-type is required with --pdf")
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	employees, err := readInputFile("employees", opts.employees)
	if err != nil {
		return err
	}
	geometry, err := readInputFile("zone", opts.zone)
	if err != nil {
		return err
	}

	svc, err := newLocalService(cliCtx, opts.seed)
	if err != nil {
		return err
	}
	sess, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = svc.DeleteSession(ctx, sess.ID) }()

	upload, err := svc.Upload(ctx, sess.ID, employees)
	if err != nil {
		return err
	}
	if upload.Sampled && cliCtx.OutputFormat != FormatJSON {
		PrintWarning(cmd, upload.SampleNotice)
	}
	if opts.criteria != (personnel.Criteria{}) {
		if _, err := svc.ApplyFilter(ctx, sess.ID, opts.criteria); err != nil {
			return err
		}
	}

	report, err := svc.DrawZone(ctx, sess.ID, geometry)
	if err != nil {
		return err
	}
	if report == nil {
		return errors.New(errors.ErrCodeNoZone, "zone file contains no shape").WithDetail(opts.zone)
	}

	result := &ReportResult{Report: report, Criteria: opts.criteria, limit: opts.limit}

	if opts.address != "" {
		loc, err := svc.Geocode(ctx, sess.ID, opts.address)
		if err != nil {
			cliCtx.Logger.Warn("emergency location not resolved", logging.String("address", opts.address), logging.Err(err))
			PrintWarning(cmd, fmt.Sprintf("address not found, the document will not show a location: %s", opts.address))
		} else {
			result.Location = &reportLocationJSON{Address: loc.Address, Latitude: loc.Latitude, Longitude: loc.Longitude}
		}
	}

	if opts.csvOut != "" {
		export, err := svc.ExportCSV(ctx, sess.ID)
		if err != nil {
			return err
		}
		path, err := writeExport(opts.csvOut, export)
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)
	}
	if opts.pdfOut != "" {
		export, err := svc.ExportDocument(ctx, sess.ID, &continuity.DocumentInput{
			EventType:   opts.eventType,
			Description: opts.description,
		})
		if err != nil {
			return err
		}
		path, err := writeExport(opts.pdfOut, export)
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)
	}

	cliCtx.Logger.Info("zone report generated",
		logging.ReportID(report.ID()),
		logging.Int("affected_employees", report.TotalEmployees()),
		logging.Int("affected_facilities", report.TotalFacilities()),
		logging.Strings("files", result.Files))
	return PrintResult(cmd, result)
}

// writeExport saves an export.  A directory target receives the export's
// own file name.
func writeExport(target string, export *continuity.Export) (string, error) {
	path := target
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		path = filepath.Join(target, export.FileName)
	}
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "cannot write export").WithDetail(path)
	}
	return path, nil
}

// TableHeaders implements tableProvider.
func (r *ReportResult) TableHeaders() []string {
	return []string{"Name", "Site", "City", "Subprocess", "Criticality"}
}

// TableRows implements tableProvider.
func (r *ReportResult) TableRows() [][]string {
	affected := r.Report.AffectedEmployees()
	if r.limit > 0 && len(affected) > r.limit {
		affected = affected[:r.limit]
	}
	rows := make([][]string, 0, len(affected))
	for _, p := range affected {
		rows = append(rows, []string{
			truncateString(p.Name, tableNameWidth),
			truncateString(p.AssignedSite, tableSiteWidth),
			p.City,
			truncateString(p.Subprocess, tableSiteWidth),
			criticalityLabel(p.Criticality),
		})
	}
	return rows
}

// String renders the text format.
func (r *ReportResult) String() string {
	var sb strings.Builder
	rep := r.Report

	fmt.Fprintf(&sb, "Report %s (%s zone)\n", rep.ID(), rep.Zone().Kind())
	if r.Criteria != (personnel.Criteria{}) {
		fmt.Fprintf(&sb, "  filters: %s\n", describeCriteria(r.Criteria))
	}
	fmt.Fprintf(&sb, "  affected employees:  %s\n", countLabel(rep.TotalEmployees()))
	fmt.Fprintf(&sb, "  affected facilities: %s\n", countLabel(rep.TotalFacilities()))
	for _, name := range rep.FacilityNames() {
		fmt.Fprintf(&sb, "    - %s\n", name)
	}
	if r.Location != nil {
		fmt.Fprintf(&sb, "  location: %s (%.5f, %.5f)\n", r.Location.Address, r.Location.Latitude, r.Location.Longitude)
	}

	if rep.TotalEmployees() > 0 {
		writeCounts(&sb, "by criticality", rep.ByCriticality())
		writeCounts(&sb, "by subprocess", rep.BySubprocess(reporting.DefaultTopN))
		writeCounts(&sb, "by site", rep.ByAssignedSite(reporting.DefaultTopN))
		writeCounts(&sb, "by city", rep.ByCity(reporting.DefaultTopN))
		sb.WriteString("\n")
		sb.WriteString(FormatTable(r.TableHeaders(), r.TableRows()))
		if shown := len(r.TableRows()); shown < rep.TotalEmployees() {
			fmt.Fprintf(&sb, "  ... %d more, use --csv for the full list\n", rep.TotalEmployees()-shown)
		}
	}
	for _, f := range r.Files {
		fmt.Fprintf(&sb, "%s %s\n", color.GreenString("Wrote"), f)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func describeCriteria(c personnel.Criteria) string {
	var parts []string
	if c.City != "" {
		parts = append(parts, "city="+c.City)
	}
	if c.Criticality != "" {
		parts = append(parts, "criticality="+c.Criticality)
	}
	if c.Subprocess != "" {
		parts = append(parts, "subprocess="+c.Subprocess)
	}
	return strings.Join(parts, " ")
}

func countLabel(n int) string {
	if n == 0 {
		return color.GreenString("0")
	}
	return color.RedString("%d", n)
}

func criticalityLabel(c personnel.Criticality) string {
	switch c.Rank() {
	case 0, 1:
		return color.RedString(string(c))
	case 2:
		return color.YellowString(string(c))
	case 3:
		return color.GreenString(string(c))
	default:
		return string(c)
	}
}

//Personal.AI order the ending
