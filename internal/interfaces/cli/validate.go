package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
)

type validateOptions struct {
	employees string
	seed      int64
}

// ValidationResult is the outcome of cmap validate.
type ValidationResult struct {
	File     string                   `json:"file"`
	Upload   *continuity.UploadResult `json:"upload"`
	Overview *reporting.Overview      `json:"overview"`
}

// NewValidateCmd checks an employee file and prints the dataset overview.
func NewValidateCmd() *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an employee CSV file and summarize it",
		Long: "Reads the employee file, drops rows without usable coordinates and prints\n" +
			"how many records are kept, why the rest were dropped and where people are.",
		Example: "  cmap validate --employees colaboradores.csv\n  cmap validate --employees colaboradores.csv -o json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.employees, "employees", "e", "", "employee CSV file (required)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "sampling seed for reproducible output on oversized files")
	_ = cmd.MarkFlagRequired("employees")
	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	data, err := readInputFile("employees", opts.employees)
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
	upload, err := svc.Upload(ctx, sess.ID, data)
	if err != nil {
		return err
	}
	overview, err := svc.Overview(ctx, sess.ID)
	if err != nil {
		return err
	}
	cliCtx.Logger.Debug("employee file validated",
		logging.String("file", opts.employees),
		logging.Int("kept", upload.Kept),
		logging.Int("dropped", upload.Dropped))

	if upload.Sampled && cliCtx.OutputFormat != FormatJSON {
		PrintWarning(cmd, upload.SampleNotice)
	}
	return PrintResult(cmd, &ValidationResult{File: opts.employees, Upload: upload, Overview: overview})
}

// TableHeaders implements tableProvider.
func (r *ValidationResult) TableHeaders() []string {
	return []string{"Metric", "Value"}
}

// TableRows implements tableProvider.
func (r *ValidationResult) TableRows() [][]string {
	rows := [][]string{
		{"Input rows", fmt.Sprint(r.Upload.InputRows)},
		{"Valid records", fmt.Sprint(r.Upload.TotalClean)},
		{"Kept", fmt.Sprint(r.Upload.Kept)},
		{"Dropped", fmt.Sprint(r.Upload.Dropped)},
	}
	for _, reason := range sortedDropReasons(r.Upload) {
		rows = append(rows, []string{"  " + reason, fmt.Sprint(r.Upload.Drops[personnel.DropReason(reason)])})
	}
	if r.Overview != nil {
		rows = append(rows,
			[]string{"Assigned sites", fmt.Sprint(r.Overview.AssignedSites)},
			[]string{"Cities", fmt.Sprint(r.Overview.Cities)},
		)
	}
	return rows
}

// String renders the text format.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", color.GreenString("Valid:"), r.File)
	fmt.Fprintf(&sb, "  input rows:    %d\n", r.Upload.InputRows)
	fmt.Fprintf(&sb, "  kept:          %d of %d valid\n", r.Upload.Kept, r.Upload.TotalClean)
	if r.Upload.Dropped > 0 {
		fmt.Fprintf(&sb, "  %s %d\n", color.YellowString("dropped:      "), r.Upload.Dropped)
		for _, reason := range sortedDropReasons(r.Upload) {
			fmt.Fprintf(&sb, "    %-26s %d\n", reason, r.Upload.Drops[personnel.DropReason(reason)])
		}
	}
	if r.Overview == nil {
		return strings.TrimRight(sb.String(), "\n")
	}
	fmt.Fprintf(&sb, "  sites:         %d\n", r.Overview.AssignedSites)
	fmt.Fprintf(&sb, "  cities:        %d\n", r.Overview.Cities)
	writeCounts(&sb, "top cities", r.Overview.TopCities)
	writeCounts(&sb, "top sites", r.Overview.TopSites)
	return strings.TrimRight(sb.String(), "\n")
}

func writeCounts(sb *strings.Builder, title string, counts []reporting.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(sb, "    %-26s %d\n", truncateString(c.Value, 26), c.Count)
	}
}

func sortedDropReasons(u *continuity.UploadResult) []string {
	out := make([]string, 0, len(u.Drops))
	for reason, n := range u.Drops {
		if n > 0 {
			out = append(out, string(reason))
		}
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending
