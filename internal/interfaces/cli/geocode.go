package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/geocoding/nominatim"
)

// GeocodeResult is the outcome of cmap geocode.
type GeocodeResult struct {
	Query     string               `json:"query"`
	Locations []nominatim.Location `json:"locations"`
}

// NewGeocodeCmd resolves an address against the configured geocoder.
func NewGeocodeCmd() *cobra.Command {
	var suggest bool
	cmd := &cobra.Command{
		Use:   "geocode ADDRESS...",
		Short: "Resolve an address to coordinates",
		Example: "  cmap geocode Calle 100 # 15-20, Bogotá\n" +
			"  cmap geocode --suggest Avenida Boyacá",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			query := strings.Join(args, " ")
			client := nominatim.NewClient(cliCtx.Config.Geocoding, cliCtx.Logger)
			result := &GeocodeResult{Query: query}
			if suggest {
				result.Locations, err = client.Suggest(ctx, query)
				if err != nil {
					return err
				}
			} else {
				loc, err := client.Search(ctx, query)
				if err != nil {
					return err
				}
				result.Locations = []nominatim.Location{*loc}
			}
			return PrintResult(cmd, result)
		},
	}
	cmd.Flags().BoolVar(&suggest, "suggest", false, "list candidate matches instead of the best one")
	return cmd
}

// TableHeaders implements tableProvider.
func (r *GeocodeResult) TableHeaders() []string {
	return []string{"Address", "Latitude", "Longitude"}
}

// TableRows implements tableProvider.
func (r *GeocodeResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Locations))
	for _, l := range r.Locations {
		rows = append(rows, []string{
			truncateString(l.Address, 60),
			fmt.Sprintf("%.5f", l.Latitude),
			fmt.Sprintf("%.5f", l.Longitude),
		})
	}
	return rows
}

func (r *GeocodeResult) String() string {
	if len(r.Locations) == 0 {
		return fmt.Sprintf("no matches for %q", r.Query)
	}
	var sb strings.Builder
	for _, l := range r.Locations {
		fmt.Fprintf(&sb, "%.5f, %.5f  %s\n", l.Latitude, l.Longitude, l.Address)
	}
	return strings.TrimRight(sb.String(), "\n")
}

//Personal.AI order the ending
