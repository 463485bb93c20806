package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/Continuity-Map/internal/domain/facility"
)

// FacilityList is the outcome of cmap facilities.
type FacilityList struct {
	Facilities []facility.FixedLocation `json:"facilities"`
}

// EventTypeList is the outcome of cmap event-types.
type EventTypeList struct {
	EventTypes []string `json:"event_types"`
}

// NewFacilitiesCmd lists the configured fixed facilities.
func NewFacilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "facilities",
		Aliases: []string{"sedes"},
		Short:   "List the configured facilities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			registry, err := facility.NewRegistry(cliCtx.Config.Facilities)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &FacilityList{Facilities: registry.All()})
		},
	}
}

// NewEventTypesCmd lists the event types accepted by report --pdf.
func NewEventTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event-types",
		Short: "List the event types accepted on the emergency document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, &EventTypeList{EventTypes: cliCtx.Config.Report.EventTypes})
		},
	}
}

// TableHeaders implements tableProvider.
func (l *FacilityList) TableHeaders() []string {
	return []string{"Name", "Address", "Latitude", "Longitude"}
}

// TableRows implements tableProvider.
func (l *FacilityList) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Facilities))
	for _, f := range l.Facilities {
		rows = append(rows, []string{
			f.Name,
			truncateString(f.Address, 40),
			fmt.Sprintf("%.5f", f.Latitude),
			fmt.Sprintf("%.5f", f.Longitude),
		})
	}
	return rows
}

func (l *FacilityList) String() string {
	var sb strings.Builder
	for _, f := range l.Facilities {
		fmt.Fprintf(&sb, "%s\n  %s (%.5f, %.5f)\n", f.Name, f.Address, f.Latitude, f.Longitude)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// TableHeaders implements tableProvider.
func (l *EventTypeList) TableHeaders() []string { return []string{"Event type"} }

// TableRows implements tableProvider.
func (l *EventTypeList) TableRows() [][]string {
	rows := make([][]string, len(l.EventTypes))
	for i, et := range l.EventTypes {
		rows[i] = []string{et}
	}
	return rows
}

func (l *EventTypeList) String() string { return strings.Join(l.EventTypes, "\n") }

//Personal.AI order the ending
