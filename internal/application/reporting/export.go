package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/turtacn/Continuity-Map/internal/domain/personnel"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// CSVFileName is the download name of the affected-employees export.
const CSVFileName = "colaboradores_afectados.csv"

// DocumentFileName returns the download name of a document generated at t.
func DocumentFileName(t time.Time) string {
	return fmt.Sprintf("reporte_emergencia_%s.pdf", t.Format("20060102_1504"))
}

// ExportCSV writes the affected employees with the upload's column set.
func ExportCSV(r *Report) ([]byte, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeReportMissing, "no report to export")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(personnel.RequiredColumns); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "write CSV header")
	}
	for _, rec := range r.employees {
		if err := w.Write(rec.Columns(formatCoordinate)); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "write CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "flush CSV")
	}
	return buf.Bytes(), nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//Personal.AI order the ending
