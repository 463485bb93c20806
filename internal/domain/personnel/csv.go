package personnel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/Continuity-Map/pkg/errors"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// RawTable is an uploaded table before validation.  Rows may be ragged.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ReadCSV parses an upload.  The delimiter is sniffed from the header line
// (comma unless the header only contains semicolons), a UTF-8 BOM is
// discarded, and rows are allowed to have any number of fields.
func ReadCSV(r io.Reader) (*RawTable, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.Wrap(err, errors.ErrCodeReadFailed, "read upload")
	}
	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		head = head[len(utf8BOM):]
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "upload contains no data")
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(head)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReadFailed, "parse csv upload")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "upload contains no data")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = normalizeHeader(h)
	}
	return &RawTable{Header: header, Rows: records[1:]}, nil
}

func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.IndexByte(line, ',') < 0 && bytes.IndexByte(line, ';') >= 0 {
		return ';'
	}
	return ','
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(h))
}

// columnIndex maps header names to their position; the first occurrence wins.
func (t *RawTable) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// MissingColumns returns the required columns absent from the header.
func (t *RawTable) MissingColumns() []string {
	idx := t.columnIndex()
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[norm.NFC.String(c)]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

//Personal.AI order the ending
