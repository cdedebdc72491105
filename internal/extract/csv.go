package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders a delimited file as readable text: the header row as-is,
// then one "col: val, col: val" line per record so each row stays
// self-describing after chunking.
func extractCSV(content []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}
	header := records[0]
	var buf strings.Builder
	buf.WriteString(strings.Join(header, ", "))
	buf.WriteByte('\n')
	for _, row := range records[1:] {
		pairs := make([]string, 0, len(row))
		for i, val := range row {
			col := fmt.Sprintf("column_%d", i)
			if i < len(header) {
				col = header[i]
			}
			pairs = append(pairs, col+": "+val)
		}
		buf.WriteString(strings.Join(pairs, ", "))
		buf.WriteByte('\n')
	}
	return strings.TrimSpace(buf.String()), nil
}
