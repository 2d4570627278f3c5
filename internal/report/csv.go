package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteCSV writes the header and every row of rep. Absent values are empty
// cells. Floats use the shortest representation that round-trips.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header(rep.Columns)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(rep.Columns))
	for i, row := range rep.Rows {
		for j, col := range rep.Columns {
			record[j] = FormatCell(row, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Header returns the column names as strings.
func Header(cols []Column) []string {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	return header
}

// FormatCell renders a single cell as text; absent values render as "".
func FormatCell(row Row, col Column) string {
	v, ok := row.Value(col)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	default:
		return fmt.Sprint(val)
	}
}

// formatFloat prints the shortest round-tripping form, in plain decimal for
// magnitudes in [1e-6, 1e21) and in exponent form outside that range.
func formatFloat(v float64) string {
	if abs := math.Abs(v); v == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
