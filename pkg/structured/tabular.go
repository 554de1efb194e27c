package structured

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// FlattenCSV reads comma-separated content and emits one field per cell at
// "row:<n>.col:<header>". The first record is treated as the header row and
// data rows are numbered from 1. When the header row is unusable (blank or
// duplicate column names) every record is emitted positionally instead, at
// "row:<n>.col:<index>" with physical row numbering. Reading stops silently
// at MaxRows records or MaxCells emitted cells.
func FlattenCSV(r io.Reader) []Field {
	records := readRecords(r)
	if len(records) == 0 {
		return nil
	}

	header := records[0]
	if headerUsable(header) {
		return flattenWithHeader(header, records[1:])
	}
	return flattenPositional(records)
}

func readRecords(r io.Reader) [][]string {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records [][]string
	for len(records) <= MaxRows {
		record, err := reader.Read()
		if err != nil {
			// Malformed rows end the read; rows already collected are kept.
			break
		}
		records = append(records, record)
	}
	return records
}

func headerUsable(header []string) bool {
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return false
		}
		seen[name] = true
	}
	return len(header) > 0
}

func flattenWithHeader(header []string, records [][]string) []Field {
	var fields []Field
	index := 1
	for n, record := range records {
		rowNum := n + 1
		if rowNum > MaxRows {
			break
		}
		for i, value := range record {
			if len(fields) >= MaxCells {
				return fields
			}
			col := strconv.Itoa(i)
			if i < len(header) {
				col = strings.TrimSpace(header[i])
			}
			fields = append(fields, Field{
				Path:   "row:" + strconv.Itoa(rowNum) + ".col:" + col,
				Value:  value,
				Index:  index,
				Line:   rowNum + 1,
				Column: 1,
			})
			index++
		}
	}
	return fields
}

func flattenPositional(records [][]string) []Field {
	var fields []Field
	index := 1
	for n, record := range records {
		rowNum := n + 1
		if rowNum > MaxRows {
			break
		}
		for i, value := range record {
			if len(fields) >= MaxCells {
				return fields
			}
			fields = append(fields, Field{
				Path:   "row:" + strconv.Itoa(rowNum) + ".col:" + strconv.Itoa(i),
				Value:  value,
				Index:  index,
				Line:   rowNum,
				Column: i + 1,
			})
			index++
		}
	}
	return fields
}

// FlattenRows emits fields for already-decoded sheet rows. Row 0 is the
// header; data rows are addressed at "sheet:<name>.row:<n>.col:<header>"
// using 1-based physical row numbers, falling back to the column index when
// the header row is shorter than the record. The same MaxRows/MaxCells caps
// apply, silently.
func FlattenRows(sheet string, rows [][]string) []Field {
	if len(rows) == 0 {
		return nil
	}

	prefix := ""
	if sheet != "" {
		prefix = "sheet:" + sheet + "."
	}

	header := rows[0]
	var fields []Field
	index := 1
	for rowNum, record := range rows[1:] {
		physical := rowNum + 2 // 1-based, counting the header row
		if rowNum+1 > MaxRows {
			break
		}
		for i, value := range record {
			if len(fields) >= MaxCells {
				return fields
			}
			col := strconv.Itoa(i)
			if i < len(header) && strings.TrimSpace(header[i]) != "" {
				col = strings.TrimSpace(header[i])
			}
			fields = append(fields, Field{
				Path:   prefix + "row:" + strconv.Itoa(physical) + ".col:" + col,
				Value:  value,
				Index:  index,
				Line:   physical,
				Column: i + 1,
			})
			index++
		}
	}
	return fields
}
