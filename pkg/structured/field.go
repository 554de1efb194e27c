// Package structured normalizes decoded documents into ordered sequences of
// addressable fields for detection.
package structured

// Field is a normalized (path, value, position) unit extracted from a
// structured document. Line and Column are -1 when the source format carries
// no position information. Index is a 1-based emission order, unique per
// extraction, used as a fallback locator when no line is available.
type Field struct {
	Path   string `json:"path"`
	Value  string `json:"value"`
	Index  int    `json:"index"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Hard bounds on tabular extraction. Truncation at these caps is silent:
// callers get a partial field sequence, not an error.
const (
	MaxRows  = 5_000
	MaxCells = 20_000
)
