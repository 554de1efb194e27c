package structured

import (
	"bufio"
	"io"
	"strings"
)

// FlattenKeyValue parses flat key-value content (properties, env, conf
// files) and emits one field per key in file order. Keys and values split on
// the first '=' or ':'; lines starting with '#' or '!' and blank lines are
// skipped, and a leading "export " is stripped. Key-value files carry no
// position information, so Line and Column are -1.
func FlattenKeyValue(r io.Reader) []Field {
	var fields []Field
	index := 1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		sep := strings.IndexAny(line, "=:")
		if sep <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		if key == "" {
			continue
		}

		fields = append(fields, Field{
			Path:   key,
			Value:  value,
			Index:  index,
			Line:   -1,
			Column: -1,
		})
		index++
	}
	return fields
}
