package structured

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// StreamJSON walks a JSON document token by token, maintaining an explicit
// path stack, and emits one field per scalar value. It never materializes the
// whole document, so it is safe for inputs larger than a memory-resident
// tree.
//
// Array handling: entering an array pushes a "[0]" segment, and the segment
// is incremented exactly once per scalar emitted directly inside that array.
// Scalars nested inside an object or array element do not increment the
// enclosing array's counter again. This mirrors the long-standing extraction
// behavior that downstream field paths depend on; see TestStreamJSONArrayOfObjects
// before changing it.
func StreamJSON(r io.Reader) ([]Field, error) {
	tracker := newLineTracker(r)
	dec := json.NewDecoder(tracker)
	dec.UseNumber()

	var (
		fields   []Field
		stack    []string
		frames   []frame
		current  string
		hasField bool
		index    = 1
	)

	pushName := func() {
		if hasField {
			stack = append(stack, current)
			hasField = false
		}
	}
	valueDone := func() {
		if len(frames) > 0 && frames[len(frames)-1].object {
			frames[len(frames)-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fields, nil
		}
		if err != nil {
			return fields, err
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				pushName()
				frames = append(frames, frame{object: true, expectKey: true})
			case '[':
				pushName()
				stack = append(stack, "[0]")
				frames = append(frames, frame{})
			case '}':
				frames = frames[:len(frames)-1]
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			case ']':
				frames = frames[:len(frames)-1]
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				if len(stack) > 0 && strings.HasPrefix(stack[len(stack)-1], "[") {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(frames) > 0 && frames[len(frames)-1].object && frames[len(frames)-1].expectKey {
				current = t
				hasField = true
				frames[len(frames)-1].expectKey = false
				continue
			}
			line, col := tracker.position(dec.InputOffset())
			fields = append(fields, Field{
				Path:   buildJSONPath(stack, current, hasField),
				Value:  t,
				Index:  index,
				Line:   line,
				Column: col,
			})
			index++
			hasField = false
			bumpArrayIndex(stack)
			valueDone()
		default:
			line, col := tracker.position(dec.InputOffset())
			fields = append(fields, Field{
				Path:   buildJSONPath(stack, current, hasField),
				Value:  jsonScalarString(tok),
				Index:  index,
				Line:   line,
				Column: col,
			})
			index++
			hasField = false
			bumpArrayIndex(stack)
			valueDone()
		}
	}
}

type frame struct {
	object    bool
	expectKey bool
}

func buildJSONPath(stack []string, current string, hasField bool) string {
	var b strings.Builder
	b.WriteString("$")
	for _, segment := range stack {
		if strings.HasPrefix(segment, "[") {
			b.WriteString(segment)
		} else {
			b.WriteString(".")
			b.WriteString(segment)
		}
	}
	if hasField {
		b.WriteString(".")
		b.WriteString(current)
	}
	return b.String()
}

// bumpArrayIndex increments the top-of-stack array segment after a scalar is
// emitted directly inside an array.
func bumpArrayIndex(stack []string) {
	if len(stack) == 0 {
		return
	}
	last := stack[len(stack)-1]
	if !strings.HasPrefix(last, "[") {
		return
	}
	n, err := strconv.Atoi(last[1 : len(last)-1])
	if err != nil {
		return
	}
	stack[len(stack)-1] = "[" + strconv.Itoa(n+1) + "]"
}

func jsonScalarString(tok json.Token) string {
	switch v := tok.(type) {
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return "null"
	default:
		return ""
	}
}

// lineTracker wraps a reader and records newline offsets as bytes stream
// through, so token byte offsets can be mapped to 1-based line/column
// positions without a second pass.
type lineTracker struct {
	r        io.Reader
	offset   int64
	newlines []int64
}

func newLineTracker(r io.Reader) *lineTracker {
	return &lineTracker{r: r}
}

func (t *lineTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == '\n' {
			t.newlines = append(t.newlines, t.offset+int64(i))
		}
	}
	t.offset += int64(n)
	return n, err
}

func (t *lineTracker) position(off int64) (line, col int) {
	line = 1
	var lineStart int64
	for _, nl := range t.newlines {
		if nl >= off {
			break
		}
		line++
		lineStart = nl + 1
	}
	col = int(off-lineStart) + 1
	return line, col
}
