package detect

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/structured"
)

const (
	// maxBytes bounds how much line-oriented content is read from a single
	// file. Once the accumulated line bytes exceed it, reading stops and the
	// findings collected so far are returned. The truncation is silent.
	maxBytes = 2_000_000

	// binarySniffLen is how many leading bytes are checked for a NUL byte
	// to decide a file is binary.
	binarySniffLen = 1024

	// snippetMargin is how many bytes of context are kept on each side of a
	// match when trimming the snippet.
	snippetMargin = 20
)

// newlinePattern splits content on any newline sequence.
var newlinePattern = regexp.MustCompile(`\r\n|\r|\n`)

type defaultEngine struct{}

func (e *defaultEngine) DetectFile(path string, compiled []rules.CompiledRule) ([]Finding, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sniff := make([]byte, binarySniffLen)
	n, err := io.ReadFull(f, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sniff = sniff[:n]
	if bytes.IndexByte(sniff, 0) >= 0 {
		return nil, nil
	}

	var findings []Finding
	reader := bufio.NewReaderSize(io.MultiReader(bytes.NewReader(sniff), f), 64*1024)

	lineNumber := 0
	totalBytes := 0
	for {
		// ReadString tolerates lines of any length, so a single oversized
		// line trips the byte cap instead of failing the read.
		line, readErr := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if len(line) > 0 || readErr == nil {
			lineNumber++
			totalBytes += len(line)
			if totalBytes > maxBytes {
				break
			}
			findings = append(findings, matchLine(line, compiled, path, lineNumber)...)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return findings, fmt.Errorf("read %s: %w", path, readErr)
		}
	}
	return findings, nil
}

func (e *defaultEngine) DetectText(content string, compiled []rules.CompiledRule, sourceLabel string) []Finding {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var findings []Finding
	lines := newlinePattern.Split(content, -1)
	totalBytes := 0
	for i, line := range lines {
		totalBytes += len(line)
		if totalBytes > maxBytes {
			break
		}
		findings = append(findings, matchLine(line, compiled, sourceLabel, i+1)...)
	}
	return findings
}

func (e *defaultEngine) DetectFields(fields []structured.Field, compiled []rules.CompiledRule, sourceLabel string) []Finding {
	var findings []Finding
	for _, field := range fields {
		haystack := field.Path + "=" + field.Value
		lineNumber := field.Index
		if field.Line > 0 {
			lineNumber = field.Line
		}
		findings = append(findings, matchLine(haystack, compiled, sourceLabel+" :: "+field.Path, lineNumber)...)
	}
	return findings
}

// matchLine runs every compiled rule over one haystack in ruleset order and
// emits one finding per non-overlapping match, in match order.
func matchLine(haystack string, compiled []rules.CompiledRule, filePath string, lineNumber int) []Finding {
	var findings []Finding
	for _, cr := range compiled {
		for _, span := range cr.Pattern.FindAllStringIndex(haystack, -1) {
			findings = append(findings, Finding{
				ID:         cr.Rule.ID,
				Category:   cr.Rule.Category,
				Label:      cr.Rule.Label,
				Severity:   cr.Rule.Severity,
				FilePath:   filePath,
				LineNumber: lineNumber,
				Snippet:    trimSnippet(haystack, span[0], span[1]),
			})
		}
	}
	return findings
}

// trimSnippet bounds the reported snippet to snippetMargin bytes around the
// match span, so reports never leak entire long lines.
func trimSnippet(haystack string, start, end int) string {
	left := start - snippetMargin
	if left < 0 {
		left = 0
	}
	right := end + snippetMargin
	if right > len(haystack) {
		right = len(haystack)
	}
	return strings.TrimSpace(haystack[left:right])
}
