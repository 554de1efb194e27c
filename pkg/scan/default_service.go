package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rajivksingh13/darbiter/pkg/detect"
	"github.com/rajivksingh13/darbiter/pkg/eligibility"
	"github.com/rajivksingh13/darbiter/pkg/remediation"
	"github.com/rajivksingh13/darbiter/pkg/risk"
	"github.com/rajivksingh13/darbiter/pkg/rules"
	"github.com/rajivksingh13/darbiter/pkg/stream"
)

// textSourceLabel attributes raw-text scan findings; text scans have no file
// path, so findings carry this fixed label.
const textSourceLabel = "stdin"

type defaultService struct {
	loader   *rules.Loader
	engine   detect.Engine
	store    Store
	streamer stream.Streamer
	logger   *zap.SugaredLogger
	tracer   trace.Tracer
}

func (s *defaultService) ScanPath(ctx context.Context, req PathRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "scan.path", trace.WithAttributes(
		attribute.String("scan.path", req.Path),
		attribute.Bool("scan.recursive", req.Recursive),
	))
	defer span.End()

	compiled, rs, usage, err := s.prepare(req.Ruleset, req.Usage, req.Categories)
	if err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	info, err := os.Stat(req.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", req.Path, err)
	}

	var (
		findings   []detect.Finding
		fileErrors []FileError
	)
	if info.IsDir() {
		findings, fileErrors, err = s.scanDir(req.Path, req.Recursive, compiled)
		if err != nil {
			return nil, err
		}
	} else {
		findings, err = s.scanOne(req.Path, filepath.Base(req.Path), compiled)
		if err != nil {
			return nil, err
		}
	}

	result := s.buildResult(ctx, buildInput{
		ruleset:    rs,
		usage:      usage,
		approved:   req.ApprovedForAI,
		startedAt:  started,
		findings:   findings,
		fileErrors: fileErrors,
	})
	return result, nil
}

func (s *defaultService) ScanFiles(ctx context.Context, req FileSetRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "scan.files", trace.WithAttributes(
		attribute.Int("scan.file_count", len(req.Files)),
	))
	defer span.End()

	compiled, rs, usage, err := s.prepare(req.Ruleset, req.Usage, req.Categories)
	if err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	var findings []detect.Finding
	for _, payload := range req.Files {
		found, err := s.scanPayload(payload, compiled)
		if err != nil {
			return nil, err
		}
		findings = append(findings, found...)
	}

	result := s.buildResult(ctx, buildInput{
		ruleset:   rs,
		usage:     usage,
		approved:  req.ApprovedForAI,
		startedAt: started,
		findings:  findings,
	})
	return result, nil
}

func (s *defaultService) ScanText(ctx context.Context, req TextRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "scan.text", trace.WithAttributes(
		attribute.Int("scan.content_bytes", len(req.Content)),
	))
	defer span.End()

	compiled, rs, usage, err := s.prepare(req.Ruleset, req.Usage, req.Categories)
	if err != nil {
		return nil, err
	}

	started := time.Now().UTC()
	findings := s.engine.DetectText(req.Content, compiled, textSourceLabel)

	result := s.buildResult(ctx, buildInput{
		ruleset:   rs,
		usage:     usage,
		approved:  req.ApprovedForAI,
		startedAt: started,
		findings:  findings,
	})
	return result, nil
}

func (s *defaultService) Find(scanID string) (*Result, bool) {
	return s.store.Find(scanID)
}

func (s *defaultService) Certify(scanID string) (Certificate, bool) {
	result, ok := s.store.Find(scanID)
	if !ok {
		return Certificate{}, false
	}
	return NewCertificate(result), true
}

func (s *defaultService) Rulesets() ([]rules.RuleSetInfo, error) {
	return s.loader.List()
}

// prepare resolves the ruleset, validates the usage, and compiles the rules
// once per scan. All request-shape problems surface here as ConfigErrors.
func (s *defaultService) prepare(rulesetName string, usage Usage, categories []rules.Category) ([]rules.CompiledRule, *rules.RuleSet, Usage, error) {
	if usage == "" {
		usage = UsageInference
	}
	if !usage.IsValid() {
		return nil, nil, "", rules.NewConfigError("unknown usage %q", usage)
	}

	set, err := categorySet(categories)
	if err != nil {
		return nil, nil, "", err
	}

	rs, err := s.loader.Load(rulesetName)
	if err != nil {
		return nil, nil, "", err
	}
	compiled, err := rules.Compile(rs, set)
	if err != nil {
		return nil, nil, "", err
	}
	return compiled, rs, usage, nil
}

// categorySet converts the request category filter to a lookup set. An empty
// filter means all categories; an unknown category is a request error, not a
// silent no-op.
func categorySet(categories []rules.Category) (map[rules.Category]bool, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	set := make(map[rules.Category]bool, len(categories))
	for _, c := range categories {
		if !c.IsValid() {
			return nil, rules.NewConfigError("unknown category %q", c)
		}
		set[c] = true
	}
	return set, nil
}

// scanDir walks a directory tree and scans every regular file. A file that
// cannot be read is recorded and skipped; the walk continues and the result
// is flagged partial. Only a failure to list the tree itself aborts the scan.
func (s *defaultService) scanDir(root string, recursive bool, compiled []rules.CompiledRule) ([]detect.Finding, []FileError, error) {
	var paths []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walking %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
	}
	sort.Strings(paths)

	var (
		findings   []detect.Finding
		fileErrors []FileError
	)
	for _, path := range paths {
		found, err := s.scanOne(path, filepath.Base(path), compiled)
		if err != nil {
			s.logger.Warnw("skipping unreadable file", "path", path, "error", err)
			fileErrors = append(fileErrors, FileError{Path: path, Error: err.Error()})
			continue
		}
		findings = append(findings, found...)
	}
	return findings, fileErrors, nil
}

// scanOne scans a single on-disk file: structured extraction by format when
// it parses, raw-line detection otherwise. Findings from a structured file
// are attributed to its path with the field path appended.
func (s *defaultService) scanOne(path, name string, compiled []rules.CompiledRule) ([]detect.Finding, error) {
	if fields := extractStructured(path, name); fields != nil {
		return s.engine.DetectFields(fields, compiled, path), nil
	}
	return s.engine.DetectFile(path, compiled)
}

// scanPayload materializes an uploaded payload as a temp file so the same
// format-aware extraction applies, then removes it. Extension is preserved
// because format classification keys on it.
func (s *defaultService) scanPayload(payload FilePayload, compiled []rules.CompiledRule) ([]detect.Finding, error) {
	tmp, err := os.CreateTemp("", "darbiter-upload-*"+filepath.Ext(payload.Name))
	if err != nil {
		return nil, fmt.Errorf("creating temp file for %s: %w", payload.Name, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			s.logger.Warnw("removing upload temp file", "path", tmpPath, "error", err)
		}
	}()

	if _, err := tmp.Write(payload.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file for %s: %w", payload.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file for %s: %w", payload.Name, err)
	}

	if fields := extractStructured(tmpPath, payload.Name); fields != nil {
		return s.engine.DetectFields(fields, compiled, payload.Name), nil
	}
	// Uploads fall back to capped raw text under the original name; unlike
	// on-disk files there is no binary skip.
	content, err := readTextCapped(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading temp file for %s: %w", payload.Name, err)
	}
	return s.engine.DetectText(content, compiled, payload.Name), nil
}

type buildInput struct {
	ruleset    *rules.RuleSet
	usage      Usage
	approved   bool
	startedAt  time.Time
	findings   []detect.Finding
	fileErrors []FileError
}

// buildResult assembles, stores, and optionally streams the scan outcome.
// Streaming failures are logged and never fail the scan.
func (s *defaultService) buildResult(ctx context.Context, in buildInput) *Result {
	if in.findings == nil {
		in.findings = []detect.Finding{}
	}
	decision := eligibility.Evaluate(in.findings, in.approved)
	result := &Result{
		ScanID:      uuid.NewString(),
		Ruleset:     in.ruleset.Identity(),
		Usage:       in.usage,
		StartedAt:   in.startedAt,
		FinishedAt:  time.Now().UTC(),
		Findings:    in.findings,
		RiskSummary: risk.Summarize(in.findings),
		Eligibility: decision.Status,
		Decision:    decision,
		Remediation: remediation.Recommend(in.findings),
		Partial:     len(in.fileErrors) > 0,
		FileErrors:  in.fileErrors,
	}
	s.store.Save(result)
	s.logger.Infow("scan complete",
		"scan_id", result.ScanID,
		"ruleset", result.Ruleset,
		"findings", len(result.Findings),
		"eligibility", result.Eligibility,
		"partial", result.Partial,
	)

	if s.streamer != nil {
		if err := s.streamer.Stream(ctx, buildEvents(result)); err != nil {
			s.logger.Warnw("streaming findings failed", "scan_id", result.ScanID, "error", err)
		}
	}
	return result
}

// buildEvents projects a result's findings into publishable events. Snippets
// stay out of the events on purpose.
func buildEvents(result *Result) []stream.Event {
	events := make([]stream.Event, 0, len(result.Findings))
	for _, f := range result.Findings {
		events = append(events, stream.Event{
			ID:         uuid.NewString(),
			ScanID:     result.ScanID,
			Ruleset:    result.Ruleset,
			RuleID:     f.ID,
			Category:   f.Category,
			Severity:   f.Severity,
			FilePath:   f.FilePath,
			LineNumber: f.LineNumber,
			Timestamp:  result.FinishedAt,
		})
	}
	return events
}
