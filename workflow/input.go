package workflow

import (
	"context"
	"fmt"
	"os"
	"strings"

	"oseplatform/models"
	"oseplatform/services/serials"

	"go.uber.org/zap"
)

// LoadResult reports what one load added to the candidates.
type LoadResult struct {
	Added      int
	Duplicates int
	Invalid    []models.InvalidLine
}

// LoadText parses pasted text and appends its serials to the candidates.
func (w *Workflow) LoadText(raw string) LoadResult {
	return w.load(serials.Parse(raw))
}

// LoadFile parses a text or CSV file of serials and appends them to the candidates.
func (w *Workflow) LoadFile(path string) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := serials.ParseReader(f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return w.load(parsed), nil
}

func (w *Workflow) load(parsed models.ParseResult) LoadResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	added, dups := w.appendLocked(parsed.Valid)
	w.invalid = append(w.invalid, parsed.Invalid...)
	return LoadResult{Added: added, Duplicates: dups, Invalid: parsed.Invalid}
}

// appendLocked merges serials into the candidates and invalidates any previous validation.
func (w *Workflow) appendLocked(incoming []models.DeviceSerial) (added, duplicates int) {
	before := len(w.candidates)
	w.candidates, duplicates = serials.Dedup(w.candidates, incoming)
	added = len(w.candidates) - before
	if added > 0 {
		w.generation++
		w.validation = nil
		w.eligible = nil
		if w.step > StepValidate {
			w.step = StepValidate
		}
	}
	return added, duplicates
}

// Scan expands one scanned code and appends the devices found. A code that resolves to
// nothing is reported in the result, not as an error.
func (w *Workflow) Scan(ctx context.Context, code string) (*models.ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("scan: empty code")
	}
	if err := w.begin(opScan); err != nil {
		return nil, err
	}
	defer w.end(opScan)

	res, err := w.api.SmartScan(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", code, err)
	}
	if res.Success {
		w.mu.Lock()
		w.appendLocked(res.Serials)
		w.mu.Unlock()
	}
	return res, nil
}

// CodeFailure is a code a batch resolution could not expand.
type CodeFailure struct {
	Code   string
	Reason string
}

// BatchOutcome summarizes a batch resolution.
type BatchOutcome struct {
	Found      int
	Failed     int
	Added      int
	Duplicates int
	Failures   []CodeFailure
}

// ResolveCodes expands codes one after another. scanType is models.ScanTypeLot,
// ScanTypeCarton or ScanTypePallet; an empty scanType uses smart scan. A failing code
// never stops the batch; a cancelled context does.
func (w *Workflow) ResolveCodes(ctx context.Context, scanType string, codes []string) (BatchOutcome, error) {
	if err := w.begin(opBatch); err != nil {
		return BatchOutcome{}, err
	}
	defer w.end(opBatch)

	var out BatchOutcome
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var res *models.ScanResult
		var err error
		if scanType == "" {
			res, err = w.api.SmartScan(ctx, code)
		} else {
			res, err = w.api.SearchBy(ctx, scanType, code)
		}
		switch {
		case err != nil:
			out.Failed++
			out.Failures = append(out.Failures, CodeFailure{Code: code, Reason: err.Error()})
			w.logger.Warn("code resolution failed", zap.String("code", code), zap.Error(err))
		case !res.Success:
			out.Failed++
			out.Failures = append(out.Failures, CodeFailure{Code: code, Reason: res.Message})
		default:
			out.Found++
			w.mu.Lock()
			added, dups := w.appendLocked(res.Serials)
			w.mu.Unlock()
			out.Added += added
			out.Duplicates += dups
		}
	}
	return out, nil
}
