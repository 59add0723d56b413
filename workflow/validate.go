package workflow

import (
	"context"
	"fmt"

	"oseplatform/models"
)

const (
	// errNoIdentifier marks a candidate that cannot be submitted for validation.
	errNoIdentifier = "no identifier to validate"
	errSameDevice   = "same device as another serial in this batch"
)

// Validate submits one identifier per candidate, merges the returned inventory metadata
// back onto the candidates and keeps the eligible ones.
func (w *Workflow) Validate(ctx context.Context) (*models.BulkValidationResult, error) {
	if err := w.begin(opValidate); err != nil {
		return nil, err
	}
	defer w.end(opValidate)

	w.mu.Lock()
	candidates := append([]models.DeviceSerial(nil), w.candidates...)
	generation := w.generation
	w.step = StepValidate
	w.mu.Unlock()
	if len(candidates) == 0 {
		return nil, ErrNothingLoaded
	}

	series := make([]string, 0, len(candidates))
	submitted := make([]int, 0, len(candidates))
	for i, c := range candidates {
		if id := c.Identifier(); id != "" {
			series = append(series, id)
			submitted = append(submitted, i)
		}
	}

	results := make([]models.ValidationResult, len(candidates))
	for i, c := range candidates {
		results[i] = models.ValidationResult{Serial: c, Error: errNoIdentifier}
	}

	if len(series) > 0 {
		remote, err := w.api.ValidateBulk(ctx, series)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		if len(remote.Results) != len(series) {
			return nil, fmt.Errorf("validate: got %d results for %d serials", len(remote.Results), len(series))
		}
		for j, r := range remote.Results {
			i := submitted[j]
			merged := candidates[i]
			if r.Exists {
				merged.Enrich(r.Serial)
			}
			r.Serial = merged
			results[i] = r
		}
	}

	markSameDevice(results)
	bulk := &models.BulkValidationResult{Results: results}
	bulk.Tally()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != generation {
		return bulk, ErrValidationStale
	}
	for i := range results {
		w.candidates[i] = results[i].Serial
	}
	w.validation = bulk
	w.eligible = bulk.ValidSerials()
	if len(w.eligible) > 0 {
		w.step = StepConfigure
	}
	return bulk, nil
}

// markSameDevice makes every valid result after the first one of a device invalid.
func markSameDevice(results []models.ValidationResult) {
	seen := make(map[string]struct{}, len(results))
	for i := range results {
		r := &results[i]
		if !r.Valid || r.Serial.DeviceID == "" {
			continue
		}
		if _, dup := seen[r.Serial.DeviceID]; dup {
			r.Valid = false
			r.Error = errSameDevice
			continue
		}
		seen[r.Serial.DeviceID] = struct{}{}
	}
}
