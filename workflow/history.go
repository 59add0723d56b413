package workflow

import (
	"context"
	"fmt"

	"oseplatform/models"
)

// History loads one page of past notifications and shows the history view.
func (w *Workflow) History(ctx context.Context, page, limit int, filter models.HistoryFilter) (*models.HistoryPage, error) {
	if err := w.begin(opHistory); err != nil {
		return nil, err
	}
	defer w.end(opHistory)

	p, err := w.api.History(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = p
	w.view = ViewHistory
	return p, nil
}

// Replay loads a past notification back into the workflow, positioned at the send step.
// No remote call is made; the serials are taken as already validated.
func (w *Workflow) Replay(item models.NotificationHistoryItem) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.resetLocked()
	w.candidates = append([]models.DeviceSerial(nil), item.Serials...)
	w.eligible = append([]models.DeviceSerial(nil), item.Serials...)
	w.settings = Settings{
		Location:     item.Location,
		CustomerID:   item.CustomerID,
		CustomerName: item.CustomerName,
		Format:       item.CSVFormat,
		EmailTo:      item.EmailTo,
		EmailCC:      append([]string(nil), item.EmailCC...),
		Notes:        item.Notes,
	}
	if w.settings.Format == "" {
		w.settings.Format = models.FormatSeparated
	}
	w.step = StepSend
	w.view = ViewWorkflow
}
