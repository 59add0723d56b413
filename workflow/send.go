package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"oseplatform/models"
	"oseplatform/services/csvformat"

	"go.uber.org/zap"
)

// Configure stores the batch settings and moves to the preview step when serials are eligible.
func (w *Workflow) Configure(s Settings) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s.Location = strings.TrimSpace(s.Location)
	s.EmailTo = strings.TrimSpace(s.EmailTo)
	if s.Format == "" {
		s.Format = models.FormatSeparated
	}
	w.settings = s
	if len(w.eligible) > 0 {
		w.step = StepPreview
	}
}

// Preview renders the CSV the send step would produce.
func (w *Workflow) Preview() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.eligible) == 0 {
		return "", ErrMissingSerials
	}
	w.step = StepPreview
	return csvformat.Generate(w.eligible, w.settings.Format), nil
}

// Send dispatches the eligible serials. Missing fields are rejected before any remote call.
// On success the CSV is handed to the downloader, the workflow is reset and the history view
// is shown; on failure the state is left untouched.
func (w *Workflow) Send(ctx context.Context) (*models.SeriesNotificationResponse, error) {
	if err := w.begin(opSend); err != nil {
		return nil, err
	}
	defer w.end(opSend)

	w.mu.Lock()
	req := models.SeriesNotificationRequest{
		Serials:      append([]models.DeviceSerial(nil), w.eligible...),
		CustomerID:   w.settings.CustomerID,
		CustomerName: w.settings.CustomerName,
		Location:     strings.TrimSpace(w.settings.Location),
		CSVFormat:    w.settings.Format,
		EmailTo:      strings.TrimSpace(w.settings.EmailTo),
		EmailCC:      append([]string(nil), w.settings.EmailCC...),
		Notes:        w.settings.Notes,
	}
	w.mu.Unlock()

	switch {
	case len(req.Serials) == 0:
		return nil, ErrMissingSerials
	case req.Location == "":
		return nil, ErrMissingLocation
	case req.EmailTo == "":
		return nil, ErrMissingEmail
	case req.CSVFormat == "":
		return nil, ErrMissingFormat
	}

	w.mu.Lock()
	w.step = StepSend
	w.mu.Unlock()

	resp, err := w.api.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrSendRejected, strings.Join(resp.Errors, "; "))
	}

	var downloadErr error
	if resp.CSVContent != "" {
		if err := w.download.Download(resp.CSVFilename, []byte(resp.CSVContent)); err != nil {
			w.logger.Warn("csv download failed", zap.String("file", resp.CSVFilename), zap.Error(err))
			downloadErr = fmt.Errorf("save %s: %w", resp.CSVFilename, err)
		}
	}

	w.mu.Lock()
	w.resetLocked()
	w.view = ViewHistory
	w.mu.Unlock()

	w.logger.Info("notification sent",
		zap.String("id", resp.ID),
		zap.Int("notified", resp.NotifiedCount),
		zap.Bool("emailSent", resp.EmailSent))
	return resp, downloadErr
}

// IsLocalRejection reports whether err came from the local checks of Send.
func IsLocalRejection(err error) bool {
	return errors.Is(err, ErrMissingSerials) || errors.Is(err, ErrMissingLocation) ||
		errors.Is(err, ErrMissingEmail) || errors.Is(err, ErrMissingFormat)
}
