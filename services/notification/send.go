package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"oseplatform/models"
	"oseplatform/services/csvformat"
	"oseplatform/services/mailer"
	"oseplatform/services/serials"
	"oseplatform/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Send generates the CSV for a batch, emails it, records the batch in history and marks the
// matched devices notified. Email failures are queued for retry and reported in Errors.
func (s *DefaultNotificationService) Send(ctx context.Context, operator models.Operator, req models.SeriesNotificationRequest) (*models.SeriesNotificationResponse, error) {
	if err := checkRequest(&req); err != nil {
		return nil, err
	}
	batch, _ := serials.Dedup(nil, req.Serials)
	if len(batch) == 0 {
		return nil, invalid("serials must carry at least one identifier")
	}

	var ids identifierSets
	for i := range batch {
		sr := &batch[i]
		sr.IMEI = strings.TrimSpace(sr.IMEI)
		sr.ICCID = strings.ToUpper(strings.TrimSpace(sr.ICCID))
		sr.PackageNo = strings.TrimSpace(sr.PackageNo)
		ids.add(serials.KindIMEI, sr.IMEI)
		ids.add(serials.KindICCID, sr.ICCID)
		ids.add(serials.KindPackage, sr.PackageNo)
	}
	ix, err := s.loadIndex(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("Send: failed to query inventory: %w", err)
	}

	failed := []string{}
	deviceIDs := make([]string, 0, len(batch))
	taken := make(map[string]struct{}, len(batch))
	rows := batch[:0]
	for _, sr := range batch {
		d, ok := ix.match(sr)
		if !ok {
			failed = append(failed, sr.Identifier())
			rows = append(rows, sr)
			continue
		}
		if _, dup := taken[d.DeviceID]; dup {
			continue
		}
		taken[d.DeviceID] = struct{}{}
		sr.Enrich(d.Serial())
		deviceIDs = append(deviceIDs, d.DeviceID)
		rows = append(rows, sr)
	}
	if len(deviceIDs) == 0 {
		return nil, ErrNothingToNotify
	}
	batch = rows

	now := s.now().UTC()
	id := uuid.New().String()
	format := csvformat.Resolve(req.CSVFormat)
	filename := CSVFilename(req.Location, now)
	content := csvformat.Generate(batch, format)

	resp := &models.SeriesNotificationResponse{
		Success:       true,
		ID:            id,
		NotifiedCount: len(deviceIDs),
		CSVContent:    content,
		CSVFilename:   filename,
		FailedSerials: failed,
	}
	logger := s.logger.With(zap.String("notificationId", id), zap.String("location", req.Location))

	url, err := s.archive.Store(ctx, filename, []byte(content))
	if err != nil {
		logger.Warn("csv archive failed", zap.Error(err))
		resp.Errors = append(resp.Errors, "csv archive failed: "+err.Error())
	}

	msg := notificationEmail(req, operator, filename, content, len(batch))
	resp.EmailSent = s.deliver(ctx, logger, id, msg, resp)

	item := models.NotificationHistoryItem{
		ID:            id,
		Date:          now,
		CustomerName:  req.CustomerName,
		CustomerID:    req.CustomerID,
		DeviceCount:   len(batch),
		CSVFormat:     format,
		EmailTo:       req.EmailTo,
		EmailCC:       req.EmailCC,
		Operator:      operator.Name,
		OperatorEmail: operator.Email,
		CSVFilename:   filename,
		CSVURL:        url,
		Notes:         req.Notes,
		Serials:       batch,
		Location:      req.Location,
		EmailSent:     resp.EmailSent,
	}
	if _, err := s.history.Create(ctx, item); err != nil {
		logger.Error("failed to persist history item", zap.Error(err))
		resp.Errors = append(resp.Errors, "history record not saved: "+err.Error())
	}

	if _, err := s.devices.MarkNotified(ctx, deviceIDs, id, now); err != nil {
		logger.Error("failed to mark devices notified", zap.Error(err))
		resp.Errors = append(resp.Errors, "devices not marked as notified: "+err.Error())
	}

	logger.Info("series notification sent",
		zap.Int("notified", resp.NotifiedCount),
		zap.Int("unmatched", len(failed)),
		zap.Bool("emailSent", resp.EmailSent),
		zap.String("operator", operator.Email))
	return resp, nil
}

// deliver sends the email, queueing a retry when the first attempt fails.
func (s *DefaultNotificationService) deliver(ctx context.Context, logger *zap.Logger, id string, msg mailer.Message, resp *models.SeriesNotificationResponse) bool {
	err := s.mailer.Send(ctx, msg)
	if err == nil {
		return true
	}
	logger.Warn("notification email failed", zap.Error(err))
	if errors.Is(err, mailer.ErrNotConfigured) || s.queue == nil {
		resp.Errors = append(resp.Errors, "email not sent: "+err.Error())
		return false
	}

	task, opts, terr := tasks.NewEmailRetryTask(tasks.EmailRetryPayloadFor(id, msg))
	if terr == nil {
		_, terr = s.queue.EnqueueContext(ctx, task, opts...)
	}
	if terr != nil {
		logger.Error("failed to queue email retry", zap.Error(terr))
		resp.Errors = append(resp.Errors, "email not sent: "+err.Error())
		return false
	}
	resp.Errors = append(resp.Errors, "email not sent, queued for retry: "+err.Error())
	return false
}

func checkRequest(req *models.SeriesNotificationRequest) error {
	req.Location = strings.TrimSpace(req.Location)
	req.EmailTo = strings.TrimSpace(req.EmailTo)
	switch {
	case len(req.Serials) == 0:
		return invalid("serials must not be empty")
	case req.Location == "":
		return invalid("location is required")
	case req.EmailTo == "":
		return invalid("email_to is required")
	}
	var cc []string
	for _, addr := range req.EmailCC {
		if addr = strings.TrimSpace(addr); addr != "" {
			cc = append(cc, addr)
		}
	}
	req.EmailCC = cc
	return nil
}

// CSVFilename names the CSV of a batch sent for location at t.
func CSVFilename(location string, t time.Time) string {
	loc := strings.Trim(unsafeFilenameChars.ReplaceAllString(location, "_"), "_")
	if loc == "" {
		loc = "lote"
	}
	return fmt.Sprintf("notificacion_%s_%s.csv", loc, t.Format("20060102_150405"))
}

func notificationEmail(req models.SeriesNotificationRequest, operator models.Operator, filename, content string, count int) mailer.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Se adjunta la notificación de %d series para la ubicación %s.\n", count, req.Location)
	if req.CustomerName != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", req.CustomerName)
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", req.Notes)
	}
	if operator.Name != "" {
		fmt.Fprintf(&b, "\nEnviado por %s <%s>\n", operator.Name, operator.Email)
	}

	return mailer.Message{
		To:      req.EmailTo,
		CC:      req.EmailCC,
		Subject: fmt.Sprintf("Notificación de series - %s", req.Location),
		Body:    b.String(),
		Attachments: []mailer.Attachment{{
			Filename:    filename,
			ContentType: csvformat.MIMEType,
			Data:        []byte(content),
		}},
	}
}
