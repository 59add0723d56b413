package tasks

import (
	"context"
	"encoding/json"
	"time"

	"oseplatform/models"
	"oseplatform/services/csvformat"
	"oseplatform/services/mailer"

	"github.com/hibiken/asynq"
)

const (
	TypeEmailRetry = "notification:email-retry"
	EmailQueue     = "email"

	emailMaxRetry  = 8
	emailFirstWait = time.Minute
)

// Enqueuer is the part of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewEmailRetryTask(payload models.EmailRetryPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeEmailRetry, b)
	opts := []asynq.Option{
		asynq.Queue(EmailQueue),
		asynq.MaxRetry(emailMaxRetry),
		asynq.ProcessIn(emailFirstWait),
	}
	return task, opts, nil
}

// EmailRetryPayloadFor builds the retry payload for a message carrying one CSV attachment.
func EmailRetryPayloadFor(notificationID string, msg mailer.Message) models.EmailRetryPayload {
	p := models.EmailRetryPayload{
		NotificationID: notificationID,
		To:             msg.To,
		CC:             msg.CC,
		Subject:        msg.Subject,
		Body:           msg.Body,
	}
	if len(msg.Attachments) > 0 {
		p.Filename = msg.Attachments[0].Filename
		p.CSV = string(msg.Attachments[0].Data)
	}
	return p
}

// MessageFromPayload rebuilds the email stored in a retry payload.
func MessageFromPayload(p models.EmailRetryPayload) mailer.Message {
	msg := mailer.Message{
		To:      p.To,
		CC:      p.CC,
		Subject: p.Subject,
		Body:    p.Body,
	}
	if p.Filename != "" {
		msg.Attachments = []mailer.Attachment{{
			Filename:    p.Filename,
			ContentType: csvformat.MIMEType,
			Data:        []byte(p.CSV),
		}}
	}
	return msg
}
