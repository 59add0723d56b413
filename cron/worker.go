package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"oseplatform/config"
	"oseplatform/models"
	"oseplatform/services/mailer"
	"oseplatform/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt returns the asynq connection settings for the email queue.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitEmailRetryWorker runs the email retry worker in background and returns the server for shutdown.
func InitEmailRetryWorker(m mailer.Mailer) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				tasks.EmailQueue: 1,
			},
			Logger: zap.S(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEmailRetry, handleEmailRetryTask(m))

	go func() {
		logger := zap.L().Named("email-worker")
		logger.Info("starting email retry worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("failed to start worker", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("max retry attempts reached, email retries disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleEmailRetryTask(m mailer.Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.EmailRetryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			zap.L().Error("invalid email retry payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		if err := m.Send(ctx, tasks.MessageFromPayload(p)); err != nil {
			zap.L().Warn("email retry failed",
				zap.String("notificationId", p.NotificationID),
				zap.String("to", p.To),
				zap.Error(err))
			return err
		}

		zap.L().Info("notification email delivered on retry",
			zap.String("notificationId", p.NotificationID),
			zap.String("to", p.To))
		return nil
	}
}
