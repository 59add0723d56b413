package historyRepo

import (
	"context"

	"oseplatform/models"
)

// HistoryRepository stores sent notification batches. Items are insert-only.
type HistoryRepository interface {
	Create(ctx context.Context, item models.NotificationHistoryItem) (string, error)
	GetByID(ctx context.Context, id string) (*models.NotificationHistoryItem, error)
	List(ctx context.Context, filter models.HistoryFilter, page, limit int) ([]models.NotificationHistoryItem, int64, error)
}
