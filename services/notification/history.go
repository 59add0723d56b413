package notification

import (
	"context"
	"fmt"

	"oseplatform/models"
	"oseplatform/services/csvformat"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// History returns one page of sent batches, newest first. page is 1-based.
func (s *DefaultNotificationService) History(ctx context.Context, filter models.HistoryFilter, page, limit int) (*models.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	items, total, err := s.history.List(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	if items == nil {
		items = []models.NotificationHistoryItem{}
	}
	return &models.HistoryPage{
		Items: items,
		Total: total,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *DefaultNotificationService) HistoryItem(ctx context.Context, id string) (*models.NotificationHistoryItem, error) {
	item, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("HistoryItem: %w", err)
	}
	return item, nil
}

// HistoryCSV regenerates the CSV of a past batch.
func (s *DefaultNotificationService) HistoryCSV(ctx context.Context, id string) (string, string, error) {
	item, err := s.HistoryItem(ctx, id)
	if err != nil {
		return "", "", err
	}
	return item.CSVFilename, csvformat.Generate(item.Serials, item.CSVFormat), nil
}
