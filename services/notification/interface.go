package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	customerRepo "oseplatform/database/repository/customer"
	deviceRepo "oseplatform/database/repository/device"
	historyRepo "oseplatform/database/repository/history"
	"oseplatform/models"
	"oseplatform/services/mailer"
	"oseplatform/services/storage"
	"oseplatform/services/tasks"

	"go.uber.org/zap"
)

var (
	// ErrInvalidRequest wraps every rejection of caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNothingToNotify is returned when no submitted serial matches the inventory.
	ErrNothingToNotify = errors.New("no serial matched the inventory")
)

// NotificationService is the series notification workflow on the server side.
type NotificationService interface {
	ValidateBulk(ctx context.Context, series []string) (*models.BulkValidateWire, error)
	SmartScan(ctx context.Context, code string) (*models.ScanResult, error)
	SearchBy(ctx context.Context, scanType, value string) (*models.ScanResult, error)
	ConfigOptions(ctx context.Context) (*models.ConfigOptions, error)
	Send(ctx context.Context, operator models.Operator, req models.SeriesNotificationRequest) (*models.SeriesNotificationResponse, error)
	History(ctx context.Context, filter models.HistoryFilter, page, limit int) (*models.HistoryPage, error)
	HistoryItem(ctx context.Context, id string) (*models.NotificationHistoryItem, error)
	HistoryCSV(ctx context.Context, id string) (filename string, content string, err error)
}

// Deps are the collaborators of DefaultNotificationService. Archive, Queue and Cache are optional.
type Deps struct {
	Devices   deviceRepo.DeviceRepository
	History   historyRepo.HistoryRepository
	Customers customerRepo.CustomerRepository
	Mailer    mailer.Mailer
	Archive   storage.Archive
	Queue     tasks.Enqueuer
	Cache     OptionsCache
	CacheTTL  time.Duration
	Logger    *zap.Logger
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	devices   deviceRepo.DeviceRepository
	history   historyRepo.HistoryRepository
	customers customerRepo.CustomerRepository
	mailer    mailer.Mailer
	archive   storage.Archive
	queue     tasks.Enqueuer
	cache     OptionsCache
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewDefaultNotificationService(d Deps) (*DefaultNotificationService, error) {
	if d.Devices == nil || d.History == nil || d.Customers == nil || d.Mailer == nil {
		return nil, fmt.Errorf("notification service initialization error: repositories and mailer are required")
	}
	if d.Archive == nil {
		d.Archive = storage.NopArchive{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = 5 * time.Minute
	}
	return &DefaultNotificationService{
		devices:   d.Devices,
		history:   d.History,
		customers: d.Customers,
		mailer:    d.Mailer,
		archive:   d.Archive,
		queue:     d.Queue,
		cache:     d.Cache,
		cacheTTL:  d.CacheTTL,
		logger:    d.Logger,
		now:       time.Now,
	}, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
