// Package workflow drives the operator-side series notification flow: load serials, validate
// them against the inventory, configure the batch, preview its CSV and send it.
package workflow

import (
	"context"
	"errors"
	"sync"

	"oseplatform/models"

	"go.uber.org/zap"
)

// Step is the position of the workflow wizard.
type Step int

const (
	StepInput Step = iota
	StepValidate
	StepConfigure
	StepPreview
	StepSend
)

var stepNames = [...]string{"input", "validate", "configure", "preview", "send"}

func (s Step) String() string {
	if s < StepInput || s > StepSend {
		return "unknown"
	}
	return stepNames[s]
}

// View is the screen currently shown.
type View int

const (
	ViewWorkflow View = iota
	ViewHistory
)

var (
	// ErrInFlight is returned when the same kind of remote call is already running.
	ErrInFlight = errors.New("operation already in progress")

	ErrMissingSerials  = errors.New("no validated serials to send")
	ErrMissingLocation = errors.New("location is required")
	ErrMissingEmail    = errors.New("recipient email is required")
	ErrMissingFormat   = errors.New("csv format is required")
	ErrNothingLoaded   = errors.New("no serials loaded")
	// ErrValidationStale is returned when candidates changed while a validation was running.
	ErrValidationStale = errors.New("serials changed during validation, validate again")
	// ErrSendRejected is returned when the API answers a send without success.
	ErrSendRejected = errors.New("notification was not sent")
)

// API is the part of the series notification API the workflow uses.
type API interface {
	ValidateBulk(ctx context.Context, series []string) (*models.BulkValidationResult, error)
	SmartScan(ctx context.Context, code string) (*models.ScanResult, error)
	SearchBy(ctx context.Context, scanType, value string) (*models.ScanResult, error)
	Send(ctx context.Context, req models.SeriesNotificationRequest) (*models.SeriesNotificationResponse, error)
	History(ctx context.Context, filter models.HistoryFilter, page, limit int) (*models.HistoryPage, error)
}

// Settings are the batch parameters chosen in the configure step.
type Settings struct {
	Location     string
	CustomerID   string
	CustomerName string
	Format       models.CSVFormat
	EmailTo      string
	EmailCC      []string
	Notes        string
}

type operation int

const (
	opValidate operation = iota
	opSend
	opScan
	opBatch
	opHistory
)

// Workflow holds the state of one operator session. Methods are safe for concurrent use;
// the lock is never held across a remote call.
type Workflow struct {
	api      API
	download Downloader
	logger   *zap.Logger

	mu         sync.Mutex
	inFlight   map[operation]bool
	step       Step
	view       View
	candidates []models.DeviceSerial
	generation uint64
	invalid    []models.InvalidLine
	validation *models.BulkValidationResult
	eligible   []models.DeviceSerial
	settings   Settings
	history    *models.HistoryPage
}

// New returns an empty workflow at the input step.
func New(api API, download Downloader, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if download == nil {
		download = DiscardDownloader{}
	}
	return &Workflow{
		api:      api,
		download: download,
		logger:   logger,
		inFlight: make(map[operation]bool),
		settings: Settings{Format: models.FormatSeparated},
	}
}

func (w *Workflow) begin(op operation) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight[op] {
		return ErrInFlight
	}
	w.inFlight[op] = true
	return nil
}

func (w *Workflow) end(op operation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, op)
}

func (w *Workflow) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// ShowWorkflow switches back from the history view without touching workflow state.
func (w *Workflow) ShowWorkflow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = ViewWorkflow
}

// Candidates returns a copy of the loaded serials.
func (w *Workflow) Candidates() []models.DeviceSerial {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.DeviceSerial(nil), w.candidates...)
}

// Invalid returns the input lines rejected while loading.
func (w *Workflow) Invalid() []models.InvalidLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.InvalidLine(nil), w.invalid...)
}

// Eligible returns the serials that passed validation, the ones a send will include.
func (w *Workflow) Eligible() []models.DeviceSerial {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.DeviceSerial(nil), w.eligible...)
}

// Validation returns the last validation result, nil when the candidates changed since.
func (w *Workflow) Validation() *models.BulkValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.validation
}

func (w *Workflow) Settings() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// HistoryPage returns the last loaded history page.
func (w *Workflow) HistoryPage() *models.HistoryPage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history
}

// Back moves one step back.
func (w *Workflow) Back() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepInput {
		w.step--
	}
	return w.step
}

// Reset clears the batch and returns to the input step. Calls in flight are unaffected.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Workflow) resetLocked() {
	w.step = StepInput
	w.candidates = nil
	w.generation++
	w.invalid = nil
	w.validation = nil
	w.eligible = nil
	w.settings = Settings{Format: models.FormatSeparated}
}
