package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"oseplatform/database"
	"oseplatform/models"
	"oseplatform/services/mailer"

	"github.com/hibiken/asynq"
)

type fakeDevices struct {
	devices   []models.Device
	err       error
	fieldHits []string
	marked    []string
	markedAs  string
}

func (f *fakeDevices) FindByIdentifiers(_ context.Context, imeis, iccids, packages []string) ([]models.Device, error) {
	if f.err != nil {
		return nil, f.err
	}
	in := func(v string, set []string) bool {
		for _, s := range set {
			if v != "" && v == s {
				return true
			}
		}
		return false
	}
	var out []models.Device
	for _, d := range f.devices {
		if in(d.IMEI, imeis) || in(d.ICCID, iccids) || in(d.PackageNo, packages) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDevices) FindByField(_ context.Context, field, value string) ([]models.Device, error) {
	f.fieldHits = append(f.fieldHits, field)
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Device
	for _, d := range f.devices {
		var v string
		switch field {
		case "imei":
			v = d.IMEI
		case "iccid":
			v = d.ICCID
		case "package_no":
			v = d.PackageNo
		case "caja_master":
			v = d.CajaMaster
		case "pallet_id":
			v = d.PalletID
		case "location":
			v = d.Location
		}
		if v == value {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDevices) MarkNotified(_ context.Context, ids []string, notificationID string, _ time.Time) (int64, error) {
	f.marked = append(f.marked, ids...)
	f.markedAs = notificationID
	return int64(len(ids)), nil
}

type fakeHistory struct {
	items []models.NotificationHistoryItem
	page  int
	limit int
	total int64
	err   error
}

func (f *fakeHistory) Create(_ context.Context, item models.NotificationHistoryItem) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.items = append(f.items, item)
	return item.ID, nil
}

func (f *fakeHistory) GetByID(_ context.Context, id string) (*models.NotificationHistoryItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeHistory) List(_ context.Context, _ models.HistoryFilter, page, limit int) ([]models.NotificationHistoryItem, int64, error) {
	f.page, f.limit = page, limit
	return f.items, f.total, f.err
}

type fakeCustomers struct {
	calls int
}

func (f *fakeCustomers) List(context.Context) ([]models.Customer, error) {
	f.calls++
	return []models.Customer{{ID: "c1", Name: "Acme"}}, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeQueue struct {
	tasks []*asynq.Task
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type memoryCache struct {
	data map[string][]byte
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

type fakeArchive struct {
	url string
	err error
}

func (f fakeArchive) Store(context.Context, string, []byte) (string, error) {
	return f.url, f.err
}

var errBoom = errors.New("boom")

func notifiedAt(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func upper(s string) string { return strings.ToUpper(s) }
