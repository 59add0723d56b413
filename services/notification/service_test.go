package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"oseplatform/database"
	deviceRepo "oseplatform/database/repository/device"
	"oseplatform/models"
	"oseplatform/services/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	imeiA    = "861888082667623"
	imeiB    = "862667084205114"
	imeiC    = "861888082669999"
	iccidA   = "89882390001112223334"
	package1 = "9912345678901234567890123"
)

type harness struct {
	svc     *DefaultNotificationService
	devices *fakeDevices
	history *fakeHistory
	mailer  *fakeMailer
	queue   *fakeQueue
	cust    *fakeCustomers
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		devices: &fakeDevices{devices: []models.Device{
			{DeviceID: "d1", IMEI: imeiA, ICCID: iccidA, Marca: "Teltonika", CajaMaster: "CJ-1", PalletID: "PL-1", Location: "LOT-1", CustomerName: "Acme"},
			{DeviceID: "d2", IMEI: imeiB, PackageNo: package1, Marca: "Queclink", CajaMaster: "CJ-1", PalletID: "PL-1", Location: "LOT-1"},
			{DeviceID: "d3", IMEI: imeiC, NotifiedAt: notifiedAt("2026-04-30"), PalletID: "PL-2", Location: "LOT-2"},
		}},
		history: &fakeHistory{},
		mailer:  &fakeMailer{},
		queue:   &fakeQueue{},
		cust:    &fakeCustomers{},
	}
	svc, err := NewDefaultNotificationService(Deps{
		Devices:   h.devices,
		History:   h.history,
		Customers: h.cust,
		Mailer:    h.mailer,
		Archive:   fakeArchive{url: "https://files.test/n.csv"},
		Queue:     h.queue,
		Cache:     &memoryCache{},
	})
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 15, 0, time.UTC) }
	h.svc = svc
	return h
}

func TestNewDefaultNotificationService_RequiresRepositories(t *testing.T) {
	_, err := NewDefaultNotificationService(Deps{})
	assert.Error(t, err)
}

func TestValidateBulk(t *testing.T) {
	h := newHarness(t)

	resp, err := h.svc.ValidateBulk(context.Background(), []string{imeiA, "12345", imeiC, "861888082600000", upper(iccidA), package1})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Total)
	assert.Equal(t, 3, resp.Validos)
	assert.Equal(t, 3, resp.Invalidos)
	assert.Equal(t, 1, resp.YaNotificados)
	require.Len(t, resp.Resultados, 6)

	ok := resp.Resultados[0]
	assert.True(t, ok.Valido)
	assert.True(t, ok.Existe)
	assert.Equal(t, "Teltonika", ok.Marca)
	assert.Equal(t, "Acme", ok.Cliente)
	assert.Equal(t, iccidA, ok.ICCID)

	assert.Equal(t, ErrMsgInvalidFormat, resp.Resultados[1].Error)
	assert.Equal(t, "unknown", resp.Resultados[1].Tipo)

	notified := resp.Resultados[2]
	assert.False(t, notified.Valido)
	assert.True(t, notified.YaNotificado)
	assert.Equal(t, "already notified on 2026-04-30", notified.Error)
	require.NotNil(t, notified.FechaNotificacion)

	assert.Equal(t, ErrMsgNotInInventory, resp.Resultados[3].Error)
	assert.True(t, resp.Resultados[4].Valido)
	assert.Equal(t, "iccid", resp.Resultados[4].Tipo)
	assert.True(t, resp.Resultados[5].Valido)
	assert.Equal(t, "package", resp.Resultados[5].Tipo)
	assert.Equal(t, imeiB, resp.Resultados[5].IMEI)
}

func TestValidateBulk_RejectsEmpty(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.ValidateBulk(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestValidateBulk_InventoryError(t *testing.T) {
	h := newHarness(t)
	h.devices.err = errBoom
	_, err := h.svc.ValidateBulk(context.Background(), []string{imeiA})
	assert.ErrorIs(t, err, errBoom)
}

func TestSmartScan_Identifier(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.SmartScan(context.Background(), " "+imeiA+" ")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.ScanTypeIMEI, res.Type)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"imei"}, h.devices.fieldHits)
}

func TestSmartScan_TriesCartonPalletLot(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.SmartScan(context.Background(), "PL-1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanTypePallet, res.Type)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"caja_master", "pallet_id"}, h.devices.fieldHits)
}

func TestSmartScan_NothingFound(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.SmartScan(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, models.ScanTypeUnknown, res.Type)
	assert.Empty(t, res.Serials)
	assert.NotEmpty(t, res.Message)
}

func TestSearchBy(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.SearchBy(context.Background(), models.ScanTypeLot, "LOT-2")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, imeiC, res.Serials[0].IMEI)

	_, err = h.svc.SearchBy(context.Background(), "shelf", "S1")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSearchBy_FlagsCappedLot(t *testing.T) {
	h := newHarness(t)
	for i := 0; i <= deviceRepo.MaxExpansion; i++ {
		h.devices.devices = append(h.devices.devices, models.Device{
			DeviceID: fmt.Sprintf("big-%d", i),
			IMEI:     fmt.Sprintf("86100000%07d", i),
			Location: "LOT-BIG",
		})
	}

	res, err := h.svc.SearchBy(context.Background(), models.ScanTypeLot, "LOT-BIG")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Truncated)
	assert.Equal(t, deviceRepo.MaxExpansion, res.Count)
	assert.Len(t, res.Serials, deviceRepo.MaxExpansion)
	assert.Contains(t, res.Message, "only the first 5000")

	small, err := h.svc.SearchBy(context.Background(), models.ScanTypeLot, "LOT-2")
	require.NoError(t, err)
	assert.False(t, small.Truncated)
}

func TestConfigOptions_Cached(t *testing.T) {
	h := newHarness(t)

	first, err := h.svc.ConfigOptions(context.Background())
	require.NoError(t, err)
	second, err := h.svc.ConfigOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, h.cust.calls)
	assert.Equal(t, first, second)
	assert.Len(t, second.CSVFormats, 8)
}

func sendRequest() models.SeriesNotificationRequest {
	return models.SeriesNotificationRequest{
		Serials: []models.DeviceSerial{
			{IMEI: imeiA},
			{IMEI: imeiA},
			{IMEI: "861888082600000"},
			{PackageNo: package1},
		},
		CustomerName: "Acme",
		Location:     "LOT 1",
		CSVFormat:    models.FormatDetailed,
		EmailTo:      "ops@acme.test",
		EmailCC:      []string{" ", "audit@acme.test"},
	}
}

func TestSend(t *testing.T) {
	h := newHarness(t)
	op := models.Operator{Name: "Ana", Email: "ana@ose.test"}

	resp, err := h.svc.Send(context.Background(), op, sendRequest())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.True(t, resp.EmailSent)
	assert.Equal(t, 2, resp.NotifiedCount)
	assert.Equal(t, []string{"861888082600000"}, resp.FailedSerials)
	assert.Equal(t, "notificacion_LOT_1_20260504_093015.csv", resp.CSVFilename)
	assert.Equal(t,
		"IMEI,ICCID,PACKAGE_NO,MARCA,REFERENCIA\n"+
			imeiA+","+iccidA+",,Teltonika,\n"+
			"861888082600000,,,,\n"+
			imeiB+",,"+package1+",Queclink,\n",
		resp.CSVContent)
	assert.Empty(t, resp.Errors)

	require.Len(t, h.mailer.sent, 1)
	msg := h.mailer.sent[0]
	assert.Equal(t, "ops@acme.test", msg.To)
	assert.Equal(t, []string{"audit@acme.test"}, msg.CC)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, resp.CSVContent, string(msg.Attachments[0].Data))

	require.Len(t, h.history.items, 1)
	item := h.history.items[0]
	assert.Equal(t, resp.ID, item.ID)
	assert.Equal(t, 3, item.DeviceCount)
	assert.Equal(t, "https://files.test/n.csv", item.CSVURL)
	assert.Equal(t, "Ana", item.Operator)
	assert.True(t, item.EmailSent)

	assert.ElementsMatch(t, []string{"d1", "d2"}, h.devices.marked)
	assert.Equal(t, resp.ID, h.devices.markedAs)
}

func TestSend_SameDeviceUnderDifferentIdentifiers(t *testing.T) {
	h := newHarness(t)
	req := sendRequest()
	req.CSVFormat = models.FormatCompact
	req.Serials = []models.DeviceSerial{
		{ICCID: iccidA},
		{IMEI: imeiA},
		{IMEI: imeiA, ICCID: iccidA},
		{IMEI: imeiB},
	}

	resp, err := h.svc.Send(context.Background(), models.Operator{}, req)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.NotifiedCount)
	assert.Equal(t, "IMEI\n"+imeiA+"\n"+imeiB+"\n", resp.CSVContent)
	assert.Equal(t, []string{"d1", "d2"}, h.devices.marked)
	require.Len(t, h.history.items, 1)
	assert.Equal(t, 2, h.history.items[0].DeviceCount)
	assert.Len(t, h.history.items[0].Serials, 2)
}

func TestSend_EmailFailureQueuesRetry(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errBoom

	resp, err := h.svc.Send(context.Background(), models.Operator{}, sendRequest())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.EmailSent)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "queued for retry")
	require.Len(t, h.queue.tasks, 1)
	assert.Equal(t, tasks.TypeEmailRetry, h.queue.tasks[0].Type())
	assert.False(t, h.history.items[0].EmailSent)
}

func TestSend_RejectsMissingFields(t *testing.T) {
	h := newHarness(t)

	req := sendRequest()
	req.Location = "  "
	_, err := h.svc.Send(context.Background(), models.Operator{}, req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	req = sendRequest()
	req.Serials = nil
	_, err = h.svc.Send(context.Background(), models.Operator{}, req)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, h.mailer.sent)
}

func TestSend_NothingMatched(t *testing.T) {
	h := newHarness(t)
	req := sendRequest()
	req.Serials = []models.DeviceSerial{{IMEI: "861888082600000"}}

	_, err := h.svc.Send(context.Background(), models.Operator{}, req)

	assert.ErrorIs(t, err, ErrNothingToNotify)
	assert.Empty(t, h.mailer.sent)
	assert.Empty(t, h.history.items)
}

func TestHistory_ClampsAndPages(t *testing.T) {
	h := newHarness(t)
	h.history.total = 45

	page, err := h.svc.History(context.Background(), models.HistoryFilter{}, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, h.history.page)
	assert.Equal(t, MaxHistoryLimit, h.history.limit)
	assert.Equal(t, 1, page.Pages)
	assert.NotNil(t, page.Items)

	page, err = h.svc.History(context.Background(), models.HistoryFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, h.history.limit)
	assert.Equal(t, 3, page.Pages)
}

func TestHistoryCSV(t *testing.T) {
	h := newHarness(t)
	h.history.items = []models.NotificationHistoryItem{{
		ID:          "n-1",
		CSVFormat:   models.FormatCompact,
		CSVFilename: "n.csv",
		Serials:     []models.DeviceSerial{{IMEI: imeiA}},
	}}

	name, content, err := h.svc.HistoryCSV(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, "n.csv", name)
	assert.Equal(t, "IMEI\n"+imeiA+"\n", content)

	_, _, err = h.svc.HistoryCSV(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCSVFilename(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "notificacion_GD-001_20260102_030405.csv", CSVFilename("GD-001", at))
	assert.Equal(t, "notificacion_lote_20260102_030405.csv", CSVFilename("//", at))
}
