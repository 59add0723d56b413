package deviceRepo

import (
	"context"
	"time"

	"oseplatform/models"
)

// Lookup fields of the inventory.
const (
	FieldIMEI       = "imei"
	FieldICCID      = "iccid"
	FieldPackageNo  = "package_no"
	FieldCajaMaster = "caja_master"
	FieldPalletID   = "pallet_id"
	FieldLocation   = "location"
)

// MaxExpansion caps how many devices one carton, pallet or lot lookup returns.
const MaxExpansion = 5000

// DeviceRepository reads the device inventory and records notification marks on it.
type DeviceRepository interface {
	// FindByIdentifiers returns devices whose IMEI, ICCID or package number is in the given sets.
	FindByIdentifiers(ctx context.Context, imeis, iccids, packages []string) ([]models.Device, error)
	// FindByField returns devices whose field equals value. At most MaxExpansion+1 devices
	// are returned so callers can tell a capped result from a complete one.
	FindByField(ctx context.Context, field, value string) ([]models.Device, error)
	// MarkNotified stamps the given device ids with the notification id.
	MarkNotified(ctx context.Context, deviceIDs []string, notificationID string, at time.Time) (int64, error)
}
