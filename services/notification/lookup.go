package notification

import (
	"context"

	"oseplatform/models"
	"oseplatform/services/serials"
)

// deviceIndex resolves identifiers against one batch of inventory rows.
type deviceIndex struct {
	byIMEI    map[string]models.Device
	byICCID   map[string]models.Device
	byPackage map[string]models.Device
}

func newDeviceIndex(devices []models.Device) *deviceIndex {
	ix := &deviceIndex{
		byIMEI:    make(map[string]models.Device, len(devices)),
		byICCID:   make(map[string]models.Device, len(devices)),
		byPackage: make(map[string]models.Device, len(devices)),
	}
	for _, d := range devices {
		if d.IMEI != "" {
			ix.byIMEI[d.IMEI] = d
		}
		if d.ICCID != "" {
			ix.byICCID[d.ICCID] = d
		}
		if d.PackageNo != "" {
			ix.byPackage[d.PackageNo] = d
		}
	}
	return ix
}

func (ix *deviceIndex) lookup(kind serials.Kind, code string) (models.Device, bool) {
	var d models.Device
	var ok bool
	switch kind {
	case serials.KindIMEI:
		d, ok = ix.byIMEI[code]
	case serials.KindICCID:
		d, ok = ix.byICCID[code]
	case serials.KindPackage:
		d, ok = ix.byPackage[code]
	}
	return d, ok
}

// match finds the device for a serial trying IMEI, then ICCID, then package number.
func (ix *deviceIndex) match(s models.DeviceSerial) (models.Device, bool) {
	if d, ok := ix.byIMEI[s.IMEI]; ok && s.IMEI != "" {
		return d, true
	}
	if d, ok := ix.byICCID[s.ICCID]; ok && s.ICCID != "" {
		return d, true
	}
	if d, ok := ix.byPackage[s.PackageNo]; ok && s.PackageNo != "" {
		return d, true
	}
	return models.Device{}, false
}

// identifierSets splits classified codes by kind.
type identifierSets struct {
	imeis, iccids, packages []string
}

func (s *identifierSets) add(kind serials.Kind, code string) {
	if code == "" {
		return
	}
	switch kind {
	case serials.KindIMEI:
		s.imeis = append(s.imeis, code)
	case serials.KindICCID:
		s.iccids = append(s.iccids, code)
	case serials.KindPackage:
		s.packages = append(s.packages, code)
	}
}

func (s *identifierSets) empty() bool {
	return len(s.imeis) == 0 && len(s.iccids) == 0 && len(s.packages) == 0
}

func (svc *DefaultNotificationService) loadIndex(ctx context.Context, ids identifierSets) (*deviceIndex, error) {
	if ids.empty() {
		return newDeviceIndex(nil), nil
	}
	devices, err := svc.devices.FindByIdentifiers(ctx, ids.imeis, ids.iccids, ids.packages)
	if err != nil {
		return nil, err
	}
	return newDeviceIndex(devices), nil
}
