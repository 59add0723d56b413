package notification

import (
	"context"
	"fmt"
	"strings"

	deviceRepo "oseplatform/database/repository/device"
	"oseplatform/models"
	"oseplatform/services/serials"
)

// containerFields lists the grouping lookups tried by SmartScan, in order.
var containerFields = []struct {
	scanType string
	field    string
}{
	{models.ScanTypeCarton, deviceRepo.FieldCajaMaster},
	{models.ScanTypePallet, deviceRepo.FieldPalletID},
	{models.ScanTypeLot, deviceRepo.FieldLocation},
}

var identifierFields = map[serials.Kind]string{
	serials.KindIMEI:    deviceRepo.FieldIMEI,
	serials.KindICCID:   deviceRepo.FieldICCID,
	serials.KindPackage: deviceRepo.FieldPackageNo,
}

// SmartScan expands a scanned code. Device identifiers are recognized by format; any other
// code is tried as a carton, then a pallet, then a lot.
func (s *DefaultNotificationService) SmartScan(ctx context.Context, code string) (*models.ScanResult, error) {
	code = serials.Canonical(code)
	if code == "" {
		return nil, invalid("code is required")
	}

	kind := serials.Classify(code)
	if field, ok := identifierFields[kind]; ok {
		devices, err := s.devices.FindByField(ctx, field, code)
		if err != nil {
			return nil, fmt.Errorf("SmartScan: %w", err)
		}
		return scanResult(string(kind), code, devices), nil
	}

	for _, c := range containerFields {
		devices, err := s.devices.FindByField(ctx, c.field, code)
		if err != nil {
			return nil, fmt.Errorf("SmartScan: %w", err)
		}
		if len(devices) > 0 {
			return scanResult(c.scanType, code, devices), nil
		}
	}
	return scanResult(models.ScanTypeUnknown, code, nil), nil
}

// SearchBy expands a carton, pallet or lot.
func (s *DefaultNotificationService) SearchBy(ctx context.Context, scanType, value string) (*models.ScanResult, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, invalid("%s is required", scanType)
	}
	for _, c := range containerFields {
		if c.scanType != scanType {
			continue
		}
		devices, err := s.devices.FindByField(ctx, c.field, value)
		if err != nil {
			return nil, fmt.Errorf("SearchBy %s: %w", scanType, err)
		}
		return scanResult(scanType, value, devices), nil
	}
	return nil, invalid("unsupported search type %q", scanType)
}

func scanResult(scanType, identifier string, devices []models.Device) *models.ScanResult {
	res := &models.ScanResult{
		Type:       scanType,
		Identifier: identifier,
	}
	if len(devices) > deviceRepo.MaxExpansion {
		devices = devices[:deviceRepo.MaxExpansion]
		res.Truncated = true
	}
	res.Serials = make([]models.DeviceSerial, 0, len(devices))
	for _, d := range devices {
		res.Serials = append(res.Serials, d.Serial())
	}
	res.Count = len(res.Serials)
	res.Success = res.Count > 0

	switch {
	case !res.Success && scanType == models.ScanTypeUnknown:
		res.Message = fmt.Sprintf("no devices found for code %s", identifier)
	case !res.Success:
		res.Message = fmt.Sprintf("no devices found for %s %s", scanType, identifier)
	case res.Truncated:
		res.Message = fmt.Sprintf("more than %d devices found for %s %s, only the first %d were loaded",
			deviceRepo.MaxExpansion, scanType, identifier, res.Count)
	default:
		res.Message = fmt.Sprintf("%d devices found for %s %s", res.Count, scanType, identifier)
	}
	return res
}
