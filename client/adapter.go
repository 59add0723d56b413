package client

import (
	"strings"

	"oseplatform/models"
)

// adaptBulkValidation translates the legacy validate-bulk schema into BulkValidationResult.
// Counts are recomputed from the per-item verdicts.
func adaptBulkValidation(wire models.BulkValidateWire) models.BulkValidationResult {
	out := models.BulkValidationResult{Results: make([]models.ValidationResult, 0, len(wire.Resultados))}
	for _, r := range wire.Resultados {
		serial := models.DeviceSerial{
			IMEI:          r.IMEI,
			ICCID:         r.ICCID,
			PackageNo:     r.NroPaquete,
			DeviceID:      r.DeviceID,
			Marca:         r.Marca,
			Operador:      r.Operador,
			CajaMaster:    r.CajaMaster,
			PalletID:      r.PalletID,
			OrderNumber:   r.OrderNumber,
			NroReferencia: r.NroReferencia,
		}
		if serial.Empty() {
			switch r.Tipo {
			case "iccid":
				serial.ICCID = strings.ToUpper(r.Serie)
			case "package":
				serial.PackageNo = r.Serie
			default:
				serial.IMEI = r.Serie
			}
		}
		out.Results = append(out.Results, models.ValidationResult{
			Serial:          serial,
			Valid:           r.Valido,
			Exists:          r.Existe,
			AlreadyNotified: r.YaNotificado,
			Error:           r.Error,
		})
	}
	out.Tally()
	return out
}
