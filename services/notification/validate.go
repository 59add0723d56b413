package notification

import (
	"context"
	"fmt"

	"oseplatform/models"
	"oseplatform/services/serials"

	"go.uber.org/zap"
)

// MaxBulkSeries caps the number of values accepted by one bulk validation.
const MaxBulkSeries = 5000

// Verdict messages of a bulk validation.
const (
	ErrMsgInvalidFormat   = "invalid format"
	ErrMsgNotInInventory  = "not found in inventory"
	errMsgAlreadyNotified = "already notified on %s"
)

// ValidateBulk checks each value's format, inventory presence and prior notification.
// Results keep input order, one per value.
func (s *DefaultNotificationService) ValidateBulk(ctx context.Context, series []string) (*models.BulkValidateWire, error) {
	if len(series) == 0 {
		return nil, invalid("series must not be empty")
	}
	if len(series) > MaxBulkSeries {
		return nil, invalid("at most %d series per request", MaxBulkSeries)
	}

	codes := make([]string, len(series))
	kinds := make([]serials.Kind, len(series))
	var ids identifierSets
	for i, raw := range series {
		codes[i] = serials.Canonical(raw)
		kinds[i] = serials.Classify(codes[i])
		ids.add(kinds[i], codes[i])
	}

	ix, err := s.loadIndex(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ValidateBulk: failed to query inventory: %w", err)
	}

	resp := &models.BulkValidateWire{
		Success:    true,
		Total:      len(series),
		Resultados: make([]models.SerieResultado, 0, len(series)),
	}
	for i, code := range codes {
		r := verdict(code, kinds[i], ix)
		if r.Valido {
			resp.Validos++
		} else {
			resp.Invalidos++
		}
		if r.YaNotificado {
			resp.YaNotificados++
		}
		resp.Resultados = append(resp.Resultados, r)
	}

	s.logger.Debug("bulk validation done",
		zap.Int("total", resp.Total),
		zap.Int("valid", resp.Validos),
		zap.Int("alreadyNotified", resp.YaNotificados))
	return resp, nil
}

func verdict(code string, kind serials.Kind, ix *deviceIndex) models.SerieResultado {
	r := models.SerieResultado{Serie: code, Tipo: string(kind)}
	if kind == serials.KindUnknown {
		r.Error = ErrMsgInvalidFormat
		return r
	}

	d, ok := ix.lookup(kind, code)
	if !ok {
		r.Error = ErrMsgNotInInventory
		return r
	}

	r.Existe = true
	r.IMEI = d.IMEI
	r.ICCID = d.ICCID
	r.NroPaquete = d.PackageNo
	r.DeviceID = d.DeviceID
	r.Marca = d.Marca
	r.Operador = d.Operador
	r.CajaMaster = d.CajaMaster
	r.PalletID = d.PalletID
	r.OrderNumber = d.OrderNumber
	r.NroReferencia = d.NroReferencia
	r.Cliente = d.CustomerName

	if d.Notified() {
		r.YaNotificado = true
		r.FechaNotificacion = d.NotifiedAt
		r.Error = fmt.Sprintf(errMsgAlreadyNotified, d.NotifiedAt.Format("2006-01-02"))
		return r
	}
	r.Valido = true
	return r
}
