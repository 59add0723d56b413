package models

import "time"

// BulkValidateRequest is the body of validate-bulk. Each entry is an IMEI, ICCID or package number.
type BulkValidateRequest struct {
	Series []string `json:"series" binding:"required,min=1"`
}

// BulkValidateWire is the legacy Spanish-keyed validate-bulk response still consumed by the
// portals. Clients translate it into BulkValidationResult at the boundary.
type BulkValidateWire struct {
	Success       bool             `json:"success"`
	Total         int              `json:"total"`
	Validos       int              `json:"validos"`
	Invalidos     int              `json:"invalidos"`
	YaNotificados int              `json:"ya_notificados"`
	Resultados    []SerieResultado `json:"resultados"`
}

// SerieResultado is the per-series verdict in BulkValidateWire.
type SerieResultado struct {
	Serie             string     `json:"serie"`
	Tipo              string     `json:"tipo"`
	Valido            bool       `json:"valido"`
	Existe            bool       `json:"existe"`
	YaNotificado      bool       `json:"ya_notificado"`
	FechaNotificacion *time.Time `json:"fecha_notificacion,omitempty"`
	Error             string     `json:"error,omitempty"`

	IMEI          string `json:"imei,omitempty"`
	ICCID         string `json:"iccid,omitempty"`
	NroPaquete    string `json:"nro_paquete,omitempty"`
	DeviceID      string `json:"device_id,omitempty"`
	Marca         string `json:"marca,omitempty"`
	Operador      string `json:"operador,omitempty"`
	CajaMaster    string `json:"caja_master,omitempty"`
	PalletID      string `json:"pallet_id,omitempty"`
	OrderNumber   string `json:"order_number,omitempty"`
	NroReferencia string `json:"nro_referencia,omitempty"`
	Cliente       string `json:"cliente,omitempty"`
}
