package models

// DeviceSerial identifies one physical unit for notification purposes.
// At least one of IMEI, ICCID or PackageNo is set.
type DeviceSerial struct {
	IMEI      string `bson:"imei" json:"imei"`
	ICCID     string `bson:"iccid" json:"iccid"`
	PackageNo string `bson:"package_no,omitempty" json:"package_no,omitempty"`

	// Enrichment, populated after validation.
	DeviceID      string `bson:"device_id,omitempty" json:"device_id,omitempty"`
	Marca         string `bson:"marca,omitempty" json:"marca,omitempty"`
	Operador      string `bson:"operador,omitempty" json:"operador,omitempty"`
	CajaMaster    string `bson:"caja_master,omitempty" json:"caja_master,omitempty"`
	PalletID      string `bson:"pallet_id,omitempty" json:"pallet_id,omitempty"`
	OrderNumber   string `bson:"order_number,omitempty" json:"order_number,omitempty"`
	NroReferencia string `bson:"nro_referencia,omitempty" json:"nro_referencia,omitempty"`
}

// SerialKey is the dedup key of a serial: its identifier tuple.
type SerialKey struct {
	IMEI      string
	ICCID     string
	PackageNo string
}

// Key returns the identifier tuple.
func (s DeviceSerial) Key() SerialKey {
	return SerialKey{IMEI: s.IMEI, ICCID: s.ICCID, PackageNo: s.PackageNo}
}

// Empty reports whether no identifier is set.
func (s DeviceSerial) Empty() bool {
	return s.IMEI == "" && s.ICCID == "" && s.PackageNo == ""
}

// Identifier returns the value submitted for validation: IMEI first, then ICCID, then package number.
func (s DeviceSerial) Identifier() string {
	switch {
	case s.IMEI != "":
		return s.IMEI
	case s.ICCID != "":
		return s.ICCID
	default:
		return s.PackageNo
	}
}

// Enrich copies enrichment fields from meta, keeping identifiers already present.
func (s *DeviceSerial) Enrich(meta DeviceSerial) {
	if s.IMEI == "" {
		s.IMEI = meta.IMEI
	}
	if s.ICCID == "" {
		s.ICCID = meta.ICCID
	}
	if s.PackageNo == "" {
		s.PackageNo = meta.PackageNo
	}
	s.DeviceID = meta.DeviceID
	s.Marca = meta.Marca
	s.Operador = meta.Operador
	s.CajaMaster = meta.CajaMaster
	s.PalletID = meta.PalletID
	s.OrderNumber = meta.OrderNumber
	s.NroReferencia = meta.NroReferencia
}

// InvalidLine is an input line the normalizer rejected.
type InvalidLine struct {
	Input string `json:"input"`
	Error string `json:"error"`
}

// ParseResult is the output of input normalization. Valid keeps input line order.
type ParseResult struct {
	Valid   []DeviceSerial `json:"valid"`
	Invalid []InvalidLine  `json:"invalid"`
}

// ValidationResult is the verdict for one submitted serial.
// Valid is the single source of truth for "eligible to send".
type ValidationResult struct {
	Serial          DeviceSerial `json:"serial"`
	Valid           bool         `json:"valid"`
	Exists          bool         `json:"exists"`
	AlreadyNotified bool         `json:"already_notified"`
	Error           string       `json:"error,omitempty"`
}

// BulkValidationResult aggregates a bulk validation. Valid+Invalid == Total == len(Results);
// AlreadyNotified is counted separately and is part of Invalid.
type BulkValidationResult struct {
	Total           int                `json:"total"`
	Valid           int                `json:"valid"`
	Invalid         int                `json:"invalid"`
	AlreadyNotified int                `json:"already_notified"`
	Results         []ValidationResult `json:"results"`
}

// Tally recomputes the aggregate counts from Results.
func (b *BulkValidationResult) Tally() {
	b.Total = len(b.Results)
	b.Valid, b.Invalid, b.AlreadyNotified = 0, 0, 0
	for _, r := range b.Results {
		if r.Valid {
			b.Valid++
		} else {
			b.Invalid++
		}
		if r.AlreadyNotified {
			b.AlreadyNotified++
		}
	}
}

// ValidSerials returns the eligible serials in result order.
func (b BulkValidationResult) ValidSerials() []DeviceSerial {
	out := make([]DeviceSerial, 0, b.Valid)
	for _, r := range b.Results {
		if r.Valid {
			out = append(out, r.Serial)
		}
	}
	return out
}
