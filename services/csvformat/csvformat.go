// Package csvformat renders device serials into the fixed CSV layouts expected by
// the destination systems.
package csvformat

import (
	"strings"

	"oseplatform/models"
)

// MIMEType is the content type used when a generated CSV is served or attached.
const MIMEType = "text/csv;charset=utf-8"

type column struct {
	header string
	value  func(models.DeviceSerial) string
}

type layout struct {
	label   string
	columns []column
}

var (
	colIMEI  = column{"IMEI", func(s models.DeviceSerial) string { return s.IMEI }}
	colICCID = column{"ICCID", func(s models.DeviceSerial) string { return s.ICCID }}
	colMarca = column{"MARCA", func(s models.DeviceSerial) string { return s.Marca }}
)

var layouts = map[models.CSVFormat]layout{
	models.FormatSeparated: {
		label:   "IMEI and ICCID in separate columns",
		columns: []column{colIMEI, colICCID},
	},
	models.FormatUnified: {
		label: "IMEI and ICCID in one column",
		columns: []column{{"IMEI_ICCID", func(s models.DeviceSerial) string {
			parts := make([]string, 0, 2)
			for _, p := range []string{s.IMEI, s.ICCID} {
				if p != "" {
					parts = append(parts, p)
				}
			}
			return strings.Join(parts, " ")
		}}},
	},
	models.FormatDetailed: {
		label: "Detailed",
		columns: []column{
			colIMEI,
			colICCID,
			{"PACKAGE_NO", func(s models.DeviceSerial) string { return s.PackageNo }},
			colMarca,
			{"REFERENCIA", func(s models.DeviceSerial) string { return s.NroReferencia }},
		},
	},
	models.FormatCompact: {
		label:   "IMEI only",
		columns: []column{colIMEI},
	},
	models.FormatLogisticaTrazable: {
		label: "Logistica trazable",
		columns: []column{
			colIMEI,
			colICCID,
			colMarca,
			{"OPERADOR", func(s models.DeviceSerial) string { return s.Operador }},
			{"CAJA_MASTER", func(s models.DeviceSerial) string { return s.CajaMaster }},
			{"PALLET_ID", func(s models.DeviceSerial) string { return s.PalletID }},
		},
	},
	models.FormatIMEIMarca: {
		label:   "IMEI and brand",
		columns: []column{colIMEI, colMarca},
	},
	models.FormatInspide: {
		label:   "Inspide",
		columns: []column{colIMEI, colICCID},
	},
	models.FormatClientesGenericos: {
		label: "Generic customers",
		columns: []column{
			colIMEI,
			colMarca,
			{"ORDER_NUMBER", func(s models.DeviceSerial) string {
				if s.OrderNumber != "" {
					return s.OrderNumber
				}
				return s.NroReferencia
			}},
		},
	},
}

// order fixes the listing order of Formats.
var order = []models.CSVFormat{
	models.FormatSeparated,
	models.FormatUnified,
	models.FormatDetailed,
	models.FormatCompact,
	models.FormatLogisticaTrazable,
	models.FormatIMEIMarca,
	models.FormatInspide,
	models.FormatClientesGenericos,
}

// Resolve returns format when it is known and FormatSeparated otherwise.
func Resolve(format models.CSVFormat) models.CSVFormat {
	if _, ok := layouts[format]; ok {
		return format
	}
	return models.FormatSeparated
}

// Known reports whether format names one of the layouts.
func Known(format models.CSVFormat) bool {
	_, ok := layouts[format]
	return ok
}

// Generate renders serials as CSV: a header line and one line per serial, each terminated
// by "\n". Empty values render as empty fields.
func Generate(serials []models.DeviceSerial, format models.CSVFormat) string {
	l := layouts[Resolve(format)]

	var b strings.Builder
	headers := make([]string, len(l.columns))
	for i, c := range l.columns {
		headers[i] = c.header
	}
	b.WriteString(strings.Join(headers, ","))
	b.WriteByte('\n')

	fields := make([]string, len(l.columns))
	for _, s := range serials {
		for i, c := range l.columns {
			fields[i] = clean(c.value(s))
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// Columns returns the header names of format.
func Columns(format models.CSVFormat) []string {
	l := layouts[Resolve(format)]
	out := make([]string, len(l.columns))
	for i, c := range l.columns {
		out[i] = c.header
	}
	return out
}

// Formats lists every layout in display order.
func Formats() []models.FormatOption {
	out := make([]models.FormatOption, 0, len(order))
	for _, f := range order {
		out = append(out, models.FormatOption{
			Value:   f,
			Label:   layouts[f].label,
			Columns: Columns(f),
		})
	}
	return out
}

var fieldCleaner = strings.NewReplacer(",", " ", "\r", " ", "\n", " ")

// clean keeps enrichment text from breaking the row structure.
func clean(v string) string {
	return strings.TrimSpace(fieldCleaner.Replace(v))
}
