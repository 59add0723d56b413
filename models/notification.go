package models

import "time"

// CSVFormat names one of the fixed output layouts.
type CSVFormat string

const (
	FormatSeparated         CSVFormat = "separated"
	FormatUnified           CSVFormat = "unified"
	FormatDetailed          CSVFormat = "detailed"
	FormatCompact           CSVFormat = "compact"
	FormatLogisticaTrazable CSVFormat = "logistica-trazable"
	FormatIMEIMarca         CSVFormat = "imei-marca"
	FormatInspide           CSVFormat = "inspide"
	FormatClientesGenericos CSVFormat = "clientes-genericos"
)

// NotificationHistoryItem is the immutable record of a sent batch.
type NotificationHistoryItem struct {
	ID            string         `bson:"id" json:"id"`
	Date          time.Time      `bson:"date" json:"date"`
	CustomerName  string         `bson:"customer_name" json:"customer_name"`
	CustomerID    string         `bson:"customer_id" json:"customer_id"`
	DeviceCount   int            `bson:"device_count" json:"device_count"`
	CSVFormat     CSVFormat      `bson:"csv_format" json:"csv_format"`
	EmailTo       string         `bson:"email_to" json:"email_to"`
	EmailCC       []string       `bson:"email_cc,omitempty" json:"email_cc,omitempty"`
	Operator      string         `bson:"operator" json:"operator"`
	OperatorEmail string         `bson:"operator_email" json:"operator_email"`
	CSVFilename   string         `bson:"csv_filename" json:"csv_filename"`
	CSVURL        string         `bson:"csv_url,omitempty" json:"csv_url,omitempty"`
	Notes         string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Serials       []DeviceSerial `bson:"serials" json:"serials"`
	Location      string         `bson:"location" json:"location"`
	EmailSent     bool           `bson:"email_sent" json:"email_sent"`
}

// SeriesNotificationRequest is the body of a send call.
type SeriesNotificationRequest struct {
	Serials      []DeviceSerial `json:"serials" binding:"required,min=1"`
	CustomerID   string         `json:"customer_id,omitempty"`
	CustomerName string         `json:"customer_name,omitempty"`
	Location     string         `json:"location" binding:"required"`
	CSVFormat    CSVFormat      `json:"csv_format" binding:"required"`
	EmailTo      string         `json:"email_to" binding:"required,email"`
	EmailCC      []string       `json:"email_cc,omitempty" binding:"omitempty,dive,email"`
	Notes        string         `json:"notes,omitempty"`
}

// SeriesNotificationResponse is the outcome of a send call.
type SeriesNotificationResponse struct {
	Success       bool     `json:"success"`
	ID            string   `json:"id,omitempty"`
	NotifiedCount int      `json:"notified_count"`
	CSVContent    string   `json:"csv_content"`
	CSVFilename   string   `json:"csv_filename"`
	EmailSent     bool     `json:"email_sent"`
	FailedSerials []string `json:"failed_serials"`
	Errors        []string `json:"errors,omitempty"`
}

// Scan types reported by the code resolver.
const (
	ScanTypeIMEI    = "imei"
	ScanTypeICCID   = "iccid"
	ScanTypePackage = "package"
	ScanTypeCarton  = "carton"
	ScanTypePallet  = "pallet"
	ScanTypeLot     = "lot"
	ScanTypeUnknown = "unknown"
)

// ScanResult is the expansion of one scanned or typed code.
type ScanResult struct {
	Success    bool           `json:"success"`
	Type       string         `json:"type"`
	Identifier string         `json:"identifier"`
	Count      int            `json:"count"`
	Serials    []DeviceSerial `json:"serials"`
	Message    string         `json:"message"`
	Truncated  bool           `json:"truncated,omitempty"`
}

// HistoryFilter holds the optional substring filters of a history query.
type HistoryFilter struct {
	Email    string
	Customer string
	Location string
}

// HistoryPage is one page of history items.
type HistoryPage struct {
	Items []NotificationHistoryItem `json:"items"`
	Total int64                     `json:"total"`
	Pages int                       `json:"pages"`
}

// Customer is an entry of the customers collection.
type Customer struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// FormatOption describes an output layout for selection lists.
type FormatOption struct {
	Value   CSVFormat `json:"value"`
	Label   string    `json:"label"`
	Columns []string  `json:"columns"`
}

// ConfigOptions feeds the configure step.
type ConfigOptions struct {
	Customers  []Customer     `json:"customers"`
	CSVFormats []FormatOption `json:"csv_formats"`
}
