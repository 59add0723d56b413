// File: oseplatform/models/device.go
package models

import "time"

// Device is one inventory row in the devices collection.
type Device struct {
	DeviceID       string     `bson:"device_id" json:"device_id"`
	IMEI           string     `bson:"imei" json:"imei"`
	ICCID          string     `bson:"iccid" json:"iccid"`
	PackageNo      string     `bson:"package_no" json:"package_no"`
	Marca          string     `bson:"marca" json:"marca"`
	Operador       string     `bson:"operador" json:"operador"`
	CajaMaster     string     `bson:"caja_master" json:"caja_master"`
	PalletID       string     `bson:"pallet_id" json:"pallet_id"`
	Location       string     `bson:"location" json:"location"` // lot / waybill reference
	OrderNumber    string     `bson:"order_number" json:"order_number"`
	NroReferencia  string     `bson:"nro_referencia" json:"nro_referencia"`
	CustomerID     string     `bson:"customer_id" json:"customer_id"`
	CustomerName   string     `bson:"customer_name" json:"customer_name"`
	NotifiedAt     *time.Time `bson:"notified_at,omitempty" json:"notified_at,omitempty"`
	NotificationID string     `bson:"notification_id,omitempty" json:"notification_id,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// Serial projects the inventory row onto the notification serial shape.
func (d Device) Serial() DeviceSerial {
	return DeviceSerial{
		IMEI:          d.IMEI,
		ICCID:         d.ICCID,
		PackageNo:     d.PackageNo,
		DeviceID:      d.DeviceID,
		Marca:         d.Marca,
		Operador:      d.Operador,
		CajaMaster:    d.CajaMaster,
		PalletID:      d.PalletID,
		OrderNumber:   d.OrderNumber,
		NroReferencia: d.NroReferencia,
	}
}

// Notified reports whether the device was already part of a sent batch.
func (d Device) Notified() bool {
	return d.NotifiedAt != nil
}
