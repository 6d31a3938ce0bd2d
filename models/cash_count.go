package models

import "time"

// CashCount is one physical count of the cash drawer against the day's sales.
type CashCount struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Fecha      string    `gorm:"type:varchar(10);not null;index" json:"fecha"`
	Efectivo   Money     `gorm:"type:decimal(12,2);not null" json:"efectivo"`
	VentaBruta Money     `gorm:"type:decimal(12,2);not null" json:"ventaBruta"`
	Diferencia Money     `gorm:"type:decimal(12,2);not null" json:"diferencia"`
	Usuario    string    `gorm:"type:varchar(255)" json:"usuario,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
}
