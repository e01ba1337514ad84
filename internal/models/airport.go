package models

import "time"

// Airport представляет аэропорт и его сборы за подачу/доставку
type Airport struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Code        string    `json:"code" db:"code"`
	FromTaxToll float64   `json:"from_tax_toll" db:"from_tax_toll"`
	ToTaxToll   float64   `json:"to_tax_toll" db:"to_tax_toll"`
	Logo        string    `json:"logo" db:"logo"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AirportRequest описывает тело запроса на создание/обновление аэропорта
type AirportRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	FromTaxToll float64 `json:"from_tax_toll"`
	ToTaxToll   float64 `json:"to_tax_toll"`
	Logo        string  `json:"logo"`
	Active      *bool   `json:"active,omitempty"`
}
