package models

import (
	"strings"
	"time"
)

// ExtraCharge доплата и дорожный сбор для района назначения
type ExtraCharge struct {
	ID              int64     `json:"id" db:"id"`
	AreaName        string    `json:"area_name" db:"area_name"`
	ZipCodes        string    `json:"zip_codes" db:"zip_codes"`
	ExtraCharge     float64   `json:"extra_charge" db:"extra_charge"`
	ExtraTollCharge float64   `json:"extra_toll_charge" db:"extra_toll_charge"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ZipCodeList разбирает список индексов через запятую
func (e *ExtraCharge) ZipCodeList() []string {
	var zips []string
	for _, z := range strings.Split(e.ZipCodes, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zips = append(zips, z)
		}
	}
	return zips
}

// Total сумма доплаты и сбора
func (e *ExtraCharge) Total() float64 {
	return e.ExtraCharge + e.ExtraTollCharge
}

// ExtraChargeRequest описывает тело запроса на создание/обновление доплаты
type ExtraChargeRequest struct {
	AreaName        string  `json:"area_name"`
	ZipCodes        string  `json:"zip_codes"`
	ExtraCharge     float64 `json:"extra_charge"`
	ExtraTollCharge float64 `json:"extra_toll_charge"`
	Active          *bool   `json:"active,omitempty"`
}
