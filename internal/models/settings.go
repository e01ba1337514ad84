package models

import "time"

// CommonSettings единственная строка глобальных настроек надбавок и скидок.
// Необязательные поля - указатели: nil значит "не настроено".
type CommonSettings struct {
	GratuityPercentage           *float64  `json:"gratuity_percentage"`
	TunnelCharge                 *float64  `json:"tunnel_charge"`
	Holidays                     []string  `json:"holidays"`
	HolidaySurcharge             *float64  `json:"holiday_surcharge"`
	NightCharge                  *float64  `json:"night_charge"`
	NightStart                   *string   `json:"night_start"`
	NightEnd                     *string   `json:"night_end"`
	HiddenNightCharge            *float64  `json:"hidden_night_charge"`
	HiddenNightStart             *string   `json:"hidden_night_start"`
	HiddenNightEnd               *string   `json:"hidden_night_end"`
	SquareDiscountPercentage     *float64  `json:"square_discount_percentage"`
	PaypalDiscountPercentage     *float64  `json:"paypal_discount_percentage"`
	CreditCardDiscountPercentage *float64  `json:"credit_card_discount_percentage"`
	CashDiscountPercentage       *float64  `json:"cash_discount_percentage"`
	CreatedAt                    time.Time `json:"created_at"`
	UpdatedAt                    time.Time `json:"updated_at"`
}

// IsHoliday проверяет, входит ли дата (YYYY-MM-DD) в список праздников
func (s *CommonSettings) IsHoliday(date string) bool {
	for _, h := range s.Holidays {
		if h == date {
			return true
		}
	}
	return false
}

// Amount разыменовывает необязательное число, nil даёт 0
func Amount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Text разыменовывает необязательную строку
func Text(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
