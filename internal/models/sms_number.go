package models

import "time"

// SMSNumber номер, с которого отправляются SMS-уведомления
type SMSNumber struct {
	ID          int64     `json:"id" db:"id"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Label       string    `json:"label" db:"label"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SMSNumberRequest описывает тело запроса для SMS-номера
type SMSNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
	Label       string `json:"label"`
	Active      *bool  `json:"active,omitempty"`
}
