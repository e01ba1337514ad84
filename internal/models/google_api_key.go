package models

import "time"

// GoogleAPIKey ключ Google Maps, которым пользуется провайдер расстояний
type GoogleAPIKey struct {
	ID        int64     `json:"id" db:"id"`
	APIKey    string    `json:"api_key" db:"api_key"`
	Label     string    `json:"label" db:"label"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Masked возвращает ключ, в котором видны только последние 4 символа
func (k *GoogleAPIKey) Masked() string {
	if len(k.APIKey) <= 4 {
		return "****"
	}
	return "****" + k.APIKey[len(k.APIKey)-4:]
}

// GoogleAPIKeyRequest описывает тело запроса для ключа
type GoogleAPIKeyRequest struct {
	APIKey string `json:"api_key"`
	Label  string `json:"label"`
	Active *bool  `json:"active,omitempty"`
}
