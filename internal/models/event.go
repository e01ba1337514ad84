package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип доменного события
type EventType string

const (
	EventTypeFareCalculated   EventType = "fare.calculated"
	EventTypeReferenceChanged EventType = "reference.changed"
)

// Event конверт события, публикуемого в Kafka
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Сущности справочников, изменения которых рассылаются через reference.changed
const (
	EntityAirport      = "airport"
	EntityCar          = "car"
	EntityExtraCharge  = "extra_charge"
	EntitySettings     = "settings"
	EntityGoogleAPIKey = "google_api_key"
	EntitySMSNumber    = "sms_number"
)

// ReferenceAction действие над справочником
type ReferenceAction string

const (
	ReferenceCreated ReferenceAction = "created"
	ReferenceUpdated ReferenceAction = "updated"
	ReferenceDeleted ReferenceAction = "deleted"
)
