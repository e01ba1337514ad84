package models

import "time"

// SlabType различает тарифные ступени для поездок по расстоянию и почасовой аренды
type SlabType string

const (
	SlabTypeDistance      SlabType = "Distance"
	SlabTypeHourlyService SlabType = "HourlyService"
)

// SlabUnit единица измерения границы ступени
type SlabUnit string

const (
	SlabUnitMile SlabUnit = "mile"
	SlabUnitHour SlabUnit = "hour"
)

// FareSlab ступень тарифа автомобиля: верхняя граница и цена за единицу внутри неё
type FareSlab struct {
	ID         int64    `json:"id" db:"id"`
	CarID      int64    `json:"car_id" db:"car_id"`
	SlabValue  float64  `json:"slab_value" db:"slab_value"`
	SlabUnit   SlabUnit `json:"slab_unit" db:"slab_unit"`
	SlabType   SlabType `json:"slab_type" db:"slab_type"`
	FareAmount float64  `json:"fare_amount" db:"fare_amount"`
	Active     bool     `json:"active" db:"active"`
}

// Car представляет класс автомобиля с вместимостью и тарифной сеткой
type Car struct {
	ID                   int64      `json:"id" db:"id"`
	Name                 string     `json:"name" db:"name"`
	Model                string     `json:"model" db:"model"`
	NumOfPassengers      int        `json:"num_of_passengers" db:"num_of_passengers"`
	SmallLuggageCapacity int        `json:"small_luggage_capacity" db:"small_luggage_capacity"`
	LargeLuggageCapacity int        `json:"large_luggage_capacity" db:"large_luggage_capacity"`
	IsChildSeat          bool       `json:"is_child_seat" db:"is_child_seat"`
	Photo                string     `json:"photo" db:"photo"`
	Active               bool       `json:"active" db:"active"`
	Slabs                []FareSlab `json:"slabs,omitempty"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// LuggageCapacity возвращает суммарную вместимость багажа
func (c *Car) LuggageCapacity() int {
	return c.SmallLuggageCapacity + c.LargeLuggageCapacity
}

// CarRequest описывает тело запроса на создание/обновление автомобиля
type CarRequest struct {
	Name                 string            `json:"name"`
	Model                string            `json:"model"`
	NumOfPassengers      int               `json:"num_of_passengers"`
	SmallLuggageCapacity int               `json:"small_luggage_capacity"`
	LargeLuggageCapacity int               `json:"large_luggage_capacity"`
	IsChildSeat          bool              `json:"is_child_seat"`
	Photo                string            `json:"photo"`
	Active               *bool             `json:"active,omitempty"`
	Slabs                []FareSlabRequest `json:"slabs,omitempty"`
}

// FareSlabRequest описывает одну ступень в запросе
type FareSlabRequest struct {
	SlabValue  float64  `json:"slab_value"`
	SlabUnit   SlabUnit `json:"slab_unit"`
	SlabType   SlabType `json:"slab_type"`
	FareAmount float64  `json:"fare_amount"`
	Active     *bool    `json:"active,omitempty"`
}

// ReplaceSlabsRequest заменяет всю тарифную сетку автомобиля
type ReplaceSlabsRequest struct {
	Slabs []FareSlabRequest `json:"slabs"`
}
