package database

import (
	"context"
	"fmt"
)

// schema создаёт таблицы справочников; все выражения идемпотентны
var schema = []string{
	`CREATE TABLE IF NOT EXISTS airports (
		id            BIGSERIAL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL UNIQUE,
		code          VARCHAR(16)  NOT NULL DEFAULT '',
		from_tax_toll NUMERIC(10,2) NOT NULL DEFAULT 0,
		to_tax_toll   NUMERIC(10,2) NOT NULL DEFAULT 0,
		logo          VARCHAR(512) NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cars (
		id                     BIGSERIAL PRIMARY KEY,
		name                   VARCHAR(255) NOT NULL UNIQUE,
		model                  VARCHAR(255) NOT NULL DEFAULT '',
		num_of_passengers      INTEGER NOT NULL,
		small_luggage_capacity INTEGER NOT NULL DEFAULT 0,
		large_luggage_capacity INTEGER NOT NULL DEFAULT 0,
		is_child_seat          BOOLEAN NOT NULL DEFAULT FALSE,
		photo                  VARCHAR(512) NOT NULL DEFAULT '',
		active                 BOOLEAN NOT NULL DEFAULT TRUE,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS car_fare_slabs (
		id          BIGSERIAL PRIMARY KEY,
		car_id      BIGINT NOT NULL REFERENCES cars(id) ON DELETE CASCADE,
		slab_value  NUMERIC(10,2) NOT NULL,
		slab_unit   VARCHAR(16) NOT NULL,
		slab_type   VARCHAR(32) NOT NULL,
		fare_amount NUMERIC(10,2) NOT NULL,
		active      BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_car_fare_slabs_car_id ON car_fare_slabs(car_id)`,
	`CREATE TABLE IF NOT EXISTS extra_charges (
		id                BIGSERIAL PRIMARY KEY,
		area_name         VARCHAR(255) NOT NULL UNIQUE,
		zip_codes         TEXT NOT NULL DEFAULT '',
		extra_charge      NUMERIC(10,2) NOT NULL DEFAULT 0,
		extra_toll_charge NUMERIC(10,2) NOT NULL DEFAULT 0,
		active            BOOLEAN NOT NULL DEFAULT TRUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sms_numbers (
		id           BIGSERIAL PRIMARY KEY,
		phone_number VARCHAR(32) NOT NULL UNIQUE,
		label        VARCHAR(255) NOT NULL DEFAULT '',
		active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS google_api_keys (
		id         BIGSERIAL PRIMARY KEY,
		api_key    VARCHAR(255) NOT NULL UNIQUE,
		label      VARCHAR(255) NOT NULL DEFAULT '',
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS common_settings (
		id                            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		gratuity_percentage           NUMERIC(5,2),
		tunnel_charge                 NUMERIC(10,2),
		holidays                      TEXT[] NOT NULL DEFAULT '{}',
		holiday_surcharge             NUMERIC(10,2),
		night_charge                  NUMERIC(10,2),
		night_start                   VARCHAR(5),
		night_end                     VARCHAR(5),
		hidden_night_charge           NUMERIC(10,2),
		hidden_night_start            VARCHAR(5),
		hidden_night_end              VARCHAR(5),
		square_discount_percentage    NUMERIC(5,2),
		paypal_discount_percentage    NUMERIC(5,2),
		credit_card_discount_percentage NUMERIC(5,2),
		cash_discount_percentage      NUMERIC(5,2),
		created_at                    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate применяет схему справочников
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
