package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
	"taxi-booking/internal/redis"

	"github.com/lib/pq"
)

const settingsWindowLayout = "15:04"

// SettingsService хранит единственную строку общих настроек.
type SettingsService struct {
	db    *database.DB
	log   *logger.Logger
	cache referenceCache
}

// NewSettingsService создаёт сервис настроек.
func NewSettingsService(db *database.DB, log *logger.Logger, rdb *redis.Client, ttl time.Duration, events ReferenceEvents) *SettingsService {
	return &SettingsService{
		db:    db,
		log:   log,
		cache: newReferenceCache(rdb, log, ttl, events),
	}
}

// GetSettings возвращает общие настройки; отсутствие строки означает, что система не настроена.
func (s *SettingsService) GetSettings(ctx context.Context) (*models.CommonSettings, error) {
	key := redis.CacheKey(redis.KeyPrefixSettings, "common")

	var cached models.CommonSettings
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	query := `
		SELECT gratuity_percentage, tunnel_charge, holidays, holiday_surcharge,
			night_charge, night_start, night_end,
			hidden_night_charge, hidden_night_start, hidden_night_end,
			square_discount_percentage, paypal_discount_percentage, credit_card_discount_percentage, cash_discount_percentage,
			created_at, updated_at
		FROM common_settings
		WHERE id = 1
	`

	var (
		gratuity, tunnel, holidaySurcharge, night, hiddenNight sql.NullFloat64
		square, paypal, card, cash                             sql.NullFloat64
		nightStart, nightEnd, hiddenStart, hiddenEnd           sql.NullString
		holidays                                               []string
	)
	settings := &models.CommonSettings{}
	err := s.db.QueryRowContext(ctx, query).Scan(
		&gratuity, &tunnel, pq.Array(&holidays), &holidaySurcharge,
		&night, &nightStart, &nightEnd,
		&hiddenNight, &hiddenStart, &hiddenEnd,
		&square, &paypal, &card, &cash,
		&settings.CreatedAt, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.Configuration("common settings are not configured", err)
		}
		return nil, fmt.Errorf("failed to get common settings: %w", err)
	}

	settings.GratuityPercentage = nullFloat(gratuity)
	settings.TunnelCharge = nullFloat(tunnel)
	settings.Holidays = holidays
	settings.HolidaySurcharge = nullFloat(holidaySurcharge)
	settings.NightCharge = nullFloat(night)
	settings.NightStart = nullString(nightStart)
	settings.NightEnd = nullString(nightEnd)
	settings.HiddenNightCharge = nullFloat(hiddenNight)
	settings.HiddenNightStart = nullString(hiddenStart)
	settings.HiddenNightEnd = nullString(hiddenEnd)
	settings.SquareDiscountPercentage = nullFloat(square)
	settings.PaypalDiscountPercentage = nullFloat(paypal)
	settings.CreditCardDiscountPercentage = nullFloat(card)
	settings.CashDiscountPercentage = nullFloat(cash)
	if settings.Holidays == nil {
		settings.Holidays = []string{}
	}

	s.cache.set(ctx, key, settings)
	return settings, nil
}

// UpsertSettings создаёт строку настроек при первом вызове и обновляет её на месте в дальнейшем.
func (s *SettingsService) UpsertSettings(ctx context.Context, req *models.CommonSettings) (*models.CommonSettings, error) {
	if err := validateSettings(req); err != nil {
		return nil, err
	}
	holidays := normalizeHolidays(req.Holidays)

	query := `
		INSERT INTO common_settings (
			id, gratuity_percentage, tunnel_charge, holidays, holiday_surcharge,
			night_charge, night_start, night_end,
			hidden_night_charge, hidden_night_start, hidden_night_end,
			square_discount_percentage, paypal_discount_percentage, credit_card_discount_percentage, cash_discount_percentage,
			created_at, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		ON CONFLICT (id) DO UPDATE SET
			gratuity_percentage = EXCLUDED.gratuity_percentage,
			tunnel_charge = EXCLUDED.tunnel_charge,
			holidays = EXCLUDED.holidays,
			holiday_surcharge = EXCLUDED.holiday_surcharge,
			night_charge = EXCLUDED.night_charge,
			night_start = EXCLUDED.night_start,
			night_end = EXCLUDED.night_end,
			hidden_night_charge = EXCLUDED.hidden_night_charge,
			hidden_night_start = EXCLUDED.hidden_night_start,
			hidden_night_end = EXCLUDED.hidden_night_end,
			square_discount_percentage = EXCLUDED.square_discount_percentage,
			paypal_discount_percentage = EXCLUDED.paypal_discount_percentage,
			credit_card_discount_percentage = EXCLUDED.credit_card_discount_percentage,
			cash_discount_percentage = EXCLUDED.cash_discount_percentage,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		req.GratuityPercentage, req.TunnelCharge, pq.Array(holidays), req.HolidaySurcharge,
		req.NightCharge, req.NightStart, req.NightEnd,
		req.HiddenNightCharge, req.HiddenNightStart, req.HiddenNightEnd,
		req.SquareDiscountPercentage, req.PaypalDiscountPercentage, req.CreditCardDiscountPercentage, req.CashDiscountPercentage,
		time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save common settings: %w", err)
	}

	s.log.Info("Common settings saved")
	s.cache.changed(ctx, redis.KeyPrefixSettings, models.EntitySettings, models.ReferenceUpdated, 1)
	return s.GetSettings(ctx)
}

func validateSettings(req *models.CommonSettings) error {
	errs := fieldErrors{}

	percentages := map[string]*float64{
		"gratuity_percentage":             req.GratuityPercentage,
		"square_discount_percentage":      req.SquareDiscountPercentage,
		"paypal_discount_percentage":      req.PaypalDiscountPercentage,
		"credit_card_discount_percentage": req.CreditCardDiscountPercentage,
		"cash_discount_percentage":        req.CashDiscountPercentage,
	}
	for field, v := range percentages {
		if v != nil && (*v < 0 || *v > 100) {
			errs.add(field, "The percentage must be between 0 and 100.")
		}
	}

	amounts := map[string]*float64{
		"tunnel_charge":       req.TunnelCharge,
		"holiday_surcharge":   req.HolidaySurcharge,
		"night_charge":        req.NightCharge,
		"hidden_night_charge": req.HiddenNightCharge,
	}
	for field, v := range amounts {
		if v != nil && *v < 0 {
			errs.add(field, "The amount must be at least 0.")
		}
	}

	clocks := map[string]*string{
		"night_start":        req.NightStart,
		"night_end":          req.NightEnd,
		"hidden_night_start": req.HiddenNightStart,
		"hidden_night_end":   req.HiddenNightEnd,
	}
	for field, v := range clocks {
		if v == nil {
			continue
		}
		if _, err := time.Parse(settingsWindowLayout, *v); err != nil {
			errs.add(field, "The time must match the format HH:MM.")
		}
	}

	for i, h := range req.Holidays {
		if _, ok := ParsePickupDate(h); !ok {
			errs.add(fmt.Sprintf("holidays.%d", i), "The holiday must be a date in the format YYYY-MM-DD.")
		}
	}

	return errs.err()
}

// normalizeHolidays приводит даты праздников к YYYY-MM-DD и убирает повторы, сохраняя порядок.
// Список уже прошёл validateSettings.
func normalizeHolidays(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		d, ok := ParsePickupDate(v)
		if !ok {
			continue
		}
		day := d.Format(DateLayout)
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
