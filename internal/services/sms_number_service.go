package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"taxi-booking/internal/apperror"
	"taxi-booking/internal/database"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"
)

const smsNumberColumns = "id, phone_number, label, active, created_at, updated_at"

var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)

// SMSNumberService управляет номерами для SMS-уведомлений.
type SMSNumberService struct {
	db     *database.DB
	log    *logger.Logger
	events ReferenceEvents
}

// NewSMSNumberService создаёт сервис SMS-номеров.
func NewSMSNumberService(db *database.DB, log *logger.Logger, events ReferenceEvents) *SMSNumberService {
	return &SMSNumberService{
		db:     db,
		log:    log,
		events: events,
	}
}

func validateSMSNumber(req *models.SMSNumberRequest) error {
	errs := fieldErrors{}
	req.PhoneNumber = normalizePhone(req.PhoneNumber)
	if req.PhoneNumber == "" {
		errs.add("phone_number", "The phone number field is required.")
	} else {
		errs.check(phonePattern.MatchString(req.PhoneNumber), "phone_number", "The phone number format is invalid.")
	}
	errs.check(len(req.Label) <= 255, "label", "The label may not be greater than 255 characters.")
	return errs.err()
}

// normalizePhone убирает пробелы, дефисы и скобки.
func normalizePhone(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(value))
}

// CreateSMSNumber создаёт номер.
func (s *SMSNumberService) CreateSMSNumber(ctx context.Context, req *models.SMSNumberRequest) (*models.SMSNumber, error) {
	if err := validateSMSNumber(req); err != nil {
		return nil, err
	}

	now := time.Now()
	number := &models.SMSNumber{
		PhoneNumber: req.PhoneNumber,
		Label:       req.Label,
		Active:      activeOrDefault(req.Active),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO sms_numbers (phone_number, label, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, number.PhoneNumber, number.Label, number.Active, number.CreatedAt, number.UpdatedAt).
		Scan(&number.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("phone number already exists", err)
		}
		return nil, fmt.Errorf("failed to create sms number: %w", err)
	}

	s.log.WithField("sms_number_id", number.ID).Info("SMS number created")
	s.publish(models.ReferenceCreated, number.ID)
	return number, nil
}

// UpdateSMSNumber обновляет номер.
func (s *SMSNumberService) UpdateSMSNumber(ctx context.Context, id int64, req *models.SMSNumberRequest) (*models.SMSNumber, error) {
	if err := validateSMSNumber(req); err != nil {
		return nil, err
	}

	query := `
		UPDATE sms_numbers
		SET phone_number = $1, label = $2, active = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := s.db.ExecContext(ctx, query, req.PhoneNumber, req.Label, activeOrDefault(req.Active), time.Now(), id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("phone number already exists", err)
		}
		return nil, fmt.Errorf("failed to update sms number: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("sms number not found", nil)
	}

	s.publish(models.ReferenceUpdated, id)
	return s.GetSMSNumber(ctx, id)
}

// DeleteSMSNumber удаляет номер.
func (s *SMSNumberService) DeleteSMSNumber(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sms_numbers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sms number: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("sms number not found", nil)
	}

	s.publish(models.ReferenceDeleted, id)
	return nil
}

// GetSMSNumber возвращает номер по идентификатору.
func (s *SMSNumberService) GetSMSNumber(ctx context.Context, id int64) (*models.SMSNumber, error) {
	query := "SELECT " + smsNumberColumns + " FROM sms_numbers WHERE id = $1"

	number := &models.SMSNumber{}
	if err := s.db.QueryRowContext(ctx, query, id).Scan(
		&number.ID, &number.PhoneNumber, &number.Label, &number.Active, &number.CreatedAt, &number.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("sms number not found", err)
		}
		return nil, fmt.Errorf("failed to get sms number: %w", err)
	}
	return number, nil
}

// ListSMSNumbers возвращает список номеров.
func (s *SMSNumberService) ListSMSNumbers(ctx context.Context, limit, offset int) ([]*models.SMSNumber, error) {
	limit, offset = normalizePage(limit, offset)
	query := "SELECT " + smsNumberColumns + " FROM sms_numbers ORDER BY id LIMIT $1 OFFSET $2"

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sms numbers: %w", err)
	}
	defer rows.Close()

	numbers := make([]*models.SMSNumber, 0)
	for rows.Next() {
		number := &models.SMSNumber{}
		if err := rows.Scan(&number.ID, &number.PhoneNumber, &number.Label, &number.Active, &number.CreatedAt, &number.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sms number: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sms numbers: %w", err)
	}
	return numbers, nil
}

func (s *SMSNumberService) publish(action models.ReferenceAction, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReferenceChanged(models.EntitySMSNumber, action, id); err != nil {
		s.log.WithError(err).Warn("Failed to publish sms number change")
	}
}
