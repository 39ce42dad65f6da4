package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"time"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
	"github.com/pulsekit/smsdash/internal/repository"
)

type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
}

type CustomerInput struct {
	Phone     string
	FirstName string
	LastName  string
	Email     string
	Company   string
}

// Create normalizes the phone number and persists a contact owned by
// userID.
func (s *CustomerService) Create(ctx context.Context, userID string, in CustomerInput) (*model.Customer, error) {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	c := &model.Customer{
		UserID:    userID,
		Phone:     phone,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Company:   strings.TrimSpace(in.Company),
		Active:    true,
	}
	if err := s.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, userID string) ([]model.Customer, error) {
	return s.CustomerRepo.ListByOwner(ctx, userID, false)
}

// NormalizePhone strips formatting and returns +<digits>. A leading 00
// is treated as the international prefix. Anything that does not reduce
// to 7-15 digits is rejected.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	cleaned = strings.TrimPrefix(cleaned, "+")
	if strings.HasPrefix(cleaned, "00") {
		cleaned = cleaned[2:]
	}
	if cleaned == "" {
		return "", apperrors.Validation("phone is required")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", apperrors.Validation("phone contains invalid characters")
		}
	}
	if len(cleaned) < 7 || len(cleaned) > 15 {
		return "", apperrors.Validation("phone must be 7 to 15 digits")
	}
	return "+" + cleaned, nil
}

// templateRows are the sample rows in the import template. One field
// carries a comma on purpose so spreadsheet users see the quoting.
var templateRows = [][]string{
	{"+15551234001", "Alice", "Nguyen", "alice@example.com", "Nguyen Bakery"},
	{"+15551234002", "Ben", "Okafor", "ben@example.com", "Okafor, Sons & Co"},
	{"+15551234003", "Carla", "Mendes", "carla@example.com", "Mendes Floral"},
	{"+15551234004", "Dmitri", "Ivanov", "", "Ivanov \"DIY\" Hardware"},
	{"+15551234005", "Esi", "Boateng", "esi@example.com", ""},
}

// ImportTemplateCSV renders the customer import template. encoding/csv
// applies RFC 4180 quoting: fields with commas or quotes are wrapped and
// internal quotes doubled.
func ImportTemplateCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Phone", "FirstName", "LastName", "Email", "Company"}); err != nil {
		return nil, apperrors.Upstream(err)
	}
	for _, row := range templateRows {
		if err := w.Write(row); err != nil {
			return nil, apperrors.Upstream(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Upstream(err)
	}
	return buf.Bytes(), nil
}

// TemplateFilename is customer-import-template-YYYY-MM-DD.csv.
func TemplateFilename(now time.Time) string {
	return "customer-import-template-" + now.Format("2006-01-02") + ".csv"
}
