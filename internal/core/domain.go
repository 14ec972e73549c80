package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar-date wire format (ISO-8601, no time of day).
const DateLayout = "2006-01-02"

const maxDescriptionLen = 200

type (
	// Date is a calendar date. The time part is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID            string
		UserID        string
		Amount        Money
		Category      string
		Date          Date
		PaymentMethod string
		Description   string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// Budget is the monthly limit for one (user, category) pair.
	Budget struct {
		ID           string
		UserID       string
		Category     string
		MonthlyLimit Money
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Session binds an opaque bearer token to a user until ExpiresAt.
	Session struct {
		Token     string
		UserID    string
		CreatedAt time.Time
		ExpiresAt time.Time
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Anything else is a validation error.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Period returns the calendar month the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	// Accept full timestamps from older clients; only the calendar part is kept.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = NewDate(t.Year(), int(t.Month()), t.Day())
			return nil
		}
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

// Validate checks an expense against the allowed taxonomy.
func (e Expense) Validate(tax Taxonomy) error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if !tax.HasCategory(e.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	if !tax.HasPaymentMethod(e.PaymentMethod) {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, e.PaymentMethod)
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(e.UserID) == "" {
		return ErrMissingOwner
	}
	return nil
}

// Validate checks a budget against the allowed taxonomy.
func (b Budget) Validate(tax Taxonomy) error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrMissingOwner
	}
	if !tax.HasCategory(b.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, b.Category)
	}
	if b.MonthlyLimit.Cents <= 0 {
		return ErrInvalidLimit
	}
	if b.MonthlyLimit.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks the fields needed to create an account.
func ValidateRegistration(name, email, password string) error {
	var errs []error
	if strings.TrimSpace(name) == "" {
		errs = append(errs, ErrEmptyName)
	}
	email = NormalizeEmail(email)
	if at := strings.Index(email, "@"); at < 1 || at == len(email)-1 {
		errs = append(errs, ErrInvalidEmail)
	}
	switch {
	case len(password) < MinPasswordLen:
		errs = append(errs, ErrWeakPassword)
	case len(password) > MaxPasswordLen:
		errs = append(errs, ErrPasswordTooLong)
	}
	return errors.Join(errs...)
}

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// MaxPasswordLen is the longest password, in bytes, that bcrypt can hash.
const MaxPasswordLen = 72
