package values

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// Email represents a validated email address value object
type Email struct {
	address string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NewEmail creates a new Email value object with validation
func NewEmail(address string) (Email, error) {
	if address == "" {
		return Email{}, fmt.Errorf("email address cannot be empty")
	}

	normalized := strings.ToLower(strings.TrimSpace(address))

	parsed, err := mail.ParseAddress(normalized)
	if err != nil {
		return Email{}, fmt.Errorf("invalid email format: %w", err)
	}

	if !emailRegex.MatchString(parsed.Address) {
		return Email{}, fmt.Errorf("email address does not meet format requirements")
	}

	if len(parsed.Address) > 254 {
		return Email{}, fmt.Errorf("email address too long (max 254 characters)")
	}

	return Email{address: parsed.Address}, nil
}

// MustNewEmail creates Email and panics on error (for constants/tests)
func MustNewEmail(address string) Email {
	email, err := NewEmail(address)
	if err != nil {
		panic(err)
	}
	return email
}

// String returns the email address
func (e Email) String() string {
	return e.address
}

// IsEmpty checks if the email is empty
func (e Email) IsEmpty() bool {
	return e.address == ""
}

// Equal checks if two Email values are equal
func (e Email) Equal(other Email) bool {
	return e.address == other.address
}

// MarshalJSON implements JSON marshaling
func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.address)
}

// UnmarshalJSON implements JSON unmarshaling
func (e *Email) UnmarshalJSON(data []byte) error {
	var address string
	if err := json.Unmarshal(data, &address); err != nil {
		return err
	}

	if address == "" {
		*e = Email{}
		return nil
	}

	email, err := NewEmail(address)
	if err != nil {
		return err
	}

	*e = email
	return nil
}
