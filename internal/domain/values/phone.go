package values

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// PhoneNumber represents a validated phone number value object
type PhoneNumber struct {
	number string // Stored in E.164 format (+1234567890)
}

var (
	// E.164 format regex: + followed by up to 15 digits
	e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

	// US phone number regex for parsing various formats
	usPhoneRegex = regexp.MustCompile(`^(?:\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})$`)
)

// NewPhoneNumber creates a new PhoneNumber value object with validation
func NewPhoneNumber(number string) (PhoneNumber, error) {
	if number == "" {
		return PhoneNumber{}, fmt.Errorf("phone number cannot be empty")
	}

	cleaned := Normalize(number)

	if e164Regex.MatchString(cleaned) {
		return PhoneNumber{number: cleaned}, nil
	}

	if matches := usPhoneRegex.FindStringSubmatch(number); len(matches) == 4 {
		return PhoneNumber{number: "+1" + matches[1] + matches[2] + matches[3]}, nil
	}

	return PhoneNumber{}, fmt.Errorf("invalid phone number format: %s", number)
}

// MustNewPhoneNumber creates PhoneNumber and panics on error (for constants/tests)
func MustNewPhoneNumber(number string) PhoneNumber {
	phone, err := NewPhoneNumber(number)
	if err != nil {
		panic(err)
	}
	return phone
}

// Normalize reduces an arbitrarily formatted phone number to the canonical
// form used for do-not-call membership: all non-digit characters stripped
// except a leading +, with a bare 10-digit number assumed to be US (+1).
// It does not validate; use NewPhoneNumber for that.
func Normalize(number string) string {
	var b strings.Builder
	for i, char := range number {
		if char >= '0' && char <= '9' || (char == '+' && i == 0) {
			b.WriteRune(char)
		}
	}
	cleaned := b.String()

	if len(cleaned) == 10 && !strings.HasPrefix(cleaned, "+") {
		return "+1" + cleaned
	}
	return cleaned
}

// String returns the phone number in E.164 format
func (p PhoneNumber) String() string {
	return p.number
}

// E164 returns the phone number in E.164 format (alias for String)
func (p PhoneNumber) E164() string {
	return p.number
}

// IsEmpty checks if the phone number is empty
func (p PhoneNumber) IsEmpty() bool {
	return p.number == ""
}

// Equal checks if two PhoneNumber values are equal
func (p PhoneNumber) Equal(other PhoneNumber) bool {
	return p.number == other.number
}

// MarshalJSON implements JSON marshaling
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.number)
}

// UnmarshalJSON implements JSON unmarshaling
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var number string
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}

	phone, err := NewPhoneNumber(number)
	if err != nil {
		return err
	}

	*p = phone
	return nil
}
