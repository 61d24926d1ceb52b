package contact

import (
	"fmt"

	"github.com/davidleathers/voice-outreach-backend/internal/domain/values"
)

// Contact is one row of the outreach list: the person a campaign will try to
// reach. Identity for matching is the phone number on the voice channel and
// the email address on the email channel. A Contact is immutable once loaded
// from the ledger.
type Contact struct {
	DisplayName string             `json:"display_name"`
	PhoneNumber values.PhoneNumber `json:"phone_number"`
	Email       values.Email       `json:"email,omitempty"`
	Company     string             `json:"company,omitempty"`
}

// New builds a Contact from raw ledger fields. The phone number must parse;
// email and company are optional.
func New(displayName, phoneNumber, email, company string) (Contact, error) {
	if displayName == "" {
		return Contact{}, fmt.Errorf("contact display name cannot be empty")
	}

	phone, err := values.NewPhoneNumber(phoneNumber)
	if err != nil {
		return Contact{}, fmt.Errorf("invalid contact phone number: %w", err)
	}

	c := Contact{
		DisplayName: displayName,
		PhoneNumber: phone,
		Company:     company,
	}

	if email != "" {
		addr, err := values.NewEmail(email)
		if err != nil {
			return Contact{}, fmt.Errorf("invalid contact email: %w", err)
		}
		c.Email = addr
	}

	return c, nil
}

// HasEmail reports whether the contact carries an email address.
func (c Contact) HasEmail() bool {
	return !c.Email.IsEmpty()
}
