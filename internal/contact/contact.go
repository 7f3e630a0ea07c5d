// Package contact classifies and normalizes email addresses and phone numbers.
package contact

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Kind tells whether a contact is an email address or a phone number.
type Kind int

const (
	KindEmail Kind = iota + 1
	KindPhone
)

func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	}
	return "unknown"
}

// ErrInvalid is returned for strings that are neither an email address nor
// an E.164 phone number.
var ErrInvalid = errors.New("invalid email or phone")

// Contact is a normalized email address or E.164 phone number.
type Contact struct {
	Value string
	Kind  Kind
}

// IsEmail reports whether the contact is an email address.
func (c Contact) IsEmail() bool { return c.Kind == KindEmail }

// IsPhone reports whether the contact is a phone number.
func (c Contact) IsPhone() bool { return c.Kind == KindPhone }

// Parse classifies s. Phone numbers must start with "+".
func Parse(s string) (Contact, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Contact{}, ErrInvalid
	}

	if strings.HasPrefix(s, "+") {
		num, err := phonenumbers.Parse(s, "")
		if err != nil || !phonenumbers.IsPossibleNumber(num) {
			return Contact{}, ErrInvalid
		}
		return Contact{Value: phonenumbers.Format(num, phonenumbers.E164), Kind: KindPhone}, nil
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return Contact{}, ErrInvalid
	}
	return Contact{Value: strings.ToLower(addr.Address), Kind: KindEmail}, nil
}

var reservedPhones = []*regexp.Regexp{
	regexp.MustCompile(`^\+180055501\d{2}$`),
	regexp.MustCompile(`^\+4918000\d{6,}$`),
	regexp.MustCompile(`^\+447000\d{4,}$`),
}

// Deliverable reports whether an SMS to phone could reach a real handset.
// Reserved fictional ranges and numbers failing validation are not deliverable.
func Deliverable(phone string) bool {
	for _, re := range reservedPhones {
		if re.MatchString(phone) {
			return false
		}
	}

	num, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}
