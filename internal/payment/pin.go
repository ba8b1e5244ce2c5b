package payment

import (
	"crypto/subtle"
	"errors"
)

// DefaultPIN is the mock transaction PIN. It carries no security contract.
const DefaultPIN = "1234"

var ErrMalformedPIN = errors.New("PIN must be exactly 4 digits")

// PINVerifier decides whether a PIN authorizes a payment.
type PINVerifier interface {
	Verify(pin string) bool
}

// StaticPIN accepts a single fixed PIN.
type StaticPIN string

// Verify reports whether pin equals the configured value.
func (p StaticPIN) Verify(pin string) bool {
	if ValidatePIN(pin) != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(p)) == 1
}

// ValidatePIN checks the shape of a PIN: four ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return ErrMalformedPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrMalformedPIN
		}
	}
	return nil
}
