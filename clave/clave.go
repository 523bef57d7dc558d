// Package clave derives the legally constrained identifiers carried by
// Costa Rican electronic documents: the 20 digit consecutive number and
// the 50 digit document key ("clave numérica").
package clave

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// CountryCode is the numeric country prefix for all document keys.
const CountryCode = "506"

// Situation codes describe the circumstances under which the document
// was issued.
const (
	SituationNormal      = "1"
	SituationContingency = "2"
	SituationOffline     = "3"
)

// Document type codes used as the leading two digits of the consecutive
// number.
const (
	TypeFactura     = "01"
	TypeDebitNote   = "02"
	TypeCreditNote  = "03"
	TypeTiquete     = "04"
	TypeConfirmDoc  = "05"
	TypePurchaseDoc = "08"
	TypeExportDoc   = "09"
)

// InvalidFormatError reports an input that does not match the fixed
// width the key format requires. Inputs are never padded or substituted
// on the caller's behalf.
type InvalidFormatError struct {
	Field string
	Value string
	Want  string
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("clave: invalid %s %q, want %s", e.Field, e.Value, e.Want)
}

// KeyLengthError reports a derived key whose length is not exactly 50
// digits. A key with the wrong length must never be truncated or padded.
type KeyLengthError struct {
	Key    string
	Length int
}

// Error implements the error interface.
func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("clave: derived key has %d characters, want 50", e.Length)
}

const (
	consecutiveSequenceWidth = 13
	issuerIDWidth            = 12
	securityCodeWidth        = 8
	keyWidth                 = 50
)

// maxSequence is the largest counter value representable in the 13
// digit consecutive field.
const maxSequence = 9999999999999

// Consecutive builds the 20 digit consecutive number from the document
// type code, terminal, branch and an allocated sequence value. The
// terminal must be exactly 2 digits and the branch exactly 3; callers
// normalize their inputs before calling, malformed values are rejected.
func Consecutive(docType, terminal, branch string, seq int64) (string, error) {
	if !isDigits(docType) || len(docType) != 2 {
		return "", &InvalidFormatError{Field: "document type", Value: docType, Want: "2 digits"}
	}
	if !isDigits(terminal) || len(terminal) != 2 {
		return "", &InvalidFormatError{Field: "terminal", Value: terminal, Want: "2 digits"}
	}
	if !isDigits(branch) || len(branch) != 3 {
		return "", &InvalidFormatError{Field: "branch", Value: branch, Want: "3 digits"}
	}
	if seq <= 0 || seq > maxSequence {
		return "", &InvalidFormatError{
			Field: "sequence",
			Value: fmt.Sprintf("%d", seq),
			Want:  "positive integer of at most 13 digits",
		}
	}
	return fmt.Sprintf("%s%s%s%0*d", docType, terminal, branch, consecutiveSequenceWidth, seq), nil
}

// New builds the 50 digit document key:
//
//	506 + ddMMyy + situation + issuer id (12) + consecutive (20) + security code (8)
//
// The issuer identification is left padded with zeros to 12 digits. Any
// result that is not exactly 50 digits is an error, never silently
// adjusted.
func New(emission time.Time, situation, issuerID, consecutive, securityCode string) (string, error) {
	if situation != SituationNormal && situation != SituationContingency && situation != SituationOffline {
		return "", &InvalidFormatError{Field: "situation", Value: situation, Want: "1, 2 or 3"}
	}
	if !isDigits(issuerID) || len(issuerID) == 0 || len(issuerID) > issuerIDWidth {
		return "", &InvalidFormatError{Field: "issuer identification", Value: issuerID, Want: "1 to 12 digits"}
	}
	if !isDigits(consecutive) || len(consecutive) != 20 {
		return "", &InvalidFormatError{Field: "consecutive", Value: consecutive, Want: "20 digits"}
	}
	if !isDigits(securityCode) || len(securityCode) != securityCodeWidth {
		return "", &InvalidFormatError{Field: "security code", Value: securityCode, Want: "8 digits"}
	}

	key := CountryCode +
		emission.Format("020106") +
		situation +
		fmt.Sprintf("%0*s", issuerIDWidth, issuerID) +
		consecutive +
		securityCode

	if len(key) != keyWidth {
		return "", &KeyLengthError{Key: key, Length: len(key)}
	}
	return key, nil
}

// NewSecurityCode generates a uniformly random 8 digit security code.
// Persistence and idempotence are the sequence store's responsibility;
// once a company's code has been stored it is never regenerated.
func NewSecurityCode() (string, error) {
	ten := big.NewInt(10)
	var sb strings.Builder
	for i := 0; i < securityCodeWidth; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("clave: generating security code: %w", err)
		}
		sb.WriteByte('0' + byte(n.Int64()))
	}
	return sb.String(), nil
}

// IsTiquete reports whether a consecutive number belongs to a tiquete
// electrónico, which selects the simplified document variant during
// serialization.
func IsTiquete(consecutive string) bool {
	return strings.HasPrefix(consecutive, TypeTiquete)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
