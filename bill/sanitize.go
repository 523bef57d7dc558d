package bill

import (
	"encoding/json"
	"strings"

	"github.com/invopop/gobl/num"
)

// parseAmount coerces a raw JSON value into an amount. Strings and
// numbers both parse; a decimal comma is tolerated. Missing, null and
// unparseable values return nil so the caller can apply the documented
// default — a value that parses, including zero, is never altered.
func parseAmount(raw json.RawMessage) *num.Amount {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	a, err := num.AmountFromString(s)
	if err != nil {
		return nil
	}
	return &a
}

// UnmarshalJSON tolerates quantity and unit price arriving as strings
// or numbers, leaving them nil when absent or unparseable.
func (l *Line) UnmarshalJSON(data []byte) error {
	type lineAlias Line
	aux := struct {
		Quantity  json.RawMessage `json:"quantity"`
		UnitPrice json.RawMessage `json:"unit_price"`
		BasePrice json.RawMessage `json:"base_price"`
		*lineAlias
	}{lineAlias: (*lineAlias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.Quantity = parseAmount(aux.Quantity)
	l.UnitPrice = parseAmount(aux.UnitPrice)
	l.BasePrice = parseAmount(aux.BasePrice)
	return nil
}

// UnmarshalJSON tolerates the discount amount arriving as a string or
// number; absent and unparseable amounts are treated as zero.
func (d *Discount) UnmarshalJSON(data []byte) error {
	type discountAlias Discount
	aux := struct {
		Amount json.RawMessage `json:"amount"`
		*discountAlias
	}{discountAlias: (*discountAlias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a := parseAmount(aux.Amount); a != nil {
		d.Amount = *a
	} else {
		d.Amount = num.MakeAmount(0, 2)
	}
	return nil
}
