package bill

import (
	"time"

	"github.com/invopop/gobl/num"
	"github.com/invopop/validation"
)

// DefaultUnit is substituted when a line arrives without a unit of
// measure.
const DefaultUnit = "Unid"

// serviceUnits are the unit-of-measure codes that mark a line as a
// service rather than merchandise when splitting summary totals.
var serviceUnits = map[string]bool{
	"Sp":  true,
	"Spe": true,
	"St":  true,
	"Os":  true,
	"Al":  true,
	"Alc": true,
	"Cm":  true,
	"I":   true,
}

// CommercialCode is an optional internal product code carried alongside
// the authority classification code.
type CommercialCode struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// Discount is a line level discount with an optional reason.
type Discount struct {
	Amount num.Amount `json:"amount"`
	Reason string     `json:"reason,omitempty"`
}

// Exemption documents why part or all of a line's tax is not owed.
type Exemption struct {
	DocType     string     `json:"doc_type"`
	DocNumber   string     `json:"doc_number"`
	Institution string     `json:"institution"`
	IssueDate   time.Time  `json:"issue_date"`
	Percent     int        `json:"percent"` // 0 means unset; defaults to 100
	Amount      num.Amount `json:"amount"`  // computed
}

// Validate checks the exemption's fields.
func (e *Exemption) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.DocType, validation.Required),
		validation.Field(&e.DocNumber, validation.Required),
		validation.Field(&e.Institution, validation.Required),
		validation.Field(&e.Percent, validation.Min(0), validation.Max(100)),
	)
}

// Tax is a tax applied to a line. Amount and the exemption's amount are
// computed during calculation; Code and RateCode are filled from the
// rate table when left empty.
type Tax struct {
	Code      string     `json:"code,omitempty"`
	RateCode  string     `json:"rate_code,omitempty"`
	Rate      int        `json:"rate"`
	Amount    num.Amount `json:"amount"` // computed
	Exemption *Exemption `json:"exemption,omitempty"`
}

// Validate checks the tax fields.
func (t *Tax) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Rate, validation.Min(0), validation.Max(100)),
		validation.Field(&t.Exemption),
	)
}

// Line is a single detail line of a document.
//
// Quantity, UnitPrice and the discount amount accept strings or numbers
// in JSON; genuinely missing or unparseable values are left nil so the
// sanitizer can tell them apart from explicit zeros.
type Line struct {
	Number         int             `json:"number"` // 1-based, renumbered on Normalize
	Code           string          `json:"code"`   // authority product/service code
	CommercialCode *CommercialCode `json:"commercial_code,omitempty"`
	Quantity       *num.Amount     `json:"quantity"`
	Unit           string          `json:"unit,omitempty"`
	Detail         string          `json:"detail"`
	UnitPrice      *num.Amount     `json:"unit_price"`
	BasePrice      *num.Amount     `json:"base_price,omitempty"` // unit price in the base currency
	Discount       *Discount       `json:"discount,omitempty"`
	Tax            *Tax            `json:"tax,omitempty"`
	OtherTax       *Tax            `json:"other_tax,omitempty"`

	// Computed during calculation.
	Subtotal num.Amount `json:"subtotal"`
	NetTax   num.Amount `json:"net_tax"`
	Total    num.Amount `json:"total"`
}

// IsService reports whether the line's unit of measure marks it as a
// service for summary classification.
func (l *Line) IsService() bool {
	return serviceUnits[l.Unit]
}

// Validate checks a fully normalized line. Negative quantities, prices
// and discounts are data entry errors and are rejected rather than
// defaulted.
func (l *Line) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Number, validation.Min(1)),
		validation.Field(&l.Detail, validation.Required, validation.Length(0, 200)),
		validation.Field(&l.Unit, validation.Required),
		validation.Field(&l.Quantity, validation.Required, validation.By(positiveAmount("quantity"))),
		validation.Field(&l.UnitPrice, validation.NotNil, validation.By(nonNegativeAmount("unit price"))),
		validation.Field(&l.Discount, validation.By(l.checkDiscount)),
		validation.Field(&l.Tax),
		validation.Field(&l.OtherTax),
	)
}

func (l *Line) checkDiscount(value any) error {
	d, ok := value.(*Discount)
	if !ok || d == nil {
		return nil
	}
	if isNegative(d.Amount) {
		return validation.NewError("validation_negative_discount", "discount amount must not be negative")
	}
	return nil
}

func positiveAmount(name string) validation.RuleFunc {
	return func(value any) error {
		a, ok := value.(*num.Amount)
		if !ok || a == nil {
			return nil // covered by Required
		}
		if a.IsZero() || isNegative(*a) {
			return validation.NewError("validation_amount_not_positive", name+" must be positive")
		}
		return nil
	}
}

func nonNegativeAmount(name string) validation.RuleFunc {
	return func(value any) error {
		a, ok := value.(*num.Amount)
		if !ok || a == nil {
			return nil
		}
		if isNegative(*a) {
			return validation.NewError("validation_amount_negative", name+" must not be negative")
		}
		return nil
	}
}

func isNegative(a num.Amount) bool {
	return a.Compare(num.MakeAmount(0, a.Exp())) < 0
}
