package bill

import (
	"github.com/invopop/gobl/num"
	"github.com/invopop/validation"
)

// Other charge type codes.
const (
	ChargeTypeThirdParty    = "01" // contribución parafiscal
	ChargeTypeStamp         = "02" // timbre de la Cruz Roja
	ChargeTypeFirefighters  = "03" // timbre de bomberos
	ChargeTypeThirdPartyFee = "04" // cobro de un tercero
	ChargeTypeExportCost    = "05" // costos de exportación
	ChargeTypeServiceTax    = "06" // impuesto de servicio 10%
	ChargeTypeExportStamp   = "07" // timbre de colegios profesionales
	ChargeTypeOther         = "99"
)

// OtherCharge is a document level charge outside the tax system, such
// as a service fee or a statutory stamp.
//
// When Percent is set and Amount is zero, the amount is derived from
// the document's pre-tax subtotal during calculation. An explicitly set
// amount always wins: it is never overwritten from the percentage.
type OtherCharge struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Percent     *num.Amount `json:"percent,omitempty"`
	Amount      num.Amount  `json:"amount"`
}

// Validate checks the charge's fields.
func (c *OtherCharge) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Type, validation.Required, validation.In(
			ChargeTypeThirdParty, ChargeTypeStamp, ChargeTypeFirefighters,
			ChargeTypeThirdPartyFee, ChargeTypeExportCost, ChargeTypeServiceTax,
			ChargeTypeExportStamp, ChargeTypeOther,
		)),
		validation.Field(&c.Description, validation.Required, validation.Length(0, 160)),
		validation.Field(&c.Amount, validation.By(func(any) error {
			if isNegative(c.Amount) {
				return validation.NewError("validation_amount_negative", "charge amount must not be negative")
			}
			return nil
		})),
	)
}

// calculate derives the amount from the percentage only when no
// explicit amount was entered. base is the sum of line subtotals.
func (c *OtherCharge) calculate(base num.Amount) {
	if c.Percent == nil || !c.Amount.IsZero() {
		return
	}
	pct := *c.Percent
	c.Amount = base.Multiply(pct).Divide(num.MakeAmount(100, 0))
}
