// Package bill models electronic documents before serialization: the
// parties, lines, taxes, exemptions and charges of an invoice, the
// sanitization of raw input, and the tax calculation that produces the
// document summary.
package bill

import (
	"fmt"
	"time"

	"github.com/invopop/gobl/currency"
	"github.com/invopop/gobl/num"
	"github.com/invopop/validation"
)

// BaseCurrency is the currency all prices are anchored in. Converted
// prices are always derived from the retained base price so repeated
// currency switches never compound rounding error.
const BaseCurrency = currency.CRC

// Sale condition codes.
const (
	SaleConditionCash        = "01"
	SaleConditionCredit      = "02"
	SaleConditionConsignment = "03"
	SaleConditionLayaway     = "04"
	SaleConditionLeaseOption = "05"
	SaleConditionLeaseFin    = "06"
	SaleConditionOther       = "99"
)

// Payment method codes.
const (
	PaymentMethodCash       = "01"
	PaymentMethodCard       = "02"
	PaymentMethodCheque     = "03"
	PaymentMethodTransfer   = "04"
	PaymentMethodThirdParty = "05"
	PaymentMethodOther      = "99"
)

// calcExp is the minimum number of decimal places carried through
// calculations. Serialization rounds down to the schema's widths.
const calcExp = 5

// Invoice is a document being prepared for emission. Normalize and
// Calculate must run, in that order, before the invoice is handed to
// the key generator and serializer.
type Invoice struct {
	DocumentType   string         `json:"document_type,omitempty"`
	Emission       time.Time      `json:"emission,omitempty"`
	Issuer         *Party         `json:"issuer"`
	Receiver       *Party         `json:"receiver,omitempty"`
	SaleCondition  string         `json:"sale_condition,omitempty"`
	CreditTerm     string         `json:"credit_term,omitempty"` // days, for credit sales
	PaymentMethods []string       `json:"payment_methods,omitempty"`
	Currency       currency.Code  `json:"currency,omitempty"`
	ExchangeRate   num.Amount     `json:"exchange_rate,omitempty"`
	Lines          []*Line        `json:"lines"`
	OtherCharges   []*OtherCharge `json:"other_charges,omitempty"`
	References     []*Reference   `json:"references,omitempty"`
	Notes          *Notes         `json:"notes,omitempty"`

	Totals *Totals `json:"totals,omitempty"` // computed
}

// Normalize coerces missing optional fields to their documented
// defaults. Values that parsed correctly are never altered, including
// zeros; rejection of bad values is Validate's job.
func (inv *Invoice) Normalize() {
	if inv.DocumentType == "" {
		if inv.Receiver == nil {
			inv.DocumentType = "04" // tiquete
		} else {
			inv.DocumentType = "01" // factura
		}
	}
	if inv.Emission.IsZero() {
		inv.Emission = time.Now()
	}
	if inv.SaleCondition == "" {
		inv.SaleCondition = SaleConditionCash
	}
	if len(inv.PaymentMethods) == 0 {
		inv.PaymentMethods = []string{PaymentMethodCash}
	}
	if inv.Currency == currency.CodeEmpty {
		inv.Currency = BaseCurrency
	}
	if inv.ExchangeRate.IsZero() && inv.Currency == BaseCurrency {
		inv.ExchangeRate = num.MakeAmount(1, 0)
	}

	for i, l := range inv.Lines {
		l.Number = i + 1
		l.normalize()
		if l.BasePrice == nil && l.UnitPrice != nil {
			bp := *l.UnitPrice
			if inv.Currency != BaseCurrency && !inv.ExchangeRate.IsZero() {
				bp = upscale(bp).Multiply(inv.ExchangeRate)
			}
			l.BasePrice = &bp
		}
	}
}

func (l *Line) normalize() {
	if l.Quantity == nil {
		one := num.MakeAmount(1, 0)
		l.Quantity = &one
	}
	if l.UnitPrice == nil {
		zero := num.MakeAmount(0, 2)
		l.UnitPrice = &zero
	}
	if l.Unit == "" {
		l.Unit = DefaultUnit
	}
	for _, t := range []*Tax{l.Tax, l.OtherTax} {
		if t == nil {
			continue
		}
		if t.Code == "" {
			t.Code = TaxCodeIVA
		}
		if t.Exemption != nil && t.Exemption.Percent == 0 {
			// Clients that only support full exemption omit the
			// percentage.
			t.Exemption.Percent = 100
		}
	}
}

// Validate checks the invoice after normalization. Errors are
// field-scoped so callers can render actionable messages.
func (inv *Invoice) Validate() error {
	return validation.ValidateStruct(inv,
		validation.Field(&inv.DocumentType, validation.Required, validation.Length(2, 2)),
		validation.Field(&inv.Issuer, validation.Required),
		validation.Field(&inv.Receiver),
		validation.Field(&inv.SaleCondition, validation.Required, validation.In(
			SaleConditionCash, SaleConditionCredit, SaleConditionConsignment,
			SaleConditionLayaway, SaleConditionLeaseOption, SaleConditionLeaseFin,
			SaleConditionOther,
		)),
		validation.Field(&inv.CreditTerm, validation.When(
			inv.SaleCondition == SaleConditionCredit,
			validation.Required,
		)),
		validation.Field(&inv.PaymentMethods, validation.Required, validation.Each(validation.In(
			PaymentMethodCash, PaymentMethodCard, PaymentMethodCheque,
			PaymentMethodTransfer, PaymentMethodThirdParty, PaymentMethodOther,
		))),
		validation.Field(&inv.Currency, validation.Required),
		validation.Field(&inv.ExchangeRate, validation.By(func(any) error {
			if inv.ExchangeRate.IsZero() || isNegative(inv.ExchangeRate) {
				return validation.NewError("validation_exchange_rate", "exchange rate must be positive")
			}
			return nil
		})),
		validation.Field(&inv.Lines, validation.Required),
		validation.Field(&inv.OtherCharges),
		validation.Field(&inv.References),
	)
}

// Calculate computes every line's subtotal, tax, exemption and total,
// then the document summary. Intermediates are carried at full
// precision; rounding happens at the serialization boundary.
func (inv *Invoice) Calculate() error {
	zero := num.MakeAmount(0, calcExp)
	t := &Totals{
		Currency:     inv.Currency,
		ExchangeRate: inv.ExchangeRate,

		ServicesTaxed:      zero,
		ServicesExempt:     zero,
		ServicesExonerated: zero,
		GoodsTaxed:         zero,
		GoodsExempt:        zero,
		GoodsExonerated:    zero,
		Taxed:              zero,
		Exempt:             zero,
		Exonerated:         zero,
		GrossSales:         zero,
		Discounts:          zero,
		NetSales:           zero,
		Tax:                zero,
		Exemption:          zero,
		OtherCharges:       zero,
		Grand:              zero,
	}

	for i, l := range inv.Lines {
		if err := l.calculate(); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}

		disc := zero
		if l.Discount != nil {
			disc = upscale(l.Discount.Amount)
		}
		t.GrossSales = t.GrossSales.Add(l.Subtotal).Add(disc)
		t.Discounts = t.Discounts.Add(disc)
		t.NetSales = t.NetSales.Add(l.Subtotal)
		t.Tax = t.Tax.Add(l.NetTax)

		for _, tax := range []*Tax{l.Tax, l.OtherTax} {
			if tax != nil && tax.Exemption != nil {
				t.Exemption = t.Exemption.Add(tax.Exemption.Amount)
			}
		}

		taxed, exempt, exonerated := l.classify()
		if l.IsService() {
			t.ServicesTaxed = t.ServicesTaxed.Add(taxed)
			t.ServicesExempt = t.ServicesExempt.Add(exempt)
			t.ServicesExonerated = t.ServicesExonerated.Add(exonerated)
		} else {
			t.GoodsTaxed = t.GoodsTaxed.Add(taxed)
			t.GoodsExempt = t.GoodsExempt.Add(exempt)
			t.GoodsExonerated = t.GoodsExonerated.Add(exonerated)
		}
	}

	t.Taxed = t.ServicesTaxed.Add(t.GoodsTaxed)
	t.Exempt = t.ServicesExempt.Add(t.GoodsExempt)
	t.Exonerated = t.ServicesExonerated.Add(t.GoodsExonerated)

	for _, c := range inv.OtherCharges {
		c.calculate(t.NetSales)
		t.OtherCharges = t.OtherCharges.Add(upscale(c.Amount))
	}

	// Line net taxes already discount exemptions, so the grand total
	// adds them as-is; the exemption total is informative.
	t.Grand = t.NetSales.Add(t.Tax).Add(t.OtherCharges)

	inv.Totals = t
	return nil
}

func (l *Line) calculate() error {
	if l.Quantity == nil || l.UnitPrice == nil {
		return fmt.Errorf("line not normalized")
	}

	gross := upscale(*l.UnitPrice).Multiply(*l.Quantity)
	disc := num.MakeAmount(0, calcExp)
	if l.Discount != nil {
		disc = upscale(l.Discount.Amount)
	}
	l.Subtotal = gross.Subtract(disc)

	netTax := num.MakeAmount(0, calcExp)
	for _, t := range []*Tax{l.Tax, l.OtherTax} {
		if t == nil {
			continue
		}
		if t.RateCode == "" {
			code, err := RateCode(t.Rate)
			if err != nil {
				return err
			}
			t.RateCode = code
		}
		pct := num.MakePercentage(int64(t.Rate), 2)
		t.Amount = pct.Of(l.Subtotal)

		net := t.Amount
		if ex := t.Exemption; ex != nil {
			exPct := num.MakePercentage(int64(ex.Percent), 2)
			ex.Amount = exPct.Of(t.Amount)
			net = t.Amount.Subtract(ex.Amount)
		}
		netTax = netTax.Add(net)
	}
	l.NetTax = netTax
	l.Total = l.Subtotal.Add(netTax)
	return nil
}

// classify splits the line subtotal into taxed, exempt and exonerated
// portions for the summary block.
func (l *Line) classify() (taxed, exempt, exonerated num.Amount) {
	zero := num.MakeAmount(0, calcExp)
	taxed, exempt, exonerated = zero, zero, zero
	if l.Tax == nil || l.Tax.Rate == 0 {
		exempt = l.Subtotal
		return
	}
	if ex := l.Tax.Exemption; ex != nil {
		exPct := num.MakePercentage(int64(ex.Percent), 2)
		exonerated = exPct.Of(l.Subtotal)
		taxed = l.Subtotal.Subtract(exonerated)
		return
	}
	taxed = l.Subtotal
	return
}

// SetCurrency changes the document currency, recomputing every unit
// price from its retained base-currency price. The rate is fixed at 1
// for the base currency; for any other currency the converted price is
// base / rate rounded to 2 decimals.
func (inv *Invoice) SetCurrency(code currency.Code, rate num.Amount) error {
	if code == BaseCurrency {
		rate = num.MakeAmount(1, 0)
	}
	if rate.IsZero() || isNegative(rate) {
		return fmt.Errorf("bill: exchange rate must be positive for %s", code)
	}
	inv.Currency = code
	inv.ExchangeRate = rate

	for _, l := range inv.Lines {
		if l.BasePrice == nil {
			continue
		}
		if code == BaseCurrency {
			p := *l.BasePrice
			l.UnitPrice = &p
			continue
		}
		p := upscale(*l.BasePrice).Divide(rate).Rescale(2)
		l.UnitPrice = &p
	}
	return nil
}

func upscale(a num.Amount) num.Amount {
	if a.Exp() < calcExp {
		return a.Rescale(calcExp)
	}
	return a
}
