package bill

import "fmt"

// Tax codes for the Impuesto block.
const (
	TaxCodeIVA                  = "01"
	TaxCodeSelectiveConsumption = "02"
	TaxCodeFuel                 = "03"
	TaxCodeAlcohol              = "04"
	TaxCodeOther                = "99"
)

// Rate codes (CodigoTarifa) for the supported tax percentages.
const (
	RateCode1       = "01" // 1%
	RateCode2       = "02" // 2%
	RateCode4       = "03" // 4%
	RateCode8       = "04" // 8%
	RateCodeGeneral = "08" // 13%
)

// RateCodeExempt is the default reason code for zero-rate lines. A
// zero rate carries an exemption reason chosen by the caller; when the
// tax arrives without one, this code is filled in.
const RateCodeExempt = "05"

// rateCodes is the fixed percent to rate-code table. Reproduced
// exactly; a percentage outside this table is an error, never defaulted
// to the general rate.
var rateCodes = map[int]string{
	13: RateCodeGeneral,
	8:  RateCode8,
	4:  RateCode4,
	2:  RateCode2,
	1:  RateCode1,
	0:  RateCodeExempt,
}

// UnknownRateError reports a tax percentage with no rate-code mapping.
type UnknownRateError struct {
	Rate int
}

// Error implements the error interface.
func (e *UnknownRateError) Error() string {
	return fmt.Sprintf("bill: no rate code for tax rate %d%%", e.Rate)
}

// RateCode returns the 2 digit rate code for a supported percentage.
func RateCode(rate int) (string, error) {
	code, ok := rateCodes[rate]
	if !ok {
		return "", &UnknownRateError{Rate: rate}
	}
	return code, nil
}
