package bill

import (
	"github.com/invopop/gobl/currency"
	"github.com/invopop/gobl/num"
)

// Totals is the computed document summary. All amounts are carried at
// calculation precision; rounding happens at serialization.
type Totals struct {
	Currency     currency.Code `json:"currency"`
	ExchangeRate num.Amount    `json:"exchange_rate"`

	ServicesTaxed      num.Amount `json:"services_taxed"`
	ServicesExempt     num.Amount `json:"services_exempt"`
	ServicesExonerated num.Amount `json:"services_exonerated"`
	GoodsTaxed         num.Amount `json:"goods_taxed"`
	GoodsExempt        num.Amount `json:"goods_exempt"`
	GoodsExonerated    num.Amount `json:"goods_exonerated"`

	Taxed      num.Amount `json:"taxed"`
	Exempt     num.Amount `json:"exempt"`
	Exonerated num.Amount `json:"exonerated"`

	GrossSales   num.Amount `json:"gross_sales"` // before discounts
	Discounts    num.Amount `json:"discounts"`
	NetSales     num.Amount `json:"net_sales"` // after discounts
	Tax          num.Amount `json:"tax"`       // sum of line net taxes
	Exemption    num.Amount `json:"exemption"` // sum of exempted tax amounts
	OtherCharges num.Amount `json:"other_charges"`
	Grand        num.Amount `json:"grand"`
}
