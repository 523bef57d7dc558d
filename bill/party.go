package bill

import (
	"regexp"

	"github.com/invopop/validation"
)

// Identification type codes accepted by the tax authority.
const (
	IDTypeCedulaFisica   = "01"
	IDTypeCedulaJuridica = "02"
	IDTypeDIMEX          = "03"
	IDTypeNITE           = "04"
)

// idMinLengths maps each identification type to the minimum number of
// digits its number must carry.
var idMinLengths = map[string]int{
	IDTypeCedulaFisica:   9,
	IDTypeCedulaJuridica: 10,
	IDTypeDIMEX:          11,
	IDTypeNITE:           10,
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// Identification is a party's tax identification.
type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// Validate checks the identification type and that the number is a
// digit string of at least the minimum length for that type.
func (id *Identification) Validate() error {
	return validation.ValidateStruct(id,
		validation.Field(&id.Type,
			validation.Required,
			validation.In(IDTypeCedulaFisica, IDTypeCedulaJuridica, IDTypeDIMEX, IDTypeNITE),
		),
		validation.Field(&id.Number,
			validation.Required,
			validation.Match(digitsOnly),
			validation.By(id.checkMinLength),
			validation.Length(0, 12),
		),
	)
}

func (id *Identification) checkMinLength(value any) error {
	n, _ := value.(string)
	min, ok := idMinLengths[id.Type]
	if !ok || len(n) >= min {
		return nil
	}
	return validation.NewError(
		"validation_id_number_short",
		"number is shorter than the minimum for its identification type",
	)
}

// Location is the optional structured address of a party.
type Location struct {
	Province     string `json:"province,omitempty"`
	Canton       string `json:"canton,omitempty"`
	District     string `json:"district,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Phone is an optional phone number with its country code.
type Phone struct {
	CountryCode string `json:"country_code,omitempty"`
	Number      string `json:"number,omitempty"`
}

// Party is the issuer or receiver of a document.
type Party struct {
	Name           string          `json:"name"`
	CommercialName string          `json:"commercial_name,omitempty"`
	Identification *Identification `json:"identification"`
	Location       *Location       `json:"location,omitempty"`
	Phone          *Phone          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	ActivityCode   string          `json:"activity_code,omitempty"`
}

// Validate checks the party's required fields.
func (p *Party) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.Length(0, 100)),
		validation.Field(&p.Identification, validation.Required),
		validation.Field(&p.Email, validation.Length(0, 160)),
	)
}
