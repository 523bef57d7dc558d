package bill

import (
	"time"

	"github.com/invopop/validation"
)

// Reference codes for the relationship with a prior document.
const (
	ReferenceCodeCancel  = "01" // anula documento de referencia
	ReferenceCodeCorrect = "02" // corrige texto
	ReferenceCodeAmount  = "03" // corrige monto
	ReferenceCodeOther   = "99"
)

// Reference links a credit or debit note to the document it modifies.
type Reference struct {
	DocType   string    `json:"doc_type"`
	Number    string    `json:"number"` // the referenced document's 50 digit key
	IssueDate time.Time `json:"issue_date"`
	Code      string    `json:"code"`
	Reason    string    `json:"reason"`
}

// Validate checks the reference fields.
func (r *Reference) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DocType, validation.Required),
		validation.Field(&r.Number, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.Reason, validation.Required, validation.Length(0, 180)),
	)
}
