package model

import (
	"encoding/json"
	"fmt"
)

// Payment method types
const (
	PaymentBank = "banco"
	PaymentCard = "tarjeta"
)

// Submission is one person's enrollment intake. Wire field names follow the
// original intake form, which is Spanish-language.
type Submission struct {
	ClientID string `json:"clientId,omitempty"`

	GivenName       string `json:"nombre"`
	FamilyName      string `json:"apellidos"`
	Phone           string `json:"telefono"`
	Email           string `json:"correo"`
	BirthDate       string `json:"fechaNacimiento"` // ISO date (YYYY-MM-DD)
	ImmigrationStat string `json:"estadoMigratorio"`
	SSN             string `json:"ssn"`
	Income          string `json:"ingresos"`
	Occupation      string `json:"ocupacion"`
	Nationality     string `json:"nacionalidad"`
	Address         string `json:"direccion"`
	City            string `json:"ciudad"`
	State           string `json:"estado"`
	ZipCode         string `json:"codigoPostal"`
	Company         string `json:"compania"`
	Plan            string `json:"plan"`
	Agent           string `json:"operador"`

	FileLinks []string `json:"fileLinks,omitempty"`

	Dependents    []Dependent        `json:"dependents,omitempty"`
	PaymentMethod *PaymentMethod     `json:"paymentMethod,omitempty"`
	CignaPlans    []SupplementalPlan `json:"cignaPlans,omitempty"`

	// Attachments carries inline files submitted with the form body.
	// They are uploaded best-effort during submission; pre-uploaded files
	// arrive as FileLinks instead.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Dependent is a family member covered under the titular's enrollment.
// It never exists without a parent submission and carries the parent's
// clientId once mirrored.
type Dependent struct {
	GivenName       string `json:"nombre"`
	FamilyName      string `json:"apellidos"`
	Relationship    string `json:"parentesco"`
	BirthDate       string `json:"fechaNacimiento"`
	SSN             string `json:"ssn"`
	ImmigrationStat string `json:"estadoMigratorio"`
}

// PaymentMethod is a tagged union over bank and card details. Type selects
// which field set is meaningful; the unused set stays empty.
type PaymentMethod struct {
	Type string `json:"tipo"` // banco | tarjeta

	// banco
	BankName      string `json:"banco,omitempty"`
	RoutingNumber string `json:"numeroRuta,omitempty"`
	AccountNumber string `json:"numeroCuenta,omitempty"`

	// tarjeta
	CardNumber string `json:"numeroTarjeta,omitempty"`
	Expiration string `json:"fechaExpiracion,omitempty"`
	CVV        string `json:"cvv,omitempty"`

	Holder string `json:"titular,omitempty"`
}

// Valid reports whether the tagged union carries a known type.
func (p *PaymentMethod) Valid() bool {
	return p != nil && (p.Type == PaymentBank || p.Type == PaymentCard)
}

// SupplementalPlan is one add-on plan selection (accident, dental, etc.).
type SupplementalPlan struct {
	Type        string `json:"tipo"`
	Plan        string `json:"plan"`
	Premium     string `json:"prima"`
	Beneficiary string `json:"beneficiario"`
}

// Attachment is an inline file carried in the submission body.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Content  []byte `json:"content"` // base64 on the wire
}

// Sink group names used across the mirror status map and logs.
const (
	SinkPolicies = "policies"
	SinkPayment  = "payment"
	SinkPlans    = "plans"
)

// GroupStatus is the outcome of one mirror sink group.
type GroupStatus struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	Attempts  int    `json:"attempts,omitempty"`
	LastError string `json:"lastError,omitempty"`
}

// SinkStatus aggregates mirror outcomes per sink group.
type SinkStatus struct {
	Policies GroupStatus `json:"policies"`
	Payment  GroupStatus `json:"payment"`
	Plans    GroupStatus `json:"plans"`
}

// MirrorOK reports whether every attempted group succeeded.
func (s SinkStatus) MirrorOK() bool {
	for _, g := range []GroupStatus{s.Policies, s.Payment, s.Plans} {
		if g.Attempted && !g.Success {
			return false
		}
	}
	return true
}

// FailedGroups lists the names of attempted groups that did not succeed.
func (s SinkStatus) FailedGroups() []string {
	var failed []string
	if s.Policies.Attempted && !s.Policies.Success {
		failed = append(failed, SinkPolicies)
	}
	if s.Payment.Attempted && !s.Payment.Success {
		failed = append(failed, SinkPayment)
	}
	if s.Plans.Attempted && !s.Plans.Success {
		failed = append(failed, SinkPlans)
	}
	return failed
}

// SubmissionResult is what the orchestrator returns once the primary write
// has succeeded. Accepted is always true at that point; mirror trouble is
// reported through SinkStatus, never by failing the submission.
type SubmissionResult struct {
	ClientID   string     `json:"clientId"`
	Accepted   bool       `json:"accepted"`
	SinkStatus SinkStatus `json:"sinkStatus"`
}

// FullSuccess reports whether every attempted mirror group landed.
func (r *SubmissionResult) FullSuccess() bool {
	return r.Accepted && r.SinkStatus.MirrorOK()
}

// RawPayload round-trips a submission to its raw JSON form, used when a
// draft snapshot needs to be captured alongside a typed submission.
func (s *Submission) RawPayload() (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission: %w", err)
	}
	return data, nil
}
