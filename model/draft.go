package model

import (
	"encoding/json"
	"time"
)

// Draft status constants. Deletion is logical; rows are never removed.
const (
	DraftActive  = "active"
	DraftDeleted = "deleted"
)

// Draft is a resumable pre-submission snapshot. The payload is opaque and
// may be incomplete or invalid; summary fields are extracted copies used
// for listings only.
type Draft struct {
	DraftID   string          `json:"draftId"`
	Status    string          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// Summary columns, denormalized from the payload at save time.
	GivenName  string `json:"nombre,omitempty"`
	FamilyName string `json:"apellidos,omitempty"`
	Phone      string `json:"telefono,omitempty"`
	Email      string `json:"correo,omitempty"`
	Company    string `json:"compania,omitempty"`
	Plan       string `json:"plan,omitempty"`
	Agent      string `json:"operador,omitempty"`
}

// DraftSummary is the list-view projection of a draft.
type DraftSummary struct {
	DraftID    string    `json:"draftId"`
	GivenName  string    `json:"nombre"`
	FamilyName string    `json:"apellidos"`
	Phone      string    `json:"telefono"`
	Email      string    `json:"correo"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
