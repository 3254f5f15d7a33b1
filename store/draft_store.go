package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Jostyn07/Asesoriasth-backend/model"
)

// ErrDraftNotFound is returned when no active draft matches the draftId.
// A soft-deleted draft is not found on purpose: deletion hides the row
// from every read path even though it is never physically removed.
var ErrDraftNotFound = errors.New("draft not found")

// DraftStore persists resumable pre-submission snapshots. Drafts are
// low-stakes: persistence errors propagate as-is and the client re-saves.
type DraftStore struct {
	db        *sql.DB
	listLimit int
	newID     func() string
}

func NewDraftStore(db *sql.DB, listLimit int, newID func() string) *DraftStore {
	if listLimit <= 0 {
		listLimit = 100
	}
	return &DraftStore{db: db, listLimit: listLimit, newID: newID}
}

// draftSummaryFields is the subset of payload fields denormalized into
// columns for listings.
type draftSummaryFields struct {
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellidos"`
	Phone      string `json:"telefono"`
	Email      string `json:"correo"`
	Company    string `json:"compania"`
	Plan       string `json:"plan"`
	Agent      string `json:"operador"`
}

// Save upserts a draft. An empty draftID gets a generated one. Every
// mutable field is overwritten (last-write-wins, no merge) and the status
// is forced back to active, so saving resurrects a deleted draft.
func (s *DraftStore) Save(ctx context.Context, draftID string, payload json.RawMessage) (string, time.Time, error) {
	if draftID == "" {
		draftID = s.newID()
	}

	var summary draftSummaryFields
	// The payload is an opaque, possibly partial snapshot; summary fields
	// are best-effort and a shape mismatch is not an error.
	_ = json.Unmarshal(payload, &summary)

	savedAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO borrador (
			draft_id, nombre, apellidos, telefono, correo,
			compania, plan, operador, data_completa, estado_borrador, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11)
		ON CONFLICT (draft_id)
		DO UPDATE SET
			nombre = EXCLUDED.nombre,
			apellidos = EXCLUDED.apellidos,
			telefono = EXCLUDED.telefono,
			correo = EXCLUDED.correo,
			compania = EXCLUDED.compania,
			plan = EXCLUDED.plan,
			operador = EXCLUDED.operador,
			data_completa = EXCLUDED.data_completa,
			estado_borrador = EXCLUDED.estado_borrador,
			updated_at = EXCLUDED.updated_at
	`,
		draftID, summary.GivenName, summary.FamilyName, summary.Phone, summary.Email,
		summary.Company, summary.Plan, summary.Agent, []byte(payload),
		model.DraftActive, savedAt,
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to save draft: %w", err)
	}

	return draftID, savedAt, nil
}

// Load returns an active draft. Deleted drafts read as not found.
func (s *DraftStore) Load(ctx context.Context, draftID string) (*model.Draft, error) {
	var (
		d       model.Draft
		payload []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT draft_id, nombre, apellidos, telefono, correo,
		       compania, plan, operador, data_completa, estado_borrador, updated_at
		FROM borrador
		WHERE draft_id = $1 AND estado_borrador = $2
	`, draftID, model.DraftActive).Scan(
		&d.DraftID, &d.GivenName, &d.FamilyName, &d.Phone, &d.Email,
		&d.Company, &d.Plan, &d.Agent, &payload, &d.Status, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	d.Payload = payload
	return &d, nil
}

// List returns summaries of active drafts, most recently updated first,
// capped at the configured limit.
func (s *DraftStore) List(ctx context.Context) ([]model.DraftSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT draft_id, nombre, apellidos, telefono, correo, updated_at
		FROM borrador
		WHERE estado_borrador = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, model.DraftActive, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.DraftSummary, 0)
	for rows.Next() {
		var d model.DraftSummary
		if err := rows.Scan(&d.DraftID, &d.GivenName, &d.FamilyName,
			&d.Phone, &d.Email, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft summary: %w", err)
		}
		summaries = append(summaries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drafts: %w", err)
	}

	return summaries, nil
}

// Delete marks an active draft deleted. Deleting a draft that is absent or
// already deleted returns ErrDraftNotFound, matching the read visibility
// rule.
func (s *DraftStore) Delete(ctx context.Context, draftID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE borrador
		SET estado_borrador = $1
		WHERE draft_id = $2 AND estado_borrador = $3
	`, model.DraftDeleted, draftID, model.DraftActive)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrDraftNotFound
	}

	return nil
}
