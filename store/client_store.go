package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Jostyn07/Asesoriasth-backend/model"
)

// ErrClientNotFound is returned when no client row matches the clientId.
var ErrClientNotFound = errors.New("client not found")

// ClientStore is the primary durable store for submissions.
type ClientStore struct {
	db *sql.DB
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

// CreateSubmission inserts the client row, its dependents and supplemental
// plans in one transaction. The payment method is embedded on the client
// row as jsonb. The unique constraint on client_id makes an id collision
// fail the whole transaction instead of silently overwriting.
func (s *ClientStore) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	fileLinks, err := json.Marshal(sub.FileLinks)
	if err != nil {
		return fmt.Errorf("failed to marshal file links: %w", err)
	}

	var payment any
	if sub.PaymentMethod.Valid() {
		data, err := json.Marshal(sub.PaymentMethod)
		if err != nil {
			return fmt.Errorf("failed to marshal payment method: %w", err)
		}
		payment = data
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cliente (
			client_id, nombre, apellidos, telefono, correo,
			fecha_nacimiento, estado_migratorio, ssn, ingresos, ocupacion,
			nacionalidad, direccion, ciudad, estado, codigo_postal,
			compania, plan, operador, file_links, metodo_pago
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19::jsonb, $20::jsonb
		)
	`,
		sub.ClientID, sub.GivenName, sub.FamilyName, sub.Phone, sub.Email,
		sub.BirthDate, sub.ImmigrationStat, sub.SSN, sub.Income, sub.Occupation,
		sub.Nationality, sub.Address, sub.City, sub.State, sub.ZipCode,
		sub.Company, sub.Plan, sub.Agent, fileLinks, payment,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}

	for i, d := range sub.Dependents {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dependiente (
				client_id, posicion, nombre, apellidos, parentesco,
				fecha_nacimiento, ssn, estado_migratorio
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			sub.ClientID, i, d.GivenName, d.FamilyName, d.Relationship,
			d.BirthDate, d.SSN, d.ImmigrationStat,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dependent %d: %w", i, err)
		}
	}

	for i, p := range sub.CignaPlans {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO plan_suplementario (
				client_id, posicion, tipo, plan, prima, beneficiario
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			sub.ClientID, i, p.Type, p.Plan, p.Premium, p.Beneficiary,
		)
		if err != nil {
			return fmt.Errorf("failed to insert supplemental plan %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit submission: %w", err)
	}

	return nil
}

// GetSubmission loads a persisted submission by clientId, dependents and
// plans in their original order. Used for manual reconciliation when the
// mirror fell behind.
func (s *ClientStore) GetSubmission(ctx context.Context, clientID string) (*model.Submission, error) {
	var (
		sub       model.Submission
		fileLinks []byte
		payment   []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT client_id, nombre, apellidos, telefono, correo,
		       fecha_nacimiento, estado_migratorio, ssn, ingresos, ocupacion,
		       nacionalidad, direccion, ciudad, estado, codigo_postal,
		       compania, plan, operador, file_links, metodo_pago
		FROM cliente WHERE client_id = $1
	`, clientID).Scan(
		&sub.ClientID, &sub.GivenName, &sub.FamilyName, &sub.Phone, &sub.Email,
		&sub.BirthDate, &sub.ImmigrationStat, &sub.SSN, &sub.Income, &sub.Occupation,
		&sub.Nationality, &sub.Address, &sub.City, &sub.State, &sub.ZipCode,
		&sub.Company, &sub.Plan, &sub.Agent, &fileLinks, &payment,
	)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	if len(fileLinks) > 0 {
		if err := json.Unmarshal(fileLinks, &sub.FileLinks); err != nil {
			return nil, fmt.Errorf("failed to parse file links: %w", err)
		}
	}
	if len(payment) > 0 {
		sub.PaymentMethod = &model.PaymentMethod{}
		if err := json.Unmarshal(payment, sub.PaymentMethod); err != nil {
			return nil, fmt.Errorf("failed to parse payment method: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT nombre, apellidos, parentesco, fecha_nacimiento, ssn, estado_migratorio
		FROM dependiente WHERE client_id = $1 ORDER BY posicion
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d model.Dependent
		if err := rows.Scan(&d.GivenName, &d.FamilyName, &d.Relationship,
			&d.BirthDate, &d.SSN, &d.ImmigrationStat); err != nil {
			return nil, fmt.Errorf("failed to scan dependent: %w", err)
		}
		sub.Dependents = append(sub.Dependents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dependents: %w", err)
	}

	planRows, err := s.db.QueryContext(ctx, `
		SELECT tipo, plan, prima, beneficiario
		FROM plan_suplementario WHERE client_id = $1 ORDER BY posicion
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplemental plans: %w", err)
	}
	defer planRows.Close()
	for planRows.Next() {
		var p model.SupplementalPlan
		if err := planRows.Scan(&p.Type, &p.Plan, &p.Premium, &p.Beneficiary); err != nil {
			return nil, fmt.Errorf("failed to scan supplemental plan: %w", err)
		}
		sub.CignaPlans = append(sub.CignaPlans, p)
	}
	if err := planRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read supplemental plans: %w", err)
	}

	return &sub, nil
}
