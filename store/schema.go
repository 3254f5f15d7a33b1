package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Clients (one row per titular submission)
CREATE TABLE IF NOT EXISTS cliente (
    id SERIAL PRIMARY KEY,
    client_id TEXT NOT NULL UNIQUE,
    nombre TEXT NOT NULL,
    apellidos TEXT NOT NULL,
    telefono TEXT,
    correo TEXT,
    fecha_nacimiento TEXT,
    estado_migratorio TEXT,
    ssn TEXT,
    ingresos TEXT,
    ocupacion TEXT,
    nacionalidad TEXT,
    direccion TEXT,
    ciudad TEXT,
    estado TEXT,
    codigo_postal TEXT,
    compania TEXT,
    plan TEXT,
    operador TEXT,
    file_links JSONB NOT NULL DEFAULT '[]'::jsonb,
    metodo_pago JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Dependents, linked to the titular by client_id
CREATE TABLE IF NOT EXISTS dependiente (
    id SERIAL PRIMARY KEY,
    client_id TEXT NOT NULL REFERENCES cliente(client_id) ON DELETE CASCADE,
    posicion INT NOT NULL,
    nombre TEXT,
    apellidos TEXT,
    parentesco TEXT,
    fecha_nacimiento TEXT,
    ssn TEXT,
    estado_migratorio TEXT
);

CREATE INDEX IF NOT EXISTS idx_dependiente_client_id ON dependiente(client_id);

-- Supplemental plan selections
CREATE TABLE IF NOT EXISTS plan_suplementario (
    id SERIAL PRIMARY KEY,
    client_id TEXT NOT NULL REFERENCES cliente(client_id) ON DELETE CASCADE,
    posicion INT NOT NULL,
    tipo TEXT,
    plan TEXT,
    prima TEXT,
    beneficiario TEXT
);

CREATE INDEX IF NOT EXISTS idx_plan_suplementario_client_id ON plan_suplementario(client_id);

-- Drafts (soft delete only; rows are never removed)
CREATE TABLE IF NOT EXISTS borrador (
    id SERIAL PRIMARY KEY,
    draft_id TEXT NOT NULL UNIQUE,
    nombre TEXT,
    apellidos TEXT,
    telefono TEXT,
    correo TEXT,
    compania TEXT,
    plan TEXT,
    operador TEXT,
    data_completa JSONB NOT NULL,
    estado_borrador TEXT NOT NULL DEFAULT 'active' CHECK (estado_borrador IN ('active', 'deleted')),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_borrador_estado ON borrador(estado_borrador);
CREATE INDEX IF NOT EXISTS idx_borrador_updated_at ON borrador(updated_at DESC);
`
