// seed crea el esquema de la base de datos y carga datos iniciales:
// la credencial del administrador, usuarios de ejemplo y un proyecto demo.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que cmd/api (DATABASE_URL o DB_*).
// La contraseña del admin se toma de ADMIN_PASSWORD (default "admin123").
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/infrastructure/postgres"
	"github.com/avrapps/gastos-api/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	role        TEXT NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT TRUE,
	fcm_token   TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	start_date       TEXT,
	end_date         TEXT,
	team_members     TEXT[] NOT NULL DEFAULT '{}',
	manager_id       TEXT NOT NULL,
	temp_approver_id TEXT,
	departments      JSONB NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects (status);
CREATE INDEX IF NOT EXISTS idx_projects_team ON projects USING GIN (team_members);

CREATE TABLE IF NOT EXISTS expenses (
	id              TEXT NOT NULL,
	project_id      TEXT NOT NULL REFERENCES projects (id),
	expense_date    TEXT NOT NULL,
	amount          NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	department      TEXT NOT NULL,
	categories      TEXT[] NOT NULL,
	description     TEXT NOT NULL,
	payment_mode    TEXT NOT NULL,
	attachment_url  TEXT,
	attachment_name TEXT,
	submitted_by    TEXT NOT NULL,
	status          TEXT NOT NULL,
	anonymous       BOOLEAN NOT NULL DEFAULT FALSE,
	approver_id     TEXT,
	remark          TEXT,
	approved_at     TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (project_id, id)
);
CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses (project_id, status, created_at DESC);

CREATE TABLE IF NOT EXISTS admin_credentials (
	email         TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	display_name  TEXT
);

CREATE TABLE IF NOT EXISTS otp_codes (
	handle     TEXT PRIMARY KEY,
	phone      TEXT NOT NULL,
	code_hash  TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	attempts   INT NOT NULL DEFAULT 0,
	consumed   BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		fail("crear esquema", err)
	}
	fmt.Println("Esquema creado")

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		fail("hash de contraseña", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO admin_credentials (email, password_hash, display_name)
		VALUES ($1, $2, 'Administrador')
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		entity.AdminIdentifier, string(hash),
	)
	if err != nil {
		fail("credencial del admin", err)
	}
	fmt.Printf("Credencial del admin creada (%s)\n", entity.AdminIdentifier)

	now := time.Now()
	users := []struct {
		id, name string
		role     entity.Role
	}{
		{"9876543210", "Priya Sharma", entity.RoleApprover},
		{"9876500001", "Arun Verma", entity.RoleUser},
		{"9876500002", "Kavya Nair", entity.RoleUser},
	}
	for _, u := range users {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, name, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, $4, $4)
			ON CONFLICT (id) DO NOTHING`,
			u.id, u.name, string(u.role), now,
		)
		if err != nil {
			fail("usuario "+u.id, err)
		}
	}
	fmt.Printf("%d usuarios de ejemplo\n", len(users))

	deptJSON := `{"Art": 100000, "Camera": 250000, "Production": 400000}`
	_, err = pool.Exec(ctx, `
		INSERT INTO projects (id, name, description, status, team_members, manager_id, departments, created_at, updated_at)
		VALUES ('00000000-0000-0000-0000-000000000001', 'Proyecto Demo',
			'Proyecto de demostración', $1, $2, '9876543210', $3::jsonb, $4, $4)
		ON CONFLICT (id) DO NOTHING`,
		entity.ProjectActive, []string{"9876500001", "9876500002"}, deptJSON, now,
	)
	if err != nil {
		fail("proyecto demo", err)
	}
	fmt.Println("Proyecto demo creado")
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
