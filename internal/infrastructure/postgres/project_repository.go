package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/logger"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// notifyChannel canal LISTEN/NOTIFY por el que las escrituras de proyectos
// anuncian cambios a las suscripciones vivas.
const notifyChannel = "project_events"

// ProjectRepo implementación del puerto ProjectRepository sobre PostgreSQL.
// Los departamentos se guardan como JSONB (departamento -> asignación).
type ProjectRepo struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewProjectRepository construye el adaptador de persistencia para proyectos.
func NewProjectRepository(pool *pgxpool.Pool, log *logger.Logger) *ProjectRepo {
	return &ProjectRepo{pool: pool, log: log}
}

const projectColumns = `id, name, description, status,
	COALESCE(start_date, ''), COALESCE(end_date, ''),
	team_members, manager_id, COALESCE(temp_approver_id, ''),
	departments, created_at, updated_at`

// GetByID obtiene un proyecto por ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project by id: %w", err)
	}
	return p, nil
}

// Create persiste el proyecto y notifica a las suscripciones vivas en la
// misma transacción (la notificación sale solo si el commit ocurre).
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	depts, err := json.Marshal(p.Departments)
	if err != nil {
		return fmt.Errorf("serializar departamentos: %w", err)
	}
	query := `
		INSERT INTO projects (id, name, description, status, start_date, end_date,
			team_members, manager_id, temp_approver_id, departments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10, $11, $12)`
	return r.writeAndNotify(ctx, p.ID, query,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate,
		p.TeamMembers, p.ManagerID, p.TempApproverID, depts, p.CreatedAt, p.UpdatedAt,
	)
}

// Update actualiza el proyecto y notifica a las suscripciones vivas.
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	depts, err := json.Marshal(p.Departments)
	if err != nil {
		return fmt.Errorf("serializar departamentos: %w", err)
	}
	query := `
		UPDATE projects SET name = $2, description = $3, status = $4,
			start_date = NULLIF($5, ''), end_date = NULLIF($6, ''),
			team_members = $7, temp_approver_id = NULLIF($8, ''),
			departments = $9, updated_at = $10
		WHERE id = $1`
	return r.writeAndNotify(ctx, p.ID, query,
		p.ID, p.Name, p.Description, p.Status, p.StartDate, p.EndDate,
		p.TeamMembers, p.TempApproverID, depts, time.Now(),
	)
}

// writeAndNotify ejecuta la escritura y el pg_notify en una transacción.
func (r *ProjectRepo) writeAndNotify(ctx context.Context, projectID, query string, args ...any) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("proyecto duplicado: %w", err)
		}
		return fmt.Errorf("write project: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, projectID); err != nil {
		return fmt.Errorf("notify project change: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List ejecuta el predicado una sola vez y devuelve el conjunto que lo cumple.
// Los documentos individuales malformados se descartan y se cuentan, en lugar
// de fallar el lote completo: resultados parciales antes que fallo total.
func (r *ProjectRepo) List(ctx context.Context, q repository.ProjectQuery) (repository.ProjectDelivery, error) {
	query, args := buildProjectQuery(q)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return repository.ProjectDelivery{}, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var d repository.ProjectDelivery
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			d.Skipped++
			r.log.Warn().Err(err).Msg("proyecto malformado descartado")
			continue
		}
		d.Projects = append(d.Projects, p)
	}
	return d, rows.Err()
}

// buildProjectQuery traduce el predicado de visibilidad a SQL.
func buildProjectQuery(q repository.ProjectQuery) (string, []any) {
	base := `SELECT ` + projectColumns + ` FROM projects`
	order := ` ORDER BY created_at DESC`
	switch {
	case q.MatchNone:
		return base + ` WHERE FALSE` + order, nil
	case q.TeamMember != "":
		return base + ` WHERE $1 = ANY(team_members) AND status = $2` + order,
			[]any{q.TeamMember, entity.ProjectActive}
	case q.ApproverID != "":
		return base + ` WHERE (manager_id = $1 OR temp_approver_id = $1) AND status = $2` + order,
			[]any{q.ApproverID, entity.ProjectActive}
	default: // All
		return base + order, nil
	}
}

// rowScanner cubre pgx.Row y pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*entity.Project, error) {
	var p entity.Project
	var deptJSON []byte
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status,
		&p.StartDate, &p.EndDate,
		&p.TeamMembers, &p.ManagerID, &p.TempApproverID,
		&deptJSON, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Departments = map[string]decimal.Decimal{}
	if len(deptJSON) > 0 {
		if err := json.Unmarshal(deptJSON, &p.Departments); err != nil {
			return nil, fmt.Errorf("departamentos malformados: %w", err)
		}
	}
	return &p, nil
}
