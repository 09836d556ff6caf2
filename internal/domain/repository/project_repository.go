package repository

import (
	"context"

	"github.com/avrapps/gastos-api/internal/domain/entity"
)

// ProjectQuery describe el predicado de visibilidad de proyectos según el rol.
// Exactamente una de las formas debe estar activa:
//   - All:        admin, sin filtro (cualquier estado)
//   - TeamMember: rol USER, team_members contiene el id y estado ACTIVE
//   - ApproverID: rol APPROVER, manager o aprobador temporal y estado ACTIVE
//   - MatchNone:  rol no reconocido, no devuelve nada (fail-closed)
type ProjectQuery struct {
	All        bool
	TeamMember string
	ApproverID string
	MatchNone  bool
}

// ProjectDelivery una entrega de la suscripción viva: el conjunto completo de
// proyectos que cumplen el predicado en este momento, más el número de
// documentos malformados descartados individualmente.
type ProjectDelivery struct {
	Projects []*entity.Project
	Skipped  int
}

// ProjectRepository define el puerto de persistencia para Project.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	Create(ctx context.Context, p *entity.Project) error
	Update(ctx context.Context, p *entity.Project) error
	// List ejecuta el predicado una sola vez (one-shot).
	List(ctx context.Context, q ProjectQuery) (ProjectDelivery, error)
	// Watch abre una suscripción viva: entrega el conjunto actual de inmediato
	// y lo vuelve a entregar completo tras cada cambio en el backend, hasta que
	// el contexto se cancela. El canal se cierra al terminar.
	Watch(ctx context.Context, q ProjectQuery) (<-chan ProjectDelivery, error)
}
