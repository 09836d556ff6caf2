// Package sync mantiene el snapshot vivo de proyectos visibles según el rol.
//
// La suscripción es un objeto explícito y cancelable que produce un canal de
// snapshots completos: cada cambio en el backend vuelve a entregar el conjunto
// entero ya ordenado, nunca deltas. Un Synchronizer mantiene como máximo una
// suscripción viva; re-suscribirse cancela la anterior primero.
package sync

import (
	"context"
	"sort"
	stdsync "sync"

	"github.com/avrapps/gastos-api/internal/application/session"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/logger"
)

// SnapshotHook se invoca tras publicar cada snapshot; la usa el agregador de
// gastos para refrescar la cola de pendientes como efecto dependiente.
type SnapshotHook func(ctx context.Context, projects []*entity.Project)

// Synchronizer abre y administra la suscripción viva de proyectos.
type Synchronizer struct {
	projects repository.ProjectRepository
	log      *logger.Logger
	hook     SnapshotHook

	mu       stdsync.Mutex
	cancel   context.CancelFunc
	identity session.Identity
	snapshot []*entity.Project
}

// NewSynchronizer construye el sincronizador. hook puede ser nil.
func NewSynchronizer(projects repository.ProjectRepository, log *logger.Logger, hook SnapshotHook) *Synchronizer {
	return &Synchronizer{projects: projects, log: log, hook: hook}
}

// Subscription suscripción viva cancelable. Snapshots() entrega el conjunto
// completo y ordenado tras cada cambio; el canal se cierra al cancelar.
type Subscription struct {
	snapshots chan []*entity.Project
	cancel    context.CancelFunc
	once      stdsync.Once
}

// Snapshots canal de entregas. Siempre conserva solo el snapshot más reciente:
// un consumidor lento no bloquea al productor.
func (s *Subscription) Snapshots() <-chan []*entity.Project {
	return s.snapshots
}

// Cancel termina la suscripción. Seguro de llamar más de una vez.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// QueryFor construye el predicado de visibilidad para la identidad dada.
//
// Reglas por rol:
//   - identidad centinela admin: todos los proyectos, cualquier estado
//   - USER: team_members contiene el identificador y estado ACTIVE
//   - APPROVER: manager o aprobador temporal y estado ACTIVE
//   - rol no reconocido: fail-closed, el predicado no devuelve nada
func QueryFor(ident session.Identity) repository.ProjectQuery {
	if ident.IsAdminSentinel() {
		return repository.ProjectQuery{All: true}
	}
	switch ident.Role {
	case entity.RoleAdmin:
		return repository.ProjectQuery{All: true}
	case entity.RoleUser:
		return repository.ProjectQuery{TeamMember: ident.ID}
	case entity.RoleApprover:
		return repository.ProjectQuery{ApproverID: ident.ID}
	default:
		return repository.ProjectQuery{MatchNone: true}
	}
}

// Subscribe abre la suscripción viva para la identidad. Si ya existe una
// suscripción activa la cancela antes de abrir la nueva: nunca hay más de una
// por instancia.
func (s *Synchronizer) Subscribe(ctx context.Context, ident session.Identity) (*Subscription, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	subCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.identity = ident
	s.mu.Unlock()

	deliveries, err := s.projects.Watch(subCtx, QueryFor(ident))
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		snapshots: make(chan []*entity.Project, 1),
		cancel:    cancel,
	}
	go s.pump(subCtx, deliveries, sub)
	return sub, nil
}

// pump consume las entregas del backend, ordena y publica.
func (s *Synchronizer) pump(ctx context.Context, deliveries <-chan repository.ProjectDelivery, sub *Subscription) {
	defer close(sub.snapshots)
	for d := range deliveries {
		// La suscripción pudo cancelarse mientras llegaba la entrega: un
		// consumidor muerto no debe recibir ni mutar nada.
		if ctx.Err() != nil {
			return
		}
		if d.Skipped > 0 {
			s.log.Warn().Int("skipped", d.Skipped).Msg("documentos de proyecto malformados descartados")
		}
		sorted := sortByCreatedDesc(d.Projects)

		s.mu.Lock()
		s.snapshot = sorted
		s.mu.Unlock()

		if s.hook != nil {
			s.hook(ctx, sorted)
		}

		// Conservar solo la entrega más reciente.
		select {
		case <-sub.snapshots:
		default:
		}
		sub.snapshots <- sorted
	}
}

// Snapshot devuelve el último conjunto publicado (ya ordenado).
func (s *Synchronizer) Snapshot() []*entity.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Project, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// FilterByStatus vista derivada del snapshot filtrada por estado, solo para el
// admin centinela: el filtrado es local y no re-consulta el backend. Para
// identidades no admin es un no-op (el filtro por rol ya aplica en el servidor).
// status vacío devuelve el snapshot completo. El snapshot subyacente no cambia.
func (s *Synchronizer) FilterByStatus(status string) []*entity.Project {
	s.mu.Lock()
	ident := s.identity
	snap := make([]*entity.Project, len(s.snapshot))
	copy(snap, s.snapshot)
	s.mu.Unlock()

	if !ident.IsAdminSentinel() || status == "" {
		return snap
	}
	out := snap[:0:0]
	for _, p := range snap {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Close cancela la suscripción activa, si existe. No cancelar una suscripción
// viva deja una conexión al backend entregando a un consumidor muerto.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// sortByCreatedDesc ordena por fecha de creación descendente (contrato duro:
// el más nuevo primero). Ordena sobre una copia.
func sortByCreatedDesc(in []*entity.Project) []*entity.Project {
	out := make([]*entity.Project, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
