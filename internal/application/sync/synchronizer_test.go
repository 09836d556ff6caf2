package sync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrapps/gastos-api/internal/application/session"
	appsync "github.com/avrapps/gastos-api/internal/application/sync"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
	"github.com/avrapps/gastos-api/pkg/logger"
)

// fakeProjectRepo implementación en memoria del puerto para los tests: el test
// controla las entregas empujando a deliver.
type fakeProjectRepo struct {
	deliver chan repository.ProjectDelivery
	// contexts de cada Watch abierto, para verificar cancelación
	watchCtxs []context.Context
	queries   []repository.ProjectQuery
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{deliver: make(chan repository.ProjectDelivery, 8)}
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return nil, nil
}
func (f *fakeProjectRepo) Create(ctx context.Context, p *entity.Project) error { return nil }
func (f *fakeProjectRepo) Update(ctx context.Context, p *entity.Project) error { return nil }
func (f *fakeProjectRepo) List(ctx context.Context, q repository.ProjectQuery) (repository.ProjectDelivery, error) {
	return repository.ProjectDelivery{}, nil
}

func (f *fakeProjectRepo) Watch(ctx context.Context, q repository.ProjectQuery) (<-chan repository.ProjectDelivery, error) {
	f.watchCtxs = append(f.watchCtxs, ctx)
	f.queries = append(f.queries, q)
	out := make(chan repository.ProjectDelivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-f.deliver:
				if !ok {
					return
				}
				select {
				case <-ctx.Done():
					return
				case out <- d:
				}
			}
		}
	}()
	return out, nil
}

func proj(id string, status string, createdAt time.Time) *entity.Project {
	return &entity.Project{ID: id, Name: id, Status: status, CreatedAt: createdAt}
}

func adminIdentity() session.Identity {
	return session.Identity{ID: entity.AdminIdentifier, Name: "Administrador", Role: entity.RoleAdmin}
}

// ──────────────────────────────────────────────────────────────────────────────
// QueryFor: predicado de visibilidad por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestQueryFor_PorRol(t *testing.T) {
	cases := []struct {
		name  string
		ident session.Identity
		want  repository.ProjectQuery
	}{
		{
			name:  "admin centinela ve todo",
			ident: adminIdentity(),
			want:  repository.ProjectQuery{All: true},
		},
		{
			name:  "rol ADMIN ve todo",
			ident: session.Identity{ID: "9876543210", Role: entity.RoleAdmin},
			want:  repository.ProjectQuery{All: true},
		},
		{
			name:  "USER filtra por pertenencia al equipo",
			ident: session.Identity{ID: "9876500001", Role: entity.RoleUser},
			want:  repository.ProjectQuery{TeamMember: "9876500001"},
		},
		{
			name:  "APPROVER filtra por manager o aprobador temporal",
			ident: session.Identity{ID: "9876543210", Role: entity.RoleApprover},
			want:  repository.ProjectQuery{ApproverID: "9876543210"},
		},
		{
			name:  "rol desconocido no devuelve nada (fail-closed)",
			ident: session.Identity{ID: "9876500009", Role: entity.Role("SUPERUSER")},
			want:  repository.ProjectQuery{MatchNone: true},
		},
		{
			name:  "sin rol tampoco devuelve nada",
			ident: session.Identity{ID: "9876500009"},
			want:  repository.ProjectQuery{MatchNone: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, appsync.QueryFor(tc.ident))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscripción viva
// ──────────────────────────────────────────────────────────────────────────────

func TestSubscribe_EntregaSnapshotOrdenadoDescendente(t *testing.T) {
	repo := newFakeProjectRepo()
	s := appsync.NewSynchronizer(repo, logger.Nop(), nil)
	defer s.Close()

	sub, err := s.Subscribe(context.Background(), adminIdentity())
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	// Entrega desordenada: el sincronizador debe reordenar (más nuevo primero).
	repo.deliver <- repository.ProjectDelivery{Projects: []*entity.Project{
		proj("viejo", entity.ProjectActive, base),
		proj("nuevo", entity.ProjectActive, base.Add(48*time.Hour)),
		proj("medio", entity.ProjectActive, base.Add(24*time.Hour)),
	}}

	select {
	case snap := <-sub.Snapshots():
		require.Len(t, snap, 3)
		assert.Equal(t, "nuevo", snap[0].ID)
		assert.Equal(t, "medio", snap[1].ID)
		assert.Equal(t, "viejo", snap[2].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el snapshot")
	}
}

func TestSubscribe_CancelaLaSuscripcionAnterior(t *testing.T) {
	repo := newFakeProjectRepo()
	s := appsync.NewSynchronizer(repo, logger.Nop(), nil)
	defer s.Close()

	_, err := s.Subscribe(context.Background(), adminIdentity())
	require.NoError(t, err)
	_, err = s.Subscribe(context.Background(), session.Identity{ID: "9876500001", Role: entity.RoleUser})
	require.NoError(t, err)

	require.Len(t, repo.watchCtxs, 2)
	select {
	case <-repo.watchCtxs[0].Done():
	case <-time.After(time.Second):
		t.Fatal("la primera suscripción debió cancelarse al re-suscribir")
	}
	assert.NoError(t, repo.watchCtxs[1].Err(), "la segunda suscripción debe seguir viva")

	// El predicado de la segunda corresponde a la nueva identidad.
	assert.Equal(t, repository.ProjectQuery{TeamMember: "9876500001"}, repo.queries[1])
}

func TestSubscription_ConservaSoloElSnapshotMasReciente(t *testing.T) {
	repo := newFakeProjectRepo()
	published := make(chan struct{}, 8)
	s := appsync.NewSynchronizer(repo, logger.Nop(), func(ctx context.Context, _ []*entity.Project) {
		published <- struct{}{}
	})
	defer s.Close()

	sub, err := s.Subscribe(context.Background(), adminIdentity())
	require.NoError(t, err)

	base := time.Now()
	repo.deliver <- repository.ProjectDelivery{Projects: []*entity.Project{proj("a", entity.ProjectActive, base)}}
	repo.deliver <- repository.ProjectDelivery{Projects: []*entity.Project{
		proj("a", entity.ProjectActive, base),
		proj("b", entity.ProjectActive, base.Add(time.Hour)),
	}}

	// Esperar a que ambas entregas se procesen sin consumir el canal.
	for i := 0; i < 2; i++ {
		select {
		case <-published:
		case <-time.After(2 * time.Second):
			t.Fatal("la entrega no se procesó")
		}
	}

	select {
	case snap := <-sub.Snapshots():
		assert.Len(t, snap, 2, "un consumidor lento debe ver solo el snapshot más reciente")
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el snapshot")
	}
}

func TestSubscription_CancelEsIdempotente(t *testing.T) {
	repo := newFakeProjectRepo()
	s := appsync.NewSynchronizer(repo, logger.Nop(), nil)

	sub, err := s.Subscribe(context.Background(), adminIdentity())
	require.NoError(t, err)

	sub.Cancel()
	sub.Cancel() // segunda llamada no debe entrar en pánico

	select {
	case _, open := <-sub.Snapshots():
		assert.False(t, open, "el canal debe cerrarse al cancelar")
	case <-time.After(2 * time.Second):
		t.Fatal("el canal no se cerró tras cancelar")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtro por estado (solo admin, sin re-consulta)
// ──────────────────────────────────────────────────────────────────────────────

func TestFilterByStatus_SoloFiltraParaElAdmin(t *testing.T) {
	repo := newFakeProjectRepo()
	published := make(chan struct{}, 1)
	s := appsync.NewSynchronizer(repo, logger.Nop(), func(ctx context.Context, _ []*entity.Project) {
		published <- struct{}{}
	})
	defer s.Close()

	_, err := s.Subscribe(context.Background(), adminIdentity())
	require.NoError(t, err)

	base := time.Now()
	repo.deliver <- repository.ProjectDelivery{Projects: []*entity.Project{
		proj("activo", entity.ProjectActive, base.Add(time.Hour)),
		proj("terminado", entity.ProjectCompleted, base),
	}}
	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("la entrega no se procesó")
	}

	completed := s.FilterByStatus(entity.ProjectCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, "terminado", completed[0].ID)

	// El snapshot subyacente no cambia por aplicar el filtro.
	assert.Len(t, s.Snapshot(), 2)

	// Estado vacío devuelve el conjunto completo.
	assert.Len(t, s.FilterByStatus(""), 2)
}

func TestFilterByStatus_NoOpParaIdentidadNoAdmin(t *testing.T) {
	repo := newFakeProjectRepo()
	published := make(chan struct{}, 1)
	s := appsync.NewSynchronizer(repo, logger.Nop(), func(ctx context.Context, _ []*entity.Project) {
		published <- struct{}{}
	})
	defer s.Close()

	_, err := s.Subscribe(context.Background(), session.Identity{ID: "9876500001", Role: entity.RoleUser})
	require.NoError(t, err)

	repo.deliver <- repository.ProjectDelivery{Projects: []*entity.Project{
		proj("p1", entity.ProjectActive, time.Now()),
	}}
	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("la entrega no se procesó")
	}

	// Para un USER el filtro por estado ya corre en el predicado del servidor;
	// el filtrado local se ignora.
	assert.Len(t, s.FilterByStatus(entity.ProjectCompleted), 1)
}
