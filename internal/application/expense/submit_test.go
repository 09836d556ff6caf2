package expense_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrapps/gastos-api/internal/application/dto"
	"github.com/avrapps/gastos-api/internal/application/expense"
	"github.com/avrapps/gastos-api/internal/domain"
	"github.com/avrapps/gastos-api/internal/domain/entity"
	"github.com/avrapps/gastos-api/internal/domain/repository"
)

// fakeProjectStore solo resuelve GetByID para el submitter.
type fakeProjectStore struct {
	projects map[string]*entity.Project
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return f.projects[id], nil
}
func (f *fakeProjectStore) Create(ctx context.Context, p *entity.Project) error { return nil }
func (f *fakeProjectStore) Update(ctx context.Context, p *entity.Project) error { return nil }
func (f *fakeProjectStore) List(ctx context.Context, q repository.ProjectQuery) (repository.ProjectDelivery, error) {
	return repository.ProjectDelivery{}, nil
}
func (f *fakeProjectStore) Watch(ctx context.Context, q repository.ProjectQuery) (<-chan repository.ProjectDelivery, error) {
	return nil, nil
}

func testProjectID() string { return "7b0c9f7e-9a3f-4a4d-9d53-0aa9f2b6d111" }

func submitFixture() (*expense.Submitter, *fakeExpenseRepo) {
	projects := &fakeProjectStore{projects: map[string]*entity.Project{
		testProjectID(): {
			ID:     testProjectID(),
			Name:   "Proyecto Demo",
			Status: entity.ProjectActive,
			Departments: map[string]decimal.Decimal{
				"Art": decimal.NewFromInt(1000),
			},
		},
	}}
	repo := newFakeExpenseRepo()
	return expense.NewSubmitter(projects, repo), repo
}

func validRequest() dto.SubmitExpenseRequest {
	return dto.SubmitExpenseRequest{
		ProjectID:   testProjectID(),
		Date:        "2025-06-15",
		Amount:      decimal.NewFromInt(250),
		Department:  "Art",
		Categories:  []string{" utilería ", ""},
		Description: "  telones para el set  ",
		PaymentMode: entity.PaymentUPI,
	}
}

func TestSubmit_GastoValidoQuedaPendiente(t *testing.T) {
	s, repo := submitFixture()

	e, err := s.Submit(context.Background(), "9876500001", validRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.ExpensePending, e.Status, "todo gasto nuevo nace pendiente")
	assert.Equal(t, "9876500001", e.SubmittedBy)
	assert.Equal(t, []string{"utilería"}, e.Categories, "las categorías se recortan y las vacías se descartan")
	assert.Equal(t, "telones para el set", e.Description)
	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err, "el id debe ser un UUID generado")
	require.Len(t, repo.byProject[testProjectID()], 1)
}

func TestSubmit_MontoNoPositivo(t *testing.T) {
	s, _ := submitFixture()

	in := validRequest()
	in.Amount = decimal.Zero
	_, err := s.Submit(context.Background(), "9876500001", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in.Amount = decimal.NewFromInt(-10)
	_, err = s.Submit(context.Background(), "9876500001", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_DepartamentoInexistente(t *testing.T) {
	s, repo := submitFixture()

	in := validRequest()
	in.Department = "Catering"
	_, err := s.Submit(context.Background(), "9876500001", in)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.byProject[testProjectID()], "la validación corre antes de cualquier escritura")
}

func TestSubmit_CategoriasSoloEspacios(t *testing.T) {
	s, _ := submitFixture()

	in := validRequest()
	in.Categories = []string{"  ", "\t"}
	_, err := s.Submit(context.Background(), "9876500001", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_ProyectoInexistente(t *testing.T) {
	s, _ := submitFixture()

	in := validRequest()
	in.ProjectID = "119b9c8e-0000-4a4d-9d53-0aa9f2b6d222"
	_, err := s.Submit(context.Background(), "9876500001", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_ModoDePagoInvalido(t *testing.T) {
	s, _ := submitFixture()

	in := validRequest()
	in.PaymentMode = "CHEQUE"
	_, err := s.Submit(context.Background(), "9876500001", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
