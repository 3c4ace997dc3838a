package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
)

// DeleteMode borrado lógico (is_active = false) o físico.
type DeleteMode int

const (
	SoftDelete DeleteMode = iota
	HardDelete
)

// Columnas del sobre de auditoría que un Update no toca salvo AllowAuditOverwrite.
var ProtectedAuditColumns = []string{"created_by", "created_at"}

// UpdateOptions controla qué columnas escribe Update.
type UpdateOptions struct {
	Omit                []string
	AllowAuditOverwrite bool
}

// UpdateOption modifica UpdateOptions.
type UpdateOption func(*UpdateOptions)

// Omit excluye columnas del UPDATE.
func Omit(columns ...string) UpdateOption {
	return func(o *UpdateOptions) { o.Omit = append(o.Omit, columns...) }
}

// AllowAuditOverwrite permite escribir created_by/created_at (migraciones de datos, importaciones).
func AllowAuditOverwrite() UpdateOption {
	return func(o *UpdateOptions) { o.AllowAuditOverwrite = true }
}

// ResolveUpdateOptions aplica las opciones y devuelve el conjunto de columnas excluidas.
func ResolveUpdateOptions(opts ...UpdateOption) map[string]bool {
	var o UpdateOptions
	for _, fn := range opts {
		fn(&o)
	}
	excluded := make(map[string]bool, len(o.Omit)+len(ProtectedAuditColumns))
	for _, c := range o.Omit {
		excluded[c] = true
	}
	if !o.AllowAuditOverwrite {
		for _, c := range ProtectedAuditColumns {
			excluded[c] = true
		}
	}
	return excluded
}

// Repository contrato CRUD/consulta uniforme parametrizado por entidad.
// Las búsquedas reciben opciones de query componibles. Los errores de la capa de datos se propagan.
// GetByID/First devuelven (nil, nil) si no hay fila, igual que el resto de adaptadores.
type Repository[T any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción en curso.
	GetForUpdate(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, opts ...query.Option) ([]*T, error)
	First(ctx context.Context, opts ...query.Option) (*T, error)
	Exists(ctx context.Context, opts ...query.Option) (bool, error)
	Count(ctx context.Context, opts ...query.Option) (int64, error)
	Sum(ctx context.Context, column string, opts ...query.Option) (decimal.Decimal, error)
	Page(ctx context.Context, page, size int, opts ...query.Option) (*query.Page[T], error)

	Add(ctx context.Context, e *T) error
	AddBatch(ctx context.Context, es []*T) error
	Update(ctx context.Context, e *T, opts ...UpdateOption) error
	UpdateBatch(ctx context.Context, es []*T, opts ...UpdateOption) error
	Delete(ctx context.Context, id int64, mode DeleteMode, actor int64) error
	DeleteBatch(ctx context.Context, ids []int64, mode DeleteMode, actor int64) error

	// Exec ejecuta SQL arbitrario y devuelve filas afectadas.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// Locker serializa operaciones sobre una clave durante la transacción en curso
// (verificaciones de unicidad previas a un insert).
type Locker interface {
	Lock(ctx context.Context, key string) error
}

// Repos conjunto de repositorios atados a una misma conexión o transacción.
type Repos struct {
	Users       UserRepository
	Centers     HospitalCenterRepository
	Assignments AssignmentRepository
	Categories  CategoryRepository
	Audit       AuditRepository
	Locks       Locker
	Reports     ReportRepository

	Patients          Repository[entity.Patient]
	Diagnoses         Repository[entity.Diagnosis]
	Episodes          Repository[entity.CareEpisode]
	Services          Repository[entity.CareService]
	Exams             Repository[entity.Examination]
	Prescriptions     Repository[entity.Prescription]
	PrescriptionItems Repository[entity.PrescriptionItem]

	Products  Repository[entity.Product]
	Stock     StockRepository
	Movements Repository[entity.StockMovement]
	Transfers Repository[entity.StockTransfer]
	Sales     Repository[entity.Sale]
	SaleItems Repository[entity.SaleItem]
	Payments  Repository[entity.Payment]
}

// UnitOfWork ejecuta fn de forma atómica: commit si devuelve nil, rollback y propagación del error si no.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r Repos) error) error
}
