package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
)

// UserSearch filtros de la pantalla de administración de usuarios.
type UserSearch struct {
	Term     string // nombre, apellido o email (normalizado)
	CenterID int64  // 0 = todos
	Role     string // "" = todos
	Active   *bool
	Page     int
	Size     int
}

// UserSummary fila desnormalizada (usuario + centros + roles activos).
type UserSummary struct {
	ID                 int64
	FullName           string
	Email              string
	Phone              string
	IsActive           bool
	MustChangePassword bool
	LastLoginAt        *time.Time
	Centers            string // "Centre A, Centre B"
	Roles              string // "MedicalStaff, SuperAdmin"
	CreatedAt          time.Time
}

// UserStatistics contadores para el panel de administración.
type UserStatistics struct {
	Total              int64
	Active             int64
	Inactive           int64
	SuperAdmins        int64
	MedicalStaff       int64
	MustChangePassword int64
}

// UserRepository puerto de persistencia para User.
type UserRepository interface {
	Repository[entity.User]

	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// EmailExists ignora el usuario excludeID (0 = ninguno).
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Search(ctx context.Context, f UserSearch) (*query.Page[UserSummary], error)
	// UpdatePassword cambia solo el hash y el indicador de cambio obligatorio.
	UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool, actor int64, at time.Time) error
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	// Statistics centerID nil = global.
	Statistics(ctx context.Context, centerID *int64) (*UserStatistics, error)
}
