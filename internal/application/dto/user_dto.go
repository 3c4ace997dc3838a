package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
// CenterID/Role opcionales: si vienen se crea la primera asignación en la misma transacción.
type CreateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	CenterID  int64  `json:"center_id"`
	Role      string `json:"role"`
}

// UpdateUserRequest datos editables de un usuario.
type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID                 int64      `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	IsActive           bool       `json:"is_active"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	ModifiedAt         *time.Time `json:"modified_at,omitempty"`
}

// UserSearchRequest filtros del listado de usuarios.
type UserSearchRequest struct {
	Term     string `query:"q"`
	CenterID int64  `query:"center_id"`
	Role     string `query:"role"`
	Active   string `query:"active"` // "", "true", "false"
	PageRequest
}

// UserSummaryResponse fila del listado de usuarios.
type UserSummaryResponse struct {
	ID                 int64      `json:"id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	IsActive           bool       `json:"is_active"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	Centers            string     `json:"centers"`
	Roles              string     `json:"roles"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserSummaryResponse `json:"items"`
	PageResponse
}

// UserStatisticsResponse contadores del panel de administración.
type UserStatisticsResponse struct {
	Total              int64 `json:"total"`
	Active             int64 `json:"active"`
	Inactive           int64 `json:"inactive"`
	SuperAdmins        int64 `json:"super_admins"`
	MedicalStaff       int64 `json:"medical_staff"`
	MustChangePassword int64 `json:"must_change_password"`
}

// AssignmentRequest asignar un usuario a un centro con un rol.
type AssignmentRequest struct {
	UserID    int64      `json:"user_id"`
	CenterID  int64      `json:"center_id"`
	Role      string     `json:"role"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// AssignmentResponse asignación con nombres.
type AssignmentResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	UserName   string     `json:"user_name"`
	CenterID   int64      `json:"center_id"`
	CenterName string     `json:"center_name"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}
