package dto

import "time"

// LoginRequest credenciales; CenterID opcional cuando el usuario trabaja en varios centros.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	CenterID int64  `json:"center_id" form:"center_id"`
}

// CenterOption centro seleccionable por el usuario.
type CenterOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginResult sesión abierta. SessionKey y Token nunca se serializan: el sobre firmado viaja solo en la cookie.
type LoginResult struct {
	SessionKey         string         `json:"-"`
	Token              string         `json:"-"`
	ExpiresAt          time.Time      `json:"expires_at"`
	UserID             int64          `json:"user_id"`
	FullName           string         `json:"full_name"`
	CenterID           *int64         `json:"center_id,omitempty"`
	CenterName         string         `json:"center_name,omitempty"`
	Role               string         `json:"role"`
	MustChangePassword bool           `json:"must_change_password"`
	NeedsCenter        bool           `json:"needs_center"`
	Centers            []CenterOption `json:"centers,omitempty"`
}

// ChangePasswordRequest cambio de contraseña propio (ruta pública).
type ChangePasswordRequest struct {
	Email           string `json:"email" form:"email"`
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// ResetPasswordRequest restablecimiento por un SuperAdmin. El usuario siempre
// deberá cambiarla en su próximo acceso.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// SwitchCenterRequest cambio de centro actual.
type SwitchCenterRequest struct {
	CenterID int64 `json:"center_id" form:"center_id"`
}

// IdentityResponse identidad de la petición en curso.
type IdentityResponse struct {
	UserID     int64     `json:"user_id"`
	FullName   string    `json:"full_name"`
	CenterID   *int64    `json:"center_id,omitempty"`
	CenterName string    `json:"center_name,omitempty"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
}
