package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrOverpayment       = errors.New("el pago supera el saldo pendiente")
	ErrHasDependencies   = errors.New("existen registros dependientes")
	ErrSessionExpired    = errors.New("sesión expirada")
	ErrSessionInvalid    = errors.New("sesión inválida")
	ErrNoActiveCenter    = errors.New("el usuario no tiene una asignación activa")
)
