package dto

// PageRequest paginación para listados (page desde 1).
type PageRequest struct {
	Page int `query:"page"`
	Size int `query:"size"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FailureResponse cuerpo de una denegación para peticiones AJAX: {success:false, message}.
type FailureResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// OperationResult resultado de una operación que puede rechazarse por una regla esperada
// (nombre duplicado, dependencias). Un rechazo no es un error.
type OperationResult struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	ID       int64    `json:"id,omitempty"`
}

// Refused construye un rechazo esperado.
func Refused(message string) *OperationResult {
	return &OperationResult{Success: false, Message: message}
}

// Done construye un resultado exitoso.
func Done(id int64, message string) *OperationResult {
	return &OperationResult{Success: true, ID: id, Message: message}
}
