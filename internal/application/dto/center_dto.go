package dto

import "time"

// CenterRequest alta/edición de un centro.
type CenterRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CenterResponse salida de un centro.
type CenterResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CenterSummaryResponse fila del listado de centros.
type CenterSummaryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	IsActive     bool   `json:"is_active"`
	StaffCount   int64  `json:"staff_count"`
	PatientCount int64  `json:"patient_count"`
}

// CenterListResponse página de centros.
type CenterListResponse struct {
	Items []CenterSummaryResponse `json:"items"`
	PageResponse
}

// DeactivateCenterRequest Confirm=true acepta las advertencias (asignaciones y sesiones activas).
type DeactivateCenterRequest struct {
	Confirm bool `json:"confirm" query:"confirm"`
}

// CenterImpactResponse dependencias de un centro.
type CenterImpactResponse struct {
	OpenEpisodes      int64 `json:"open_episodes"`
	StockOnHand       int64 `json:"stock_on_hand"`
	UnpaidSales       int64 `json:"unpaid_sales"`
	ActiveAssignments int64 `json:"active_assignments"`
	ActivePatients    int64 `json:"active_patients"`
	ActiveSessions    int64 `json:"active_sessions"`
	Blocking          bool  `json:"blocking"`
}

// CategoryRequest alta/edición de una categoría de productos.
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryResponse categoría con número de productos.
type CategoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	ProductCount int64  `json:"product_count"`
}
