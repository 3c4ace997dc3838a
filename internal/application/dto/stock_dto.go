package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest alta/edición de un producto.
type ProductRequest struct {
	CategoryID   int64           `json:"category_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID           int64           `json:"id"`
	CategoryID   int64           `json:"category_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	IsActive     bool            `json:"is_active"`
}

// MovementRequest movimiento de stock en el centro actual. Quantity en positivo salvo ajustes.
type MovementRequest struct {
	ProductID    int64           `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes"`
}

// TransferRequest traslado desde el centro actual hacia ToCenterID.
type TransferRequest struct {
	ProductID  int64           `json:"product_id"`
	ToCenterID int64           `json:"to_center_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes"`
}

// StockLineResponse línea del inventario de un centro.
type StockLineResponse struct {
	ProductID       int64           `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	CategoryName    string          `json:"category_name"`
	Unit            string          `json:"unit"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	MinimumStock    decimal.Decimal `json:"minimum_stock"`
	Low             bool            `json:"low"`
}

// SaleItemRequest línea de venta; el precio sale del producto.
type SaleItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SaleRequest venta en el centro actual.
type SaleRequest struct {
	PatientID      *int64            `json:"patient_id,omitempty"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	Notes          string            `json:"notes"`
	Items          []SaleItemRequest `json:"items"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID             int64           `json:"id"`
	SaleNumber     string          `json:"sale_number"`
	SaleDate       time.Time       `json:"sale_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	PaymentStatus  string          `json:"payment_status"`
}

// StatisticsRequest rango del informe; CenterID 0 = todos (solo SuperAdmin).
type StatisticsRequest struct {
	From     string `query:"from"` // 2006-01-02
	To       string `query:"to"`
	CenterID int64  `query:"center_id"`
}

// StatisticsResponse indicadores de un centro.
type StatisticsResponse struct {
	CenterID          *int64              `json:"center_id,omitempty"`
	From              time.Time           `json:"from"`
	To                time.Time           `json:"to"`
	Label             string              `json:"label"`
	Patients          int64               `json:"patients"`
	NewPatients       int64               `json:"new_patients"`
	Episodes          int64               `json:"episodes"`
	OpenEpisodes      int64               `json:"open_episodes"`
	Examinations      int64               `json:"examinations"`
	PaymentsCollected decimal.Decimal     `json:"payments_collected"`
	SalesAmount       decimal.Decimal     `json:"sales_amount"`
	OutstandingCare   decimal.Decimal     `json:"outstanding_care"`
	LowStockProducts  int64               `json:"low_stock_products"`
	ByMethod          []PaymentMethodLine `json:"by_method"`
}

// PaymentMethodLine total por medio de pago.
type PaymentMethodLine struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// ReplenishmentLine producto bajo mínimo con la cantidad sugerida de pedido.
type ReplenishmentLine struct {
	ProductID         int64           `json:"product_id"`
	ProductCode       string          `json:"product_code"`
	ProductName       string          `json:"product_name"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	MinimumStock      decimal.Decimal `json:"minimum_stock"`
	IdealStock        decimal.Decimal `json:"ideal_stock"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	SoldLast90Days    decimal.Decimal `json:"sold_last_90_days"`
	Priority          int             `json:"priority"`
}
