package entity

// ProductCategory categoría de productos. El nombre es único.
type ProductCategory struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	Audit
}
