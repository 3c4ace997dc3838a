package entity

// HospitalCenter un establecimiento; unidad de alcance de los datos clínicos, financieros y de stock.
type HospitalCenter struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Address  string `db:"address"`
	Phone    string `db:"phone"`
	Email    string `db:"email"`
	IsActive bool   `db:"is_active"`
	Audit
}
