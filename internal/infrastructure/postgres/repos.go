package postgres

import (
	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// NewRepos construye todos los repositorios sobre q (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Users:       NewUserRepository(q),
		Centers:     NewCenterRepository(q),
		Assignments: NewAssignmentRepository(q),
		Categories:  NewCategoryRepository(q),
		Audit:       NewAuditRepository(q),
		Locks:       NewAdvisoryLocker(q),
		Reports:     NewReportRepository(q),

		Patients:          NewTable[entity.Patient](q, "patients"),
		Diagnoses:         NewTable[entity.Diagnosis](q, "diagnoses"),
		Episodes:          NewTable[entity.CareEpisode](q, "care_episodes"),
		Services:          NewTable[entity.CareService](q, "care_services"),
		Exams:             NewTable[entity.Examination](q, "examinations"),
		Prescriptions:     NewTable[entity.Prescription](q, "prescriptions"),
		PrescriptionItems: NewTable[entity.PrescriptionItem](q, "prescription_items"),

		Products:  NewTable[entity.Product](q, "products"),
		Stock:     NewStockRepository(q),
		Movements: NewTable[entity.StockMovement](q, "stock_movements"),
		Transfers: NewTable[entity.StockTransfer](q, "stock_transfers"),
		Sales:     NewTable[entity.Sale](q, "sales"),
		SaleItems: NewTable[entity.SaleItem](q, "sale_items"),
		Payments:  NewTable[entity.Payment](q, "payments"),
	}
}
