package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Hospital-api/internal/domain/entity"
	"github.com/jhoicas/Hospital-api/internal/domain/query"
	"github.com/jhoicas/Hospital-api/internal/domain/repository"
)

// Store todas las tablas en memoria más los adaptadores especializados.
type Store struct {
	Users             *Table[entity.User]
	Centers           *Table[entity.HospitalCenter]
	Assignments       *Table[entity.UserCenterAssignment]
	Categories        *Table[entity.ProductCategory]
	Patients          *Table[entity.Patient]
	Diagnoses         *Table[entity.Diagnosis]
	Episodes          *Table[entity.CareEpisode]
	Services          *Table[entity.CareService]
	Exams             *Table[entity.Examination]
	Prescriptions     *Table[entity.Prescription]
	PrescriptionItems *Table[entity.PrescriptionItem]
	Products          *Table[entity.Product]
	Stock             *Table[entity.StockInventory]
	Movements         *Table[entity.StockMovement]
	Transfers         *Table[entity.StockTransfer]
	Sales             *Table[entity.Sale]
	SaleItems         *Table[entity.SaleItem]
	Payments          *Table[entity.Payment]

	Audit    *AuditLog
	Locks    *Locks
	Sessions *Sessions

	// Impact dependencias duras por centro (las blandas se calculan de las tablas).
	Impact map[int64]repository.CenterImpact
	// Stats resultado fijo de ReportRepository.
	Stats    *repository.CenterStatistics
	ByMethod []repository.PaymentBreakdown
}

// NewStore almacén vacío.
func NewStore() *Store {
	return &Store{
		Users:             NewTable[entity.User](),
		Centers:           NewTable[entity.HospitalCenter](),
		Assignments:       NewTable[entity.UserCenterAssignment](),
		Categories:        NewTable[entity.ProductCategory](),
		Patients:          NewTable[entity.Patient](),
		Diagnoses:         NewTable[entity.Diagnosis](),
		Episodes:          NewTable[entity.CareEpisode](),
		Services:          NewTable[entity.CareService](),
		Exams:             NewTable[entity.Examination](),
		Prescriptions:     NewTable[entity.Prescription](),
		PrescriptionItems: NewTable[entity.PrescriptionItem](),
		Products:          NewTable[entity.Product](),
		Stock:             NewTable[entity.StockInventory](),
		Movements:         NewTable[entity.StockMovement](),
		Transfers:         NewTable[entity.StockTransfer](),
		Sales:             NewTable[entity.Sale](),
		SaleItems:         NewTable[entity.SaleItem](),
		Payments:          NewTable[entity.Payment](),
		Audit:             &AuditLog{},
		Locks:             &Locks{},
		Sessions:          NewSessions(),
		Impact:            map[int64]repository.CenterImpact{},
	}
}

// Repos adaptadores sobre las tablas del almacén.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Users:             &userRepo{Table: s.Users, s: s},
		Centers:           &centerRepo{Table: s.Centers, s: s},
		Assignments:       &assignmentRepo{Table: s.Assignments, s: s},
		Categories:        &categoryRepo{Table: s.Categories, s: s},
		Audit:             s.Audit,
		Locks:             s.Locks,
		Reports:           &reportRepo{s: s},
		Patients:          s.Patients,
		Diagnoses:         s.Diagnoses,
		Episodes:          s.Episodes,
		Services:          s.Services,
		Exams:             s.Exams,
		Prescriptions:     s.Prescriptions,
		PrescriptionItems: s.PrescriptionItems,
		Products:          s.Products,
		Stock:             &stockRepo{Table: s.Stock, s: s},
		Movements:         s.Movements,
		Transfers:         s.Transfers,
		Sales:             s.Sales,
		SaleItems:         s.SaleItems,
		Payments:          s.Payments,
	}
}

// UoW unidad de trabajo en memoria: si fn falla restaura todas las tablas.
func (s *Store) UoW() repository.UnitOfWork {
	return uow{s: s}
}

type uow struct{ s *Store }

func (u uow) Do(ctx context.Context, fn func(r repository.Repos) error) error {
	s := u.s
	restores := []func(){
		s.Users.snapshot(), s.Centers.snapshot(), s.Assignments.snapshot(), s.Categories.snapshot(),
		s.Patients.snapshot(), s.Diagnoses.snapshot(), s.Episodes.snapshot(), s.Services.snapshot(),
		s.Exams.snapshot(), s.Prescriptions.snapshot(), s.PrescriptionItems.snapshot(),
		s.Products.snapshot(), s.Stock.snapshot(), s.Movements.snapshot(), s.Transfers.snapshot(),
		s.Sales.snapshot(), s.SaleItems.snapshot(), s.Payments.snapshot(), s.Audit.snapshot(),
	}
	if err := fn(s.Repos()); err != nil {
		for _, r := range restores {
			r()
		}
		return err
	}
	return nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type userRepo struct {
	*Table[entity.User]
	s *Store
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.First(ctx, query.Eq("email", entity.NormalizeEmail(email)))
}

func (r *userRepo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.Exists(ctx, query.Eq("email", entity.NormalizeEmail(email)), query.Neq("id", excludeID))
}

func (r *userRepo) Search(ctx context.Context, f repository.UserSearch) (*query.Page[repository.UserSummary], error) {
	page, size := query.NormalizePage(f.Page, f.Size)
	users, err := r.List(ctx, query.When(f.Active != nil, query.Eq("is_active", f.Active)))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var matched []*repository.UserSummary
	for _, u := range users {
		term := strings.ToLower(f.Term)
		if term != "" && !strings.Contains(strings.ToLower(u.FullName()+" "+u.Email), term) {
			continue
		}
		as, _ := r.s.Assignments.List(ctx, query.Eq("user_id", u.ID), query.Eq("is_active", true))
		var centers, roles []string
		keep := f.CenterID == 0 && f.Role == ""
		for _, a := range as {
			if !a.IsCurrent(now) {
				continue
			}
			if c, _ := r.s.Centers.GetByID(ctx, a.HospitalCenterID); c != nil {
				centers = append(centers, c.Name)
			}
			roles = append(roles, a.Role)
			if (f.CenterID == 0 || a.HospitalCenterID == f.CenterID) && (f.Role == "" || a.Role == f.Role) {
				keep = true
			}
		}
		if !keep {
			continue
		}
		matched = append(matched, &repository.UserSummary{
			ID: u.ID, FullName: u.FullName(), Email: u.Email, Phone: u.Phone, IsActive: u.IsActive,
			MustChangePassword: u.MustChangePassword, LastLoginAt: u.LastLoginAt,
			Centers: strings.Join(centers, ", "), Roles: strings.Join(roles, ", "), CreatedAt: u.CreatedAt,
		})
	}
	out := &query.Page[repository.UserSummary]{Total: int64(len(matched)), Page: page, Size: size}
	from := (page - 1) * size
	if from < len(matched) {
		to := min(from+size, len(matched))
		out.Items = matched[from:to]
	}
	return out, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool, actor int64, at time.Time) error {
	u, err := r.GetByID(ctx, id)
	if err != nil || u == nil {
		return err
	}
	u.PasswordHash = hash
	u.MustChangePassword = mustChange
	u.Touch(actor, at)
	return r.Update(ctx, u)
}

func (r *userRepo) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	u, err := r.GetByID(ctx, id)
	if err != nil || u == nil {
		return err
	}
	u.LastLoginAt = &at
	return r.Update(ctx, u)
}

func (r *userRepo) Statistics(ctx context.Context, centerID *int64) (*repository.UserStatistics, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	st := &repository.UserStatistics{}
	for _, u := range users {
		as, _ := r.s.Assignments.List(ctx, query.Eq("user_id", u.ID), query.Eq("is_active", true),
			query.When(centerID != nil, query.Eq("hospital_center_id", centerID)))
		if centerID != nil && len(as) == 0 {
			continue
		}
		st.Total++
		if u.IsActive {
			st.Active++
		} else {
			st.Inactive++
		}
		if u.MustChangePassword {
			st.MustChangePassword++
		}
		super := false
		for _, a := range as {
			super = super || a.Role == entity.RoleSuperAdmin
		}
		if super {
			st.SuperAdmins++
		} else if len(as) > 0 {
			st.MedicalStaff++
		}
	}
	return st, nil
}

// ── Centros ──────────────────────────────────────────────────────────────────

type centerRepo struct {
	*Table[entity.HospitalCenter]
	s *Store
}

func (r *centerRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	cs, err := r.List(ctx, query.Neq("id", excludeID))
	if err != nil {
		return false, err
	}
	for _, c := range cs {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *centerRepo) Impact(ctx context.Context, centerID int64) (*repository.CenterImpact, error) {
	imp := r.s.Impact[centerID]
	var err error
	if imp.ActiveAssignments, err = r.s.Assignments.Count(ctx, query.Eq("hospital_center_id", centerID), query.Eq("is_active", true)); err != nil {
		return nil, err
	}
	if imp.ActivePatients, err = r.s.Patients.Count(ctx, query.Eq("hospital_center_id", centerID), query.Eq("is_active", true)); err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *centerRepo) Search(ctx context.Context, term string, active *bool, page, size int) (*query.Page[repository.CenterSummary], error) {
	p, err := r.Page(ctx, page, size,
		query.When(term != "", query.ILike("name", "%"+term+"%")),
		query.When(active != nil, query.Eq("is_active", active)),
		query.OrderBy("name", query.Asc))
	if err != nil {
		return nil, err
	}
	out := &query.Page[repository.CenterSummary]{Total: p.Total, Page: p.Page, Size: p.Size}
	for _, c := range p.Items {
		staff, _ := r.s.Assignments.Count(ctx, query.Eq("hospital_center_id", c.ID), query.Eq("is_active", true))
		patients, _ := r.s.Patients.Count(ctx, query.Eq("hospital_center_id", c.ID), query.Eq("is_active", true))
		out.Items = append(out.Items, &repository.CenterSummary{
			ID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone, IsActive: c.IsActive,
			StaffCount: staff, PatientCount: patients,
		})
	}
	return out, nil
}

func (r *centerRepo) Options(ctx context.Context, activeOnly bool) ([]repository.CenterOption, error) {
	cs, err := r.List(ctx, query.When(activeOnly, query.Eq("is_active", true)), query.OrderBy("name", query.Asc))
	if err != nil {
		return nil, err
	}
	out := make([]repository.CenterOption, 0, len(cs))
	for _, c := range cs {
		out = append(out, repository.CenterOption{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// ── Asignaciones ─────────────────────────────────────────────────────────────

type assignmentRepo struct {
	*Table[entity.UserCenterAssignment]
	s *Store
}

func (r *assignmentRepo) FindActive(ctx context.Context, userID, centerID int64) (*entity.UserCenterAssignment, error) {
	return r.First(ctx, query.Eq("user_id", userID), query.Eq("hospital_center_id", centerID), query.Eq("is_active", true))
}

func (r *assignmentRepo) view(ctx context.Context, as []*entity.UserCenterAssignment) []repository.AssignmentView {
	out := make([]repository.AssignmentView, 0, len(as))
	for _, a := range as {
		v := repository.AssignmentView{UserCenterAssignment: *a}
		if u, _ := r.s.Users.GetByID(ctx, a.UserID); u != nil {
			v.UserName = u.FullName()
		}
		if c, _ := r.s.Centers.GetByID(ctx, a.HospitalCenterID); c != nil {
			v.CenterName = c.Name
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CenterName < out[j].CenterName })
	return out
}

func (r *assignmentRepo) ListActiveByUser(ctx context.Context, userID int64, at time.Time) ([]repository.AssignmentView, error) {
	as, err := r.List(ctx, query.Eq("user_id", userID), query.Eq("is_active", true))
	if err != nil {
		return nil, err
	}
	current := as[:0]
	for _, a := range as {
		if !a.IsCurrent(at) {
			continue
		}
		if c, _ := r.s.Centers.GetByID(ctx, a.HospitalCenterID); c == nil || !c.IsActive {
			continue
		}
		current = append(current, a)
	}
	return r.view(ctx, current), nil
}

func (r *assignmentRepo) ListByUser(ctx context.Context, userID int64) ([]repository.AssignmentView, error) {
	as, err := r.List(ctx, query.Eq("user_id", userID), query.OrderBy("start_date", query.Desc))
	if err != nil {
		return nil, err
	}
	return r.view(ctx, as), nil
}

func (r *assignmentRepo) endWhere(ctx context.Context, actor int64, at time.Time, opts ...query.Option) (int64, error) {
	as, err := r.List(ctx, append(opts, query.Eq("is_active", true))...)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, a := range as {
		if a.End(actor, at) {
			if err := r.Update(ctx, a); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func (r *assignmentRepo) EndAll(ctx context.Context, userID int64, centerID *int64, actor int64, at time.Time) (int64, error) {
	return r.endWhere(ctx, actor, at, query.Eq("user_id", userID),
		query.When(centerID != nil, query.Eq("hospital_center_id", centerID)))
}

func (r *assignmentRepo) EndAllForCenter(ctx context.Context, centerID int64, actor int64, at time.Time) (int64, error) {
	return r.endWhere(ctx, actor, at, query.Eq("hospital_center_id", centerID))
}

// ── Categorías ───────────────────────────────────────────────────────────────

type categoryRepo struct {
	*Table[entity.ProductCategory]
	s *Store
}

func (r *categoryRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	cs, err := r.List(ctx, query.Neq("id", excludeID))
	if err != nil {
		return false, err
	}
	for _, c := range cs {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true, nil
		}
	}
	return false, nil
}

func (r *categoryRepo) HasProducts(ctx context.Context, categoryID int64) (bool, error) {
	return r.s.Products.Exists(ctx, query.Eq("category_id", categoryID))
}

func (r *categoryRepo) ListWithProductCount(ctx context.Context) ([]repository.CategorySummary, error) {
	cs, err := r.List(ctx, query.OrderBy("name", query.Asc))
	if err != nil {
		return nil, err
	}
	out := make([]repository.CategorySummary, 0, len(cs))
	for _, c := range cs {
		n, _ := r.s.Products.Count(ctx, query.Eq("category_id", c.ID))
		out = append(out, repository.CategorySummary{ID: c.ID, Name: c.Name, Description: c.Description, IsActive: c.IsActive, ProductCount: n})
	}
	return out, nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stockRepo struct {
	*Table[entity.StockInventory]
	s *Store
}

func (r *stockRepo) GetForUpdateByProduct(ctx context.Context, productID, centerID int64) (*entity.StockInventory, error) {
	inv, err := r.First(ctx, query.Eq("product_id", productID), query.Eq("hospital_center_id", centerID))
	if err != nil || inv != nil {
		return inv, err
	}
	inv = &entity.StockInventory{ProductID: productID, HospitalCenterID: centerID, CurrentQuantity: decimal.Zero}
	if err := r.Add(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *stockRepo) Save(ctx context.Context, inv *entity.StockInventory) error {
	if inv.ID == 0 {
		return r.Add(ctx, inv)
	}
	return r.Update(ctx, inv)
}

func (r *stockRepo) SumMovements(ctx context.Context, productID, centerID int64) (decimal.Decimal, error) {
	return r.s.Movements.Sum(ctx, "quantity", query.Eq("product_id", productID), query.Eq("hospital_center_id", centerID))
}

func (r *stockRepo) ListByCenter(ctx context.Context, centerID int64) ([]repository.StockLine, error) {
	invs, err := r.List(ctx, query.Eq("hospital_center_id", centerID))
	if err != nil {
		return nil, err
	}
	var out []repository.StockLine
	for _, inv := range invs {
		p, _ := r.s.Products.GetByID(ctx, inv.ProductID)
		if p == nil {
			continue
		}
		line := repository.StockLine{
			ProductID: p.ID, ProductCode: p.Code, ProductName: p.Name, Unit: p.Unit,
			CurrentQuantity: inv.CurrentQuantity, MinimumStock: p.MinimumStock, UnitPrice: p.UnitPrice,
		}
		if c, _ := r.s.Categories.GetByID(ctx, p.CategoryID); c != nil {
			line.CategoryName = c.Name
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// ── Informes ─────────────────────────────────────────────────────────────────

type reportRepo struct{ s *Store }

func (r *reportRepo) CenterStatistics(_ context.Context, centerID *int64, from, to time.Time) (*repository.CenterStatistics, error) {
	st := repository.CenterStatistics{}
	if r.s.Stats != nil {
		st = *r.s.Stats
	}
	st.CenterID, st.From, st.To = centerID, from, to
	return &st, nil
}

func (r *reportRepo) PaymentsByMethod(context.Context, *int64, time.Time, time.Time) ([]repository.PaymentBreakdown, error) {
	return r.s.ByMethod, nil
}

// ── Auditoría y bloqueos ─────────────────────────────────────────────────────

// AuditLog traza en memoria.
type AuditLog struct {
	mu      sync.Mutex
	Entries []entity.AuditLog
	Err     error
}

func (a *AuditLog) Record(_ context.Context, e *entity.AuditLog) error {
	if a.Err != nil {
		return a.Err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	e.ID = int64(len(a.Entries) + 1)
	a.Entries = append(a.Entries, *e)
	return nil
}

func (a *AuditLog) ListForEntity(_ context.Context, entityType string, entityID int64, limit int) ([]*entity.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*entity.AuditLog
	for i := len(a.Entries) - 1; i >= 0; i-- {
		e := a.Entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, &e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Actions acciones registradas, en orden.
func (a *AuditLog) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		out[i] = e.Action
	}
	return out
}

func (a *AuditLog) snapshot() func() {
	a.mu.Lock()
	saved := append([]entity.AuditLog(nil), a.Entries...)
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		a.Entries = saved
		a.mu.Unlock()
	}
}

// Locks registra las claves bloqueadas.
type Locks struct {
	mu   sync.Mutex
	Keys []string
}

func (l *Locks) Lock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Keys = append(l.Keys, key)
	return nil
}
