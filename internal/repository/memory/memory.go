// Package memory holds map-backed repositories with the same semantics as the
// PostgreSQL ones: natural-key upserts, not-found sentinels, newest-first logs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/master"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ========================================
// SOURCES
// ========================================

type SourceRepository struct {
	mu      sync.Mutex
	sources map[string]source.Source
}

func NewSourceRepository() *SourceRepository {
	return &SourceRepository{sources: make(map[string]source.Source)}
}

func (r *SourceRepository) Create(ctx context.Context, src source.Source) (source.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sources {
		if existing.Name == src.Name {
			return source.Source{}, source.ErrSourceNameExists
		}
	}
	if src.ID == "" {
		src.ID = newID()
	}
	now := time.Now()
	src.CreatedAt, src.UpdatedAt = now, now
	r.sources[src.ID] = src
	return src, nil
}

func (r *SourceRepository) GetByID(ctx context.Context, id string) (source.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[id]
	if !ok {
		return source.Source{}, source.ErrSourceNotFound
	}
	return src, nil
}

func (r *SourceRepository) List(ctx context.Context) ([]source.Source, error) {
	return r.filter(func(source.Source) bool { return true }), nil
}

func (r *SourceRepository) ListSchedulable(ctx context.Context) ([]source.Source, error) {
	return r.filter(source.Source.Schedulable), nil
}

func (r *SourceRepository) filter(keep func(source.Source) bool) []source.Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []source.Source{}
	for _, src := range r.sources {
		if keep(src) {
			out = append(out, src)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *SourceRepository) Update(ctx context.Context, src source.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sources[src.ID]
	if !ok {
		return source.ErrSourceNotFound
	}
	for id, other := range r.sources {
		if id != src.ID && other.Name == src.Name {
			return source.ErrSourceNameExists
		}
	}
	src.CreatedAt = existing.CreatedAt
	src.UpdatedAt = time.Now()
	r.sources[src.ID] = src
	return nil
}

func (r *SourceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[id]; !ok {
		return source.ErrSourceNotFound
	}
	delete(r.sources, id)
	return nil
}

func (r *SourceRepository) RecordTest(ctx context.Context, id string, at time.Time, status string, message string, newStatus *source.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[id]
	if !ok {
		return source.ErrSourceNotFound
	}
	src.LastTestedAt, src.LastTestStatus, src.LastTestMessage = &at, &status, &message
	if newStatus != nil {
		src.Status = *newStatus
	}
	r.sources[id] = src
	return nil
}

func (r *SourceRepository) RecordSync(ctx context.Context, id string, at time.Time, status string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[id]
	if !ok {
		return nil
	}
	src.LastSyncAt, src.LastSyncStatus, src.LastSyncMessage = &at, &status, &message
	r.sources[id] = src
	return nil
}

// ========================================
// IMPORT LOGS
// ========================================

type ImportLogRepository struct {
	mu   sync.Mutex
	logs map[string]source.ImportLog
}

func NewImportLogRepository() *ImportLogRepository {
	return &ImportLogRepository{logs: make(map[string]source.ImportLog)}
}

func (r *ImportLogRepository) Create(ctx context.Context, log source.ImportLog) (source.ImportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = newID()
	}
	if log.Metadata == nil {
		log.Metadata = map[string]interface{}{}
	}
	r.logs[log.ID] = log
	return log, nil
}

func (r *ImportLogRepository) Complete(ctx context.Context, log source.ImportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.logs[log.ID]
	if !ok || existing.Status != source.LogStatusInProgress {
		return source.ErrImportLogNotFound
	}
	r.logs[log.ID] = log
	return nil
}

func (r *ImportLogRepository) List(ctx context.Context, limit int) ([]source.ImportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]source.ImportLog, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ImportLogRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.logs))
	r.logs = make(map[string]source.ImportLog)
	return n, nil
}

func (r *ImportLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.logs {
		if l.StartedAt.Before(cutoff) && l.Status != source.LogStatusInProgress {
			delete(r.logs, id)
			n++
		}
	}
	return n, nil
}

// ========================================
// EMPLOYEES
// ========================================

type EmployeeRepository struct {
	mu        sync.Mutex
	employees map[string]employee.Employee // by card number
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{employees: make(map[string]employee.Employee)}
}

func (r *EmployeeRepository) Upsert(ctx context.Context, e employee.Employee) (employee.Employee, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	existing, ok := r.employees[e.CardNumber]
	if ok {
		e.ID, e.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		if e.ID == "" {
			e.ID = newID()
		}
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	r.employees[e.CardNumber] = e
	return e, !ok, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *EmployeeRepository) GetByNormalizedCard(ctx context.Context, normalizedCard string) (*employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *employee.Employee
	for _, e := range r.employees {
		if employee.NormalizeCardNumber(e.CardNumber) != normalizedCard {
			continue
		}
		if found == nil || e.CreatedAt.Before(found.CreatedAt) {
			e := e
			found = &e
		}
	}
	return found, nil
}

func (r *EmployeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []employee.Employee{}
	for _, e := range r.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardNumber < out[j].CardNumber })
	return out, nil
}

func (r *EmployeeRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.employees)), nil
}

// AssignmentRepository serves fixed manager assignment rows.
type AssignmentRepository struct {
	Rows []employee.ManagerAssignment
}

func (r *AssignmentRepository) ListByManager(ctx context.Context, managerID string) ([]employee.ManagerAssignment, error) {
	out := []employee.ManagerAssignment{}
	for _, a := range r.Rows {
		if a.ManagerID == managerID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ========================================
// LOOKUPS
// ========================================

type LookupRepository struct {
	mu      sync.Mutex
	lookups map[master.Kind]map[string]master.Lookup
	// Calls counts EnsureByCode invocations.
	Calls int
}

func NewLookupRepository() *LookupRepository {
	return &LookupRepository{lookups: make(map[master.Kind]map[string]master.Lookup)}
}

func (r *LookupRepository) EnsureByCode(ctx context.Context, kind master.Kind, code string, name string) (master.Lookup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	code = master.NormalizeCode(code)
	if code == "" {
		return master.Lookup{}, master.ErrEmptyCode
	}
	if r.lookups[kind] == nil {
		r.lookups[kind] = make(map[string]master.Lookup)
	}
	if l, ok := r.lookups[kind][code]; ok {
		return l, nil
	}
	l := master.Lookup{ID: newID(), Kind: kind, Code: code, Name: name, CreatedAt: time.Now()}
	r.lookups[kind][code] = l
	return l, nil
}

// Len returns how many lookups of kind exist.
func (r *LookupRepository) Len(kind master.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lookups[kind])
}

// Get returns the lookup for a code.
func (r *LookupRepository) Get(kind master.Kind, code string) (master.Lookup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lookups[kind][master.NormalizeCode(code)]
	return l, ok
}

// ========================================
// ATTENDANCE
// ========================================

type attendanceKey struct {
	employeeID string
	day        string
}

type AttendanceRepository struct {
	mu      sync.Mutex
	records map[attendanceKey]attendance.Record
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{records: make(map[attendanceKey]attendance.Record)}
}

func keyOf(employeeID string, day time.Time) attendanceKey {
	return attendanceKey{employeeID: employeeID, day: day.Format("2006-01-02")}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, rec attendance.Record) (attendance.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	key := keyOf(rec.EmployeeID, rec.Date)
	existing, ok := r.records[key]
	if ok {
		rec.ID, rec.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		if rec.ID == "" {
			rec.ID = newID()
		}
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	r.records[key] = rec
	return rec, !ok, nil
}

func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time, employeeIDs []string) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []attendance.Record{}
	for _, id := range employeeIDs {
		if rec, ok := r.records[keyOf(id, date)]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *AttendanceRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.records)), nil
}

var (
	_ source.SourceRepository         = (*SourceRepository)(nil)
	_ source.ImportLogRepository      = (*ImportLogRepository)(nil)
	_ employee.EmployeeRepository     = (*EmployeeRepository)(nil)
	_ employee.AssignmentRepository   = (*AssignmentRepository)(nil)
	_ master.LookupRepository         = (*LookupRepository)(nil)
	_ attendance.AttendanceRepository = (*AttendanceRepository)(nil)
)
