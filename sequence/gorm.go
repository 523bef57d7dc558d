package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avillegas/facturacr/clave"
)

// counterRecord is one monotonic counter row. The four scope columns
// form a unique index so concurrent first allocations cannot create
// duplicate rows.
type counterRecord struct {
	ID           uint   `gorm:"primaryKey"`
	CompanyID    string `gorm:"size:20;not null;uniqueIndex:idx_counter_scope"`
	DocumentType string `gorm:"size:2;not null;uniqueIndex:idx_counter_scope"`
	Terminal     string `gorm:"size:2;not null;uniqueIndex:idx_counter_scope"`
	Branch       string `gorm:"size:3;not null;uniqueIndex:idx_counter_scope"`
	LastValue    int64  `gorm:"not null;default:0"`
	Environment  string `gorm:"size:20;not null"`
	UpdatedAt    time.Time
}

func (counterRecord) TableName() string { return "document_counters" }

// securityCodeRecord stores the fixed 8 digit code per company.
type securityCodeRecord struct {
	CompanyID string `gorm:"primaryKey;size:20"`
	Code      string `gorm:"size:8;not null"`
	CreatedAt time.Time
}

func (securityCodeRecord) TableName() string { return "security_codes" }

// allocateRetries bounds the optimistic conditional-update loop. Losing
// the race this many times in a row means the storage is effectively
// unusable for this scope.
const allocateRetries = 5

var errAllocateContention = errors.New("conditional update lost the race repeatedly")

// GormStore is a Store backed by a GORM database. SQLite covers local
// single-user deployments, Postgres the shared server case. Allocation
// uses a conditional update keyed on the previously read value, so two
// racing allocations can never both succeed with the same counter.
type GormStore struct {
	db  *gorm.DB
	env Environment
}

// NewGormStore wraps an open database handle. New counter rows are
// created in the given environment.
func NewGormStore(db *gorm.DB, env Environment) (*GormStore, error) {
	if !env.Valid() {
		return nil, fmt.Errorf("sequence: unknown environment %q", env)
	}
	if err := db.AutoMigrate(&counterRecord{}, &securityCodeRecord{}); err != nil {
		return nil, fmt.Errorf("sequence: migrating schema: %w", err)
	}
	return &GormStore{db: db, env: env}, nil
}

// OpenSQLite opens (or creates) a SQLite database at path and prepares
// a store on it.
func OpenSQLite(path string, env Environment) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sequence: opening sqlite database: %w", err)
	}
	return NewGormStore(db, env)
}

// OpenPostgres connects to a Postgres database and prepares a store on
// it.
func OpenPostgres(dsn string, env Environment) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sequence: opening postgres database: %w", err)
	}
	return NewGormStore(db, env)
}

// AllocateNext implements Store.
func (s *GormStore) AllocateNext(ctx context.Context, scope Scope) (int64, error) {
	for attempt := 0; attempt < allocateRetries; attempt++ {
		rec, err := s.loadCounter(ctx, scope)
		if err != nil {
			return 0, &UnavailableError{Scope: scope, Err: err}
		}

		next := rec.LastValue + 1
		res := s.db.WithContext(ctx).
			Model(&counterRecord{}).
			Where("id = ? AND last_value = ?", rec.ID, rec.LastValue).
			Updates(map[string]any{
				"last_value": next,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return 0, &UnavailableError{Scope: scope, Err: res.Error}
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
		// Another allocation advanced the counter between our read
		// and update; reload and try again.
	}
	return 0, &UnavailableError{Scope: scope, Err: errAllocateContention}
}

// loadCounter reads the scope's row, inserting it on first use. The
// insert ignores a unique-index conflict so two racing first
// allocations both end up reading the one surviving row.
func (s *GormStore) loadCounter(ctx context.Context, scope Scope) (*counterRecord, error) {
	cond := &counterRecord{
		CompanyID:    scope.CompanyID,
		DocumentType: scope.DocumentType,
		Terminal:     scope.Terminal,
		Branch:       scope.Branch,
	}

	var rec counterRecord
	err := s.db.WithContext(ctx).Where(cond).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := *cond
	fresh.Environment = string(s.env)
	fresh.UpdatedAt = time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Where(cond).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ResetForEnvironment implements Store. Counters already in env are
// left untouched.
func (s *GormStore) ResetForEnvironment(ctx context.Context, companyID string, env Environment) error {
	if !env.Valid() {
		return fmt.Errorf("sequence: unknown environment %q", env)
	}
	err := s.db.WithContext(ctx).
		Model(&counterRecord{}).
		Where("company_id = ? AND environment <> ?", companyID, string(env)).
		Updates(map[string]any{
			"last_value":  0,
			"environment": string(env),
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return &UnavailableError{Scope: Scope{CompanyID: companyID}, Err: err}
	}
	return nil
}

// SecurityCode implements Store.
func (s *GormStore) SecurityCode(ctx context.Context, companyID string) (string, error) {
	var rec securityCodeRecord
	err := s.db.WithContext(ctx).First(&rec, "company_id = ?", companyID).Error
	if err == nil {
		return rec.Code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", &UnavailableError{Scope: Scope{CompanyID: companyID}, Err: err}
	}

	code, err := clave.NewSecurityCode()
	if err != nil {
		return "", err
	}
	rec = securityCodeRecord{CompanyID: companyID, Code: code}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return "", &UnavailableError{Scope: Scope{CompanyID: companyID}, Err: err}
	}

	// Re-read so a concurrent first caller and we agree on one code.
	if err := s.db.WithContext(ctx).First(&rec, "company_id = ?", companyID).Error; err != nil {
		return "", &UnavailableError{Scope: Scope{CompanyID: companyID}, Err: err}
	}
	return rec.Code, nil
}
