package persistence

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledgerly/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantScope restricts a query to one tenant.
// A nil tenant is a programming error and matches nothing.
func TenantScope(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// Paginate applies offset and limit from a normalized filter
func Paginate(f shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}

// OrderBy sorts by a whitelisted column with id as tie-breaker
func OrderBy(f shared.Filter, allowed map[string]bool, defaultField string) func(*gorm.DB) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(f.OrderDir)
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(field + " " + dir).Order("id " + dir)
	}
}

// Search adds a case-insensitive LIKE over the given columns
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// DateRange bounds a date column, both ends inclusive
func DateRange(column string, from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", *from)
		}
		if to != nil {
			db = db.Where(column+" <= ?", *to)
		}
		return db
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// forUpdate adds SELECT ... FOR UPDATE
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// checkVersion turns a zero-row versioned update into a conflict
func checkVersion(result *gorm.DB) error {
	if result.Error != nil {
		return uniqueViolation(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// uniqueViolation maps a PostgreSQL unique violation to shared.ErrAlreadyExists
func uniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// foreignKeyViolation maps a PostgreSQL foreign key violation to
// shared.ErrResourceInUse
func foreignKeyViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return shared.ErrResourceInUse
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.ErrResourceInUse
	}
	return err
}

// saveVersioned writes every column of model, which must carry its primary key
// and the next version, provided the stored row is still at version.
func saveVersioned(db *gorm.DB, model any, version int) error {
	result := db.Model(model).
		Where("version = ?", version).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", clause.Associations).
		Updates(model)
	return checkVersion(result)
}

// deleteScoped hard-deletes one row of a tenant; a missing row is shared.ErrNotFound
func deleteScoped(db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	result := db.Scopes(TenantScope(tenantID)).Delete(model, "id = ?", id)
	if result.Error != nil {
		return foreignKeyViolation(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
