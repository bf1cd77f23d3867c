package sqlite

import (
	"strings"

	"github.com/ledgerline/stocktake/internal/repository"
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateConstraint maps SQLite constraint failures onto repository
// sentinels; other errors pass through unchanged.
func translateConstraint(err error) error {
	switch {
	case isForeignKeyViolation(err):
		return repository.ErrForeignKeyViolation
	case isUniqueViolation(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
