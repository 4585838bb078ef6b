package data

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/gosimple/slug"
)

const (
	// MaxWeight is the largest share of views a single story can get.
	MaxWeight = 100
	// MaxNameLength is the column width of story names and slugs.
	MaxNameLength = 200
)

// ErrMsgEmptySlug is reported when a name yields no usable slug.
const ErrMsgEmptySlug = "name must contain letters or digits"

var (
	// ErrDuplicateSlug is returned when a unique slug or label constraint is violated.
	ErrDuplicateSlug = errors.New("slug already exists")
)

// ValidationError reports a story that is not internally consistent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the featured and weight fields. A featured story must be
// shown at least some of the time and no story can exceed 100% of views.
func (s *Story) Validate() error {
	if s.Featured && s.Weight == 0 {
		return &ValidationError{Message: "featured story cannot have zero weight"}
	}
	if s.Weight > MaxWeight {
		return &ValidationError{Message: "weight cannot exceed 100"}
	}
	return nil
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	return slug.Make(name)
}

// isUniqueViolation reports whether err comes from a unique index, for both
// MySQL and SQLite.
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
