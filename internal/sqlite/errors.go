package sqlite

import (
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraintFailure reports whether err is a SQLITE_CONSTRAINT failure whose
// message names kind. The driver does not always surface extended codes, so
// the primary code is matched and the kind read from the message.
func constraintFailure(err error, kind string) bool {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(se.Error(), kind+" constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return constraintFailure(err, "FOREIGN KEY")
}

func isUniqueViolation(err error) bool {
	return constraintFailure(err, "UNIQUE")
}
