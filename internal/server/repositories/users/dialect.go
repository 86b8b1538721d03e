package users

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name              string
	rebind            func(query string) string
	isUniqueViolation func(err error) bool
}

var postgresDialect = dialect{
	name:   "postgres",
	rebind: dollarPlaceholders,
	isUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
	},
}

var sqliteDialect = dialect{
	name:   "sqlite",
	rebind: func(query string) string { return query },
	isUniqueViolation: func(err error) bool {
		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) {
			return false
		}
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// extended codes disabled
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		}
		return false
	},
}

// dollarPlaceholders rewrites ? placeholders to $1, $2, ...
// Queries in this package never contain literal question marks.
func dollarPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
