package repository

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsSQLiteErrorWithCode сравнивает первичный код ошибки sqlite.
// https://www.sqlite.org/rescode.html
func IsSQLiteErrorWithCode(err error, code int) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == code
	}
	return false
}

// IsSQLiteBusy база занята другим соединением, операцию можно повторить.
func IsSQLiteBusy(err error) bool {
	return IsSQLiteErrorWithCode(err, sqlite3.SQLITE_BUSY) ||
		IsSQLiteErrorWithCode(err, sqlite3.SQLITE_LOCKED)
}
