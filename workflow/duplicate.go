package workflow

import (
	"errors"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// isDuplicateKeyErr recognizes unique-constraint violations. Idempotency in
// this codebase is "optimistic insert, treat duplicate-key as the
// already-exists case", never "check then insert", so every guard funnels
// through here. MySQL 1062 is matched directly; gorm.ErrDuplicatedKey covers
// the translated form (and sqlite under test).
func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
