package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// MySQL error numbers
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

// repo holds what every repository needs: the pool and the per-call timeout.
type repo struct {
	db      core.DB
	timeout time.Duration
}

func newRepo(db core.DB, conf *core.Config) repo {
	return repo{db: db, timeout: conf.Database.QueryTimeout}
}

func (r repo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return core.WithQueryTimeout(ctx, r.timeout)
}

// trapNoRowsErr maps "no rows" to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func mysqlErrNumber(err error) uint16 {
	if myErr, ok := errors.Cause(err).(*mysql.MySQLError); ok {
		return myErr.Number
	}
	return 0
}

func isDuplicate(err error) bool       { return mysqlErrNumber(err) == errDupEntry }
func isReferenced(err error) bool      { return mysqlErrNumber(err) == errRowIsReferenced }
func isMissingReference(err error) bool { return mysqlErrNumber(err) == errNoReferencedRow }

// where collects fixed SQL conditions and their arguments; conditions are joined with AND.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderBy renders ordering over an allow-list mapping API fields to columns. Unknown fields are skipped.
func orderBy(ordering []core.DBOrdering, allowed map[string]string) string {
	terms := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := allowed[ord.Field]; ok {
			terms = append(terms, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func insertID(res sql.Result, msg string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, msg)
	}
	return id, nil
}

// replaceLinks deletes every (owner, *) row of a join table and inserts the new pairs, using exec.
func replaceLinks(ctx context.Context, exec core.DBExecutor, table, ownerCol, linkCol string, ownerID int64, linkIDs []int64) error {
	if _, err := exec.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+ownerCol+" = ?", ownerID); err != nil {
		return errors.Wrapf(err, "clearing %s", table)
	}
	if len(linkIDs) == 0 {
		return nil
	}
	values := make([]string, 0, len(linkIDs))
	args := make([]interface{}, 0, 2*len(linkIDs))
	for _, id := range linkIDs {
		values = append(values, "(?, ?)")
		args = append(args, ownerID, id)
	}
	q := "INSERT INTO " + table + " (" + ownerCol + ", " + linkCol + ") VALUES " + strings.Join(values, ", ")
	if _, err := exec.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrapf(err, "filling %s", table)
	}
	return nil
}
