package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Tatyana-Kavardaeva/My-LMS/core"
	"github.com/Tatyana-Kavardaeva/My-LMS/core/policy"
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// pqError returns the postgres error code and constraint name of err, if any.
func pqError(err error) (string, string) {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// trapNoRowsErr maps sql "no rows" err to notFoundErr.
func trapNoRowsErr(err error, notFoundErr error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// trapFKErr maps foreign key violations to notFoundErr.
func trapFKErr(err error, notFoundErr error, msg string) error {
	if code, _ := pqError(err); code == foreignKeyViolation {
		return notFoundErr
	}
	return errors.Wrap(err, msg)
}

// checkAffected returns notFoundErr when the statement touched no row.
func checkAffected(res sql.Result, err error, notFoundErr error, msg string) error {
	if err != nil {
		return trapFKErr(err, notFoundErr, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}

// where accumulates AND-ed conditions using "?" bind vars.
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

// scope adds the row restriction of s. ownerExpr yields the owner of the row (or of its course/test),
// studentExpr the student of the row.
func (w *where) scope(s policy.Scope, ownerExpr, studentExpr string) {
	switch s.Kind {
	case policy.ScopeAll:
	case policy.ScopeOwned, policy.ScopeOwnedCourse, policy.ScopeOwnedTest, policy.ScopeSelf:
		w.add(ownerExpr+" = ?", s.PrincipalID)
	case policy.ScopeOwn:
		if studentExpr == "" {
			w.add("FALSE")
			return
		}
		w.add(studentExpr+" = ?", s.PrincipalID)
	default:
		w.add("FALSE")
	}
}

// orderBy renders the allowed orderings; columns maps API field names to SQL expressions.
func orderBy(orderings []core.DBOrdering, columns map[string]string) string {
	fields := make([]string, 0, len(columns))
	for f := range columns {
		fields = append(fields, f)
	}
	orderings = core.AllowedOrderings(orderings, fields, core.DBOrdering{Field: "id", Ascending: true})

	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, core.DBOrdering{Field: columns[ord.Field], Ascending: ord.Ascending}.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func limitOffset(page core.PageRequest) string {
	if page.Limit() <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(page.Limit()) + " OFFSET " + strconv.Itoa(page.Offset())
}

// list counts the rows of `from` matching w, then selects the requested page into dest.
func list(ctx context.Context, db *sqlx.DB, dest interface{}, cols, from string, w *where, opts core.ListOptions, orderCols map[string]string) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind("SELECT COUNT(*) FROM "+from+w.String()), w.args...); err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}

	q := "SELECT " + cols + " FROM " + from + w.String() + orderBy(opts.Ordering, orderCols) + limitOffset(opts.Page)
	if err := db.SelectContext(ctx, dest, db.Rebind(q), w.args...); err != nil {
		return 0, errors.Wrap(err, "selecting rows")
	}
	return count, nil
}

// insert runs a named INSERT ... RETURNING id and returns the new id.
func insert(ctx context.Context, db *sqlx.DB, q string, arg interface{}) (int, error) {
	stmt, err := db.PrepareNamedContext(ctx, q)
	if err != nil {
		return 0, errors.Wrap(err, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	var id int
	if err = stmt.GetContext(ctx, &id, arg); err != nil {
		return 0, err
	}
	return id, nil
}
