// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/olegiv/diocese-go/internal/metrics"
)

// TimeLayout is how timestamps are stored. It matches SQLite's
// CURRENT_TIMESTAMP so that stored and generated values compare as strings.
const TimeLayout = "2006-01-02 15:04:05"

// nestSep separates a join alias from the column in result column names.
const nestSep = "__"

// SQLClient implements Client on a SQL database.
type SQLClient struct {
	db      *sql.DB
	sb      sq.StatementBuilderType
	metrics *metrics.Metrics
}

// NewSQLClient wraps db. m may be nil.
func NewSQLClient(db *sql.DB, m *metrics.Metrics) *SQLClient {
	return &SQLClient{
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
		metrics: m,
	}
}

// Query implements Client.
func (c *SQLClient) Query(ctx context.Context, q Query) (rows []Row, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(q.Table, "select", start, err, ErrNotFound) }()

	if err = q.validate(); err != nil {
		return nil, &TransportError{Op: "select", Table: q.Table, Err: err}
	}

	query, args, err := c.selectBuilder(q).ToSql()
	if err != nil {
		return nil, &TransportError{Op: "select", Table: q.Table, Err: err}
	}

	r, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &TransportError{Op: "select", Table: q.Table, Err: err}
	}
	defer func() { _ = r.Close() }()

	rows, err = scanRows(r, q.Joins)
	if err != nil {
		return nil, &TransportError{Op: "select", Table: q.Table, Err: err}
	}
	return rows, nil
}

// GetSingle implements Client.
func (c *SQLClient) GetSingle(ctx context.Context, q Query) (Row, error) {
	rows, err := c.Query(ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Count implements Client.
func (c *SQLClient) Count(ctx context.Context, q Query) (n int, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(q.Table, "count", start, err, ErrNotFound) }()

	if err = q.validate(); err != nil {
		return 0, &TransportError{Op: "count", Table: q.Table, Err: err}
	}

	query, args, err := applyWhere(c.sb.Select("COUNT(*)").From(q.Table), q).ToSql()
	if err != nil {
		return 0, &TransportError{Op: "count", Table: q.Table, Err: err}
	}
	if err = c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, &TransportError{Op: "count", Table: q.Table, Err: err}
	}
	return n, nil
}

// Insert implements Client.
func (c *SQLClient) Insert(ctx context.Context, table string, row Row) (id string, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(table, "insert", start, err, ErrNotFound) }()

	if err = checkWrite(table, row); err != nil {
		return "", &TransportError{Op: "insert", Table: table, Err: err}
	}

	values := make(map[string]any, len(row)+1)
	for k, v := range row {
		values[k] = normalizeValue(v)
	}
	id, _ = values["id"].(string)
	if id == "" {
		id = uuid.NewString()
		values["id"] = id
	}

	cols := make([]string, 0, len(values))
	for k := range values {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	vals := make([]any, len(cols))
	for i, k := range cols {
		vals[i] = values[k]
	}

	query, args, err := c.sb.Insert(table).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return "", &TransportError{Op: "insert", Table: table, Err: err}
	}
	if _, err = c.db.ExecContext(ctx, query, args...); err != nil {
		return "", &TransportError{Op: "insert", Table: table, Err: err}
	}
	return id, nil
}

// Update implements Client. An empty patch is rejected.
func (c *SQLClient) Update(ctx context.Context, table, id string, patch Row) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(table, "update", start, err, ErrNotFound) }()

	if len(patch) == 0 {
		return &TransportError{Op: "update", Table: table, Err: errors.New("empty patch")}
	}
	if err = checkWrite(table, patch); err != nil {
		return &TransportError{Op: "update", Table: table, Err: err}
	}

	set := make(map[string]any, len(patch))
	for k, v := range patch {
		if k == "id" {
			continue
		}
		set[k] = normalizeValue(v)
	}

	query, args, err := c.sb.Update(table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return &TransportError{Op: "update", Table: table, Err: err}
	}
	return c.execOne(ctx, "update", table, query, args)
}

// Delete implements Client.
func (c *SQLClient) Delete(ctx context.Context, table, id string) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(table, "delete", start, err, ErrNotFound) }()

	if !knownTables[table] {
		return &TransportError{Op: "delete", Table: table, Err: fmt.Errorf("unknown table %q", table)}
	}

	query, args, err := c.sb.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return &TransportError{Op: "delete", Table: table, Err: err}
	}
	return c.execOne(ctx, "delete", table, query, args)
}

func (c *SQLClient) execOne(ctx context.Context, op, table, query string, args []any) error {
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &TransportError{Op: op, Table: table, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &TransportError{Op: op, Table: table, Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *SQLClient) selectBuilder(q Query) sq.SelectBuilder {
	base := q.Table

	var cols []string
	if len(q.Columns) == 0 {
		cols = append(cols, base+".*")
	} else {
		for _, col := range q.Columns {
			cols = append(cols, base+"."+col)
		}
	}
	for _, j := range q.Joins {
		for _, col := range j.Columns {
			cols = append(cols, fmt.Sprintf("%s.%s AS %s%s%s", j.As, col, j.As, nestSep, col))
		}
	}

	b := c.sb.Select(cols...).From(base)
	for _, j := range q.Joins {
		b = b.LeftJoin(fmt.Sprintf("%s AS %s ON %s.id = %s.%s", j.Table, j.As, j.As, base, j.LocalKey))
	}
	b = applyWhere(b, q)

	for _, o := range q.Orders {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		b = b.OrderBy(base + "." + o.Column + " " + dir)
	}

	switch {
	case q.RowLimit > 0:
		b = b.Limit(q.RowLimit)
	case q.RowOffset > 0:
		// SQLite only accepts OFFSET after LIMIT.
		b = b.Limit(math.MaxInt64)
	}
	if q.RowOffset > 0 {
		b = b.Offset(q.RowOffset)
	}
	return b
}

func applyWhere(b sq.SelectBuilder, q Query) sq.SelectBuilder {
	for _, f := range q.Filters {
		b = b.Where(f.sqlizer(q.Table))
	}
	if len(q.AnyOf) > 0 {
		or := make(sq.Or, 0, len(q.AnyOf))
		for _, f := range q.AnyOf {
			or = append(or, f.sqlizer(q.Table))
		}
		b = b.Where(or)
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f Filter) sqlizer(table string) sq.Sqlizer {
	col := table + "." + f.Column
	v := normalizeValue(f.Value)
	switch f.Op {
	case OpNeq:
		return sq.NotEq{col: v}
	case OpLte:
		return sq.LtOrEq{col: v}
	case OpGte:
		return sq.GtOrEq{col: v}
	case OpGteOrNull:
		return sq.Or{sq.GtOrEq{col: v}, sq.Eq{col: nil}}
	case OpLike:
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(f.Value)) + "%"
		return sq.Expr(col+` LIKE ? ESCAPE '\'`, pattern)
	default:
		return sq.Eq{col: v}
	}
}

// normalizeValue converts Go values to their stored representation.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(TimeLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(TimeLayout)
	case []string:
		if x == nil {
			x = []string{}
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return v
	}
}

func checkWrite(table string, row Row) error {
	if !knownTables[table] {
		return fmt.Errorf("unknown table %q", table)
	}
	for k := range row {
		if err := checkIdent(k); err != nil {
			return err
		}
	}
	return nil
}

func scanRows(r *sql.Rows, joins []Join) ([]Row, error) {
	cols, err := r.Columns()
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	for r.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := r.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		nested := make(map[string]Row, len(joins))
		for i, name := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			if alias, col, ok := strings.Cut(name, nestSep); ok && isJoinAlias(joins, alias) {
				if nested[alias] == nil {
					nested[alias] = Row{}
				}
				nested[alias][col] = v
				continue
			}
			row[name] = v
		}
		for _, j := range joins {
			row[j.As] = collapse(nested[j.As])
		}
		rows = append(rows, row)
	}
	return rows, r.Err()
}

func isJoinAlias(joins []Join, alias string) bool {
	for _, j := range joins {
		if j.As == alias {
			return true
		}
	}
	return false
}

// collapse returns nil for a join that matched nothing.
func collapse(r Row) any {
	for _, v := range r {
		if v != nil {
			return r
		}
	}
	return nil
}
