// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"fmt"
	"regexp"
)

// Op is a filter comparison.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpLte
	OpGte
	// OpGteOrNull matches values >= the operand and NULLs.
	OpGteOrNull
	// OpLike is a case-insensitive substring match.
	OpLike
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpLte:
		return "lte"
	case OpGte:
		return "gte"
	case OpGteOrNull:
		return "gte_or_null"
	case OpLike:
		return "like"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Neq(column string, value any) Filter { return Filter{Column: column, Op: OpNeq, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func GteOrNull(column string, value any) Filter {
	return Filter{Column: column, Op: OpGteOrNull, Value: value}
}
func Like(column, substr string) Filter { return Filter{Column: column, Op: OpLike, Value: substr} }

// Order sorts by one column.
type Order struct {
	Column string
	Desc   bool
}

// Join left-joins Table on Table.id = <base>.LocalKey. The selected Columns
// come back nested in the row under As.
type Join struct {
	Table    string
	LocalKey string
	As       string
	Columns  []string
}

// Query describes a read from one table. The zero value is invalid; start
// from From. Builder methods return a modified copy.
type Query struct {
	Table     string
	Columns   []string
	Filters   []Filter
	AnyOf     []Filter
	Orders    []Order
	Joins     []Join
	RowLimit  uint64
	RowOffset uint64
}

// From starts a query on table.
func From(table string) Query {
	return Query{Table: table}
}

// Select restricts the base table columns returned. Empty means all.
func (q Query) Select(columns ...string) Query {
	q.Columns = append([]string(nil), columns...)
	return q
}

// Where adds filters that must all match.
func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

// Any adds a group of filters of which at least one must match.
func (q Query) Any(filters ...Filter) Query {
	q.AnyOf = append(append([]Filter(nil), q.AnyOf...), filters...)
	return q
}

// OrderBy appends a sort key.
func (q Query) OrderBy(column string, desc bool) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Column: column, Desc: desc})
	return q
}

// Limit caps the number of rows. Zero means no cap.
func (q Query) Limit(n int) Query {
	if n < 0 {
		n = 0
	}
	q.RowLimit = uint64(n)
	return q
}

// Offset skips the first n rows.
func (q Query) Offset(n int) Query {
	if n < 0 {
		n = 0
	}
	q.RowOffset = uint64(n)
	return q
}

// Join adds a left join.
func (q Query) Join(j Join) Query {
	q.Joins = append(append([]Join(nil), q.Joins...), j)
	return q
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// validate rejects unknown tables and identifiers that are unsafe to
// interpolate into SQL.
func (q Query) validate() error {
	if !knownTables[q.Table] {
		return fmt.Errorf("unknown table %q", q.Table)
	}
	for _, c := range q.Columns {
		if err := checkIdent(c); err != nil {
			return err
		}
	}
	for _, f := range append(append([]Filter(nil), q.Filters...), q.AnyOf...) {
		if err := checkIdent(f.Column); err != nil {
			return err
		}
		if f.Op < OpEq || f.Op > OpLike {
			return fmt.Errorf("unsupported operator %v", f.Op)
		}
	}
	for _, o := range q.Orders {
		if err := checkIdent(o.Column); err != nil {
			return err
		}
	}
	for _, j := range q.Joins {
		if !knownTables[j.Table] {
			return fmt.Errorf("unknown join table %q", j.Table)
		}
		if err := checkIdent(j.LocalKey); err != nil {
			return err
		}
		if err := checkIdent(j.As); err != nil {
			return err
		}
		if len(j.Columns) == 0 {
			return fmt.Errorf("join %q selects no columns", j.As)
		}
		for _, c := range j.Columns {
			if err := checkIdent(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkIdent(s string) error {
	if !identRe.MatchString(s) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}
