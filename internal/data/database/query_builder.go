// Package database builds parameterised SELECT statements with sanitised identifiers.
package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	In                 ConditionType = "IN"
	defaultLimit                     = -1
	defaultOffset                    = -1
)

type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// OrderTerm is one ORDER BY key.
type OrderTerm struct {
	Column    string
	Direction string
	NullsLast bool
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	Order      []OrderTerm
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:      table,
		Columns:    []string{},
		Conditions: []Condition{},
		Limit:      defaultLimit,
		Offset:     defaultOffset,
	}

	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy appends an ordering key.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Order = append(o.Order, OrderTerm{Column: column, Direction: direction})
	}
}

// WithOrderByNullsLast appends an ordering key that sorts NULLs after every value.
func WithOrderByNullsLast(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Order = append(o.Order, OrderTerm{Column: column, Direction: direction, NullsLast: true})
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier sanitizes identifiers like "table.column".
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func buildSelectClause(options *ListQueryOptions) string {
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeQualifiedIdentifier(strings.TrimSpace(col))
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(cols, ", "))
}

func buildOrderClause(terms []OrderTerm) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Column == "" {
			continue
		}
		var b strings.Builder
		b.WriteString(sanitizeQualifiedIdentifier(t.Column))
		if dir := strings.ToUpper(t.Direction); dir == "ASC" || dir == "DESC" {
			b.WriteString(" ")
			b.WriteString(dir)
		}
		if t.NullsLast {
			b.WriteString(" NULLS LAST")
		}
		parts = append(parts, b.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// argList accumulates positional arguments and hands out their placeholders.
type argList struct {
	values []any
}

func (a *argList) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// BuildListQuery constructs a SQL query string and arguments from options, sanitizing identifiers.
//
// Example usage:
//
//	options := NewListQueryOptions("sla_summary",
//		WithColumns("job_id", "app_name"),
//		WithCondition(WhereCond("app_name", Equal, "billing")),
//		WithCondition(WhereCond("nominal_time", GreaterThanOrEqual, from)),
//		WithOrderByNullsLast("last_modified", "DESC"),
//		WithOrderBy("job_id", "ASC"),
//		WithLimit(50),
//		WithOffset(0),
//	)
//
//	query, args := BuildListQuery(options)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	args := &argList{values: []any{}}
	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	if where := buildWhereClause(options.Conditions, args); where != "" {
		query.WriteString(" WHERE ")
		query.WriteString(where)
	}

	query.WriteString(buildOrderClause(options.Order))
	if options.Limit != defaultLimit {
		query.WriteString(" LIMIT " + args.add(options.Limit))
	}
	if options.Offset != defaultOffset {
		query.WriteString(" OFFSET " + args.add(options.Offset))
	}

	return query.String(), args.values
}

// renderCondition returns "" for conditions that should be skipped: a blank
// field, an unknown operator or an empty IN list.
func renderCondition(cond Condition, args *argList) string {
	if cond.Field == "" {
		return ""
	}
	field := sanitizeQualifiedIdentifier(cond.Field)

	switch cond.Type {
	case In:
		// pgx encodes Go slices as Postgres arrays, so IN becomes = ANY($n).
		rv := reflect.ValueOf(cond.Value)
		if rv.Kind() != reflect.Slice || rv.Len() == 0 {
			return ""
		}
		return field + " = ANY(" + args.add(cond.Value) + ")"
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual:
		return fmt.Sprintf("%s %s %s", field, cond.Type, args.add(cond.Value))
	}
	return ""
}

func buildWhereClause(conds []Condition, args *argList) string {
	parts := make([]string, 0, len(conds))
	for _, cond := range conds {
		if sql := renderCondition(cond, args); sql != "" {
			parts = append(parts, sql)
		}
	}
	return strings.Join(parts, " AND ")
}
