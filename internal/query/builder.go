// Package query builds parameterized SQL predicates from filter
// specifications. Values are always bound as placeholders, never
// interpolated into the SQL text.
package query

import "strings"

// Op is a comparison operator allowed in a clause.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Clause is one field/operator/value predicate. Clauses combine
// conjunctively (AND).
type Clause struct {
	Field string
	Op    Op
	Value any
}

// Builder accumulates clauses and compiles them into a WHERE fragment plus
// the bound argument list, in clause order.
type Builder struct {
	clauses []Clause
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Where appends a predicate. Field and operator come from the caller's
// fixed column set, only the value is caller data.
func (b *Builder) Where(field string, op Op, value any) *Builder {
	b.clauses = append(b.clauses, Clause{Field: field, Op: op, Value: value})
	return b
}

// WhereEq is shorthand for an equality predicate.
func (b *Builder) WhereEq(field string, value any) *Builder {
	return b.Where(field, OpEq, value)
}

// Compile renders the accumulated clauses as "f1 = ? AND f2 >= ?" plus the
// matching argument slice. With no clauses it returns an empty fragment.
func (b *Builder) Compile() (string, []any) {
	if len(b.clauses) == 0 {
		return "", nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(b.clauses))
	for i, c := range b.clauses {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c.Field)
		sb.WriteByte(' ')
		sb.WriteString(string(c.Op))
		sb.WriteString(" ?")
		args = append(args, c.Value)
	}
	return sb.String(), args
}

// Len returns the number of accumulated clauses.
func (b *Builder) Len() int {
	return len(b.clauses)
}
