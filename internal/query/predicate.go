package query

import (
	"strings"

	"gorm.io/gorm"
)

// Predicate is one immutable filter term: a SQL fragment with its bound
// arguments. Predicates are values, built once from validated parameters
// and consumed identically by the count query and the page query, so the
// two can never drift apart.
type Predicate struct {
	Expr string
	Args []interface{}
}

// P builds a predicate.
func P(expr string, args ...interface{}) Predicate {
	return Predicate{Expr: expr, Args: args}
}

// Conjunction is the AND of its predicates. The zero value matches all rows.
type Conjunction []Predicate

// And returns a new conjunction with p appended.
func (c Conjunction) And(p Predicate) Conjunction {
	out := make(Conjunction, len(c), len(c)+1)
	copy(out, c)
	return append(out, p)
}

// Apply folds the conjunction onto a gorm query.
func (c Conjunction) Apply(db *gorm.DB) *gorm.DB {
	for _, p := range c {
		db = db.Where(p.Expr, p.Args...)
	}
	return db
}

// SearchAcross builds the one OR-group predicate for a free-text search
// term: a case-insensitive substring match over each column, NULL columns
// treated as empty string so a row can still match on its other fields.
func SearchAcross(term string, cols ...string) Predicate {
	parts := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	like := "%" + strings.ToLower(term) + "%"
	for _, col := range cols {
		parts = append(parts, "LOWER(COALESCE("+col+", '')) LIKE ?")
		args = append(args, like)
	}
	return Predicate{Expr: "(" + strings.Join(parts, " OR ") + ")", Args: args}
}
