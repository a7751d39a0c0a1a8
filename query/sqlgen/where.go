// Package sqlgen provides WHERE clause structures.
package sqlgen

import (
	"fmt"
	"strings"
)

// WhereClause represents a WHERE condition (can be nested)
type WhereClause struct {
	Conditions []Condition
	Groups     []*WhereClause // Nested WHERE clauses for AND/OR
	Operator   string         // "AND" or "OR"
}

// Condition represents a single filter condition
type Condition struct {
	Field    string
	Operator string // "=", "!=", ">", "<", ">=", "<=", "IS NULL", "IS NOT NULL"
	Value    interface{}
}

// NewWhereClause creates a new WHERE clause
func NewWhereClause() *WhereClause {
	return &WhereClause{Operator: "AND"}
}

// Equals creates a WHERE clause with a single equality condition
func Equals(field string, value interface{}) *WhereClause {
	w := NewWhereClause()
	w.AddCondition(Condition{Field: field, Operator: "=", Value: value})
	return w
}

// AddCondition adds a condition to the WHERE clause
func (w *WhereClause) AddCondition(condition Condition) {
	w.Conditions = append(w.Conditions, condition)
}

// AddGroup adds a nested WHERE clause
func (w *WhereClause) AddGroup(group *WhereClause) {
	w.Groups = append(w.Groups, group)
}

// IsEmpty returns true if the WHERE clause is empty
func (w *WhereClause) IsEmpty() bool {
	return w == nil || (len(w.Conditions) == 0 && len(w.Groups) == 0)
}

// buildWhere renders a WHERE clause, advancing argIndex for every placeholder used
func buildWhere(where *WhereClause, argIndex *int, placeholder func(int) string, quote func(string) string) (string, []interface{}) {
	if where.IsEmpty() {
		return "", nil
	}

	var parts []string
	var args []interface{}

	for _, cond := range where.Conditions {
		switch cond.Operator {
		case "=", "!=", ">", "<", ">=", "<=":
			parts = append(parts, fmt.Sprintf("%s %s %s", quote(cond.Field), cond.Operator, placeholder(*argIndex)))
			args = append(args, cond.Value)
			(*argIndex)++
		case "IS NULL", "IS NOT NULL":
			parts = append(parts, fmt.Sprintf("%s %s", quote(cond.Field), cond.Operator))
		}
	}

	for _, group := range where.Groups {
		groupSQL, groupArgs := buildWhere(group, argIndex, placeholder, quote)
		if groupSQL != "" {
			parts = append(parts, "("+groupSQL+")")
			args = append(args, groupArgs...)
		}
	}

	op := "AND"
	if strings.EqualFold(where.Operator, "OR") {
		op = "OR"
	}
	return strings.Join(parts, " "+op+" "), args
}
