// Package query builds MongoDB filters, sorts and pagination from request
// parameters. Filters are assembled from typed clauses so that handlers never
// splice raw user input into bson documents.
package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
)

// Clause contributes one condition to a filter. A nil Clause is skipped,
// which lets constructors signal "no condition" for empty inputs.
type Clause interface {
	apply(filter bson.M, and *bson.A)
}

type exactClause struct {
	field string
	value interface{}
}

func (c exactClause) apply(filter bson.M, _ *bson.A) {
	filter[c.field] = c.value
}

// Exact matches a field equal to value. Returns nil for an empty string.
func Exact(field string, value interface{}) Clause {
	if s, ok := value.(string); ok && s == "" {
		return nil
	}
	return exactClause{field: field, value: value}
}

type substringClause struct {
	field string
	value string
}

func (c substringClause) apply(filter bson.M, _ *bson.A) {
	filter[c.field] = bson.M{"$regex": regexp.QuoteMeta(c.value), "$options": "i"}
}

// Substring matches a field containing value, case-insensitively. The value
// is escaped so regex metacharacters are matched literally. Returns nil for
// an empty string.
func Substring(field, value string) Clause {
	if value == "" {
		return nil
	}
	return substringClause{field: field, value: value}
}

type rangeClause struct {
	field string
	op    string
	value interface{}
}

// Range clauses go into an $and array so that a lower and upper bound on the
// same field never clobber each other.
func (c rangeClause) apply(_ bson.M, and *bson.A) {
	*and = append(*and, bson.M{c.field: bson.M{c.op: c.value}})
}

// Min bounds a field from below ($gte). Returns nil for a nil value.
func Min(field string, value interface{}) Clause {
	if isNil(value) {
		return nil
	}
	return rangeClause{field: field, op: "$gte", value: value}
}

// Max bounds a field from above ($lte). Returns nil for a nil value.
func Max(field string, value interface{}) Clause {
	if isNil(value) {
		return nil
	}
	return rangeClause{field: field, op: "$lte", value: value}
}

type textClause struct {
	search string
}

func (c textClause) apply(filter bson.M, _ *bson.A) {
	filter["$text"] = bson.M{"$search": c.search}
}

// Text matches documents against the collection's text index.
// Returns nil for an empty search string.
func Text(search string) Clause {
	if search == "" {
		return nil
	}
	return textClause{search: search}
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *float64:
		return t == nil
	case *bool:
		return t == nil
	default:
		return false
	}
}

// And combines clauses into a single bson.M filter, skipping nil clauses.
// Range clauses accumulate under "$and"; everything else sets its field
// directly.
func And(clauses ...Clause) bson.M {
	filter := bson.M{}
	var and bson.A
	for _, c := range clauses {
		if c == nil {
			continue
		}
		c.apply(filter, &and)
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}
