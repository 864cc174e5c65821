// Package query defines an explicit filter representation assembled from
// request parameters and translated to the MongoDB query form in one place.
// Predicates also evaluate against plain documents, so filter construction
// stays testable without a running database.
package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Predicate is one node of a filter tree.
type Predicate interface {
	// ToBSON renders the predicate as a MongoDB filter document.
	ToBSON() bson.M
	// Matches evaluates the predicate against a flat document.
	Matches(doc map[string]interface{}) bool
}

// Eq matches documents whose field equals the given value.
type Eq struct {
	Field string
	Value interface{}
}

func (p Eq) ToBSON() bson.M {
	return bson.M{p.Field: p.Value}
}

func (p Eq) Matches(doc map[string]interface{}) bool {
	v, ok := doc[p.Field]
	if !ok {
		return false
	}
	if fv, fok := toFloat(v); fok {
		if pv, pok := toFloat(p.Value); pok {
			return fv == pv
		}
		return false
	}
	return v == p.Value
}

// In matches documents whose string field equals any of the given values.
type In struct {
	Field  string
	Values []string
}

func (p In) ToBSON() bson.M {
	return bson.M{p.Field: bson.M{"$in": p.Values}}
}

func (p In) Matches(doc map[string]interface{}) bool {
	v, ok := doc[p.Field].(string)
	if !ok {
		return false
	}
	for _, candidate := range p.Values {
		if v == candidate {
			return true
		}
	}
	return false
}

// Regex matches a string field against a case-insensitive regular expression.
// Pattern is a raw regex; callers quote user input themselves.
type Regex struct {
	Field   string
	Pattern string
}

func (p Regex) ToBSON() bson.M {
	return bson.M{p.Field: bson.M{"$regex": p.Pattern, "$options": "i"}}
}

func (p Regex) Matches(doc map[string]interface{}) bool {
	v, ok := doc[p.Field].(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile("(?i)" + p.Pattern)
	if err != nil {
		return false
	}
	return re.MatchString(v)
}

// Range matches a numeric field against a closed or open-ended interval.
// A nil bound imposes no constraint on that side.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}

func (p Range) ToBSON() bson.M {
	bounds := bson.M{}
	if p.Min != nil {
		bounds["$gte"] = *p.Min
	}
	if p.Max != nil {
		bounds["$lte"] = *p.Max
	}
	return bson.M{p.Field: bounds}
}

func (p Range) Matches(doc map[string]interface{}) bool {
	v, ok := toFloat(doc[p.Field])
	if !ok {
		return false
	}
	if p.Min != nil && v < *p.Min {
		return false
	}
	if p.Max != nil && v > *p.Max {
		return false
	}
	return true
}

// And matches documents satisfying every child predicate.
type And struct {
	Preds []Predicate
}

func (p And) ToBSON() bson.M {
	clauses := make([]bson.M, 0, len(p.Preds))
	for _, pred := range p.Preds {
		clauses = append(clauses, pred.ToBSON())
	}
	return bson.M{"$and": clauses}
}

func (p And) Matches(doc map[string]interface{}) bool {
	for _, pred := range p.Preds {
		if !pred.Matches(doc) {
			return false
		}
	}
	return true
}

// Or matches documents satisfying at least one child predicate.
type Or struct {
	Preds []Predicate
}

func (p Or) ToBSON() bson.M {
	clauses := make([]bson.M, 0, len(p.Preds))
	for _, pred := range p.Preds {
		clauses = append(clauses, pred.ToBSON())
	}
	return bson.M{"$or": clauses}
}

func (p Or) Matches(doc map[string]interface{}) bool {
	for _, pred := range p.Preds {
		if pred.Matches(doc) {
			return true
		}
	}
	return false
}

// Filter bundles a predicate tree with sorting and paging for a find call.
type Filter struct {
	Root     Predicate // nil matches every document
	SortBy   string
	SortDesc bool
	Limit    int64
	Skip     int64
}

// BSON renders the filter document for the find call.
func (f *Filter) BSON() bson.M {
	if f == nil || f.Root == nil {
		return bson.M{}
	}
	return f.Root.ToBSON()
}

// FindOptions renders the sort and paging options for the find call.
func (f *Filter) FindOptions() *options.FindOptions {
	opts := options.Find()
	if f == nil {
		return opts
	}
	if f.SortBy != "" {
		order := 1
		if f.SortDesc {
			order = -1
		}
		opts.SetSort(bson.D{{Key: f.SortBy, Value: order}})
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	return opts
}

// Matches evaluates the predicate tree against a flat document.
func (f *Filter) Matches(doc map[string]interface{}) bool {
	if f == nil || f.Root == nil {
		return true
	}
	return f.Root.Matches(doc)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
