// Package condition builds the query predicates sent to the platform's search endpoints.
package condition

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type Operator string

// EQ is the only operator the backend's search endpoints understand today.
const EQ Operator = "="

type Pair struct {
	Field string
	Op    Operator
	Value any
}

// Condition is an immutable conjunction of field predicates. The zero value matches everything.
type Condition struct {
	pairs []Pair
}

func New(field string, value any, op Operator) Condition {
	return Condition{pairs: []Pair{{Field: field, Op: op, Value: value}}}
}

func Eq(field string, value any) Condition {
	return New(field, value, EQ)
}

// And returns the conjunction of c and other; neither operand is modified.
func (c Condition) And(other Condition) Condition {
	pairs := make([]Pair, 0, len(c.pairs)+len(other.pairs))
	pairs = append(pairs, c.pairs...)
	pairs = append(pairs, other.pairs...)
	return Condition{pairs: pairs}
}

func (c Condition) IsZero() bool { return len(c.pairs) == 0 }

// Pairs returns the predicates in composition order; repeated fields are kept.
func (c Condition) Pairs() []Pair {
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Get returns the value of the first predicate on field.
func (c Condition) Get(field string) (any, bool) {
	for _, p := range c.pairs {
		if p.Field == field {
			return p.Value, true
		}
	}
	return nil, false
}

// Values renders the condition as query parameters.
func (c Condition) Values() url.Values {
	v := url.Values{}
	for _, p := range c.pairs {
		v.Add(p.Field, format(p.Value))
	}
	return v
}

// Query renders k=v pairs joined by & in composition order.
func (c Condition) Query() string {
	parts := make([]string, 0, len(c.pairs))
	for _, p := range c.pairs {
		parts = append(parts, url.QueryEscape(p.Field)+string(p.Op)+url.QueryEscape(format(p.Value)))
	}
	return strings.Join(parts, "&")
}

func (c Condition) String() string { return c.Query() }

// FromMap builds an EQ conjunction over m in sorted key order.
func FromMap(m map[string]any) Condition {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var c Condition
	for _, k := range keys {
		c = c.And(Eq(k, m[k]))
	}
	return c
}

// format renders named integer types (enums) by their numeric wire value, not their String.
func format(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	}
	return fmt.Sprint(v)
}
