// Package wql implements the Wallet Query Language: a JSON based boolean
// query over record tags.
//
//	{"~attr::degree": "maths", "$or": [{"issuer": "did:x"}, {"~year": {"$gte": "2020"}}]}
//
// Tag names starting with '~' refer to plaintext tags, all the other names to
// encrypted tags. Ordering and pattern operators work on plaintext tags only,
// which is checked when the query is encrypted for a backend.
package wql

import (
	"encoding/json"
	"strings"
)

// Op is the WQL operator of the query node.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpLike
	OpRegex
	OpIn
	OpAnd
	OpOr
	OpNot
)

var opNames = [...]string{
	OpEq:    "$eq",
	OpNeq:   "$neq",
	OpGt:    "$gt",
	OpGte:   "$gte",
	OpLt:    "$lt",
	OpLte:   "$lte",
	OpLike:  "$like",
	OpRegex: "$regex",
	OpIn:    "$in",
	OpAnd:   "$and",
	OpOr:    "$or",
	OpNot:   "$not",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "$unknown"
}

// IsOrdering tells if the operator needs plaintext values to work, i.e. it
// cannot be evaluated over deterministic ciphertexts.
func (o Op) IsOrdering() bool {
	switch o {
	case OpGt, OpGte, OpLt, OpLte, OpLike, OpRegex:
		return true
	}
	return false
}

// Query is a node of the WQL syntax tree. Leaf nodes use Name and Value (or
// Values for OpIn), OpAnd and OpOr use Sub, OpNot has exactly one Sub.
//
// An OpAnd without children is the tautology and an OpOr without children is
// the contradiction.
type Query struct {
	Op     Op
	Name   string
	Value  string
	Values []string
	Sub    []Query
}

func Eq(name, value string) Query    { return Query{Op: OpEq, Name: name, Value: value} }
func Neq(name, value string) Query   { return Query{Op: OpNeq, Name: name, Value: value} }
func Gt(name, value string) Query    { return Query{Op: OpGt, Name: name, Value: value} }
func Gte(name, value string) Query   { return Query{Op: OpGte, Name: name, Value: value} }
func Lt(name, value string) Query    { return Query{Op: OpLt, Name: name, Value: value} }
func Lte(name, value string) Query   { return Query{Op: OpLte, Name: name, Value: value} }
func Like(name, value string) Query  { return Query{Op: OpLike, Name: name, Value: value} }
func Regex(name, value string) Query { return Query{Op: OpRegex, Name: name, Value: value} }

func In(name string, values ...string) Query {
	return Query{Op: OpIn, Name: name, Values: values}
}

func And(subs ...Query) Query { return Query{Op: OpAnd, Sub: subs} }
func Or(subs ...Query) Query  { return Query{Op: OpOr, Sub: subs} }
func Not(sub Query) Query     { return Query{Op: OpNot, Sub: []Query{sub}} }

// True returns the query matching every record.
func True() Query { return Query{Op: OpAnd} }

// False returns the query matching nothing.
func False() Query { return Query{Op: OpOr} }

func (q Query) IsTrue() bool  { return q.Op == OpAnd && len(q.Sub) == 0 }
func (q Query) IsFalse() bool { return q.Op == OpOr && len(q.Sub) == 0 }

// IsPlainName tells if the tag name refers to a plaintext tag.
func IsPlainName(name string) bool {
	return strings.HasPrefix(name, "~")
}

// Walk calls fn for every node of the tree in depth first order. The walk
// stops at the first error.
func (q Query) Walk(fn func(q Query) error) error {
	if err := fn(q); err != nil {
		return err
	}
	for _, s := range q.Sub {
		if err := s.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// toJSON builds the generic JSON form of the query.
func (q Query) toJSON() any {
	switch q.Op {
	case OpEq:
		return map[string]any{q.Name: q.Value}
	case OpIn:
		vals := q.Values
		if vals == nil {
			vals = []string{}
		}
		return map[string]any{q.Name: map[string]any{OpIn.String(): vals}}
	case OpAnd, OpOr:
		subs := make([]any, 0, len(q.Sub))
		for _, s := range q.Sub {
			subs = append(subs, s.toJSON())
		}
		return map[string]any{q.Op.String(): subs}
	case OpNot:
		return map[string]any{OpNot.String(): q.Sub[0].toJSON()}
	default:
		return map[string]any{q.Name: map[string]any{q.Op.String(): q.Value}}
	}
}

// MarshalJSON encodes the query back to WQL.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.toJSON())
}

func (q *Query) UnmarshalJSON(data []byte) error {
	p, err := ParseBytes(data)
	if err != nil {
		return err
	}
	*q = p
	return nil
}

// String returns WQL JSON of the query.
func (q Query) String() string {
	d, err := q.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(d)
}
