package wql

import (
	"regexp"
	"strings"
)

// Eval evaluates the query against the tag map of a record. Keys of the map
// follow the WQL naming: plaintext tags carry the '~' prefix. Neq is the
// negation of Eq, i.e. it matches records without the tag. Ordering compares
// strings byte wise and Like follows SQL LIKE with '%' and '_' wildcards,
// case sensitively.
func Eval(q Query, tags map[string]string) bool {
	switch q.Op {
	case OpAnd:
		for _, s := range q.Sub {
			if !Eval(s, tags) {
				return false
			}
		}
		return true
	case OpOr:
		for _, s := range q.Sub {
			if Eval(s, tags) {
				return true
			}
		}
		return false
	case OpNot:
		return !Eval(q.Sub[0], tags)
	case OpNeq:
		return !Eval(Eq(q.Name, q.Value), tags)
	}

	v, ok := tags[q.Name]
	if !ok {
		return false
	}
	switch q.Op {
	case OpEq:
		return v == q.Value
	case OpGt:
		return v > q.Value
	case OpGte:
		return v >= q.Value
	case OpLt:
		return v < q.Value
	case OpLte:
		return v <= q.Value
	case OpLike:
		return likeRegexp(q.Value).MatchString(v)
	case OpRegex:
		re, err := regexp.Compile(q.Value)
		return err == nil && re.MatchString(v)
	case OpIn:
		for _, x := range q.Values {
			if x == v {
				return true
			}
		}
	}
	return false
}

func likeRegexp(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
