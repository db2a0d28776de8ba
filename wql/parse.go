package wql

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrParsing is returned when the query isn't valid JSON.
	ErrParsing = errors.New("wql parsing error")

	// ErrStructure is returned when the JSON isn't a valid WQL tree.
	ErrStructure = errors.New("wql structure error")

	// ErrValue is returned when an operand has a wrong type.
	ErrValue = errors.New("wql value error")
)

// Parse parses the WQL string. An empty string is the same as "{}".
func Parse(s string) (Query, error) {
	if strings.TrimSpace(s) == "" {
		return True(), nil
	}
	return ParseBytes([]byte(s))
}

// ParseBytes parses the WQL JSON.
func ParseBytes(data []byte) (q Query, err error) {
	var root any
	if err = json.Unmarshal(data, &root); err != nil {
		return q, fmt.Errorf("%w: %v", ErrParsing, err)
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return q, fmt.Errorf("%w: query must be a JSON object", ErrStructure)
	}
	return parseObject(obj)
}

func parseObject(obj map[string]any) (Query, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// JSON objects are unordered, sorting keeps compiled queries stable
	sort.Strings(keys)

	subs := make([]Query, 0, len(keys))
	for _, k := range keys {
		q, err := parsePair(k, obj[k])
		if err != nil {
			return q, err
		}
		subs = append(subs, q)
	}
	if len(subs) == 1 {
		return subs[0], nil
	}
	return And(subs...), nil
}

func parsePair(key string, v any) (Query, error) {
	switch key {
	case "$and", "$or":
		arr, ok := v.([]any)
		if !ok {
			return Query{}, fmt.Errorf("%w: %s needs an array", ErrStructure, key)
		}
		subs := make([]Query, 0, len(arr))
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok {
				return Query{}, fmt.Errorf("%w: %s items must be objects", ErrStructure, key)
			}
			q, err := parseObject(obj)
			if err != nil {
				return q, err
			}
			subs = append(subs, q)
		}
		if key == "$and" {
			return And(subs...), nil
		}
		return Or(subs...), nil
	case "$not":
		obj, ok := v.(map[string]any)
		if !ok {
			return Query{}, fmt.Errorf("%w: $not needs an object", ErrStructure)
		}
		q, err := parseObject(obj)
		if err != nil {
			return q, err
		}
		return Not(q), nil
	}
	if strings.HasPrefix(key, "$") {
		return Query{}, fmt.Errorf("%w: unknown operator %s", ErrStructure, key)
	}
	if key == "" || key == "~" {
		return Query{}, fmt.Errorf("%w: empty tag name", ErrStructure)
	}
	switch val := v.(type) {
	case string:
		return Eq(key, val), nil
	case map[string]any:
		return parseOperator(key, val)
	default:
		return Query{}, fmt.Errorf("%w: value of %s must be a string or an object", ErrValue, key)
	}
}

func parseOperator(name string, obj map[string]any) (Query, error) {
	if len(obj) != 1 {
		return Query{}, fmt.Errorf("%w: tag %s needs exactly one operator", ErrStructure, name)
	}
	var (
		op  string
		arg any
	)
	for op, arg = range obj {
	}
	if op == OpIn.String() {
		arr, ok := arg.([]any)
		if !ok {
			return Query{}, fmt.Errorf("%w: $in needs an array of strings", ErrValue)
		}
		vals := make([]string, 0, len(arr))
		for _, a := range arr {
			s, ok := a.(string)
			if !ok {
				return Query{}, fmt.Errorf("%w: $in needs an array of strings", ErrValue)
			}
			vals = append(vals, s)
		}
		return In(name, vals...), nil
	}

	var ctor func(string, string) Query
	switch op {
	case "$neq":
		ctor = Neq
	case "$gt":
		ctor = Gt
	case "$gte":
		ctor = Gte
	case "$lt":
		ctor = Lt
	case "$lte":
		ctor = Lte
	case "$like":
		ctor = Like
	case "$regex":
		ctor = Regex
	default:
		return Query{}, fmt.Errorf("%w: unknown operator %s", ErrStructure, op)
	}
	s, ok := arg.(string)
	if !ok {
		return Query{}, fmt.Errorf("%w: %s needs a string", ErrValue, op)
	}
	if op == "$regex" {
		if _, err := regexp.Compile(s); err != nil {
			return Query{}, fmt.Errorf("%w: %v", ErrValue, err)
		}
	}
	return ctor(name, s), nil
}
