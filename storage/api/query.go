package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/findy-network/findy-wallet/wql"
)

// TargetValue is the operand of a query leaf. Encrypted operands are
// deterministic ciphertexts, the others are plaintext.
type TargetValue struct {
	Encrypted bool
	Value     []byte
}

// Operator is the encrypted query tree handed to backends. It has the same
// shape as wql.Query but names and operands are at-rest bytes.
type Operator struct {
	Op     wql.Op
	Name   TagName
	Value  TargetValue
	Values []TargetValue
	Sub    []Operator
}

// IsTrue tells if the operator matches every record. A nil operator is true.
func (o *Operator) IsTrue() bool {
	return o == nil || (o.Op == wql.OpAnd && len(o.Sub) == 0)
}

// IsFalse tells if the operator matches nothing.
func (o *Operator) IsFalse() bool {
	return o != nil && o.Op == wql.OpOr && len(o.Sub) == 0
}

// JSONKey is the tag key used in JSON tag maps and WQL: plaintext names get
// a '~' prefix and encrypted names are base64 encoded.
func (n TagName) JSONKey() string {
	if n.Plain {
		return "~" + string(n.Name)
	}
	return base64.StdEncoding.EncodeToString(n.Name)
}

// JSONValue is the tag value in JSON tag maps: base64 for encrypted tags.
func (v TargetValue) JSONValue() string {
	if v.Encrypted {
		return base64.StdEncoding.EncodeToString(v.Value)
	}
	return string(v.Value)
}

// TagNameFromJSONKey is the inverse of TagName.JSONKey.
func TagNameFromJSONKey(key string) (TagName, error) {
	if strings.HasPrefix(key, "~") {
		return TagName{Plain: true, Name: []byte(key[1:])}, nil
	}
	b, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return TagName{}, Errorf(QueryError, "tag name %q: %v", key, err)
	}
	return TagName{Name: b}, nil
}

func targetFromJSON(name TagName, s string) (TargetValue, error) {
	if name.Plain {
		return TargetValue{Value: []byte(s)}, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return TargetValue{}, Errorf(QueryError, "tag value: %v", err)
	}
	return TargetValue{Encrypted: true, Value: b}, nil
}

// WQL returns the JSON compatible form of the operator.
func (o *Operator) WQL() wql.Query {
	if o == nil {
		return wql.True()
	}
	q := wql.Query{Op: o.Op}
	switch o.Op {
	case wql.OpAnd, wql.OpOr, wql.OpNot:
		for i := range o.Sub {
			q.Sub = append(q.Sub, o.Sub[i].WQL())
		}
	case wql.OpIn:
		q.Name = o.Name.JSONKey()
		q.Values = make([]string, 0, len(o.Values))
		for _, v := range o.Values {
			q.Values = append(q.Values, v.JSONValue())
		}
	default:
		q.Name = o.Name.JSONKey()
		q.Value = o.Value.JSONValue()
	}
	return q
}

// MarshalJSON encodes the operator as WQL with base64 encoded ciphertexts.
func (o *Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.WQL())
}

// OperatorFromWQL builds the operator from its JSON compatible form.
func OperatorFromWQL(q wql.Query) (op Operator, err error) {
	op.Op = q.Op
	switch q.Op {
	case wql.OpAnd, wql.OpOr, wql.OpNot:
		op.Sub = make([]Operator, 0, len(q.Sub))
		for _, s := range q.Sub {
			so, err := OperatorFromWQL(s)
			if err != nil {
				return op, err
			}
			op.Sub = append(op.Sub, so)
		}
		return op, nil
	}
	if op.Name, err = TagNameFromJSONKey(q.Name); err != nil {
		return op, err
	}
	if q.Op == wql.OpIn {
		for _, v := range q.Values {
			tv, err := targetFromJSON(op.Name, v)
			if err != nil {
				return op, err
			}
			op.Values = append(op.Values, tv)
		}
		return op, nil
	}
	if q.Op.IsOrdering() && !op.Name.Plain {
		return op, Errorf(QueryError, "%s on encrypted tag", q.Op)
	}
	op.Value, err = targetFromJSON(op.Name, q.Value)
	return op, err
}

// UnmarshalOperator parses the WQL JSON produced by MarshalJSON.
func UnmarshalOperator(data []byte) (*Operator, error) {
	q, err := wql.ParseBytes(data)
	if err != nil {
		return nil, Wrap(QueryError, err)
	}
	op, err := OperatorFromWQL(q)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// TagsJSON returns the JSON tag map form of the tags.
func TagsJSON(tags []Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[t.JSONKey()] = TargetValue{Encrypted: !t.Plain, Value: t.Value}.JSONValue()
	}
	return m
}

// TagsFromJSON is the inverse of TagsJSON.
func TagsFromJSON(m map[string]string) ([]Tag, error) {
	tags := make([]Tag, 0, len(m))
	for k, v := range m {
		name, err := TagNameFromJSONKey(k)
		if err != nil {
			return nil, err
		}
		tv, err := targetFromJSON(name, v)
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{TagName: name, Value: tv.Value})
	}
	return tags, nil
}

func (o Operator) String() string {
	d, err := o.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(d)
}
