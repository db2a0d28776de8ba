// Package codec converts wallet records between their plaintext form and the
// at-rest form backends store. Types, ids and encrypted tags are sealed
// deterministically so that equality lookups work over ciphertexts, values
// are sealed with a random per record key.
package codec

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/findy-network/findy-wallet/crypto"
	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/keys"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
)

// PlainPrefix marks a plaintext tag name.
const PlainPrefix = "~"

// Record is the plaintext wallet record. Fields the caller did not request
// are zero.
type Record struct {
	Type  string            `json:"type,omitempty" cbor:"1,keyasint"`
	ID    string            `json:"id" cbor:"2,keyasint"`
	Value []byte            `json:"value,omitempty" cbor:"3,keyasint"`
	Tags  map[string]string `json:"tags,omitempty" cbor:"4,keyasint,omitempty"`
}

// Codec does the conversions with the wallet keys. It doesn't own the keys.
type Codec struct {
	k *keys.Keys
}

func New(k *keys.Keys) *Codec {
	return &Codec{k: k}
}

func (c *Codec) searchable(key []byte, s string) ([]byte, error) {
	b, err := crypto.SealSearchable(key, c.k.TagHMAC, []byte(s))
	if err != nil {
		return nil, errs.Wrap(errs.EncryptionError, err)
	}
	return b, nil
}

func (c *Codec) EncryptType(typ string) ([]byte, error) {
	return c.searchable(c.k.Type, typ)
}

func (c *Codec) EncryptID(id string) ([]byte, error) {
	return c.searchable(c.k.Name, id)
}

func (c *Codec) DecryptType(b []byte) (string, error) {
	return c.openString(c.k.Type, b, "type")
}

func (c *Codec) DecryptID(b []byte) (string, error) {
	return c.openString(c.k.Name, b, "id")
}

func (c *Codec) openString(key, b []byte, what string) (string, error) {
	pt, err := crypto.Open(key, b)
	if err != nil {
		return "", errs.Wrap(errs.EncryptionError, err, what)
	}
	if !utf8.Valid(pt) {
		return "", errs.New(errs.EncodingError, "%s is not UTF-8", what)
	}
	return string(pt), nil
}

// EncryptValue seals the value with a new random record key and seals the
// record key with the value key.
func (c *Codec) EncryptValue(v []byte) (ev *api.EncryptedValue, err error) {
	recordKey := crypto.NewKey()
	defer crypto.Zero(recordKey)

	data, err := crypto.Seal(recordKey, v)
	if err != nil {
		return nil, errs.Wrap(errs.EncryptionError, err)
	}
	sealedKey, err := crypto.Seal(c.k.Value, recordKey)
	if err != nil {
		return nil, errs.Wrap(errs.EncryptionError, err)
	}
	return &api.EncryptedValue{Data: data, Key: sealedKey}, nil
}

func (c *Codec) DecryptValue(ev *api.EncryptedValue) ([]byte, error) {
	recordKey, err := crypto.Open(c.k.Value, ev.Key)
	if err != nil {
		return nil, errs.Wrap(errs.EncryptionError, err, "value key")
	}
	defer crypto.Zero(recordKey)

	v, err := crypto.Open(recordKey, ev.Data)
	if err != nil {
		return nil, errs.Wrap(errs.EncryptionError, err, "value")
	}
	return v, nil
}

// EncryptTagName returns the at-rest name of the WQL tag name.
func (c *Codec) EncryptTagName(name string) (api.TagName, error) {
	if strings.HasPrefix(name, PlainPrefix) {
		return api.TagName{Plain: true, Name: []byte(name[len(PlainPrefix):])}, nil
	}
	b, err := c.searchable(c.k.TagName, name)
	return api.TagName{Name: b}, err
}

func (c *Codec) encryptTagValue(name api.TagName, value string) (api.TargetValue, error) {
	if name.Plain {
		return api.TargetValue{Value: []byte(value)}, nil
	}
	b, err := c.searchable(c.k.TagValue, value)
	return api.TargetValue{Encrypted: true, Value: b}, err
}

// EncryptTags converts the tag map. The result is sorted by the plaintext
// tag name.
func (c *Codec) EncryptTags(tags map[string]string) ([]api.Tag, error) {
	names := make([]string, 0, len(tags))
	for n := range tags {
		names = append(names, n)
	}
	sort.Strings(names)

	res := make([]api.Tag, 0, len(tags))
	for _, n := range names {
		if n == "" || n == PlainPrefix {
			return nil, errs.New(errs.InputError, "empty tag name")
		}
		tn, err := c.EncryptTagName(n)
		if err != nil {
			return nil, err
		}
		tv, err := c.encryptTagValue(tn, tags[n])
		if err != nil {
			return nil, err
		}
		res = append(res, api.Tag{TagName: tn, Value: tv.Value})
	}
	return res, nil
}

func (c *Codec) EncryptTagNames(names []string) ([]api.TagName, error) {
	res := make([]api.TagName, 0, len(names))
	for _, n := range names {
		tn, err := c.EncryptTagName(n)
		if err != nil {
			return nil, err
		}
		res = append(res, tn)
	}
	return res, nil
}

// DecryptTags converts at-rest tags back to the WQL named tag map.
func (c *Codec) DecryptTags(tags []api.Tag) (map[string]string, error) {
	res := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Plain {
			res[PlainPrefix+string(t.Name)] = string(t.Value)
			continue
		}
		name, err := c.openString(c.k.TagName, t.Name, "tag name")
		if err != nil {
			return nil, err
		}
		value, err := c.openString(c.k.TagValue, t.Value, "tag value")
		if err != nil {
			return nil, err
		}
		res[name] = value
	}
	return res, nil
}

// DecryptRecord converts the at-rest record. Missing parts stay zero. A
// known type can be given to skip its decryption.
func (c *Codec) DecryptRecord(r *api.Record, knownType string) (rec *Record, err error) {
	rec = &Record{Type: knownType}
	if rec.ID, err = c.DecryptID(r.ID); err != nil {
		return nil, err
	}
	if r.Type != nil {
		if rec.Type, err = c.DecryptType(r.Type); err != nil {
			return nil, err
		}
	}
	if r.Value != nil {
		if rec.Value, err = c.DecryptValue(r.Value); err != nil {
			return nil, err
		}
	}
	if r.Tags != nil {
		if rec.Tags, err = c.DecryptTags(r.Tags); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// EncryptQuery converts the query to the at-rest operator tree. Neq becomes
// Not(Eq). Ordering and pattern operators are refused on encrypted tags.
func (c *Codec) EncryptQuery(q wql.Query) (op api.Operator, err error) {
	switch q.Op {
	case wql.OpAnd, wql.OpOr, wql.OpNot:
		op.Op = q.Op
		op.Sub = make([]api.Operator, 0, len(q.Sub))
		for _, s := range q.Sub {
			so, err := c.EncryptQuery(s)
			if err != nil {
				return op, err
			}
			op.Sub = append(op.Sub, so)
		}
		return op, nil
	case wql.OpNeq:
		eq, err := c.EncryptQuery(wql.Eq(q.Name, q.Value))
		if err != nil {
			return op, err
		}
		return api.Operator{Op: wql.OpNot, Sub: []api.Operator{eq}}, nil
	}

	op.Op = q.Op
	if op.Name, err = c.EncryptTagName(q.Name); err != nil {
		return op, err
	}
	if q.Op.IsOrdering() && !op.Name.Plain {
		return op, errs.New(errs.QueryError,
			"%s is allowed only for plaintext tags, not %s", q.Op, q.Name)
	}
	if q.Op == wql.OpIn {
		op.Values = make([]api.TargetValue, 0, len(q.Values))
		for _, v := range q.Values {
			tv, err := c.encryptTagValue(op.Name, v)
			if err != nil {
				return op, err
			}
			op.Values = append(op.Values, tv)
		}
		return op, nil
	}
	op.Value, err = c.encryptTagValue(op.Name, q.Value)
	return op, err
}
