package bolt

import (
	"bytes"
	"encoding/json"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	bbolt "go.etcd.io/bbolt"
)

type store struct {
	db *bbolt.DB
}

// item is the stored form of a record. Tags is the plugin tag map.
type item struct {
	Value []byte            `cbor:"1,keyasint"`
	Tags  map[string]string `cbor:"2,keyasint,omitempty"`
}

// record is what a record handle points to.
type record struct {
	Type  string
	ID    string
	Value []byte
	Tags  map[string]string
}

// key builds the item key. Type and id are base64 so ':' separates them.
func key(typ, id string) []byte {
	return []byte(typ + ":" + id)
}

func parseTags(s string) (map[string]string, error) {
	m := make(map[string]string)
	if s == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, api.Errorf(api.BackendError, "tags: %v", err)
	}
	return m, nil
}

func getItem(b *bbolt.Bucket, k []byte) (*item, error) {
	d := b.Get(k)
	if d == nil {
		return nil, api.Errorf(api.ItemNotFound, "item")
	}
	var it item
	if err := cbor.Unmarshal(d, &it); err != nil {
		return nil, api.Errorf(api.BackendError, "stored item: %v", err)
	}
	return &it, nil
}

func putItem(b *bbolt.Bucket, k []byte, it *item) error {
	d, err := cbor.Marshal(it)
	if err != nil {
		return api.Errorf(api.BackendError, "item: %v", err)
	}
	return api.Wrap(api.IOError, b.Put(k, d))
}

func (s *store) update(fn func(b *bbolt.Bucket) error) error {
	return api.Wrap(api.IOError, s.db.Update(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(itemsBucket))
	}))
}

func (s *store) view(fn func(b *bbolt.Bucket) error) error {
	return api.Wrap(api.IOError, s.db.View(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(itemsBucket))
	}))
}

func (s *store) add(typ, id string, value []byte, tagsJSON string) (err error) {
	defer err2.Handle(&err)

	tags := try.To1(parseTags(tagsJSON))
	return s.update(func(b *bbolt.Bucket) error {
		k := key(typ, id)
		if b.Get(k) != nil {
			return api.Errorf(api.ItemAlreadyExists, "item")
		}
		return putItem(b, k, &item{Value: value, Tags: tags})
	})
}

// modify runs fn for an existing item and stores the result.
func (s *store) modify(typ, id string, fn func(it *item) error) error {
	return s.update(func(b *bbolt.Bucket) error {
		k := key(typ, id)
		it, err := getItem(b, k)
		if err != nil {
			return err
		}
		if err := fn(it); err != nil {
			return err
		}
		return putItem(b, k, it)
	})
}

func (s *store) updateValue(typ, id string, value []byte) error {
	return s.modify(typ, id, func(it *item) error {
		it.Value = value
		return nil
	})
}

func (s *store) updateTags(typ, id, tagsJSON string, merge bool) (err error) {
	defer err2.Handle(&err)

	tags := try.To1(parseTags(tagsJSON))
	return s.modify(typ, id, func(it *item) error {
		if !merge || it.Tags == nil {
			it.Tags = tags
			return nil
		}
		for k := range tags {
			if _, ok := it.Tags[k]; ok {
				return api.Errorf(api.ItemAlreadyExists, "tag")
			}
		}
		for k, v := range tags {
			it.Tags[k] = v
		}
		return nil
	})
}

func (s *store) deleteTags(typ, id, namesJSON string) error {
	var names []string
	if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
		return api.Errorf(api.BackendError, "tag names: %v", err)
	}
	return s.modify(typ, id, func(it *item) error {
		for _, n := range names {
			delete(it.Tags, n)
		}
		return nil
	})
}

func (s *store) delete(typ, id string) error {
	return s.update(func(b *bbolt.Bucket) error {
		k := key(typ, id)
		if b.Get(k) == nil {
			return api.Errorf(api.ItemNotFound, "item")
		}
		return b.Delete(k)
	})
}

func (s *store) get(typ, id string) (r *record, err error) {
	err = s.view(func(b *bbolt.Bucket) error {
		it, err := getItem(b, key(typ, id))
		if err != nil {
			return err
		}
		r = newRecord(typ, id, it)
		return nil
	})
	return r, err
}

func newRecord(typ, id string, it *item) *record {
	tags := it.Tags
	if tags == nil {
		tags = make(map[string]string)
	}
	return &record{
		Type:  typ,
		ID:    id,
		Value: append([]byte{}, it.Value...),
		Tags:  tags,
	}
}

func (s *store) metadata() (md []byte, err error) {
	err = api.Wrap(api.IOError, s.db.View(func(tx *bbolt.Tx) error {
		d := tx.Bucket(metadataBucket).Get(metadataKey)
		if d == nil {
			return api.Errorf(api.BackendError, "metadata missing")
		}
		md = append([]byte{}, d...)
		return nil
	}))
	return md, err
}

func (s *store) setMetadata(md []byte) error {
	return api.Wrap(api.IOError, s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(metadataBucket).Put(metadataKey, md)
	}))
}

// search is a result snapshot taken at search open.
type search struct {
	records []*record
	total   int
}

func (s *search) next() *record {
	if len(s.records) == 0 {
		return nil
	}
	r := s.records[0]
	s.records = s.records[1:]
	return r
}

func splitKey(k []byte) (typ, id string) {
	i := bytes.IndexByte(k, ':')
	return string(k[:i]), string(k[i+1:])
}

func (s *store) search(typ, queryJSON string) (_ *search, err error) {
	defer err2.Handle(&err)

	q := wql.True()
	if queryJSON != "" {
		op := try.To1(api.UnmarshalOperator([]byte(queryJSON)))
		q = wql.Optimize(op.WQL())
	}
	glog.V(5).Infoln("bolt search:", q)

	found := &search{}
	if q.IsFalse() {
		return found, nil
	}
	prefix := []byte(typ + ":")
	err = s.view(func(b *bbolt.Bucket) error {
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var it item
			if err := cbor.Unmarshal(v, &it); err != nil {
				return api.Errorf(api.BackendError, "stored item: %v", err)
			}
			if wql.Eval(q, it.Tags) {
				_, id := splitKey(k)
				found.records = append(found.records, newRecord(typ, id, &it))
			}
		}
		return nil
	})
	found.total = len(found.records)
	return found, err
}

func (s *store) all() (_ *search, err error) {
	found := &search{}
	err = s.view(func(b *bbolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			var it item
			if err := cbor.Unmarshal(v, &it); err != nil {
				return api.Errorf(api.BackendError, "stored item: %v", err)
			}
			typ, id := splitKey(k)
			found.records = append(found.records, newRecord(typ, id, &it))
			return nil
		})
	})
	found.total = len(found.records)
	return found, err
}
