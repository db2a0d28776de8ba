package plugged

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type pluggedStorage struct {
	fns *Functions
	h   Handle
}

func ctxErr(ctx context.Context) error {
	return api.Wrap(api.IOError, ctx.Err())
}

func (s *pluggedStorage) Add(ctx context.Context, typ, id []byte, value *api.EncryptedValue, tags []api.Tag) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.AddRecord(s.h, Encode(typ), Encode(id), value.Bytes(), TagsJSON(tags)).Err("add record")
}

func (s *pluggedStorage) Update(ctx context.Context, typ, id []byte, value *api.EncryptedValue) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.UpdateRecordValue(s.h, Encode(typ), Encode(id), value.Bytes()).Err("update record value")
}

func (s *pluggedStorage) AddTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.AddRecordTags(s.h, Encode(typ), Encode(id), TagsJSON(tags)).Err("add record tags")
}

func (s *pluggedStorage) UpdateTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.UpdateRecordTags(s.h, Encode(typ), Encode(id), TagsJSON(tags)).Err("update record tags")
}

func (s *pluggedStorage) DeleteTags(ctx context.Context, typ, id []byte, names []api.TagName) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, n.JSONKey())
	}
	d, _ := json.Marshal(keys)
	return s.fns.DeleteRecordTags(s.h, Encode(typ), Encode(id), string(d)).Err("delete record tags")
}

func (s *pluggedStorage) Delete(ctx context.Context, typ, id []byte) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.DeleteRecord(s.h, Encode(typ), Encode(id)).Err("delete record")
}

// record reads the fields of the record handle. The handle is freed by the
// caller.
func (s *pluggedStorage) record(rh Handle, opts api.RecordOptions) (r *api.Record, err error) {
	defer err2.Handle(&err)

	r = &api.Record{}
	id, code := s.fns.GetRecordID(s.h, rh)
	try.To(code.Err("get record id"))
	r.ID = try.To1(Decode(id))

	if opts.RetrieveType {
		typ, code := s.fns.GetRecordType(s.h, rh)
		try.To(code.Err("get record type"))
		r.Type = try.To1(Decode(typ))
	}
	if opts.RetrieveValue {
		v, code := s.fns.GetRecordValue(s.h, rh)
		try.To(code.Err("get record value"))
		r.Value = try.To1(api.ValueFromBytes(append([]byte{}, v...)))
	}
	if opts.RetrieveTags {
		tags, code := s.fns.GetRecordTags(s.h, rh)
		try.To(code.Err("get record tags"))
		r.Tags = try.To1(ParseTags(tags))
	}
	return r, nil
}

func (s *pluggedStorage) Get(ctx context.Context, typ, id []byte, opts api.RecordOptions) (*api.Record, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	o := Options{RetrieveType: opts.RetrieveType, RetrieveValue: opts.RetrieveValue, RetrieveTags: opts.RetrieveTags}
	rh, code := s.fns.GetRecord(s.h, Encode(typ), Encode(id), o.JSON())
	if code != Success {
		return nil, code.Err("get record")
	}
	defer s.fns.FreeRecord(s.h, rh)

	return s.record(rh, opts)
}

func (s *pluggedStorage) GetMetadata(ctx context.Context) ([]byte, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	md, mh, code := s.fns.GetStorageMetadata(s.h)
	if code != Success {
		return nil, code.Err("get storage metadata")
	}
	defer s.fns.FreeStorageMetadata(s.h, mh)

	return append([]byte{}, md...), nil
}

func (s *pluggedStorage) SetMetadata(ctx context.Context, metadata []byte) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	return s.fns.SetStorageMetadata(s.h, metadata).Err("set storage metadata")
}

func (s *pluggedStorage) Search(ctx context.Context, typ []byte, op *api.Operator, opts api.SearchOptions) (_ api.Iterator, err error) {
	defer err2.Handle(&err)

	try.To(ctxErr(ctx))
	query := []byte("{}")
	if op != nil {
		query = try.To1(op.MarshalJSON())
	}
	o := Options{
		RetrieveRecords:    opts.RetrieveRecords,
		RetrieveTotalCount: opts.RetrieveTotalCount,
		RetrieveType:       opts.RetrieveType,
		RetrieveValue:      opts.RetrieveValue,
		RetrieveTags:       opts.RetrieveTags,
	}
	sh, code := s.fns.SearchRecords(s.h, Encode(typ), string(query), o.JSON())
	try.To(code.Err("search records"))

	it := &iterator{s: s, sh: sh, opts: opts.RecordOptions(), records: opts.RetrieveRecords}
	if opts.RetrieveTotalCount {
		n, code := s.fns.GetSearchTotalCount(s.h, sh)
		if code != Success {
			it.Close()
			return nil, code.Err("get search total count")
		}
		it.total = &n
	}
	return it, nil
}

func (s *pluggedStorage) GetAll(ctx context.Context) (api.Iterator, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	sh, code := s.fns.SearchAllRecords(s.h)
	if code != Success {
		return nil, code.Err("search all records")
	}
	return &iterator{
		s:       s,
		sh:      sh,
		opts:    api.RecordOptions{RetrieveType: true, RetrieveValue: true, RetrieveTags: true},
		records: true,
	}, nil
}

func (s *pluggedStorage) Close() error {
	glog.V(3).Infoln("plugged storage close:", s.h)
	return s.fns.Close(s.h).Err("close")
}

type iterator struct {
	s       *pluggedStorage
	sh      Handle
	opts    api.RecordOptions
	records bool
	total   *int

	once sync.Once
	done bool
}

func (it *iterator) Next(ctx context.Context) (*api.Record, error) {
	if it.done || !it.records {
		return nil, nil
	}
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	rh, code := it.s.fns.FetchSearchNextRecord(it.s.h, it.sh)
	if code == ErrorCode(api.ItemNotFound) {
		it.done = true
		return nil, nil
	}
	if code != Success {
		return nil, code.Err("fetch search next record")
	}
	defer it.s.fns.FreeRecord(it.s.h, rh)

	return it.s.record(rh, it.opts)
}

func (it *iterator) TotalCount() (int, bool) {
	if it.total == nil {
		return 0, false
	}
	return *it.total, true
}

func (it *iterator) Close() (err error) {
	it.once.Do(func() {
		it.done = true
		err = it.s.fns.FreeSearch(it.s.h, it.sh).Err("free search")
	})
	return err
}
