package sqlite

import (
	"context"
	"strings"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// pageSize is how many items the iterator buffers per round trip.
var pageSize = 128

// compile builds the SQL condition of the operator over items aliased as i.
// Every leaf is a sub-select on one tag table, so Not matches items without
// the tag as well.
func compile(op *api.Operator, args *[]any) (string, error) {
	switch op.Op {
	case wql.OpAnd, wql.OpOr:
		if len(op.Sub) == 0 {
			if op.Op == wql.OpAnd {
				return "1", nil
			}
			return "0", nil
		}
		parts := make([]string, 0, len(op.Sub))
		for i := range op.Sub {
			p, err := compile(&op.Sub[i], args)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		sep := " AND "
		if op.Op == wql.OpOr {
			sep = " OR "
		}
		return "(" + strings.Join(parts, sep) + ")", nil
	case wql.OpNot:
		p, err := compile(&op.Sub[0], args)
		if err != nil {
			return "", err
		}
		return "NOT (" + p + ")", nil
	}

	table := "tags_encrypted"
	var name any = op.Name.Name
	if op.Name.Plain {
		table = "tags_plaintext"
		name = string(op.Name.Name)
	}
	value := func(v api.TargetValue) any {
		if op.Name.Plain {
			return string(v.Value)
		}
		return v.Value
	}
	if op.Op.IsOrdering() && !op.Name.Plain {
		return "", api.Errorf(api.QueryError, "%s on encrypted tag", op.Op)
	}
	sub := "i.id IN (SELECT item_id FROM " + table + " WHERE name = ? AND value "
	*args = append(*args, name)

	switch op.Op {
	case wql.OpEq:
		*args = append(*args, value(op.Value))
		return sub + "= ?)", nil
	case wql.OpNeq:
		*args = append(*args, value(op.Value))
		return "NOT (" + sub + "= ?))", nil
	case wql.OpGt:
		*args = append(*args, value(op.Value))
		return sub + "> ?)", nil
	case wql.OpGte:
		*args = append(*args, value(op.Value))
		return sub + ">= ?)", nil
	case wql.OpLt:
		*args = append(*args, value(op.Value))
		return sub + "< ?)", nil
	case wql.OpLte:
		*args = append(*args, value(op.Value))
		return sub + "<= ?)", nil
	case wql.OpLike:
		*args = append(*args, value(op.Value))
		return sub + "LIKE ?)", nil
	case wql.OpRegex:
		*args = append(*args, value(op.Value))
		return sub + "REGEXP ?)", nil
	case wql.OpIn:
		if len(op.Values) == 0 {
			*args = (*args)[:len(*args)-1]
			return "0", nil
		}
		for _, v := range op.Values {
			*args = append(*args, value(v))
		}
		return sub + "IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(op.Values)), ", ") + "))", nil
	}
	return "", api.Errorf(api.QueryError, "unknown operator %s", op.Op)
}

// where returns the condition and its arguments for items of the type.
func where(typ []byte, op *api.Operator) (string, []any, error) {
	args := []any{typ}
	if op.IsTrue() {
		return "i.type = ?", args, nil
	}
	cond, err := compile(op, &args)
	if err != nil {
		return "", nil, err
	}
	return "i.type = ? AND " + cond, args, nil
}

func (s *storage) Search(ctx context.Context, typ []byte, op *api.Operator, opts api.SearchOptions) (_ api.Iterator, err error) {
	defer err2.Handle(&err, ioHandler(&err))

	cond, args := "i.type = ?", []any{typ}
	if op.IsFalse() {
		cond = "0"
		args = nil
	} else {
		cond, args = try.To2(where(typ, op))
	}
	glog.V(7).Infoln("sqlite search:", cond)

	it := &iterator{
		s:       s,
		cond:    cond,
		args:    args,
		opts:    opts.RecordOptions(),
		records: opts.RetrieveRecords,
	}
	if opts.RetrieveTotalCount {
		var n int
		try.To(s.db.QueryRowContext(ctx,
			"SELECT count(*) FROM items i WHERE "+cond, args...).Scan(&n))
		it.total = &n
	}
	return it, nil
}

func (s *storage) GetAll(context.Context) (api.Iterator, error) {
	return &iterator{
		s:       s,
		cond:    "1",
		opts:    api.RecordOptions{RetrieveType: true, RetrieveValue: true, RetrieveTags: true},
		records: true,
	}, nil
}

// iterator pages through the matching items by row id. It doesn't keep a
// database cursor open between calls.
type iterator struct {
	s       *storage
	cond    string
	args    []any
	opts    api.RecordOptions
	records bool
	total   *int

	lastID int64
	buf    []api.Record
	done   bool
	closed bool
}

func (it *iterator) Next(ctx context.Context) (*api.Record, error) {
	if it.closed || !it.records {
		return nil, nil
	}
	if len(it.buf) == 0 && !it.done {
		if err := it.fetch(ctx); err != nil {
			return nil, err
		}
	}
	if len(it.buf) == 0 {
		return nil, nil
	}
	r := it.buf[0]
	it.buf = it.buf[1:]
	return &r, nil
}

func (it *iterator) fetch(ctx context.Context) (err error) {
	defer err2.Handle(&err, ioHandler(&err))

	args := append(append([]any{}, it.args...), it.lastID, pageSize)
	rows := try.To1(it.s.db.QueryContext(ctx,
		"SELECT i.id, i.name, i.value, i.key, i.type FROM items i WHERE "+
			it.cond+" AND i.id > ? ORDER BY i.id LIMIT ?", args...))
	defer rows.Close()

	var rowIDs []int64
	for rows.Next() {
		var (
			rowID                  int64
			name, value, key, typ []byte
		)
		try.To(rows.Scan(&rowID, &name, &value, &key, &typ))
		r := api.Record{ID: name}
		if it.opts.RetrieveType {
			r.Type = typ
		}
		if it.opts.RetrieveValue {
			r.Value = &api.EncryptedValue{Data: value, Key: key}
		}
		it.buf = append(it.buf, r)
		rowIDs = append(rowIDs, rowID)
		it.lastID = rowID
	}
	try.To(rows.Err())
	if len(rowIDs) < pageSize {
		it.done = true
	}
	if it.opts.RetrieveTags && len(rowIDs) > 0 {
		tags := try.To1(it.s.tags(ctx, rowIDs))
		for i, id := range rowIDs {
			it.buf[i].Tags = tags[id]
			if it.buf[i].Tags == nil {
				it.buf[i].Tags = []api.Tag{}
			}
		}
	}
	return nil
}

func (it *iterator) TotalCount() (int, bool) {
	if it.total == nil {
		return 0, false
	}
	return *it.total, true
}

func (it *iterator) Close() error {
	it.closed = true
	it.buf = nil
	return nil
}
