package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/lib/pq"
)

var pageSize = 128

type storage struct {
	db       *sql.DB
	walletID int64
}

func ioHandler(err *error) func() {
	return func() {
		*err = api.Wrap(api.IOError, *err)
	}
}

func tagsJSON(tags []api.Tag) string {
	d, _ := json.Marshal(api.TagsJSON(tags))
	return string(d)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return api.Wrap(api.IOError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return api.Wrap(api.IOError, err)
	}
	if n == 0 {
		return api.Errorf(api.ItemNotFound, "item")
	}
	return nil
}

func (s *storage) Add(ctx context.Context, typ, id []byte, value *api.EncryptedValue, tags []api.Tag) error {
	err := affected(s.db.ExecContext(ctx,
		"INSERT INTO items (wallet_id, type, name, value, key, tags) VALUES ($1, $2, $3, $4, $5, $6) "+
			"ON CONFLICT (wallet_id, type, name) DO NOTHING",
		s.walletID, typ, id, value.Data, value.Key, tagsJSON(tags)))
	if api.IsCode(err, api.ItemNotFound) {
		return api.Errorf(api.ItemAlreadyExists, "item")
	}
	return err
}

func (s *storage) Update(ctx context.Context, typ, id []byte, value *api.EncryptedValue) error {
	return affected(s.db.ExecContext(ctx,
		"UPDATE items SET value = $1, key = $2 WHERE wallet_id = $3 AND type = $4 AND name = $5",
		value.Data, value.Key, s.walletID, typ, id))
}

// AddTags merges the tags when the item has none of them. If nothing was
// updated, the item is looked up to tell a missing item from a duplicate tag.
func (s *storage) AddTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	keys := make([]string, 0, len(tags))
	for _, t := range tags {
		keys = append(keys, t.JSONKey())
	}
	err := affected(s.db.ExecContext(ctx,
		"UPDATE items SET tags = tags || $1::jsonb WHERE wallet_id = $2 AND type = $3 AND name = $4 "+
			"AND NOT (tags ?| $5::text[])",
		tagsJSON(tags), s.walletID, typ, id, pq.Array(keys)))
	if !api.IsCode(err, api.ItemNotFound) {
		return err
	}
	var found bool
	if qerr := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM items WHERE wallet_id = $1 AND type = $2 AND name = $3)",
		s.walletID, typ, id).Scan(&found); qerr != nil {
		return api.Wrap(api.IOError, qerr)
	}
	if found {
		return api.Errorf(api.ItemAlreadyExists, "tag")
	}
	return err
}

func (s *storage) UpdateTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	return affected(s.db.ExecContext(ctx,
		"UPDATE items SET tags = $1::jsonb WHERE wallet_id = $2 AND type = $3 AND name = $4",
		tagsJSON(tags), s.walletID, typ, id))
}

func (s *storage) DeleteTags(ctx context.Context, typ, id []byte, names []api.TagName) error {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, n.JSONKey())
	}
	return affected(s.db.ExecContext(ctx,
		"UPDATE items SET tags = tags - $1::text[] WHERE wallet_id = $2 AND type = $3 AND name = $4",
		pq.Array(keys), s.walletID, typ, id))
}

func (s *storage) Delete(ctx context.Context, typ, id []byte) error {
	return affected(s.db.ExecContext(ctx,
		"DELETE FROM items WHERE wallet_id = $1 AND type = $2 AND name = $3",
		s.walletID, typ, id))
}

func parseTags(d []byte) ([]api.Tag, error) {
	m := make(map[string]string)
	if err := json.Unmarshal(d, &m); err != nil {
		return nil, api.Errorf(api.BackendError, "tags column: %v", err)
	}
	return api.TagsFromJSON(m)
}

func (s *storage) Get(ctx context.Context, typ, id []byte, opts api.RecordOptions) (r *api.Record, err error) {
	defer err2.Handle(&err, ioHandler(&err))

	var value, key, tags []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT value, key, tags FROM items WHERE wallet_id = $1 AND type = $2 AND name = $3",
		s.walletID, typ, id).Scan(&value, &key, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.Errorf(api.ItemNotFound, "item")
	}
	try.To(err)

	r = &api.Record{ID: id}
	if opts.RetrieveType {
		r.Type = typ
	}
	if opts.RetrieveValue {
		r.Value = &api.EncryptedValue{Data: value, Key: key}
	}
	if opts.RetrieveTags {
		r.Tags = try.To1(parseTags(tags))
	}
	return r, nil
}

func (s *storage) GetMetadata(ctx context.Context) (md []byte, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT metadata FROM wallets WHERE id = $1", s.walletID).Scan(&md)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.Errorf(api.NotFound, "wallet removed")
	}
	return md, api.Wrap(api.IOError, err)
}

func (s *storage) SetMetadata(ctx context.Context, metadata []byte) error {
	err := affected(s.db.ExecContext(ctx,
		"UPDATE wallets SET metadata = $1 WHERE id = $2", metadata, s.walletID))
	if api.IsCode(err, api.ItemNotFound) {
		return api.Errorf(api.NotFound, "wallet removed")
	}
	return err
}

func (s *storage) Close() error {
	glog.V(1).Infoln("postgres wallet closed:", s.walletID)
	return api.Wrap(api.IOError, s.db.Close())
}

// compiler builds the SQL condition with numbered placeholders. Every leaf
// evaluates to true or false, never NULL, so NOT works for items without
// the tag.
type compiler struct {
	args []any
}

func (c *compiler) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compiler) compile(op *api.Operator) (string, error) {
	switch op.Op {
	case wql.OpAnd, wql.OpOr:
		if len(op.Sub) == 0 {
			return strings.ToUpper(fmt.Sprint(op.Op == wql.OpAnd)), nil
		}
		parts := make([]string, 0, len(op.Sub))
		for i := range op.Sub {
			p, err := c.compile(&op.Sub[i])
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
		p, err := c.compile(&op.Sub[0])
		if err != nil {
			return "", err
		}
		return "NOT " + p, nil
	}

	if op.Op.IsOrdering() && !op.Name.Plain {
		return "", api.Errorf(api.QueryError, "%s on encrypted tag", op.Op)
	}
	key := op.Name.JSONKey()
	switch op.Op {
	case wql.OpEq, wql.OpNeq:
		cond := fmt.Sprintf("(tags @> jsonb_build_object(%s::text, %s::text))",
			c.arg(key), c.arg(op.Value.JSONValue()))
		if op.Op == wql.OpNeq {
			return "NOT " + cond, nil
		}
		return cond, nil
	case wql.OpIn:
		vals := make([]string, 0, len(op.Values))
		for _, v := range op.Values {
			vals = append(vals, v.JSONValue())
		}
		return fmt.Sprintf("COALESCE(tags->>%s = ANY(%s::text[]), FALSE)",
			c.arg(key), c.arg(pq.Array(vals))), nil
	}

	var sqlOp string
	switch op.Op {
	case wql.OpGt:
		sqlOp = `COLLATE "C" >`
	case wql.OpGte:
		sqlOp = `COLLATE "C" >=`
	case wql.OpLt:
		sqlOp = `COLLATE "C" <`
	case wql.OpLte:
		sqlOp = `COLLATE "C" <=`
	case wql.OpLike:
		sqlOp = "LIKE"
	case wql.OpRegex:
		sqlOp = "~"
	default:
		return "", api.Errorf(api.QueryError, "unknown operator %s", op.Op)
	}
	return fmt.Sprintf("COALESCE((tags->>%s) %s %s, FALSE)",
		c.arg(key), sqlOp, c.arg(string(op.Value.Value))), nil
}

func (s *storage) Search(ctx context.Context, typ []byte, op *api.Operator, opts api.SearchOptions) (_ api.Iterator, err error) {
	defer err2.Handle(&err, ioHandler(&err))

	c := &compiler{}
	cond := fmt.Sprintf("wallet_id = %s AND type = %s", c.arg(s.walletID), c.arg(typ))
	switch {
	case op.IsFalse():
		cond += " AND FALSE"
	case !op.IsTrue():
		cond += " AND " + try.To1(c.compile(op))
	}
	glog.V(7).Infoln("postgres search:", cond)

	it := &iterator{
		s:       s,
		cond:    cond,
		args:    c.args,
		opts:    opts.RecordOptions(),
		records: opts.RetrieveRecords,
	}
	if opts.RetrieveTotalCount {
		var n int
		try.To(s.db.QueryRowContext(ctx,
			"SELECT count(*) FROM items WHERE "+cond, c.args...).Scan(&n))
		it.total = &n
	}
	return it, nil
}

func (s *storage) GetAll(context.Context) (api.Iterator, error) {
	c := &compiler{}
	return &iterator{
		s:       s,
		cond:    "wallet_id = " + c.arg(s.walletID),
		args:    c.args,
		opts:    api.RecordOptions{RetrieveType: true, RetrieveValue: true, RetrieveTags: true},
		records: true,
	}, nil
}

// iterator pages through the items by row id with one statement per page.
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
}

func (it *iterator) Next(ctx context.Context) (*api.Record, error) {
	if !it.records {
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

	c := &compiler{args: append([]any{}, it.args...)}
	query := fmt.Sprintf(
		"SELECT id, name, value, key, type, tags FROM items WHERE %s AND id > %s ORDER BY id LIMIT %s",
		it.cond, c.arg(it.lastID), c.arg(pageSize))
	rows := try.To1(it.s.db.QueryContext(ctx, query, c.args...))
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			rowID                       int64
			name, value, key, typ, tags []byte
		)
		try.To(rows.Scan(&rowID, &name, &value, &key, &typ, &tags))
		r := api.Record{ID: name}
		if it.opts.RetrieveType {
			r.Type = typ
		}
		if it.opts.RetrieveValue {
			r.Value = &api.EncryptedValue{Data: value, Key: key}
		}
		if it.opts.RetrieveTags {
			r.Tags = try.To1(parseTags(tags))
		}
		it.buf = append(it.buf, r)
		it.lastID = rowID
		n++
	}
	try.To(rows.Err())
	if n < pageSize {
		it.done = true
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
	it.done = true
	it.buf = nil
	return nil
}
