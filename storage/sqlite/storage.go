package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type storage struct {
	db   *sql.DB
	cfg  Config
	path string

	// WAL lets readers run next to the one writer, writers of this process
	// queue here instead of spinning on busy_timeout.
	wmu sync.Mutex
}

func ioHandler(err *error) func() {
	return func() {
		*err = api.Wrap(api.IOError, *err)
	}
}

func (s *storage) write(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	defer err2.Handle(&err, ioHandler(&err))

	s.wmu.Lock()
	defer s.wmu.Unlock()

	tx := try.To1(s.db.BeginTx(ctx, nil))
	defer rollback(tx)
	try.To(fn(tx))
	return tx.Commit()
}

func itemID(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, typ, id []byte) (int64, error) {
	var rowID int64
	err := q.QueryRowContext(ctx,
		"SELECT id FROM items WHERE type = ? AND name = ?", typ, id).Scan(&rowID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, api.Errorf(api.ItemNotFound, "item")
	}
	return rowID, err
}

// insertTags adds the tags of the item. A tag name the item already has is
// ItemAlreadyExists.
func insertTags(ctx context.Context, tx *sql.Tx, rowID int64, tags []api.Tag) error {
	for _, t := range tags {
		var err error
		if t.Plain {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO tags_plaintext (item_id, name, value) VALUES (?, ?, ?)",
				rowID, string(t.Name), string(t.Value))
		} else {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO tags_encrypted (item_id, name, value) VALUES (?, ?, ?)",
				rowID, t.Name, t.Value)
		}
		if isUnique(err) {
			return api.Errorf(api.ItemAlreadyExists, "tag")
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (s *storage) Add(ctx context.Context, typ, id []byte, value *api.EncryptedValue, tags []api.Tag) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO items (type, name, value, key, created_at) VALUES (?, ?, ?, ?, ?)",
			typ, id, value.Data, value.Key, now().Unix())
		if isUnique(err) {
			return api.Errorf(api.ItemAlreadyExists, "item")
		} else if err != nil {
			return err
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		return insertTags(ctx, tx, rowID, tags)
	})
}

func (s *storage) Update(ctx context.Context, typ, id []byte, value *api.EncryptedValue) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE items SET value = ?, key = ? WHERE type = ? AND name = ?",
			value.Data, value.Key, typ, id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return api.Errorf(api.ItemNotFound, "item")
	}
	return nil
}

func (s *storage) AddTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		rowID, err := itemID(ctx, tx, typ, id)
		if err != nil {
			return err
		}
		return insertTags(ctx, tx, rowID, tags)
	})
}

func (s *storage) UpdateTags(ctx context.Context, typ, id []byte, tags []api.Tag) error {
	return s.write(ctx, func(tx *sql.Tx) (err error) {
		defer err2.Handle(&err)

		rowID := try.To1(itemID(ctx, tx, typ, id))
		try.To1(tx.ExecContext(ctx, "DELETE FROM tags_encrypted WHERE item_id = ?", rowID))
		try.To1(tx.ExecContext(ctx, "DELETE FROM tags_plaintext WHERE item_id = ?", rowID))
		return insertTags(ctx, tx, rowID, tags)
	})
}

func (s *storage) DeleteTags(ctx context.Context, typ, id []byte, names []api.TagName) error {
	return s.write(ctx, func(tx *sql.Tx) (err error) {
		defer err2.Handle(&err)

		rowID := try.To1(itemID(ctx, tx, typ, id))
		for _, n := range names {
			if n.Plain {
				try.To1(tx.ExecContext(ctx,
					"DELETE FROM tags_plaintext WHERE item_id = ? AND name = ?",
					rowID, string(n.Name)))
			} else {
				try.To1(tx.ExecContext(ctx,
					"DELETE FROM tags_encrypted WHERE item_id = ? AND name = ?",
					rowID, n.Name))
			}
		}
		return nil
	})
}

func (s *storage) Delete(ctx context.Context, typ, id []byte) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM items WHERE type = ? AND name = ?", typ, id)
		if err != nil {
			return err
		}
		return mustAffect(res)
	})
}

func (s *storage) Get(ctx context.Context, typ, id []byte, opts api.RecordOptions) (r *api.Record, err error) {
	defer err2.Handle(&err, ioHandler(&err))

	var (
		rowID     int64
		value     []byte
		key       []byte
		createdAt int64
	)
	err = s.db.QueryRowContext(ctx,
		"SELECT id, value, key, created_at FROM items WHERE type = ? AND name = ?",
		typ, id).Scan(&rowID, &value, &key, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.Errorf(api.ItemNotFound, "item")
	}
	try.To(err)

	if f := s.cfg.FreshnessTime; f > 0 && now().Unix()-createdAt > f {
		glog.V(5).Infoln("item older than freshness time:", f)
		return nil, api.Errorf(api.ItemNotFound, "item is not fresh")
	}

	r = &api.Record{ID: id}
	if opts.RetrieveType {
		r.Type = typ
	}
	if opts.RetrieveValue {
		r.Value = &api.EncryptedValue{Data: value, Key: key}
	}
	if opts.RetrieveTags {
		tags := try.To1(s.tags(ctx, []int64{rowID}))
		r.Tags = tags[rowID]
		if r.Tags == nil {
			r.Tags = []api.Tag{}
		}
	}
	return r, nil
}

// tags loads the tags of the items in one go per tag table.
func (s *storage) tags(ctx context.Context, rowIDs []int64) (_ map[int64][]api.Tag, err error) {
	defer err2.Handle(&err)

	res := make(map[int64][]api.Tag, len(rowIDs))
	if len(rowIDs) == 0 {
		return res, nil
	}
	args := make([]any, len(rowIDs))
	for i, id := range rowIDs {
		args[i] = id
	}
	in := "(" + strings.TrimSuffix(strings.Repeat("?,", len(rowIDs)), ",") + ")"

	for _, table := range []string{"tags_encrypted", "tags_plaintext"} {
		rows := try.To1(s.db.QueryContext(ctx,
			"SELECT item_id, name, value FROM "+table+" WHERE item_id IN "+in, args...))
		for rows.Next() {
			var (
				rowID       int64
				name, value []byte
			)
			if err := rows.Scan(&rowID, &name, &value); err != nil {
				rows.Close()
				return nil, err
			}
			res[rowID] = append(res[rowID], api.Tag{
				TagName: api.TagName{Plain: table == "tags_plaintext", Name: name},
				Value:   value,
			})
		}
		try.To(rows.Err())
		rows.Close()
	}
	return res, nil
}

func (s *storage) GetMetadata(ctx context.Context) (md []byte, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT value FROM metadata").Scan(&md)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.Errorf(api.BackendError, "metadata missing")
	}
	return md, api.Wrap(api.IOError, err)
}

func (s *storage) SetMetadata(ctx context.Context, metadata []byte) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE metadata SET value = ?", metadata)
		return err
	})
}

func (s *storage) Close() error {
	glog.V(1).Infoln("sqlite wallet closed:", s.path)
	return api.Wrap(api.IOError, s.db.Close())
}
