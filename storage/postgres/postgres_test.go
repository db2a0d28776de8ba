package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/wql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cfg = `{"host": "localhost", "port": 5432, "dbname": "wallets", "sslmode": "disable"}`

var ctx = context.Background()

func setupMock(t *testing.T) sqlmock.Sqlmock {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() {
		sqlOpen = orig
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func openMock(t *testing.T, mock sqlmock.Sqlmock) api.Storage {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM wallets WHERE name = $1`)).
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	s, err := New().Open(ctx, "w1", cfg, `{"user": "u", "password": "p"}`)
	require.NoError(t, err)
	return s
}

func TestDataSource(t *testing.T) {
	dsn, _, err := dataSource(cfg, `{"user": "u", "password": "it's"}`)
	require.NoError(t, err)
	assert.Equal(t, `host='localhost' port='5432' dbname='wallets' sslmode='disable' user='u' password='it\'s'`, dsn)

	dsn, _, err = dataSource(`{"url": "postgres://db:5432/w?sslmode=disable"}`, `{"user": "u", "password": "p"}`)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/w?sslmode=disable", dsn)

	_, _, err = dataSource("", "")
	assert.True(t, api.IsCode(err, api.ConfigError))
	_, _, err = dataSource("{}", "")
	assert.True(t, api.IsCode(err, api.ConfigError))
	_, _, err = dataSource(cfg, "not json")
	assert.True(t, api.IsCode(err, api.ConfigError))
}

func TestCreate(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS wallets`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallets (name, metadata) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`)).
		WithArgs("w1", []byte("md")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	require.NoError(t, New().Create(ctx, "w1", cfg, "", []byte("md")))
}

func TestCreate_exists(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS wallets`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallets`)).
		WithArgs("w1", []byte("md")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := New().Create(ctx, "w1", cfg, "", []byte("md"))
	assert.True(t, api.IsCode(err, api.AlreadyExists))
}

func TestOpen_notFound(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM wallets WHERE name = $1`)).
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectClose()

	_, err := New().Open(ctx, "w1", cfg, "")
	assert.True(t, api.IsCode(err, api.NotFound))
}

func TestDelete(t *testing.T) {
	mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM wallets WHERE name = $1`)).
		WithArgs("w1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()
	require.NoError(t, New().Delete(ctx, "w1", cfg, ""))
}

func plain(n, v string) api.Tag {
	return api.Tag{TagName: api.TagName{Plain: true, Name: []byte(n)}, Value: []byte(v)}
}

func TestStorage_Add(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)

	value := &api.EncryptedValue{Data: []byte("data"), Key: []byte("key")}
	tags := []api.Tag{
		plain("year", "2020"),
		{TagName: api.TagName{Name: []byte{1, 2}}, Value: []byte{3}},
	}
	q := regexp.QuoteMeta(`INSERT INTO items (wallet_id, type, name, value, key, tags) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (wallet_id, type, name) DO NOTHING`)
	mock.ExpectExec(q).
		WithArgs(int64(7), []byte("t"), []byte("i"), []byte("data"), []byte("key"), `{"AQI=":"Aw==","~year":"2020"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q).
		WithArgs(int64(7), []byte("t"), []byte("i"), []byte("data"), []byte("key"), `{}`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Add(ctx, []byte("t"), []byte("i"), value, tags))
	err := s.Add(ctx, []byte("t"), []byte("i"), value, nil)
	assert.True(t, api.IsCode(err, api.ItemAlreadyExists))
}

func TestStorage_Get(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)

	q := regexp.QuoteMeta(`SELECT value, key, tags FROM items WHERE wallet_id = $1 AND type = $2 AND name = $3`)
	mock.ExpectQuery(q).
		WithArgs(int64(7), []byte("t"), []byte("i")).
		WillReturnRows(sqlmock.NewRows([]string{"value", "key", "tags"}).
			AddRow([]byte("data"), []byte("key"), []byte(`{"~year":"2020"}`)))
	mock.ExpectQuery(q).
		WithArgs(int64(7), []byte("t"), []byte("x")).
		WillReturnRows(sqlmock.NewRows([]string{"value", "key", "tags"}))

	r, err := s.Get(ctx, []byte("t"), []byte("i"), api.RecordOptions{RetrieveValue: true, RetrieveTags: true})
	require.NoError(t, err)
	assert.Nil(t, r.Type)
	assert.Equal(t, &api.EncryptedValue{Data: []byte("data"), Key: []byte("key")}, r.Value)
	assert.Equal(t, []api.Tag{plain("year", "2020")}, r.Tags)

	_, err = s.Get(ctx, []byte("t"), []byte("x"), api.RecordOptions{})
	assert.True(t, api.IsCode(err, api.ItemNotFound))
}

const addTagsQuery = `UPDATE items SET tags = tags || $1::jsonb WHERE wallet_id = $2 AND type = $3 AND name = $4 AND NOT (tags ?| $5::text[])`

func TestStorage_tags(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)

	mock.ExpectExec(regexp.QuoteMeta(addTagsQuery)).
		WithArgs(`{"~a":"1"}`, int64(7), []byte("t"), []byte("i"), pq.Array([]string{"~a"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET tags = $1::jsonb WHERE wallet_id = $2 AND type = $3 AND name = $4`)).
		WithArgs(`{"~b":"2"}`, int64(7), []byte("t"), []byte("i")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET tags = tags - $1::text[] WHERE wallet_id = $2 AND type = $3 AND name = $4`)).
		WithArgs(pq.Array([]string{"~b", "AQI="}), int64(7), []byte("t"), []byte("i")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.AddTags(ctx, []byte("t"), []byte("i"), []api.Tag{plain("a", "1")}))
	require.NoError(t, s.UpdateTags(ctx, []byte("t"), []byte("i"), []api.Tag{plain("b", "2")}))
	err := s.DeleteTags(ctx, []byte("t"), []byte("i"), []api.TagName{
		{Plain: true, Name: []byte("b")}, {Name: []byte{1, 2}}})
	assert.True(t, api.IsCode(err, api.ItemNotFound))
}

func TestStorage_addTagsDuplicate(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)
	exists := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM items WHERE wallet_id = $1 AND type = $2 AND name = $3)`)

	mock.ExpectExec(regexp.QuoteMeta(addTagsQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).
		WithArgs(int64(7), []byte("t"), []byte("i")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	err := s.AddTags(ctx, []byte("t"), []byte("i"), []api.Tag{plain("a", "2")})
	assert.True(t, api.IsCode(err, api.ItemAlreadyExists))

	mock.ExpectExec(regexp.QuoteMeta(addTagsQuery)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).
		WithArgs(int64(7), []byte("t"), []byte("missing")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	err = s.AddTags(ctx, []byte("t"), []byte("missing"), []api.Tag{plain("a", "2")})
	assert.True(t, api.IsCode(err, api.ItemNotFound))
}

func TestStorage_metadata(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT metadata FROM wallets WHERE id = $1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"metadata"}).AddRow([]byte("md")))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets SET metadata = $1 WHERE id = $2`)).
		WithArgs([]byte("md2"), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	md, err := s.GetMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("md"), md)
	require.NoError(t, s.SetMetadata(ctx, []byte("md2")))
	require.NoError(t, s.Close())
}

func TestCompile(t *testing.T) {
	enc := api.TagName{Name: []byte{1, 2}}
	tests := []struct {
		name string
		op   api.Operator
		want string
		args []any
	}{
		{"eq", api.Operator{Op: wql.OpEq, Name: enc, Value: api.TargetValue{Encrypted: true, Value: []byte{3}}},
			`(tags @> jsonb_build_object($1::text, $2::text))`, []any{"AQI=", "Aw=="}},
		{"neq", api.Operator{Op: wql.OpNeq, Name: plain("a", "").TagName, Value: api.TargetValue{Value: []byte("1")}},
			`NOT (tags @> jsonb_build_object($1::text, $2::text))`, []any{"~a", "1"}},
		{"gt", api.Operator{Op: wql.OpGt, Name: plain("y", "").TagName, Value: api.TargetValue{Value: []byte("2")}},
			`COALESCE((tags->>$1) COLLATE "C" > $2, FALSE)`, []any{"~y", "2"}},
		{"like", api.Operator{Op: wql.OpLike, Name: plain("y", "").TagName, Value: api.TargetValue{Value: []byte("a%")}},
			`COALESCE((tags->>$1) LIKE $2, FALSE)`, []any{"~y", "a%"}},
		{"in", api.Operator{Op: wql.OpIn, Name: plain("y", "").TagName, Values: []api.TargetValue{{Value: []byte("1")}, {Value: []byte("2")}}},
			`COALESCE(tags->>$1 = ANY($2::text[]), FALSE)`, []any{"~y", pq.Array([]string{"1", "2"})}},
		{"and not", api.Operator{Op: wql.OpAnd, Sub: []api.Operator{
			{Op: wql.OpNot, Sub: []api.Operator{{Op: wql.OpRegex, Name: plain("y", "").TagName, Value: api.TargetValue{Value: []byte("^1")}}}},
			{Op: wql.OpOr},
		}}, `(NOT COALESCE((tags->>$1) ~ $2, FALSE) AND FALSE)`, []any{"~y", "^1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &compiler{}
			got, err := c.compile(&tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.args, c.args)
		})
	}

	c := &compiler{}
	_, err := c.compile(&api.Operator{Op: wql.OpGt, Name: enc})
	assert.True(t, api.IsCode(err, api.QueryError))
}

func TestStorage_Search(t *testing.T) {
	mock := setupMock(t)
	s := openMock(t, mock)

	op := &api.Operator{Op: wql.OpEq, Name: plain("y", "").TagName, Value: api.TargetValue{Value: []byte("1")}}
	cond := `wallet_id = $1 AND type = $2 AND (tags @> jsonb_build_object($3::text, $4::text))`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM items WHERE ` + cond)).
		WithArgs(int64(7), []byte("t"), "~y", "1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, value, key, type, tags FROM items WHERE ` + cond + ` AND id > $5 ORDER BY id LIMIT $6`)).
		WithArgs(int64(7), []byte("t"), "~y", "1", int64(0), pageSize).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "value", "key", "type", "tags"}).
			AddRow(int64(1), []byte("a"), []byte("d1"), []byte("k1"), []byte("t"), []byte(`{"~y":"1"}`)).
			AddRow(int64(5), []byte("b"), []byte("d2"), []byte("k2"), []byte("t"), []byte(`{"~y":"1"}`)))

	it, err := s.Search(ctx, []byte("t"), op, api.SearchOptions{
		RetrieveRecords: true, RetrieveTotalCount: true, RetrieveTags: true})
	require.NoError(t, err)
	n, ok := it.TotalCount()
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	var names []string
	for {
		r, err := it.Next(ctx)
		require.NoError(t, err)
		if r == nil {
			break
		}
		assert.Nil(t, r.Value)
		assert.Equal(t, []api.Tag{plain("y", "1")}, r.Tags)
		names = append(names, string(r.ID))
	}
	assert.Equal(t, []string{"a", "b"}, names)
	require.NoError(t, it.Close())
}
