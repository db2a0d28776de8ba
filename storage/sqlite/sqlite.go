// Package sqlite is the default, file based storage backend. Every wallet
// is an embedded SQL database at <path>/<wallet id>/sqlite.db.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	// TypeName is the registry name of this backend.
	TypeName = "default"

	dbFileName = "sqlite.db"
)

const schema = `
CREATE TABLE metadata (
	id INTEGER NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY(id)
);
CREATE TABLE items (
	id INTEGER NOT NULL,
	type BLOB NOT NULL,
	name BLOB NOT NULL,
	value BLOB NOT NULL,
	key BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY(id)
);
CREATE UNIQUE INDEX ux_items_type_name ON items(type, name);
CREATE TABLE tags_encrypted (
	name BLOB NOT NULL,
	value BLOB NOT NULL,
	item_id INTEGER NOT NULL,
	PRIMARY KEY(name, item_id),
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE ON UPDATE CASCADE
);
CREATE INDEX ix_tags_encrypted_name_value ON tags_encrypted(name, value);
CREATE INDEX ix_tags_encrypted_item_id ON tags_encrypted(item_id);
CREATE TABLE tags_plaintext (
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	item_id INTEGER NOT NULL,
	PRIMARY KEY(name, item_id),
	FOREIGN KEY(item_id) REFERENCES items(id) ON DELETE CASCADE ON UPDATE CASCADE
);
CREATE INDEX ix_tags_plaintext_name_value ON tags_plaintext(name, value);
CREATE INDEX ix_tags_plaintext_item_id ON tags_plaintext(item_id);
`

// Config is the storage_config of the file backend.
type Config struct {
	// Path is the base dir, the wallet home by default.
	Path string `json:"path,omitempty"`

	// FreshnessTime in seconds: Get doesn't return records older than
	// this. Zero means no limit. Searches are not affected.
	FreshnessTime int64 `json:"freshness_time,omitempty"`
}

var now = time.Now

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2, regexpFn)
}

var regexps sync.Map

// regexpFn implements the REGEXP operator: X REGEXP Y calls regexp(Y, X).
func regexpFn(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok1 := textArg(args[0])
	value, ok2 := textArg(args[1])
	if !ok1 || !ok2 {
		return false, nil
	}
	re, ok := regexps.Load(pattern)
	if !ok {
		c, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		re, _ = regexps.LoadOrStore(pattern, c)
	}
	return re.(*regexp.Regexp).MatchString(value), nil
}

func textArg(v driver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

type storageType struct{}

// New returns the file backend storage type.
func New() api.StorageType {
	return storageType{}
}

func parseConfig(s string) (cfg Config, err error) {
	if s == "" {
		return cfg, nil
	}
	if err = json.Unmarshal([]byte(s), &cfg); err != nil {
		return cfg, api.Errorf(api.ConfigError, "storage config: %v", err)
	}
	if cfg.FreshnessTime < 0 {
		return cfg, api.Errorf(api.ConfigError, "negative freshness_time")
	}
	return cfg, nil
}

func walletDir(id string, cfg Config) string {
	base := cfg.Path
	if base == "" {
		base = utils.WalletHome()
	}
	return filepath.Join(base, id)
}

func dsn(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(10000)" +
		"&_pragma=case_sensitive_like(1)" +
		"&_txlock=immediate"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (storageType) Create(ctx context.Context, id, config, _ string, metadata []byte) (err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	cfg := try.To1(parseConfig(config))
	dir := walletDir(id, cfg)
	path := filepath.Join(dir, dbFileName)
	if exists(path) {
		return api.Errorf(api.AlreadyExists, "wallet %s", id)
	}
	try.To(os.MkdirAll(dir, 0700))
	defer err2.Handle(&err, func() {
		os.RemoveAll(dir)
	})

	db := try.To1(sql.Open("sqlite", dsn(path)))
	defer db.Close()

	tx := try.To1(db.BeginTx(ctx, nil))
	defer rollback(tx)
	try.To1(tx.ExecContext(ctx, schema))
	try.To1(tx.ExecContext(ctx, "INSERT INTO metadata(value) VALUES (?)", metadata))
	try.To(tx.Commit())

	glog.V(1).Infoln("sqlite wallet created:", path)
	return nil
}

func (storageType) Open(ctx context.Context, id, config, _ string) (_ api.Storage, err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	cfg := try.To1(parseConfig(config))
	path := filepath.Join(walletDir(id, cfg), dbFileName)
	if !exists(path) {
		return nil, api.Errorf(api.NotFound, "wallet %s", id)
	}
	db := try.To1(sql.Open("sqlite", dsn(path)))
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	glog.V(1).Infoln("sqlite wallet opened:", path)
	return &storage{db: db, cfg: cfg, path: path}, nil
}

func (storageType) Delete(_ context.Context, id, config, _ string) (err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	cfg := try.To1(parseConfig(config))
	dir := walletDir(id, cfg)
	if !exists(filepath.Join(dir, dbFileName)) {
		return api.Errorf(api.NotFound, "wallet %s", id)
	}
	try.To(os.RemoveAll(dir))
	glog.V(1).Infoln("sqlite wallet deleted:", dir)
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		glog.Warningf("rollback: %v", err)
	}
}

func isUnique(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
