// Package postgres is the relational storage backend. Many wallets share
// one database: every wallet is a row in wallets and its items reference it.
// Tags of an item are kept in one JSONB column where plaintext tag names
// have a '~' prefix and encrypted names and values are base64 encoded.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	_ "github.com/lib/pq"
)

// TypeName is the registry name of this backend.
const TypeName = "postgres"

const schema = `
CREATE TABLE IF NOT EXISTS wallets (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	metadata BYTEA NOT NULL
);
CREATE TABLE IF NOT EXISTS items (
	id BIGSERIAL PRIMARY KEY,
	wallet_id BIGINT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
	type BYTEA NOT NULL,
	name BYTEA NOT NULL,
	value BYTEA NOT NULL,
	key BYTEA NOT NULL,
	tags JSONB NOT NULL DEFAULT '{}',
	UNIQUE (wallet_id, type, name)
);
CREATE INDEX IF NOT EXISTS ix_items_tags ON items USING GIN (tags);
`

// Config is the storage_config of the relational backend. URL wins over
// the separate fields.
type Config struct {
	URL     string `json:"url,omitempty"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
	DBName  string `json:"dbname,omitempty"`
	SSLMode string `json:"sslmode,omitempty"`

	MaxConnections int `json:"max_connections,omitempty"`
}

// Credentials is the storage_credentials of the relational backend.
type Credentials struct {
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// sqlOpen is replaced in tests.
var sqlOpen = sql.Open

type storageType struct{}

// New returns the relational storage type.
func New() api.StorageType {
	return storageType{}
}

func dataSource(config, credentials string) (_ string, cfg Config, err error) {
	if config == "" {
		return "", cfg, api.Errorf(api.ConfigError, "postgres storage needs storage_config")
	}
	if err := json.Unmarshal([]byte(config), &cfg); err != nil {
		return "", cfg, api.Errorf(api.ConfigError, "storage config: %v", err)
	}
	var creds Credentials
	if credentials != "" {
		if err := json.Unmarshal([]byte(credentials), &creds); err != nil {
			return "", cfg, api.Errorf(api.ConfigError, "storage credentials: %v", err)
		}
	}

	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return "", cfg, api.Errorf(api.ConfigError, "url: %v", err)
		}
		if creds.User != "" {
			u.User = url.UserPassword(creds.User, creds.Password)
		}
		return u.String(), cfg, nil
	}

	var parts []string
	add := func(k, v string) {
		if v != "" {
			v = strings.ReplaceAll(v, `\`, `\\`)
			parts = append(parts, k+"='"+strings.ReplaceAll(v, "'", `\'`)+"'")
		}
	}
	add("host", cfg.Host)
	if cfg.Port != 0 {
		add("port", fmt.Sprint(cfg.Port))
	}
	add("dbname", cfg.DBName)
	add("sslmode", cfg.SSLMode)
	add("user", creds.User)
	add("password", creds.Password)
	if len(parts) == 0 {
		return "", cfg, api.Errorf(api.ConfigError, "postgres storage config is empty")
	}
	return strings.Join(parts, " "), cfg, nil
}

func connect(ctx context.Context, config, credentials string) (_ *sql.DB, cfg Config, err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	dsn, cfg := try.To2(dataSource(config, credentials))
	db := try.To1(sqlOpen("postgres", dsn))
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, cfg, err
	}
	return db, cfg, nil
}

func (storageType) Create(ctx context.Context, id, config, credentials string, metadata []byte) (err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	db, _ := try.To2(connect(ctx, config, credentials))
	defer db.Close()

	try.To1(db.ExecContext(ctx, schema))
	res := try.To1(db.ExecContext(ctx,
		"INSERT INTO wallets (name, metadata) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
		id, metadata))
	if try.To1(res.RowsAffected()) == 0 {
		return api.Errorf(api.AlreadyExists, "wallet %s", id)
	}
	glog.V(1).Infoln("postgres wallet created:", id)
	return nil
}

func (storageType) Open(ctx context.Context, id, config, credentials string) (_ api.Storage, err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	db, _ := try.To2(connect(ctx, config, credentials))
	var walletID int64
	err = db.QueryRowContext(ctx, "SELECT id FROM wallets WHERE name = $1", id).Scan(&walletID)
	if err != nil {
		db.Close()
		if err == sql.ErrNoRows {
			return nil, api.Errorf(api.NotFound, "wallet %s", id)
		}
		return nil, err
	}
	glog.V(1).Infoln("postgres wallet opened:", id)
	return &storage{db: db, walletID: walletID}, nil
}

func (storageType) Delete(ctx context.Context, id, config, credentials string) (err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	db, _ := try.To2(connect(ctx, config, credentials))
	defer db.Close()

	res := try.To1(db.ExecContext(ctx, "DELETE FROM wallets WHERE name = $1", id))
	if try.To1(res.RowsAffected()) == 0 {
		return api.Errorf(api.NotFound, "wallet %s", id)
	}
	glog.V(1).Infoln("postgres wallet deleted:", id)
	return nil
}
