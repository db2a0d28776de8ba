package wallet

import (
	"encoding/json"
	"strings"

	"github.com/findy-network/findy-wallet/crypto"
	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/storage"
	"github.com/findy-network/findy-wallet/storage/api"
)

// Config is the wallet configuration given to Create, Open, Delete and
// Import.
type Config struct {
	ID            string          `json:"id"`
	StorageType   string          `json:"storage_type,omitempty"`
	StorageConfig json.RawMessage `json:"storage_config,omitempty"`
}

// Credentials are the wallet secrets. Rekey in Open changes the key during
// the open.
type Credentials struct {
	Key                   string          `json:"key"`
	KeyDerivationMethod   string          `json:"key_derivation_method,omitempty"`
	Rekey                 string          `json:"rekey,omitempty"`
	RekeyDerivationMethod string          `json:"rekey_derivation_method,omitempty"`
	StorageCredentials    json.RawMessage `json:"storage_credentials,omitempty"`
}

// ExportConfig tells where and with which key the wallet is exported.
type ExportConfig struct {
	Path                string `json:"path"`
	Key                 string `json:"key"`
	KeyDerivationMethod string `json:"key_derivation_method,omitempty"`
}

// ImportConfig tells where the archive is and its key. The derivation method
// is read from the archive.
type ImportConfig struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

// RecordOptions tells what GetRecord returns. The id is always returned.
type RecordOptions struct {
	RetrieveType  bool `json:"retrieveType"`
	RetrieveValue bool `json:"retrieveValue"`
	RetrieveTags  bool `json:"retrieveTags"`
}

// SearchOptions tells what a search returns.
type SearchOptions struct {
	RetrieveRecords    bool `json:"retrieveRecords"`
	RetrieveTotalCount bool `json:"retrieveTotalCount"`
	RetrieveType       bool `json:"retrieveType"`
	RetrieveValue      bool `json:"retrieveValue"`
	RetrieveTags       bool `json:"retrieveTags"`
}

// DefaultRecordOptions returns the value only.
func DefaultRecordOptions() RecordOptions {
	return RecordOptions{RetrieveValue: true}
}

// DefaultSearchOptions returns records with values but no count.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{RetrieveRecords: true, RetrieveValue: true}
}

func parseJSON(s, what string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errs.Wrap(errs.InputError, err, what)
	}
	return nil
}

// ParseConfig parses the JSON config.
func ParseConfig(s string) (cfg Config, err error) {
	if s == "" {
		return cfg, errs.New(errs.InputError, "config missing")
	}
	err = parseJSON(s, "config", &cfg)
	if err == nil {
		err = cfg.validate()
	}
	return cfg, err
}

// ParseCredentials parses the JSON credentials.
func ParseCredentials(s string) (creds Credentials, err error) {
	if s == "" {
		return creds, errs.New(errs.InputError, "credentials missing")
	}
	err = parseJSON(s, "credentials", &creds)
	return creds, err
}

// ParseExportConfig parses the JSON export config.
func ParseExportConfig(s string) (cfg ExportConfig, err error) {
	err = parseJSON(s, "export config", &cfg)
	if err == nil && (cfg.Path == "" || cfg.Key == "") {
		err = errs.New(errs.InputError, "export config needs path and key")
	}
	return cfg, err
}

// ParseImportConfig parses the JSON import config.
func ParseImportConfig(s string) (cfg ImportConfig, err error) {
	err = parseJSON(s, "import config", &cfg)
	if err == nil && (cfg.Path == "" || cfg.Key == "") {
		err = errs.New(errs.InputError, "import config needs path and key")
	}
	return cfg, err
}

// ParseRecordOptions parses the JSON options. Missing fields keep their
// defaults.
func ParseRecordOptions(s string) (RecordOptions, error) {
	o := DefaultRecordOptions()
	return o, parseJSON(s, "record options", &o)
}

// ParseSearchOptions parses the JSON options. Missing fields keep their
// defaults.
func ParseSearchOptions(s string) (SearchOptions, error) {
	o := DefaultSearchOptions()
	return o, parseJSON(s, "search options", &o)
}

// validate checks the wallet id. File backends use it as a directory name
// under their root, so it must not be a path.
func (c Config) validate() error {
	switch {
	case c.ID == "":
		return errs.New(errs.InputError, "wallet id missing")
	case c.ID == "." || c.ID == "..", strings.ContainsAny(c.ID, "/\\\x00"):
		return errs.New(errs.InputError, "wallet id %q is not a name", c.ID)
	}
	return nil
}

func (c Config) storageConfig() string {
	if len(c.StorageConfig) == 0 || string(c.StorageConfig) == "null" {
		return ""
	}
	return string(c.StorageConfig)
}

// key identifies the wallet in the process.
func (c Config) key() string {
	t := c.StorageType
	if t == "" {
		t = storage.DefaultType
	}
	return t + "/" + c.ID
}

func (c Credentials) storageCredentials() string {
	if len(c.StorageCredentials) == 0 || string(c.StorageCredentials) == "null" {
		return ""
	}
	return string(c.StorageCredentials)
}

func (c Credentials) method() (crypto.Method, error) {
	return parseMethod(c.KeyDerivationMethod)
}

func (c Credentials) rekeyMethod() (crypto.Method, error) {
	return parseMethod(c.RekeyDerivationMethod)
}

func parseMethod(s string) (crypto.Method, error) {
	m, err := crypto.ParseMethod(s)
	if err != nil {
		return 0, errs.Wrap(errs.InputError, err)
	}
	return m, nil
}

func (o RecordOptions) backend() api.RecordOptions {
	return api.RecordOptions{
		RetrieveType:  o.RetrieveType,
		RetrieveValue: o.RetrieveValue,
		RetrieveTags:  o.RetrieveTags,
	}
}

func (o SearchOptions) backend() api.SearchOptions {
	return api.SearchOptions{
		RetrieveRecords:    o.RetrieveRecords,
		RetrieveTotalCount: o.RetrieveTotalCount,
		RetrieveType:       o.RetrieveType,
		RetrieveValue:      o.RetrieveValue,
		RetrieveTags:       o.RetrieveTags,
	}
}
