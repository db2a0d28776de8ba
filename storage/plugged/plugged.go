// Package plugged adapts a storage plugin to the storage backend contract.
// A plugin is a table of functions working with opaque integer handles. All
// it receives is already at rest form: types and ids are base64 encoded
// ciphertexts, values are the sealed value bytes, tags and queries are JSON
// where encrypted names and values are base64 encoded.
package plugged

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/storage"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/golang/glog"
)

// Handle is an opaque plugin handle of an opened storage, a record, a
// metadata buffer or a search.
type Handle = int32

// ErrorCode is returned by every plugin function. Success is zero, the
// others are the backend error codes.
type ErrorCode int32

const Success ErrorCode = 0

// Code converts a backend error to the plugin error code.
func Code(err error) ErrorCode {
	if err == nil {
		return Success
	}
	return ErrorCode(api.CodeOf(err))
}

// Err returns the backend error of the code, nil for Success.
func (c ErrorCode) Err(op string) error {
	if c == Success {
		return nil
	}
	return api.Errorf(api.Code(c), "plugin %s", op)
}

// Functions is the function table a plugin provides. Options are the JSON
// form of the record and search options; tag names of DeleteRecordTags are
// a JSON array of tag keys.
type Functions struct {
	Create func(name, config, credentials string, metadata []byte) ErrorCode
	Open   func(name, config, credentials string) (Handle, ErrorCode)
	Close  func(h Handle) ErrorCode
	Delete func(name, config, credentials string) ErrorCode

	AddRecord         func(h Handle, typ, id string, value []byte, tagsJSON string) ErrorCode
	UpdateRecordValue func(h Handle, typ, id string, value []byte) ErrorCode
	UpdateRecordTags  func(h Handle, typ, id, tagsJSON string) ErrorCode
	AddRecordTags     func(h Handle, typ, id, tagsJSON string) ErrorCode
	DeleteRecordTags  func(h Handle, typ, id, tagNamesJSON string) ErrorCode
	DeleteRecord      func(h Handle, typ, id string) ErrorCode

	GetRecord      func(h Handle, typ, id, optionsJSON string) (Handle, ErrorCode)
	GetRecordID    func(h, rh Handle) (string, ErrorCode)
	GetRecordType  func(h, rh Handle) (string, ErrorCode)
	GetRecordValue func(h, rh Handle) ([]byte, ErrorCode)
	GetRecordTags  func(h, rh Handle) (string, ErrorCode)
	FreeRecord     func(h, rh Handle) ErrorCode

	GetStorageMetadata  func(h Handle) ([]byte, Handle, ErrorCode)
	SetStorageMetadata  func(h Handle, metadata []byte) ErrorCode
	FreeStorageMetadata func(h, mh Handle) ErrorCode

	SearchRecords         func(h Handle, typ, queryJSON, optionsJSON string) (Handle, ErrorCode)
	SearchAllRecords      func(h Handle) (Handle, ErrorCode)
	GetSearchTotalCount   func(h, sh Handle) (int, ErrorCode)
	FetchSearchNextRecord func(h, sh Handle) (Handle, ErrorCode)
	FreeSearch            func(h, sh Handle) ErrorCode
}

func (f *Functions) complete() bool {
	return f.Create != nil && f.Open != nil && f.Close != nil && f.Delete != nil &&
		f.AddRecord != nil && f.UpdateRecordValue != nil && f.UpdateRecordTags != nil &&
		f.AddRecordTags != nil && f.DeleteRecordTags != nil && f.DeleteRecord != nil &&
		f.GetRecord != nil && f.GetRecordID != nil && f.GetRecordType != nil &&
		f.GetRecordValue != nil && f.GetRecordTags != nil && f.FreeRecord != nil &&
		f.GetStorageMetadata != nil && f.SetStorageMetadata != nil &&
		f.FreeStorageMetadata != nil && f.SearchRecords != nil &&
		f.SearchAllRecords != nil && f.GetSearchTotalCount != nil &&
		f.FetchSearchNextRecord != nil && f.FreeSearch != nil
}

// Register adds the plugin to the storage registry by name.
func Register(name string, fns Functions) error {
	if !fns.complete() {
		return errs.New(errs.InputError, "plugin %s: function table incomplete", name)
	}
	return storage.Register(name, New(fns))
}

// New returns the plugin as a storage type.
func New(fns Functions) api.StorageType {
	return &storageType{fns: &fns}
}

// Options is the JSON form of the record and search options.
type Options struct {
	RetrieveRecords    bool `json:"retrieveRecords,omitempty"`
	RetrieveTotalCount bool `json:"retrieveTotalCount,omitempty"`
	RetrieveType       bool `json:"retrieveType"`
	RetrieveValue      bool `json:"retrieveValue"`
	RetrieveTags       bool `json:"retrieveTags"`
}

func (o Options) JSON() string {
	d, _ := json.Marshal(o)
	return string(d)
}

// ParseOptions is for plugin implementations.
func ParseOptions(s string) (o Options, err error) {
	if s == "" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(s), &o); err != nil {
		return o, api.Errorf(api.ConfigError, "options: %v", err)
	}
	return o, nil
}

// Encode is the string form of at rest bytes passed to plugins.
func Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Decode is the inverse of Encode.
func Decode(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, api.Errorf(api.BackendError, "plugin string: %v", err)
	}
	return b, nil
}

// TagsJSON is the tag JSON passed to plugins.
func TagsJSON(tags []api.Tag) string {
	d, _ := json.Marshal(api.TagsJSON(tags))
	return string(d)
}

// ParseTags is the inverse of TagsJSON.
func ParseTags(s string) ([]api.Tag, error) {
	m := make(map[string]string)
	if s != "" {
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, api.Errorf(api.BackendError, "tags: %v", err)
		}
	}
	return api.TagsFromJSON(m)
}

type storageType struct {
	fns *Functions
}

func (t *storageType) Create(ctx context.Context, id, config, credentials string, metadata []byte) error {
	if err := ctx.Err(); err != nil {
		return api.Wrap(api.IOError, err)
	}
	return t.fns.Create(id, config, credentials, metadata).Err("create")
}

func (t *storageType) Open(ctx context.Context, id, config, credentials string) (api.Storage, error) {
	if err := ctx.Err(); err != nil {
		return nil, api.Wrap(api.IOError, err)
	}
	h, code := t.fns.Open(id, config, credentials)
	if code != Success {
		return nil, code.Err("open")
	}
	glog.V(3).Infoln("plugged storage opened:", id, h)
	return &pluggedStorage{fns: t.fns, h: h}, nil
}

func (t *storageType) Delete(ctx context.Context, id, config, credentials string) error {
	if err := ctx.Err(); err != nil {
		return api.Wrap(api.IOError, err)
	}
	return t.fns.Delete(id, config, credentials).Err("delete")
}
