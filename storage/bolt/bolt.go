// Package bolt is a storage plugin written against the plugin function
// table. Every wallet is one bbolt file. Queries are evaluated in memory over
// the stored tag maps, which is fine for the wallet sizes a single file
// store is meant for.
package bolt

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/storage/plugged"
	"github.com/findy-network/findy-wallet/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	bbolt "go.etcd.io/bbolt"
)

// TypeName is the storage type name used by Register.
const TypeName = "bolt"

var (
	metadataBucket = []byte("metadata")
	itemsBucket    = []byte("items")
	metadataKey    = []byte("metadata")
)

// Config is the storage_config of the plugin.
type Config struct {
	Path string `json:"path,omitempty"`
}

// Register registers the plugin to the storage registry as TypeName.
func Register() error {
	return plugged.Register(TypeName, Functions())
}

func filename(name, config string) (string, error) {
	var cfg Config
	if config != "" {
		if err := json.Unmarshal([]byte(config), &cfg); err != nil {
			return "", api.Errorf(api.ConfigError, "bolt config: %v", err)
		}
	}
	if name == "" {
		return "", api.Errorf(api.ConfigError, "wallet name missing")
	}
	path := cfg.Path
	if path == "" {
		path = utils.WalletHome()
	}
	return filepath.Join(path, name+".bolt"), nil
}

func exists(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

func openDB(fn string) (*bbolt.DB, error) {
	db, err := bbolt.Open(fn, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, api.Wrap(api.IOError, err)
	}
	return db, nil
}

func create(name, config, _ string, metadata []byte) (err error) {
	defer err2.Handle(&err, func() {
		err = api.Wrap(api.IOError, err)
	})

	fn := try.To1(filename(name, config))
	if exists(fn) {
		return api.Errorf(api.AlreadyExists, "wallet %s", name)
	}
	try.To(os.MkdirAll(filepath.Dir(fn), 0700))
	db := try.To1(openDB(fn))
	err = db.Update(func(tx *bbolt.Tx) (err error) {
		defer err2.Handle(&err, "create buckets")

		md := try.To1(tx.CreateBucketIfNotExists(metadataBucket))
		try.To1(tx.CreateBucketIfNotExists(itemsBucket))
		try.To(md.Put(metadataKey, metadata))
		return nil
	})
	db.Close()
	if err != nil {
		os.Remove(fn)
		return err
	}
	glog.V(1).Infoln("bolt wallet created:", fn)
	return nil
}

func open(name, config, _ string) (_ plugged.Handle, err error) {
	defer err2.Handle(&err)

	fn := try.To1(filename(name, config))
	if !exists(fn) {
		return 0, api.Errorf(api.NotFound, "wallet %s", name)
	}
	db := try.To1(openDB(fn))
	glog.V(1).Infoln("bolt wallet opened:", fn)
	return handles.add(&store{db: db}), nil
}

func remove(name, config, _ string) (err error) {
	defer err2.Handle(&err)

	fn := try.To1(filename(name, config))
	if err := os.Remove(fn); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.Errorf(api.NotFound, "wallet %s", name)
		}
		return api.Wrap(api.IOError, err)
	}
	glog.V(1).Infoln("bolt wallet deleted:", fn)
	return nil
}

// table holds every handle the plugin has given out. A handle belongs to
// one opened store and is freed with it at the latest.
type table struct {
	sync.Mutex
	next    plugged.Handle
	stores  map[plugged.Handle]*store
	owned   map[plugged.Handle]plugged.Handle
	records map[plugged.Handle]*record
	searchs map[plugged.Handle]*search
}

var handles = &table{
	stores:  make(map[plugged.Handle]*store),
	owned:   make(map[plugged.Handle]plugged.Handle),
	records: make(map[plugged.Handle]*record),
	searchs: make(map[plugged.Handle]*search),
}

func (t *table) newHandle() plugged.Handle {
	t.next++
	return t.next
}

func (t *table) add(s *store) plugged.Handle {
	t.Lock()
	defer t.Unlock()
	h := t.newHandle()
	t.stores[h] = s
	return h
}

func (t *table) store(h plugged.Handle) (*store, error) {
	t.Lock()
	defer t.Unlock()
	s, ok := t.stores[h]
	if !ok {
		return nil, api.Errorf(api.InvalidHandle, "storage handle %d", h)
	}
	return s, nil
}

// remove drops the store and every handle it owns.
func (t *table) remove(h plugged.Handle) (*store, error) {
	t.Lock()
	defer t.Unlock()
	s, ok := t.stores[h]
	if !ok {
		return nil, api.Errorf(api.InvalidHandle, "storage handle %d", h)
	}
	delete(t.stores, h)
	for sub, owner := range t.owned {
		if owner == h {
			delete(t.owned, sub)
			delete(t.records, sub)
			delete(t.searchs, sub)
		}
	}
	return s, nil
}

func (t *table) addRecord(h plugged.Handle, r *record) plugged.Handle {
	t.Lock()
	defer t.Unlock()
	rh := t.newHandle()
	t.records[rh] = r
	t.owned[rh] = h
	return rh
}

func (t *table) record(h, rh plugged.Handle) (*record, error) {
	t.Lock()
	defer t.Unlock()
	r, ok := t.records[rh]
	if !ok || t.owned[rh] != h {
		return nil, api.Errorf(api.InvalidHandle, "record handle %d", rh)
	}
	return r, nil
}

func (t *table) addSearch(h plugged.Handle, s *search) plugged.Handle {
	t.Lock()
	defer t.Unlock()
	sh := t.newHandle()
	t.searchs[sh] = s
	t.owned[sh] = h
	return sh
}

func (t *table) search(h, sh plugged.Handle) (*search, error) {
	t.Lock()
	defer t.Unlock()
	s, ok := t.searchs[sh]
	if !ok || t.owned[sh] != h {
		return nil, api.Errorf(api.InvalidHandle, "search handle %d", sh)
	}
	return s, nil
}

// free releases a record, metadata or search handle.
func (t *table) free(h, sub plugged.Handle) error {
	t.Lock()
	defer t.Unlock()
	if owner, ok := t.owned[sub]; !ok || owner != h {
		return api.Errorf(api.InvalidHandle, "handle %d", sub)
	}
	delete(t.owned, sub)
	delete(t.records, sub)
	delete(t.searchs, sub)
	return nil
}

func (t *table) addOwned(h plugged.Handle) plugged.Handle {
	t.Lock()
	defer t.Unlock()
	sub := t.newHandle()
	t.owned[sub] = h
	return sub
}

func closeStore(h plugged.Handle) error {
	s, err := handles.remove(h)
	if err != nil {
		return err
	}
	glog.V(1).Infoln("bolt wallet closed:", s.db.Path())
	return api.Wrap(api.IOError, s.db.Close())
}

// Functions returns the plugin function table.
func Functions() plugged.Functions {
	withStore := func(h plugged.Handle, f func(s *store) error) plugged.ErrorCode {
		s, err := handles.store(h)
		if err != nil {
			return plugged.Code(err)
		}
		return plugged.Code(f(s))
	}
	return plugged.Functions{
		Create: func(name, config, credentials string, metadata []byte) plugged.ErrorCode {
			return plugged.Code(create(name, config, credentials, metadata))
		},
		Open: func(name, config, credentials string) (plugged.Handle, plugged.ErrorCode) {
			h, err := open(name, config, credentials)
			return h, plugged.Code(err)
		},
		Close: func(h plugged.Handle) plugged.ErrorCode {
			return plugged.Code(closeStore(h))
		},
		Delete: func(name, config, credentials string) plugged.ErrorCode {
			return plugged.Code(remove(name, config, credentials))
		},

		AddRecord: func(h plugged.Handle, typ, id string, value []byte, tagsJSON string) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.add(typ, id, value, tagsJSON) })
		},
		UpdateRecordValue: func(h plugged.Handle, typ, id string, value []byte) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.updateValue(typ, id, value) })
		},
		UpdateRecordTags: func(h plugged.Handle, typ, id, tagsJSON string) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.updateTags(typ, id, tagsJSON, false) })
		},
		AddRecordTags: func(h plugged.Handle, typ, id, tagsJSON string) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.updateTags(typ, id, tagsJSON, true) })
		},
		DeleteRecordTags: func(h plugged.Handle, typ, id, namesJSON string) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.deleteTags(typ, id, namesJSON) })
		},
		DeleteRecord: func(h plugged.Handle, typ, id string) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.delete(typ, id) })
		},

		GetRecord: func(h plugged.Handle, typ, id, _ string) (rh plugged.Handle, code plugged.ErrorCode) {
			code = withStore(h, func(s *store) error {
				r, err := s.get(typ, id)
				if err != nil {
					return err
				}
				rh = handles.addRecord(h, r)
				return nil
			})
			return rh, code
		},
		GetRecordID: func(h, rh plugged.Handle) (string, plugged.ErrorCode) {
			r, err := handles.record(h, rh)
			if err != nil {
				return "", plugged.Code(err)
			}
			return r.ID, plugged.Success
		},
		GetRecordType: func(h, rh plugged.Handle) (string, plugged.ErrorCode) {
			r, err := handles.record(h, rh)
			if err != nil {
				return "", plugged.Code(err)
			}
			return r.Type, plugged.Success
		},
		GetRecordValue: func(h, rh plugged.Handle) ([]byte, plugged.ErrorCode) {
			r, err := handles.record(h, rh)
			if err != nil {
				return nil, plugged.Code(err)
			}
			return r.Value, plugged.Success
		},
		GetRecordTags: func(h, rh plugged.Handle) (string, plugged.ErrorCode) {
			r, err := handles.record(h, rh)
			if err != nil {
				return "", plugged.Code(err)
			}
			d, _ := json.Marshal(r.Tags)
			return string(d), plugged.Success
		},
		FreeRecord: func(h, rh plugged.Handle) plugged.ErrorCode {
			return plugged.Code(handles.free(h, rh))
		},

		GetStorageMetadata: func(h plugged.Handle) (md []byte, mh plugged.Handle, code plugged.ErrorCode) {
			code = withStore(h, func(s *store) (err error) {
				md, err = s.metadata()
				if err == nil {
					mh = handles.addOwned(h)
				}
				return err
			})
			return md, mh, code
		},
		SetStorageMetadata: func(h plugged.Handle, metadata []byte) plugged.ErrorCode {
			return withStore(h, func(s *store) error { return s.setMetadata(metadata) })
		},
		FreeStorageMetadata: func(h, mh plugged.Handle) plugged.ErrorCode {
			return plugged.Code(handles.free(h, mh))
		},

		SearchRecords: func(h plugged.Handle, typ, queryJSON, _ string) (sh plugged.Handle, code plugged.ErrorCode) {
			code = withStore(h, func(s *store) error {
				found, err := s.search(typ, queryJSON)
				if err != nil {
					return err
				}
				sh = handles.addSearch(h, found)
				return nil
			})
			return sh, code
		},
		SearchAllRecords: func(h plugged.Handle) (sh plugged.Handle, code plugged.ErrorCode) {
			code = withStore(h, func(s *store) error {
				found, err := s.all()
				if err != nil {
					return err
				}
				sh = handles.addSearch(h, found)
				return nil
			})
			return sh, code
		},
		GetSearchTotalCount: func(h, sh plugged.Handle) (int, plugged.ErrorCode) {
			s, err := handles.search(h, sh)
			if err != nil {
				return 0, plugged.Code(err)
			}
			return s.total, plugged.Success
		},
		FetchSearchNextRecord: func(h, sh plugged.Handle) (plugged.Handle, plugged.ErrorCode) {
			s, err := handles.search(h, sh)
			if err != nil {
				return 0, plugged.Code(err)
			}
			r := s.next()
			if r == nil {
				return 0, plugged.ErrorCode(api.ItemNotFound)
			}
			return handles.addRecord(h, r), plugged.Success
		},
		FreeSearch: func(h, sh plugged.Handle) plugged.ErrorCode {
			return plugged.Code(handles.free(h, sh))
		},
	}
}
