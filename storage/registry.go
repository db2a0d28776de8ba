// Package storage is the process wide registry of storage backends. The
// built in backends are registered at start: the file backend as "default"
// and the relational backend as "postgres". Plugins register more.
package storage

import (
	"sort"
	"sync"

	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/findy-network/findy-wallet/storage/postgres"
	"github.com/findy-network/findy-wallet/storage/sqlite"
	"github.com/golang/glog"
)

// DefaultType is used when the wallet config doesn't name a storage type.
const DefaultType = sqlite.TypeName

var types = struct {
	sync.RWMutex
	m map[string]api.StorageType
}{m: map[string]api.StorageType{
	sqlite.TypeName:   sqlite.New(),
	postgres.TypeName: postgres.New(),
}}

// Register adds the storage type by name. Names are unique for the life of
// the process.
func Register(name string, t api.StorageType) error {
	if name == "" || t == nil {
		return errs.New(errs.InputError, "storage type name and implementation needed")
	}
	types.Lock()
	defer types.Unlock()

	if _, ok := types.m[name]; ok {
		return errs.New(errs.TypeAlreadyRegistered, "%s", name)
	}
	types.m[name] = t
	glog.V(1).Infoln("storage type registered:", name)
	return nil
}

// Type returns the registered storage type. An empty name means DefaultType.
func Type(name string) (api.StorageType, error) {
	if name == "" {
		name = DefaultType
	}
	types.RLock()
	defer types.RUnlock()

	t, ok := types.m[name]
	if !ok {
		return nil, errs.New(errs.UnknownType, "%s", name)
	}
	return t, nil
}

// Names returns the registered type names in order.
func Names() []string {
	types.RLock()
	defer types.RUnlock()

	names := make([]string, 0, len(types.m))
	for n := range types.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
