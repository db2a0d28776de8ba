// Package wallet is the facade of the wallet engine. It binds a storage
// backend to the key hierarchy and the record codec, and keeps the process
// wide table of opened wallets. Handles are opaque integers which are valid
// until Close.
//
// Every operation can be called concurrently with the same handle. Writes
// are serialized by the backend, not by this package.
package wallet

import (
	"context"
	"errors"
	"sync"

	"github.com/findy-network/findy-wallet/codec"
	"github.com/findy-network/findy-wallet/crypto"
	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/keys"
	"github.com/findy-network/findy-wallet/storage"
	"github.com/findy-network/findy-wallet/storage/api"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Handle is an opened wallet.
type Handle int32

// Record is the plaintext wallet record.
type Record = codec.Record

type wallet struct {
	// operations hold the read lock, Close takes the write lock
	sync.RWMutex

	cfg    Config
	st     api.Storage
	keys   *keys.Keys
	codec  *codec.Codec
	closed bool

	searches searchTable
}

var wallets = struct {
	sync.RWMutex
	next Handle
	m    map[Handle]*wallet
	ids  map[string]bool
}{
	m:   make(map[Handle]*wallet),
	ids: make(map[string]bool),
}

// Observer gets notified when wallets are opened and closed. The calls are
// made outside of any wallet lock.
type Observer interface {
	Opened(h Handle, cfg Config)
	Closed(h Handle, cfg Config)
}

var observers struct {
	sync.RWMutex
	l []Observer
}

// Observe adds the observer for the rest of the process.
func Observe(o Observer) {
	observers.Lock()
	defer observers.Unlock()
	observers.l = append(observers.l, o)
}

func notify(fn func(o Observer)) {
	observers.RLock()
	l := observers.l
	observers.RUnlock()
	for _, o := range l {
		fn(o)
	}
}

// acquire returns the opened wallet read locked. release must be called.
func acquire(h Handle) (w *wallet, release func(), err error) {
	wallets.RLock()
	w, ok := wallets.m[h]
	wallets.RUnlock()
	if !ok {
		return nil, nil, errs.New(errs.InvalidHandle, "wallet handle %d", h)
	}
	w.RLock()
	if w.closed {
		w.RUnlock()
		return nil, nil, errs.New(errs.InvalidHandle, "wallet handle %d", h)
	}
	return w, w.RUnlock, nil
}

// reserve marks the wallet opened in the process before the storage is
// opened, so two opens of the same wallet can't race.
func reserve(cfg Config) error {
	wallets.Lock()
	defer wallets.Unlock()
	if wallets.ids[cfg.key()] {
		return errs.New(errs.AlreadyOpened, "%s", cfg.ID)
	}
	wallets.ids[cfg.key()] = true
	return nil
}

func unreserve(cfg Config) {
	wallets.Lock()
	defer wallets.Unlock()
	delete(wallets.ids, cfg.key())
}

func isOpen(cfg Config) bool {
	wallets.RLock()
	defer wallets.RUnlock()
	return wallets.ids[cfg.key()]
}

func register(w *wallet) Handle {
	wallets.Lock()
	defer wallets.Unlock()
	wallets.next++
	wallets.m[wallets.next] = w
	return wallets.next
}

// Create creates a new wallet: the content keys are generated and stored
// sealed with the master key derived from the credentials.
func Create(ctx context.Context, cfg Config, creds Credentials) (err error) {
	defer err2.Handle(&err, "wallet create")

	try.To(cfg.validate())
	m := try.To1(creds.method())
	st := try.To1(storage.Type(cfg.StorageType))

	k := keys.New()
	defer k.Zero()
	md, err := keys.NewMetadata(k, creds.Key, m)
	if err != nil {
		return errs.Wrap(errs.InputError, err)
	}
	mdBytes := try.To1(md.Marshal())

	try.To(errs.FromStorage(st.Create(ctx, cfg.ID, cfg.storageConfig(),
		creds.storageCredentials(), mdBytes)))
	glog.V(1).Infoln("wallet created:", cfg.ID, m)
	return nil
}

// unlock reads the metadata and opens the content keys. The derivation
// method is the stored one, the one of the credentials is ignored.
func unlock(ctx context.Context, st api.Storage, passphrase string) (_ *keys.Keys, md *keys.Metadata, err error) {
	mdBytes, err := st.GetMetadata(ctx)
	if err != nil {
		return nil, nil, errs.FromStorage(err)
	}
	md, err = keys.ParseMetadata(mdBytes)
	if err != nil {
		return nil, nil, errs.Wrap(errs.InvalidStructure, err)
	}
	k, err := md.Unlock(passphrase)
	switch {
	case errors.Is(err, keys.ErrAccess):
		return nil, nil, errs.New(errs.AccessFailed, "invalid key")
	case err != nil:
		return nil, nil, errs.Wrap(errs.InvalidStructure, err)
	}
	return k, md, nil
}

func openStorage(ctx context.Context, cfg Config, creds Credentials) (api.Storage, error) {
	st, err := storage.Type(cfg.StorageType)
	if err != nil {
		return nil, err
	}
	s, err := st.Open(ctx, cfg.ID, cfg.storageConfig(), creds.storageCredentials())
	return s, errs.FromStorage(err)
}

// Open opens the wallet and returns its handle. A wallet can be opened once
// in the process at the time. If the credentials have Rekey set, the wallet
// is rekeyed during the open.
func Open(ctx context.Context, cfg Config, creds Credentials) (h Handle, err error) {
	defer err2.Handle(&err, "wallet open")

	try.To(cfg.validate())
	m := try.To1(creds.method())
	if creds.Rekey != "" {
		try.To1(creds.rekeyMethod())
	}
	try.To(reserve(cfg))
	defer err2.Handle(&err, func() {
		unreserve(cfg)
	})

	s := try.To1(openStorage(ctx, cfg, creds))
	defer err2.Handle(&err, func() {
		s.Close()
	})
	k, md := try.To2(unlock(ctx, s, creds.Key))
	if md.Method != m {
		glog.V(3).Infoln("wallet", cfg.ID, "uses", md.Method, "not", m)
	}

	w := &wallet{
		cfg:   cfg,
		st:    s,
		keys:  k,
		codec: codec.New(k),
	}
	if creds.Rekey != "" {
		rm, _ := creds.rekeyMethod()
		if err := w.rekey(ctx, creds.Rekey, rm); err != nil {
			k.Zero()
			return 0, err
		}
	}
	h = register(w)
	glog.V(1).Infoln("wallet opened:", cfg.ID, h)
	notify(func(o Observer) { o.Opened(h, cfg) })
	return h, nil
}

// Close closes the wallet and its searches. The key material is zeroed.
func Close(h Handle) (err error) {
	wallets.Lock()
	w, ok := wallets.m[h]
	delete(wallets.m, h)
	wallets.Unlock()
	if !ok {
		return errs.New(errs.InvalidHandle, "wallet handle %d", h)
	}

	w.Lock()
	w.closed = true
	w.searches.closeAll()
	w.keys.Zero()
	err = errs.FromStorage(w.st.Close())
	w.Unlock()

	unreserve(w.cfg)
	glog.V(1).Infoln("wallet closed:", w.cfg.ID, h)
	notify(func(o Observer) { o.Closed(h, w.cfg) })
	return err
}

// Delete deletes the wallet. The credentials are verified first. An opened
// wallet cannot be deleted.
func Delete(ctx context.Context, cfg Config, creds Credentials) (err error) {
	defer err2.Handle(&err, "wallet delete")

	try.To(cfg.validate())
	if isOpen(cfg) {
		return errs.New(errs.InvalidState, "wallet %s is opened", cfg.ID)
	}
	s := try.To1(openStorage(ctx, cfg, creds))
	k, _, err := unlock(ctx, s, creds.Key)
	s.Close()
	try.To(err)
	k.Zero()

	try.To(remove(ctx, cfg, creds))
	glog.V(1).Infoln("wallet deleted:", cfg.ID)
	return nil
}

func remove(ctx context.Context, cfg Config, creds Credentials) error {
	st, err := storage.Type(cfg.StorageType)
	if err != nil {
		return err
	}
	return errs.FromStorage(st.Delete(ctx, cfg.ID, cfg.storageConfig(), creds.storageCredentials()))
}

func (w *wallet) rekey(ctx context.Context, passphrase string, m crypto.Method) error {
	md, err := keys.NewMetadata(w.keys, passphrase, m)
	if err != nil {
		return errs.Wrap(errs.InputError, err)
	}
	mdBytes, err := md.Marshal()
	if err != nil {
		return errs.Wrap(errs.EncodingError, err)
	}
	if err := errs.FromStorage(w.st.SetMetadata(ctx, mdBytes)); err != nil {
		return err
	}
	glog.V(1).Infoln("wallet rekeyed:", w.cfg.ID, m)
	return nil
}

// Rekey changes the wallet key. The records stay as they are, only the
// sealing of the content keys changes.
func Rekey(ctx context.Context, h Handle, key, method string) (err error) {
	defer err2.Handle(&err, "wallet rekey")

	m := try.To1(parseMethod(method))
	w, release := try.To2(acquire(h))
	defer release()

	return w.rekey(ctx, key, m)
}

// GenerateKey returns a base58 encoded key for the RAW derivation method.
// A seed makes the key deterministic.
func GenerateKey(seed string) string {
	return crypto.GenerateKey(seed)
}
