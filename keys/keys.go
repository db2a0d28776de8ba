// Package keys implements the key hierarchy of the wallet. A passphrase
// derived master key seals six random content keys, and the sealed blob is
// stored in the wallet metadata. Changing the passphrase reseals the same
// content keys, so records are never re-encrypted.
package keys

import (
	"errors"
	"fmt"

	"github.com/findy-network/findy-wallet/crypto"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const count = 6

// BlobSize is the size of the unsealed key blob.
const BlobSize = count * crypto.KeySize

var (
	// ErrAccess is returned when the passphrase doesn't open the keys.
	ErrAccess = errors.New("wrong passphrase or corrupted keys")

	// ErrMetadata is returned for metadata which cannot be decoded.
	ErrMetadata = errors.New("invalid wallet metadata")
)

// Keys are the content keys of the wallet.
type Keys struct {
	Type     []byte
	Name     []byte
	Value    []byte
	TagName  []byte
	TagValue []byte
	TagHMAC  []byte
}

// New returns a fresh set of random keys.
func New() *Keys {
	return &Keys{
		Type:     crypto.NewKey(),
		Name:     crypto.NewKey(),
		Value:    crypto.NewKey(),
		TagName:  crypto.NewKey(),
		TagValue: crypto.NewKey(),
		TagHMAC:  crypto.NewKey(),
	}
}

func (k *Keys) all() [][]byte {
	return [][]byte{k.Type, k.Name, k.Value, k.TagName, k.TagValue, k.TagHMAC}
}

// Bytes returns the fixed layout blob: the keys concatenated in declaration
// order.
func (k *Keys) Bytes() []byte {
	b := make([]byte, 0, BlobSize)
	for _, key := range k.all() {
		b = append(b, key...)
	}
	return b
}

// FromBytes is the inverse of Bytes. The keys are copied.
func FromBytes(b []byte) (*Keys, error) {
	if len(b) != BlobSize {
		return nil, fmt.Errorf("%w: key blob size %d", ErrMetadata, len(b))
	}
	key := func(i int) []byte {
		return append([]byte(nil), b[i*crypto.KeySize:(i+1)*crypto.KeySize]...)
	}
	return &Keys{
		Type:     key(0),
		Name:     key(1),
		Value:    key(2),
		TagName:  key(3),
		TagValue: key(4),
		TagHMAC:  key(5),
	}, nil
}

// Zero overwrites every key. The keys are unusable after this.
func (k *Keys) Zero() {
	if k == nil {
		return
	}
	for _, key := range k.all() {
		crypto.Zero(key)
	}
}

// Seal seals the key blob with the master key.
func (k *Keys) Seal(master []byte) (sealed []byte, err error) {
	defer err2.Handle(&err, "seal keys")

	blob := k.Bytes()
	defer crypto.Zero(blob)
	return crypto.Seal(master, blob)
}

// Open opens the sealed key blob with the master key.
func Open(sealed, master []byte) (*Keys, error) {
	blob, err := crypto.Open(master, sealed)
	if err != nil {
		return nil, ErrAccess
	}
	defer crypto.Zero(blob)
	return FromBytes(blob)
}

// Metadata is the persisted key material of the wallet. It is opaque to
// storage backends.
type Metadata struct {
	Method crypto.Method `cbor:"1,keyasint"`
	Salt   []byte        `cbor:"2,keyasint,omitempty"`
	Keys   []byte        `cbor:"3,keyasint"`
}

// NewMetadata seals the keys with a master key derived from the passphrase
// and a fresh salt.
func NewMetadata(k *Keys, passphrase string, m crypto.Method) (md *Metadata, err error) {
	defer err2.Handle(&err, "new metadata")

	md = &Metadata{Method: m}
	if m.NeedsSalt() {
		md.Salt = crypto.Random(crypto.SaltSize)
	}
	master := try.To1(crypto.DeriveKey(passphrase, md.Salt, m))
	defer crypto.Zero(master)

	md.Keys = try.To1(k.Seal(master))
	glog.V(5).Infoln("keys sealed with", m)
	return md, nil
}

// Unlock opens the keys with the passphrase using the stored derivation
// method.
func (md *Metadata) Unlock(passphrase string) (*Keys, error) {
	master, err := crypto.DeriveKey(passphrase, md.Salt, md.Method)
	if err != nil {
		if errors.Is(err, crypto.ErrMethod) {
			return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrAccess, err)
	}
	defer crypto.Zero(master)
	return Open(md.Keys, master)
}

// Marshal encodes the metadata for the backend.
func (md *Metadata) Marshal() ([]byte, error) {
	return cbor.Marshal(md)
}

// ParseMetadata decodes metadata read from the backend.
func ParseMetadata(b []byte) (*Metadata, error) {
	var md Metadata
	if err := cbor.Unmarshal(b, &md); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if !md.Method.Valid() || len(md.Keys) == 0 {
		return nil, ErrMetadata
	}
	return &md, nil
}
