// Package api is the contract between the wallet and its storage backends.
// Backends see only ciphertexts: encrypted types, ids, values and tags. The
// wallet never passes plaintext to a backend except the names and values of
// plaintext tags.
package api

import "context"

// EncryptedValue is the at-rest record value: Data is sealed with a per
// record key and Key is that record key sealed with the wallet value key.
type EncryptedValue struct {
	Data []byte
	Key  []byte
}

// Bytes returns the single byte form Key || Data used by backends storing one
// column only. The sealed key has a fixed length.
func (v *EncryptedValue) Bytes() []byte {
	b := make([]byte, 0, len(v.Key)+len(v.Data))
	b = append(b, v.Key...)
	return append(b, v.Data...)
}

// SealedKeyLen is the length of the sealed record key: nonce, key and tag.
const SealedKeyLen = 12 + 32 + 16

// ValueFromBytes splits the single byte form produced by Bytes.
func ValueFromBytes(b []byte) (*EncryptedValue, error) {
	if len(b) < SealedKeyLen {
		return nil, Errorf(BackendError, "stored value too short: %d", len(b))
	}
	return &EncryptedValue{Key: b[:SealedKeyLen], Data: b[SealedKeyLen:]}, nil
}

// TagName identifies a tag: Plain names are stored as is, encrypted names
// are deterministic ciphertexts.
type TagName struct {
	Plain bool
	Name  []byte
}

// Tag is the at-rest tag. Value is the plaintext for Plain tags and a
// deterministic ciphertext otherwise.
type Tag struct {
	TagName
	Value []byte
}

// Record is the at-rest record. Type, Value and Tags are nil when they were
// not requested.
type Record struct {
	Type  []byte
	ID    []byte
	Value *EncryptedValue
	Tags  []Tag
}

// RecordOptions selects what Get returns. ID is always returned.
type RecordOptions struct {
	RetrieveType  bool
	RetrieveValue bool
	RetrieveTags  bool
}

// SearchOptions selects what a search returns.
type SearchOptions struct {
	RetrieveRecords    bool
	RetrieveTotalCount bool
	RetrieveType       bool
	RetrieveValue      bool
	RetrieveTags       bool
}

// RecordOptions returns the per record part of the search options.
func (o SearchOptions) RecordOptions() RecordOptions {
	return RecordOptions{
		RetrieveType:  o.RetrieveType,
		RetrieveValue: o.RetrieveValue,
		RetrieveTags:  o.RetrieveTags,
	}
}

// Iterator is a backend cursor. Next returns nil record at the end.
type Iterator interface {
	Next(ctx context.Context) (*Record, error)
	TotalCount() (count int, ok bool)
	Close() error
}

// StorageType is a backend kind registered by name. id is the wallet id,
// config and credentials are backend specific JSON strings which may be
// empty.
type StorageType interface {
	Create(ctx context.Context, id, config, credentials string, metadata []byte) error
	Open(ctx context.Context, id, config, credentials string) (Storage, error)
	Delete(ctx context.Context, id, config, credentials string) error
}

// Storage is an opened wallet store. Implementations must be safe for
// concurrent use.
type Storage interface {
	Get(ctx context.Context, typ, id []byte, opts RecordOptions) (*Record, error)
	Add(ctx context.Context, typ, id []byte, value *EncryptedValue, tags []Tag) error
	Update(ctx context.Context, typ, id []byte, value *EncryptedValue) error
	AddTags(ctx context.Context, typ, id []byte, tags []Tag) error
	UpdateTags(ctx context.Context, typ, id []byte, tags []Tag) error
	DeleteTags(ctx context.Context, typ, id []byte, names []TagName) error
	Delete(ctx context.Context, typ, id []byte) error
	GetMetadata(ctx context.Context) ([]byte, error)
	SetMetadata(ctx context.Context, metadata []byte) error
	Search(ctx context.Context, typ []byte, query *Operator, opts SearchOptions) (Iterator, error)
	GetAll(ctx context.Context) (Iterator, error)
	Close() error
}

// SliceIterator iterates over records already in memory.
type SliceIterator struct {
	Records []Record
	Total   *int
	pos     int
}

func (it *SliceIterator) Next(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, Wrap(IOError, err)
	}
	if it.pos >= len(it.Records) {
		return nil, nil
	}
	r := &it.Records[it.pos]
	it.pos++
	return r, nil
}

func (it *SliceIterator) TotalCount() (int, bool) {
	if it.Total == nil {
		return 0, false
	}
	return *it.Total, true
}

func (it *SliceIterator) Close() error {
	it.Records = nil
	return nil
}
