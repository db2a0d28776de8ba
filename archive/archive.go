// Package archive is the wallet export format. An archive is a plaintext
// header followed by sealed chunks, one per record, and a terminal chunk
// which authenticates everything before it:
//
//	header:   "FWEX" | version | salt(16) | method | nonce prefix(12) |
//	          u16 name length | name | i64 unix time
//	chunk:    kind | u32 length | sealed
//
// Chunks are sealed with XChaCha20-Poly1305 under a key derived from the
// export passphrase. The nonce of a chunk is the nonce prefix, the u64
// chunk index and the u32 chunk kind. The terminal chunk has an empty
// plaintext and the SHA-256 of all preceding bytes as associated data.
// Integers are big endian.
package archive

import (
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"hash"
	"io"
	"time"

	"github.com/findy-network/findy-wallet/codec"
	"github.com/findy-network/findy-wallet/crypto"
	"github.com/findy-network/findy-wallet/errs"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	Magic   = "FWEX"
	Version = 1

	prefixSize = 12
	maxChunk   = 64 << 20
)

const (
	kindRecord byte = iota
	kindEnd
)

// Header is the plaintext start of the archive.
type Header struct {
	Version     byte
	Salt        []byte
	Method      crypto.Method
	NoncePrefix []byte
	Name        string
	Created     time.Time
}

func (h *Header) marshal() []byte {
	b := make([]byte, 0, 64+len(h.Name))
	b = append(b, Magic...)
	b = append(b, h.Version)
	b = append(b, h.Salt...)
	b = append(b, byte(h.Method))
	b = append(b, h.NoncePrefix...)
	b = binary.BigEndian.AppendUint16(b, uint16(len(h.Name)))
	b = append(b, h.Name...)
	return binary.BigEndian.AppendUint64(b, uint64(h.Created.Unix()))
}

func nonce(prefix []byte, index uint64, kind byte) []byte {
	n := make([]byte, 0, chacha20poly1305.NonceSizeX)
	n = append(n, prefix...)
	n = binary.BigEndian.AppendUint64(n, index)
	return binary.BigEndian.AppendUint32(n, uint32(kind))
}

func structureErr(format string, a ...any) error {
	return errs.New(errs.InvalidStructure, append([]any{"archive: " + format}, a...)...)
}

// Writer writes records to an archive. Close must be called to write the
// terminal chunk, without it the archive does not import.
type Writer struct {
	w      io.Writer
	aead   cipher.AEAD
	digest hash.Hash
	prefix []byte
	index  uint64
	closed bool
}

// NewWriter writes the header and returns the Writer. name is the wallet id
// stored in the header.
func NewWriter(w io.Writer, name, passphrase string, m crypto.Method) (_ *Writer, err error) {
	defer err2.Handle(&err, "archive writer")

	if len(name) > 0xffff {
		return nil, errs.New(errs.InputError, "wallet name too long")
	}
	h := &Header{
		Version:     Version,
		Salt:        crypto.Random(crypto.SaltSize),
		Method:      m,
		NoncePrefix: crypto.Random(prefixSize),
		Name:        name,
		Created:     time.Now(),
	}
	key, err := crypto.DeriveKey(passphrase, h.Salt, m)
	if err != nil {
		return nil, errs.Wrap(errs.InputError, err, "export key")
	}
	defer crypto.Zero(key)
	aead := try.To1(chacha20poly1305.NewX(key))

	wr := &Writer{
		w:      w,
		aead:   aead,
		digest: sha256.New(),
		prefix: h.NoncePrefix,
	}
	try.To(wr.write(h.marshal()))
	glog.V(3).Infoln("archive header written:", name, m)
	return wr, nil
}

func (w *Writer) write(b []byte) error {
	w.digest.Write(b)
	if _, err := w.w.Write(b); err != nil {
		return errs.Wrap(errs.IOError, err)
	}
	return nil
}

func (w *Writer) chunk(kind byte, pt, ad []byte) error {
	sealed := w.aead.Seal(nil, nonce(w.prefix, w.index, kind), pt, ad)
	w.index++
	hdr := []byte{kind}
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(len(sealed)))
	if err := w.write(hdr); err != nil {
		return err
	}
	return w.write(sealed)
}

// Write adds the record to the archive.
func (w *Writer) Write(r *codec.Record) error {
	if w.closed {
		return errs.New(errs.InvalidState, "archive closed")
	}
	pt, err := cbor.Marshal(r)
	if err != nil {
		return errs.Wrap(errs.EncodingError, err)
	}
	defer crypto.Zero(pt)
	return w.chunk(kindRecord, pt, nil)
}

// Close writes the terminal chunk. It doesn't close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	ad := w.digest.Sum(nil)
	glog.V(3).Infoln("archive records written:", w.index)
	return w.chunk(kindEnd, nil, ad)
}

// Reader reads records from an archive.
type Reader struct {
	Header Header

	r      io.Reader
	aead   cipher.AEAD
	digest hash.Hash
	index  uint64
	done   bool
}

func (r *Reader) read(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, structureErr("truncated")
		}
		return nil, errs.Wrap(errs.IOError, err)
	}
	r.digest.Write(b)
	return b, nil
}

// NewReader reads the header and derives the key from the passphrase with
// the method and salt of the header. A wrong passphrase is noticed at the
// first chunk.
func NewReader(rd io.Reader, passphrase string) (_ *Reader, err error) {
	defer err2.Handle(&err, "archive reader")

	r := &Reader{r: rd, digest: sha256.New()}
	start := try.To1(r.read(len(Magic) + 1 + crypto.SaltSize + 1 + prefixSize + 2))
	if string(start[:len(Magic)]) != Magic {
		return nil, structureErr("not a wallet archive")
	}
	p := start[len(Magic):]
	h := &r.Header
	h.Version, p = p[0], p[1:]
	if h.Version != Version {
		return nil, structureErr("version %d not supported", h.Version)
	}
	h.Salt, p = p[:crypto.SaltSize], p[crypto.SaltSize:]
	h.Method, p = crypto.Method(p[0]), p[1:]
	h.NoncePrefix, p = p[:prefixSize], p[prefixSize:]
	if !h.Method.Valid() {
		return nil, structureErr("key derivation method %d", byte(h.Method))
	}
	nameLen := int(binary.BigEndian.Uint16(p))
	rest := try.To1(r.read(nameLen + 8))
	h.Name = string(rest[:nameLen])
	h.Created = time.Unix(int64(binary.BigEndian.Uint64(rest[nameLen:])), 0)

	key, err := crypto.DeriveKey(passphrase, h.Salt, h.Method)
	if err != nil {
		return nil, errs.Wrap(errs.InputError, err, "import key")
	}
	defer crypto.Zero(key)
	r.aead = try.To1(chacha20poly1305.NewX(key))
	glog.V(3).Infoln("archive header read:", h.Name, h.Method, h.Created)
	return r, nil
}

// Next returns the next record. io.EOF is returned after the terminal chunk
// has been verified.
func (r *Reader) Next() (_ *codec.Record, err error) {
	if r.done {
		return nil, io.EOF
	}
	ad := r.digest.Sum(nil)
	hdr, err := r.read(5)
	if err != nil {
		return nil, err
	}
	kind := hdr[0]
	n := binary.BigEndian.Uint32(hdr[1:])
	if n > maxChunk {
		return nil, structureErr("chunk size %d", n)
	}
	sealed, err := r.read(int(n))
	if err != nil {
		return nil, err
	}

	switch kind {
	case kindRecord:
		ad = nil
	case kindEnd:
	default:
		return nil, structureErr("chunk kind %d", kind)
	}
	pt, err := r.aead.Open(nil, nonce(r.Header.NoncePrefix, r.index, kind), sealed, ad)
	if err != nil {
		return nil, errs.New(errs.EncryptionError, "archive chunk %d", r.index)
	}
	r.index++
	if kind == kindEnd {
		r.done = true
		if len(pt) != 0 {
			return nil, structureErr("terminal chunk not empty")
		}
		return nil, io.EOF
	}

	var rec codec.Record
	if err := cbor.Unmarshal(pt, &rec); err != nil {
		return nil, errs.Wrap(errs.EncodingError, err, "archive record")
	}
	return &rec, nil
}
