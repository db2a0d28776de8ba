package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/argon2"
)

// Method is the key derivation method. The numeric values are persisted in
// wallet metadata and export archives.
type Method byte

const (
	// Argon2iMod is the RAISED cost profile, the default.
	Argon2iMod Method = 1 + iota
	// Argon2iInt is the INTERACTIVE cost profile.
	Argon2iInt
	// Raw means the passphrase is a base58 encoded 32 byte key.
	Raw
)

type argonCost struct {
	time   uint32
	memory uint32 // KiB
}

var costs = map[Method]argonCost{
	Argon2iMod: {time: 6, memory: 128 * 1024},
	Argon2iInt: {time: 4, memory: 32 * 1024},
}

var methodNames = map[Method]string{
	Argon2iMod: "ARGON2I_MOD",
	Argon2iInt: "ARGON2I_INT",
	Raw:        "RAW",
}

// ErrMethod is returned for unknown derivation methods.
var ErrMethod = errors.New("unknown key derivation method")

// ErrRawKey is returned when a RAW passphrase isn't a base58 encoded 32 byte
// key.
var ErrRawKey = errors.New("raw key must be base58 of 32 bytes")

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("METHOD(%d)", byte(m))
}

// Valid tells if m is a known method.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// NeedsSalt tells if the derivation uses the salt.
func (m Method) NeedsSalt() bool {
	return m != Raw
}

// ParseMethod parses the method name. An empty name is Argon2iMod.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return Argon2iMod, nil
	}
	for m, name := range methodNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrMethod, s)
}

// DeriveKey derives the 32 byte master key from the passphrase.
func DeriveKey(passphrase string, salt []byte, m Method) ([]byte, error) {
	switch m {
	case Raw:
		k, err := base58.Decode(passphrase)
		if err != nil || len(k) != KeySize {
			return nil, ErrRawKey
		}
		return k, nil
	case Argon2iMod, Argon2iInt:
		if len(salt) != SaltSize {
			return nil, fmt.Errorf("salt size %d", len(salt))
		}
		c := costs[m]
		return argon2.Key([]byte(passphrase), salt, c.time, c.memory, 1, KeySize), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrMethod, byte(m))
}

// GenerateKey returns a base58 encoded 32 byte key usable with the RAW
// method. A non-empty seed gives a deterministic key: the seed is used as is
// when it's 32 bytes long and hashed otherwise.
func GenerateKey(seed string) string {
	var k []byte
	switch {
	case seed == "":
		k = NewKey()
	case len(seed) == KeySize:
		k = []byte(seed)
	default:
		k = MAC([]byte("wallet key seed"), []byte(seed))
	}
	return base58.Encode(k)
}
