package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lainio/err2/assert"
	"github.com/mr-tron/base58"
)

func TestSealOpen(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	key := NewKey()
	ct, err := Seal(key, []byte("secret"))
	assert.NoError(err)
	assert.Equal(len(ct), NonceSize+len("secret")+TagSize)

	ct2, err := Seal(key, []byte("secret"))
	assert.NoError(err)
	assert.ThatNot(bytes.Equal(ct, ct2), "random nonce must differ")

	pt, err := Open(key, ct)
	assert.NoError(err)
	assert.Equal(string(pt), "secret")

	_, err = Open(NewKey(), ct)
	assert.That(errors.Is(err, ErrDecrypt))

	ct[len(ct)-1] ^= 0x01
	_, err = Open(key, ct)
	assert.That(errors.Is(err, ErrDecrypt))

	_, err = Open(key, ct[:5])
	assert.That(errors.Is(err, ErrDecrypt))

	_, err = Seal([]byte("short"), []byte("x"))
	assert.Error(err)
}

func TestSealSearchable(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	key, hmacKey := NewKey(), NewKey()
	a, err := SealSearchable(key, hmacKey, []byte("name"))
	assert.NoError(err)
	b, err := SealSearchable(key, hmacKey, []byte("name"))
	assert.NoError(err)
	assert.DeepEqual(a, b)
	assert.DeepEqual(a[:NonceSize], MAC(hmacKey, []byte("name"))[:NonceSize])

	c, err := SealSearchable(key, hmacKey, []byte("other"))
	assert.NoError(err)
	assert.ThatNot(bytes.Equal(a, c))

	d, err := SealSearchable(key, NewKey(), []byte("name"))
	assert.NoError(err)
	assert.ThatNot(bytes.Equal(a, d), "different hmac key gives different nonce")

	pt, err := Open(key, a)
	assert.NoError(err)
	assert.Equal(string(pt), "name")
}

func TestDeriveKey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	raw := base58.Encode(bytes.Repeat([]byte{7}, KeySize))
	k, err := DeriveKey(raw, nil, Raw)
	assert.NoError(err)
	assert.DeepEqual(k, bytes.Repeat([]byte{7}, KeySize))

	_, err = DeriveKey("not-base58-0OIl", nil, Raw)
	assert.That(errors.Is(err, ErrRawKey))
	_, err = DeriveKey(base58.Encode([]byte("short")), nil, Raw)
	assert.That(errors.Is(err, ErrRawKey))

	salt := Random(SaltSize)
	k1, err := DeriveKey("passphrase", salt, Argon2iInt)
	assert.NoError(err)
	assert.Equal(len(k1), KeySize)
	k2, err := DeriveKey("passphrase", salt, Argon2iInt)
	assert.NoError(err)
	assert.DeepEqual(k1, k2)

	k3, err := DeriveKey("passphrase", Random(SaltSize), Argon2iInt)
	assert.NoError(err)
	assert.ThatNot(bytes.Equal(k1, k3))

	_, err = DeriveKey("passphrase", []byte("short"), Argon2iInt)
	assert.Error(err)
	_, err = DeriveKey("passphrase", salt, Method(42))
	assert.That(errors.Is(err, ErrMethod))
}

func TestParseMethod(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	tests := []struct {
		in   string
		want Method
	}{
		{"", Argon2iMod},
		{"ARGON2I_MOD", Argon2iMod},
		{"argon2i_int", Argon2iInt},
		{"RAW", Raw},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			m, err := ParseMethod(tt.in)
			assert.NoError(err)
			assert.Equal(m, tt.want)
		})
	}
	_, err := ParseMethod("SCRYPT")
	assert.That(errors.Is(err, ErrMethod))
}

func TestGenerateKey(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	seeded := GenerateKey("00000000000000000000000000000My1")
	_, err := DeriveKey(seeded, nil, Raw)
	assert.NoError(err)
	assert.Equal(seeded, GenerateKey("00000000000000000000000000000My1"))
	assert.Equal(GenerateKey("short seed"), GenerateKey("short seed"))
	assert.That(GenerateKey("") != GenerateKey(""))
}
