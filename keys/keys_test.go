package keys

import (
	"errors"
	"testing"

	"github.com/findy-network/findy-wallet/crypto"
	"github.com/lainio/err2/assert"
)

func TestKeys_Bytes(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	k := New()
	b := k.Bytes()
	assert.Equal(len(b), BlobSize)
	assert.DeepEqual(b[:crypto.KeySize], k.Type)
	assert.DeepEqual(b[5*crypto.KeySize:], k.TagHMAC)

	k2, err := FromBytes(b)
	assert.NoError(err)
	assert.DeepEqual(k2, k)

	_, err = FromBytes(b[1:])
	assert.That(errors.Is(err, ErrMetadata))
}

func TestKeys_Zero(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	k := New()
	k.Zero()
	for _, key := range k.all() {
		assert.DeepEqual(key, make([]byte, crypto.KeySize))
	}
	var nilKeys *Keys
	nilKeys.Zero()
}

func TestMetadata_Unlock(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	tests := []struct {
		name   string
		pass   string
		method crypto.Method
	}{
		{"raw", crypto.GenerateKey(""), crypto.Raw},
		{"interactive", "my passphrase", crypto.Argon2iInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			k := New()
			md, err := NewMetadata(k, tt.pass, tt.method)
			assert.NoError(err)
			assert.Equal(len(md.Salt) > 0, tt.method.NeedsSalt())

			b, err := md.Marshal()
			assert.NoError(err)
			md2, err := ParseMetadata(b)
			assert.NoError(err)

			opened, err := md2.Unlock(tt.pass)
			assert.NoError(err)
			assert.DeepEqual(opened, k)

			wrong := "other passphrase"
			if tt.method == crypto.Raw {
				wrong = crypto.GenerateKey("")
			}
			_, err = md2.Unlock(wrong)
			assert.That(errors.Is(err, ErrAccess))
		})
	}
}

func TestMetadata_rekeyKeepsKeys(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	k := New()
	old, err := NewMetadata(k, crypto.GenerateKey("seed-1"), crypto.Raw)
	assert.NoError(err)
	opened, err := old.Unlock(crypto.GenerateKey("seed-1"))
	assert.NoError(err)

	md, err := NewMetadata(opened, "new passphrase", crypto.Argon2iInt)
	assert.NoError(err)
	again, err := md.Unlock("new passphrase")
	assert.NoError(err)
	assert.DeepEqual(again, k)

	_, err = md.Unlock(crypto.GenerateKey("seed-1"))
	assert.That(errors.Is(err, ErrAccess))
}

func TestParseMetadata_invalid(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	_, err := ParseMetadata([]byte("garbage"))
	assert.That(errors.Is(err, ErrMetadata))

	b, err := (&Metadata{Method: 9, Keys: []byte{1}}).Marshal()
	assert.NoError(err)
	_, err = ParseMetadata(b)
	assert.That(errors.Is(err, ErrMetadata))
}
