package storage

import (
	"testing"

	"github.com/findy-network/findy-wallet/errs"
	"github.com/findy-network/findy-wallet/storage/sqlite"
	"github.com/lainio/err2/assert"
)

func TestRegister(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	st, err := Type("")
	assert.NoError(err)
	assert.INotNil(st)

	_, err = Type("registry_test")
	assert.That(errs.Is(err, errs.UnknownType))

	assert.NoError(Register("registry_test", sqlite.New()))
	err = Register("registry_test", sqlite.New())
	assert.That(errs.Is(err, errs.TypeAlreadyRegistered))
	err = Register(DefaultType, sqlite.New())
	assert.That(errs.Is(err, errs.TypeAlreadyRegistered))

	_, err = Type("registry_test")
	assert.NoError(err)
	assert.Equal(len(Names()), 3)

	assert.That(errs.Is(Register("", sqlite.New()), errs.InputError))
}
