package key

import (
	"io"

	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2"
)

// CreateCmd generates a RAW wallet key.
type CreateCmd struct {
	Seed string
}

func (c *CreateCmd) Validate() error {
	return nil
}

func (c *CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err)

	walletKey := wallet.GenerateKey(c.Seed)
	cmds.Fprintln(w, walletKey)
	return r, nil
}
