package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type ImportCmd struct {
	cmds.Cmd
	Filename string
	Key      string
}

func (c ImportCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Filename == "" {
		return errors.New("import path cannot be empty")
	}
	if err := cmds.ValidateKey(c.Key, "import"); err != nil {
		return err
	}
	_, err := os.Stat(c.Filename)
	if os.IsNotExist(err) {
		return fmt.Errorf("file: %v not exist", c.Filename)
	}
	return nil
}

func (c ImportCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "import wallet cmd")

	try.To(wallet.Import(context.Background(), c.Config(), c.Credentials(),
		wallet.ImportConfig{Path: c.Filename, Key: c.Key}))

	cmds.Fprintf(w, "wallet %s imported from file %s\n", c.WalletName,
		c.Filename)
	return r, nil
}
