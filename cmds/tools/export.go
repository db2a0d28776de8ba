// Package tools has the wallet export and import commands.
package tools

import (
	"context"
	"errors"
	"io"

	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type ExportCmd struct {
	cmds.Cmd

	Filename     string
	ExportKey    string
	ExportMethod string
}

func (c ExportCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Filename == "" {
		return errors.New("export path cannot be empty")
	}
	return cmds.ValidateKey(c.ExportKey, "export")
}

func (c ExportCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "export wallet cmd")

	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	try.To(wallet.Export(ctx, h, wallet.ExportConfig{
		Path:                c.Filename,
		Key:                 c.ExportKey,
		KeyDerivationMethod: c.ExportMethod,
	}))

	cmds.Fprintln(w, "wallet exported:", c.Filename)
	return r, nil
}
