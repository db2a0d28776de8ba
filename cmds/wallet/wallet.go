// Package wallet has the commands which create, delete and rekey wallets.
package wallet

import (
	"context"
	"errors"
	"io"

	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type CreateCmd struct {
	cmds.Cmd
}

func (c CreateCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "create wallet cmd")

	try.To(wallet.Create(context.Background(), c.Config(), c.Credentials()))
	cmds.Fprintln(w, "wallet created:", c.WalletName)
	return r, nil
}

type DeleteCmd struct {
	cmds.Cmd
}

func (c DeleteCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "delete wallet cmd")

	try.To(wallet.Delete(context.Background(), c.Config(), c.Credentials()))
	cmds.Fprintln(w, "wallet deleted:", c.WalletName)
	return r, nil
}

type RekeyCmd struct {
	cmds.Cmd
	NewKey    string
	NewMethod string
}

func (c RekeyCmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	next := cmds.Cmd{WalletName: c.WalletName, WalletKey: c.NewKey, KeyMethod: c.NewMethod}
	if err := next.ValidateWalletKey(); err != nil {
		return err
	}
	if c.NewKey == c.WalletKey {
		return errors.New("new key is the same as the old one")
	}
	return nil
}

func (c RekeyCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "rekey wallet cmd")

	ctx := context.Background()
	h, done := try.To2(c.Open(ctx))
	defer done()

	try.To(wallet.Rekey(ctx, h, c.NewKey, c.NewMethod))
	cmds.Fprintln(w, "wallet rekeyed:", c.WalletName)
	return r, nil
}
