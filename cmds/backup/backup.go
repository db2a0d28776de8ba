// Package backup has the command which backs up a wallet to the backup path,
// once or daily while the command runs.
package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/findy-network/findy-wallet/backup"
	"github.com/findy-network/findy-wallet/cmds"
	"github.com/findy-network/findy-wallet/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	cmds.Cmd

	Path   string
	Key    string
	Method string
	At     string // daily time, empty runs once
}

func (c Cmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if c.Path == "" {
		return errors.New("backup path cannot be empty")
	}
	if err := cmds.ValidateKey(c.Key, "backup"); err != nil {
		return err
	}
	if c.At != "" {
		return backup.ValidateTime(c.At)
	}
	return nil
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "backup cmd")

	utils.Settings.SetWalletBackupPath(c.Path)
	utils.Settings.SetBackupKey(c.Key, c.Method)
	tracker := backup.Track()

	ctx := context.Background()
	_, done := try.To2(c.Open(ctx))
	defer done()

	if c.At == "" {
		n := try.To1(tracker.RunOnce(ctx))
		cmds.Fprintln(w, "wallets backed up:", n)
		return r, nil
	}

	try.To(tracker.Start(c.At))
	defer tracker.Stop()
	cmds.Fprintln(w, "backing up", c.WalletName, "daily at", c.At)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	glog.V(1).Infoln("backups stopped")
	return r, nil
}
