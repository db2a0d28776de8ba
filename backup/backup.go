// Package backup writes scheduled exports of the wallets which are open in
// the process. A Tracker learns the open wallets as a wallet.Observer and
// exports each of them to the backup path with the backup key of
// utils.Settings.
package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/findy-network/findy-wallet/utils"
	"github.com/findy-network/findy-wallet/wallet"
	"github.com/go-co-op/gocron"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// DateTimeInName adds the backup time in front of the wallet id in the
// backup file name.
var DateTimeInName = true

// Tracker keeps the open wallets for the backups.
type Tracker struct {
	sync.Mutex
	opened map[wallet.Handle]wallet.Config
	cron   *gocron.Scheduler
}

// Track returns a new Tracker which observes the wallets from now on.
func Track() *Tracker {
	t := &Tracker{opened: make(map[wallet.Handle]wallet.Config)}
	wallet.Observe(t)
	return t
}

func (t *Tracker) Opened(h wallet.Handle, cfg wallet.Config) {
	t.Lock()
	defer t.Unlock()
	t.opened[h] = cfg
}

func (t *Tracker) Closed(h wallet.Handle, _ wallet.Config) {
	t.Lock()
	defer t.Unlock()
	delete(t.opened, h)
}

func (t *Tracker) snapshot() map[wallet.Handle]wallet.Config {
	t.Lock()
	defer t.Unlock()
	m := make(map[wallet.Handle]wallet.Config, len(t.opened))
	for h, cfg := range t.opened {
		m[h] = cfg
	}
	return m
}

// ExportConfig returns the export config of the wallet backup.
func ExportConfig(id string) (cfg wallet.ExportConfig, err error) {
	path := utils.Settings.WalletBackupPath()
	key, method := utils.Settings.BackupKey()
	if path == "" || key == "" {
		return cfg, errors.New("backup path and key must be set")
	}
	return wallet.ExportConfig{
		Path:                filepath.Join(path, backupName(id)),
		Key:                 key,
		KeyDerivationMethod: method,
	}, nil
}

func backupName(id string) string {
	if !DateTimeInName {
		return id
	}
	name := time.Now().Format(time.RFC3339) + "_" + id
	glog.V(3).Infoln("backup name:", name)
	return name
}

// RunOnce exports every tracked wallet. A failed wallet doesn't stop the
// others, the first error is returned.
func (t *Tracker) RunOnce(ctx context.Context) (n int, err error) {
	for h, cfg := range t.snapshot() {
		if berr := backup(ctx, h, cfg); berr != nil {
			glog.Error("error in backup:", berr)
			if err == nil {
				err = berr
			}
			continue
		}
		glog.V(1).Infoln("successful wallet backup:", cfg.ID)
		n++
	}
	return n, err
}

func backup(ctx context.Context, h wallet.Handle, cfg wallet.Config) (err error) {
	defer err2.Handle(&err, "backup %s", cfg.ID)

	ec := try.To1(ExportConfig(cfg.ID))
	return wallet.Export(ctx, h, ec)
}

// ValidateTime checks the HH:MM or HH:MM:SS form of the daily backup time.
func ValidateTime(at string) error {
	if _, err := time.Parse("15:04", at); err == nil {
		return nil
	}
	if _, err := time.Parse("15:04:05", at); err == nil {
		return nil
	}
	return fmt.Errorf("backup time %q must be HH:MM or HH:MM:SS", at)
}

// Start schedules RunOnce to run daily at the time.
func (t *Tracker) Start(at string) (err error) {
	defer err2.Handle(&err, "start backups")

	try.To(ValidateTime(at))
	t.Lock()
	defer t.Unlock()
	if t.cron != nil {
		return errors.New("backups already started")
	}
	cron := gocron.NewScheduler(time.Now().Location())
	try.To1(cron.Every(1).Day().At(at).Do(func() {
		if _, err := t.RunOnce(context.Background()); err != nil {
			glog.Warningln("scheduled backup:", err)
		}
	}))
	cron.StartAsync()
	t.cron = cron
	glog.V(1).Infoln("wallet backup time:", at)
	return nil
}

// Stop stops the scheduled backups.
func (t *Tracker) Stop() {
	t.Lock()
	defer t.Unlock()
	if t.cron != nil {
		t.cron.Stop()
		t.cron = nil
	}
}
