package wallet

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/findy-network/findy-wallet/archive"
	"github.com/findy-network/findy-wallet/errs"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// Export writes all the records of the wallet to a new archive file sealed
// with the export key. An existing file is never overwritten and a failed
// export leaves no file behind.
func Export(ctx context.Context, h Handle, cfg ExportConfig) (err error) {
	defer err2.Handle(&err, "wallet export")

	if cfg.Path == "" || cfg.Key == "" {
		return errs.New(errs.InputError, "export needs path and key")
	}
	m := try.To1(parseMethod(cfg.KeyDerivationMethod))

	w, release := try.To2(acquire(h))
	defer release()

	f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return errs.Wrap(errs.IOError, err, "export file")
	}
	defer err2.Handle(&err, func() {
		os.Remove(cfg.Path)
	})
	defer f.Close()

	bw := bufio.NewWriter(f)
	aw := try.To1(archive.NewWriter(bw, w.cfg.ID, cfg.Key, m))

	it, err := w.st.GetAll(ctx)
	if err != nil {
		return errs.FromStorage(err)
	}
	defer it.Close()

	n := 0
	for {
		r, err := it.Next(ctx)
		if err != nil {
			return errs.FromStorage(err)
		}
		if r == nil {
			break
		}
		rec := try.To1(w.codec.DecryptRecord(r, ""))
		try.To(aw.Write(rec))
		n++
	}
	try.To(aw.Close())
	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.IOError, err)
	}
	if err := f.Sync(); err != nil {
		return errs.Wrap(errs.IOError, err)
	}
	glog.V(1).Infoln("wallet", w.cfg.ID, "exported", n, "records to", cfg.Path)
	return nil
}

// Import creates a new wallet from the archive. The new wallet has the
// given config and credentials, nothing is left of it if the import fails.
func Import(ctx context.Context, cfg Config, creds Credentials, icfg ImportConfig) (err error) {
	defer err2.Handle(&err, "wallet import")

	if icfg.Path == "" || icfg.Key == "" {
		return errs.New(errs.InputError, "import needs path and key")
	}
	try.To(cfg.validate())
	creds.Rekey = ""

	f, err := os.Open(icfg.Path)
	if err != nil {
		return errs.Wrap(errs.IOError, err)
	}
	defer f.Close()
	ar := try.To1(archive.NewReader(bufio.NewReader(f), icfg.Key))
	glog.V(3).Infoln("importing", ar.Header.Name, "exported", ar.Header.Created)

	try.To(Create(ctx, cfg, creds))
	defer err2.Handle(&err, func() {
		if rerr := remove(ctx, cfg, creds); rerr != nil {
			glog.Warningln("removing failed import:", rerr)
		}
	})

	h := try.To1(Open(ctx, cfg, creds))
	defer func() {
		if cerr := Close(h); cerr != nil && err == nil {
			err = cerr
		}
	}()

	n := 0
	for {
		rec, err := ar.Next()
		if err == io.EOF {
			break
		}
		try.To(err)
		try.To(System.AddRecord(ctx, h, rec.Type, rec.ID, rec.Value, rec.Tags))
		n++
	}
	glog.V(1).Infoln("wallet", cfg.ID, "imported", n, "records")
	return nil
}
