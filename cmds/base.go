package cmds

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/findy-network/findy-wallet/wallet"
	"github.com/lainio/err2/try"
	"github.com/mr-tron/base58"
)

const rawKeySize = 32

var ErrInvalid = errors.New("invalid command, check arguments")

// Cmd identifies the wallet the command works with.
type Cmd struct {
	WalletName  string `cmd_usage:"wallet name is required"`
	WalletKey   string `cmd_usage:"wallet key is required"`
	KeyMethod   string
	StorageType string
	StorageCfg  string
}

func (c Cmd) Validate() error {
	if c.WalletName == "" {
		return errors.New("wallet name cannot be empty")
	}
	if err := c.ValidateWalletKey(); err != nil {
		return err
	}
	if c.StorageCfg != "" && !json.Valid([]byte(c.StorageCfg)) {
		return errors.New("storage config must be JSON")
	}
	return nil
}

func (c Cmd) ValidateWalletKey() error {
	if strings.EqualFold(c.KeyMethod, "RAW") {
		return ValidateRawKey(c.WalletKey)
	}
	return ValidateKey(c.WalletKey, "wallet")
}

// Config returns the wallet config of the command.
func (c Cmd) Config() wallet.Config {
	cfg := wallet.Config{ID: c.WalletName, StorageType: c.StorageType}
	if c.StorageCfg != "" {
		cfg.StorageConfig = json.RawMessage(c.StorageCfg)
	}
	return cfg
}

// Credentials returns the wallet credentials of the command.
func (c Cmd) Credentials() wallet.Credentials {
	return wallet.Credentials{Key: c.WalletKey, KeyDerivationMethod: c.KeyMethod}
}

// Open opens the wallet, the returned func closes it.
func (c Cmd) Open(ctx context.Context) (h wallet.Handle, done func(), err error) {
	h, err = wallet.Open(ctx, c.Config(), c.Credentials())
	if err != nil {
		return 0, nil, err
	}
	return h, func() { _ = wallet.Close(h) }, nil
}

func ValidateKey(k, name string) error {
	if k == "" {
		return fmt.Errorf("%s key cannot be empty", name)
	}
	return nil
}

// ValidateRawKey checks that k is base58 of a 32 byte key.
func ValidateRawKey(k string) error {
	if k == "" {
		return errors.New("wallet key cannot be empty")
	}
	b, err := base58.Decode(k)
	if err != nil || len(b) != rawKeySize {
		return errors.New("wallet key is not valid")
	}
	return nil
}

func ValidateTags(s string) (tags map[string]string, err error) {
	if s == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("tags must be a JSON object of strings: %w", err)
	}
	return tags, nil
}

type Result interface {
	JSON() ([]byte, error)
}

type Command interface {
	Validate() error
	Exec(w io.Writer) (r Result, err error)
}

// Fprintln is fmt.Fprintln but it allows writer to be nil. Note! it throws an
// error.
func Fprintln(w io.Writer, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintln(w, a...))
	}
}

// Fprintf is fmt.Fprintf but it allows writer to be nil. Note! it throws an
// error.
func Fprintf(w io.Writer, format string, a ...any) {
	if w != nil {
		try.To1(fmt.Fprintf(w, format, a...))
	}
}

// ParseLoggingArgs parses the glog flags from the string like
// "-logtostderr=true -v=2".
func ParseLoggingArgs(s string) {
	args := make([]string, 1, 12)
	args[0] = os.Args[0]
	args = append(args, strings.Fields(s)...)
	orgArgs := os.Args
	os.Args = args
	flag.Parse()
	os.Args = orgArgs
}
