package utils

import (
	"os"
	"os/user"
	"path/filepath"
)

// BaseDir returns the home directory of the current user.
func BaseDir() string {
	if v := os.Getenv("HOME"); v != "" {
		return v
	}
	currentUser, err := user.Current()
	if err != nil {
		panic(err)
	}
	return currentUser.HomeDir
}

// WalletHome returns the directory where file based wallets live when their
// storage config doesn't tell otherwise.
func WalletHome() string {
	if p := Settings.WalletHome(); p != "" {
		return p
	}
	return filepath.Join(BaseDir(), ".indy_client", "wallet")
}
