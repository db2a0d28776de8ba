// Package completionhelp gives the shell completion candidates of the CLI.
package completionhelp

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/findy-network/findy-wallet/utils"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// WalletLocations returns the directories of the file based wallets.
func WalletLocations() []string {
	return []string{utils.WalletHome()}
}

// WalletNames returns the names of the file based wallets in the wallet
// locations. Both the default and bolt wallets are listed.
func WalletNames() (names []string) {
	defer err2.Catch(err2.Err(func(err error) {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}))

	for _, dir := range WalletLocations() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		for _, e := range try.To1(os.ReadDir(dir)) {
			switch {
			case e.IsDir():
				names = append(names, e.Name())
			case filepath.Ext(e.Name()) == ".bolt":
				names = append(names, strings.TrimSuffix(e.Name(), ".bolt"))
			}
		}
	}
	sort.Strings(names)
	return names
}
