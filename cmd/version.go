package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/findy-network/findy-wallet/storage"
	"github.com/findy-network/findy-wallet/utils"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var versionDoc = `
Prints the version, the Go version of the build and the storage types which
can be used in --storage-type.
`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version and build information of the CLI tool",
	Long:  versionDoc,
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		defer err2.Handle(&err)

		try.To1(fmt.Println("findy-wallet", utils.Version))
		try.To1(fmt.Println("go:", runtime.Version()))
		try.To1(fmt.Println("storages:", strings.Join(storage.Names(), ", ")))
		return nil
	},
}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		fmt.Println(err)
	}))

	rootCmd.AddCommand(versionCmd)
}
