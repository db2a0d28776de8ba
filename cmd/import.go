package cmd

import (
	"log"

	"github.com/findy-network/findy-wallet/cmds/tools"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var importEnvs = map[string]string{
	"file": "WALLET_FILE",
	"key":  "WALLET_FILE_KEY",
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Command for importing wallet",
	Long: `
Command for importing wallet. A new wallet is created with the wallet name
and key, and the records of the file are added to it.

Example
	findy-wallet tools import \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--key walletImportKey \
		--file /path/to/my-import-wallet
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(withWalletEnvs(importEnvs), cmd.Name())
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return execute(impCmd)
	},
}

var impCmd = tools.ImportCmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	walletFlags(importCmd, &impCmd.Cmd, importCmd.Name())
	flags := importCmd.Flags()
	flags.StringVar(&impCmd.Filename, "file", "", flagInfo("full import file path", importCmd.Name(), importEnvs["file"]))
	flags.StringVar(&impCmd.Key, "key", "", flagInfo("wallet import key", importCmd.Name(), importEnvs["key"]))

	toolsCmd.AddCommand(importCmd)
}
