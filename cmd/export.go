package cmd

import (
	"log"

	"github.com/findy-network/findy-wallet/cmds/tools"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var exportEnvs = map[string]string{
	"file":          "WALLET_FILE",
	"key":           "WALLET_FILE_KEY",
	"export-method": "WALLET_FILE_KEY_METHOD",
}

// exportCmd represents the export subcommand
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Command for exporting wallet",
	Long: `
Command for exporting wallet to an encrypted file. The file must not exist.

Example
	findy-wallet tools export \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--key walletExportKey \
		--file path/to/my-export-wallet
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(withWalletEnvs(exportEnvs), cmd.Name())
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return execute(expCmd)
	},
}

var expCmd = tools.ExportCmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	walletFlags(exportCmd, &expCmd.Cmd, exportCmd.Name())
	flags := exportCmd.Flags()
	flags.StringVar(&expCmd.Filename, "file", "", flagInfo("full export file path", exportCmd.Name(), exportEnvs["file"]))
	flags.StringVar(&expCmd.ExportKey, "key", "", flagInfo("wallet export key", exportCmd.Name(), exportEnvs["key"]))
	flags.StringVar(&expCmd.ExportMethod, "export-method", "ARGON2I_MOD", flagInfo("export key derivation method", exportCmd.Name(), exportEnvs["export-method"]))

	toolsCmd.AddCommand(exportCmd)
}
