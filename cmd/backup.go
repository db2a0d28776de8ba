package cmd

import (
	"log"

	"github.com/findy-network/findy-wallet/cmds/backup"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var backupEnvs = map[string]string{
	"path":          "PATH",
	"key":           "KEY",
	"backup-method": "KEY_METHOD",
	"time":          "TIME",
}

// backupCmd represents the backup subcommand
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Command for wallet backups",
	Long: `
Command for wallet backups. Without --time the wallet is backed up once,
with it daily at the time until the command is stopped.

Example
	findy-wallet tools backup \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--path /var/backups/wallets \
		--key backupKey \
		--time 04:30
	`,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		return BindEnvs(withWalletEnvs(backupEnvs), cmd.Name())
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return execute(bkCmd)
	},
}

var bkCmd = backup.Cmd{}

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	walletFlags(backupCmd, &bkCmd.Cmd, backupCmd.Name())
	flags := backupCmd.Flags()
	flags.StringVar(&bkCmd.Path, "path", "", flagInfo("backup directory", backupCmd.Name(), backupEnvs["path"]))
	flags.StringVar(&bkCmd.Key, "key", "", flagInfo("backup export key", backupCmd.Name(), backupEnvs["key"]))
	flags.StringVar(&bkCmd.Method, "backup-method", "ARGON2I_MOD", flagInfo("backup key derivation method", backupCmd.Name(), backupEnvs["backup-method"]))
	flags.StringVar(&bkCmd.At, "time", "", flagInfo("daily backup time HH:MM", backupCmd.Name(), backupEnvs["time"]))

	toolsCmd.AddCommand(backupCmd)
}
