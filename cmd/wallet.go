package cmd

import (
	"log"

	"github.com/findy-network/findy-wallet/cmds"
	walletcmd "github.com/findy-network/findy-wallet/cmds/wallet"
	"github.com/findy-network/findy-wallet/completionhelp"
	"github.com/findy-network/findy-wallet/storage"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
)

var walletEnvs = map[string]string{
	"wallet-name":    "WALLET_NAME",
	"wallet-key":     "WALLET_KEY",
	"key-method":     "KEY_METHOD",
	"storage-type":   "STORAGE_TYPE",
	"storage-config": "STORAGE_CONFIG",
}

// walletFlags adds the flags which identify the wallet of the command.
func walletFlags(cmd *cobra.Command, c *cmds.Cmd, prefix string) {
	flags := cmd.Flags()
	flags.StringVar(&c.WalletName, "wallet-name", "", flagInfo("wallet name", prefix, walletEnvs["wallet-name"]))
	flags.StringVar(&c.WalletKey, "wallet-key", "", flagInfo("wallet key", prefix, walletEnvs["wallet-key"]))
	flags.StringVar(&c.KeyMethod, "key-method", "RAW", flagInfo("wallet key derivation method: RAW, ARGON2I_MOD or ARGON2I_INT", prefix, walletEnvs["key-method"]))
	flags.StringVar(&c.StorageType, "storage-type", "", flagInfo("storage type, default is the file storage", prefix, walletEnvs["storage-type"]))
	flags.StringVar(&c.StorageCfg, "storage-config", "", flagInfo("storage config JSON", prefix, walletEnvs["storage-config"]))

	try.To(cmd.RegisterFlagCompletionFunc("wallet-name",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return completionhelp.WalletNames(), cobra.ShellCompDirectiveNoFileComp
		}))
	try.To(cmd.RegisterFlagCompletionFunc("storage-type",
		func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return storage.Names(), cobra.ShellCompDirectiveNoFileComp
		}))
}

// withWalletEnvs returns the envs of the command added with the wallet
// envs.
func withWalletEnvs(envs map[string]string) map[string]string {
	m := make(map[string]string, len(envs)+len(walletEnvs))
	for k, v := range walletEnvs {
		m[k] = v
	}
	for k, v := range envs {
		m[k] = v
	}
	return m
}

// walletCmd represents the wallet command
var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Parent command for wallet life cycle",
	Long: `
Parent command for wallet life cycle
	`,
	Run: func(cmd *cobra.Command, _ []string) {
		SubCmdNeeded(cmd)
	},
}

var createWalletCmd = &cobra.Command{
	Use:   "create",
	Short: "Command for creating a wallet",
	Long: `
Command for creating a wallet

Example
	findy-wallet wallet create \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(walletEnvs, "WALLET")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(wCreateCmd)
	},
}

var deleteWalletCmd = &cobra.Command{
	Use:   "delete",
	Short: "Command for deleting a wallet",
	Long: `
Command for deleting a closed wallet. The key must be the wallet key.

Example
	findy-wallet wallet delete \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(walletEnvs, "WALLET")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(wDeleteCmd)
	},
}

var rekeyEnvs = map[string]string{
	"new-key":    "NEW_KEY",
	"new-method": "NEW_METHOD",
}

var rekeyWalletCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Command for changing the wallet key",
	Long: `
Command for changing the wallet key. The records are not re-encrypted.

Example
	findy-wallet wallet rekey \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--new-key 8eeTqkqGWkx...uYXRLXMpY5BpM5nCfGXA \
		--new-method RAW
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(withWalletEnvs(rekeyEnvs), "WALLET")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(wRekeyCmd)
	},
}

var (
	wCreateCmd = walletcmd.CreateCmd{}
	wDeleteCmd = walletcmd.DeleteCmd{}
	wRekeyCmd  = walletcmd.RekeyCmd{}
)

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	walletFlags(createWalletCmd, &wCreateCmd.Cmd, "WALLET")
	walletFlags(deleteWalletCmd, &wDeleteCmd.Cmd, "WALLET")
	walletFlags(rekeyWalletCmd, &wRekeyCmd.Cmd, "WALLET")
	flags := rekeyWalletCmd.Flags()
	flags.StringVar(&wRekeyCmd.NewKey, "new-key", "", flagInfo("new wallet key", "WALLET", rekeyEnvs["new-key"]))
	flags.StringVar(&wRekeyCmd.NewMethod, "new-method", "RAW", flagInfo("new key derivation method", "WALLET", rekeyEnvs["new-method"]))

	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(createWalletCmd, deleteWalletCmd, rekeyWalletCmd)
}
