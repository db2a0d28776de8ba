package cmd

import (
	"log"

	"github.com/findy-network/findy-wallet/cmds/record"
	"github.com/lainio/err2"
	"github.com/spf13/cobra"
)

var recordEnvs = map[string]string{
	"type":    "TYPE",
	"id":      "ID",
	"value":   "VALUE",
	"tags":    "TAGS",
	"options": "OPTIONS",
	"query":   "QUERY",
	"count":   "COUNT",
}

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Parent command for wallet records",
	Long: `
Parent command for wallet records
	`,
	Run: func(cmd *cobra.Command, _ []string) {
		SubCmdNeeded(cmd)
	},
}

var addRecordCmd = &cobra.Command{
	Use:   "add",
	Short: "Command for adding a record",
	Long: `
Command for adding a record. Tag names starting with ~ are stored as plain
text and can be used in range queries.

Example
	findy-wallet record add \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--type credential --id cred1 --value '{"name":"Alice"}' \
		--tags '{"~year":"2020","issuer":"did:sov:abc"}'
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(withWalletEnvs(recordEnvs), "RECORD")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(rAddCmd)
	},
}

var getRecordCmd = &cobra.Command{
	Use:   "get",
	Short: "Command for getting a record",
	Long: `
Command for getting a record

Example
	findy-wallet record get \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--type credential --id cred1 \
		--options '{"retrieveTags":true}'
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(withWalletEnvs(recordEnvs), "RECORD")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(rGetCmd)
	},
}

var deleteRecordCmd = &cobra.Command{
	Use:   "delete",
	Short: "Command for deleting a record",
	Long: `
Command for deleting a record

Example
	findy-wallet record delete \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--type credential --id cred1
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(withWalletEnvs(recordEnvs), "RECORD")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(rDeleteCmd)
	},
}

var searchRecordCmd = &cobra.Command{
	Use:   "search",
	Short: "Command for searching records",
	Long: `
Command for searching records of the type with a WQL query

Example
	findy-wallet record search \
		--wallet-name MyWallet \
		--wallet-key 6cih1cVgRH8...dv67o8QbufxaTHot3Qxp \
		--type credential \
		--query '{"~year":{"$gte":"2019"},"issuer":"did:sov:abc"}' \
		--options '{"retrieveTotalCount":true}'
	`,
	PreRunE: func(_ *cobra.Command, _ []string) (err error) {
		return BindEnvs(withWalletEnvs(recordEnvs), "RECORD")
	},
	RunE: func(_ *cobra.Command, _ []string) (err error) {
		return execute(rSearchCmd)
	},
}

var (
	rAddCmd    = record.AddCmd{}
	rGetCmd    = record.GetCmd{}
	rDeleteCmd = record.DeleteCmd{}
	rSearchCmd = record.SearchCmd{}
)

func init() {
	defer err2.Catch(err2.Err(func(err error) {
		log.Println(err)
	}))

	walletFlags(addRecordCmd, &rAddCmd.Cmd, "RECORD")
	flags := addRecordCmd.Flags()
	flags.StringVar(&rAddCmd.Type, "type", "", flagInfo("record type", "RECORD", recordEnvs["type"]))
	flags.StringVar(&rAddCmd.ID, "id", "", flagInfo("record id, default is a new UUID", "RECORD", recordEnvs["id"]))
	flags.StringVar(&rAddCmd.Value, "value", "", flagInfo("record value", "RECORD", recordEnvs["value"]))
	flags.StringVar(&rAddCmd.Tags, "tags", "", flagInfo("record tags JSON", "RECORD", recordEnvs["tags"]))

	walletFlags(getRecordCmd, &rGetCmd.Cmd, "RECORD")
	flags = getRecordCmd.Flags()
	flags.StringVar(&rGetCmd.Type, "type", "", flagInfo("record type", "RECORD", recordEnvs["type"]))
	flags.StringVar(&rGetCmd.ID, "id", "", flagInfo("record id", "RECORD", recordEnvs["id"]))
	flags.StringVar(&rGetCmd.Options, "options", "", flagInfo("record options JSON", "RECORD", recordEnvs["options"]))

	walletFlags(deleteRecordCmd, &rDeleteCmd.Cmd, "RECORD")
	flags = deleteRecordCmd.Flags()
	flags.StringVar(&rDeleteCmd.Type, "type", "", flagInfo("record type", "RECORD", recordEnvs["type"]))
	flags.StringVar(&rDeleteCmd.ID, "id", "", flagInfo("record id", "RECORD", recordEnvs["id"]))

	walletFlags(searchRecordCmd, &rSearchCmd.Cmd, "RECORD")
	flags = searchRecordCmd.Flags()
	flags.StringVar(&rSearchCmd.Type, "type", "", flagInfo("record type", "RECORD", recordEnvs["type"]))
	flags.StringVar(&rSearchCmd.Query, "query", "{}", flagInfo("WQL query JSON", "RECORD", recordEnvs["query"]))
	flags.StringVar(&rSearchCmd.Options, "options", "", flagInfo("search options JSON", "RECORD", recordEnvs["options"]))
	flags.IntVar(&rSearchCmd.Count, "count", 0, flagInfo("max records, 0 is all", "RECORD", recordEnvs["count"]))

	rootCmd.AddCommand(recordCmd)
	recordCmd.AddCommand(addRecordCmd, getRecordCmd, deleteRecordCmd, searchRecordCmd)
}
