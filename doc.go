/*
Package main is the CLI of findy-wallet, an encrypted and queryable wallet for
SSI agents. The wallet stores typed records with a value and tags. Everything
but plain tags is encrypted before it reaches the storage, and records are
searched with Wallet Query Language (WQL) queries which are evaluated over the
encrypted tags.

The Go packages can be used without the CLI. The wallet package is the API:
wallets are created, opened, rekeyed, exported and imported with it, and
records are added, updated and searched through the wallet handles. Storages
are pluggable, the storage package registers the file based default storage,
and the postgres package registers itself when imported.

# About the build-in CLI

The CLI has commands for the wallet life cycle, for the records and for the
tools like key creation, export, import and backups:

	findy-wallet wallet create --wallet-name MyWallet --wallet-key <key>
	findy-wallet record add --wallet-name MyWallet --wallet-key <key> \
		--type note --id n1 --value hello --tags '{"~n":"1"}'
	findy-wallet record search --wallet-name MyWallet --wallet-key <key> \
		--type note --query '{"~n":{"$gte":"1"}}'
	findy-wallet tools export --wallet-name MyWallet --wallet-key <key> \
		--key exportKey --file my-wallet.export

Every flag can also be given as an environment variable, see the help of the
command, or in the configuration file given with --config. The default wallet
key derivation method is RAW, and RAW keys are made with:

	findy-wallet tools key create --seed 00000000000000000000thisisa_test
*/
package main
