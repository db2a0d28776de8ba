package utils

// Version is the version of the wallet. Release builds set it with
// -ldflags "-X github.com/findy-network/findy-wallet/utils.Version=...".
var Version = "0.1.0-dev"
