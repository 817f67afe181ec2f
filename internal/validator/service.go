package validator

import (
	"context"

	"github.com/quicksilver-zone/qs-stake/internal/config"
)

// Service handles key lookups, deposit address resolution and liquid-staking
// transactions. Signing is delegated to the chain binary's keyring.
type Service interface {
	KeyAddress(ctx context.Context, chain config.ChainConfig, keyName string) (string, error)
	DepositAddress(ctx context.Context, chain config.ChainConfig) (string, error)
	Stake(ctx context.Context, args StakeArgs) (TxResponse, error)
	Redeem(ctx context.Context, args RedeemArgs) (TxResponse, error)
}

type StakeArgs struct {
	Chain          config.ChainConfig
	Amount         string // minor denom
	Memo           string
	KeyName        string
	DepositAddress string // resolved when empty
}

type RedeemArgs struct {
	Amount      string // minor denom of the qAsset
	Denom       string // qAsset denom, e.g. uqatom
	Destination string // host chain address
	KeyName     string
}
