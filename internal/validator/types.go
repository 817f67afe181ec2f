package validator

import (
	"cosmossdk.io/math"

	"github.com/quicksilver-zone/qs-stake/internal/intent"
)

// ValidatorInfo contains information about a single validator
type ValidatorInfo struct {
	OperatorAddress string
	Moniker         string
	Status          string // BONDED, UNBONDING, UNBONDED
	Tokens          string // Raw token amount in the minor denom
	VotingPower     int64  // Tokens in the major denom
	Commission      string // Commission rate as percentage
	CommissionRate  math.LegacyDec
	Jailed          bool
}

// Active reports whether the validator is bonded and not jailed.
func (v ValidatorInfo) Active() bool {
	return v.Status == "BONDED" && !v.Jailed
}

// Intent converts to the selection entry used by the weight normalizer.
func (v ValidatorInfo) Intent() intent.Validator {
	return intent.Validator{OperatorAddress: v.OperatorAddress, Name: v.Moniker}
}

// ValidatorList contains a list of validators
type ValidatorList struct {
	Validators []ValidatorInfo
	Total      int
}

// TxResponse is the parsed result of a broadcast transaction.
type TxResponse struct {
	TxHash string `json:"txhash"`
	Code   uint32 `json:"code"`
	RawLog string `json:"raw_log,omitempty"`
	Height int64  `json:"height,omitempty"`
}
