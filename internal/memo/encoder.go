// Package memo packs validator intents into the compact binary memo read by
// the off-chain intent indexer, and parses such memos back.
//
// Layout: a sequence of tagged fields, each `[tag, length] ++ payload`, base64
// encoded. The intent field (0x02) holds entries of `[weightByte] ++ address`,
// where weightByte is the weight at half-uint8 resolution (200 = 100%). The
// account-map field (0x00) carries the receiving address on chains whose
// accounts are not derived with coin type 118.
package memo

import (
	"encoding/base64"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	"github.com/quicksilver-zone/qs-stake/internal/intent"
)

// Field tags.
const (
	FieldAccountMap byte = 0x00
	FieldIntent     byte = 0x02
)

const (
	// MaxSectionLen is the largest payload a one-byte length header can describe.
	MaxSectionLen = 255
	// WeightResolution is the byte value of a 100% weight.
	WeightResolution = 200
)

var half = math.LegacyNewDecWithPrec(5, 1)

// Options controls address checks and the optional account-map field.
type Options struct {
	// Is118 is the target chain's account-derivation flag. The account-map
	// field is only written when it is false.
	Is118 bool
	// ReceivingAddress is the secondary account that receives the liquid
	// staking asset.
	ReceivingAddress string
	// ValoperPrefix, when set, is enforced on every validator address.
	ValoperPrefix string
}

// WeightByte packs w into a byte: clamped to [0,1], then round(w*200).
func WeightByte(w math.LegacyDec) byte {
	if w.IsNil() || w.IsNegative() {
		return 0
	}
	if w.GT(math.LegacyOneDec()) {
		w = math.LegacyOneDec()
	}
	return byte(w.MulInt64(WeightResolution).Add(half).TruncateInt64())
}

// WeightFromByte is the weight the indexer reads for b.
func WeightFromByte(b byte) math.LegacyDec {
	return math.LegacyNewDec(int64(b)).QuoInt64(WeightResolution)
}

// EncodeBytes builds the raw memo. An empty intent list yields nil.
func EncodeBytes(intents []intent.Intent, opts Options) ([]byte, error) {
	if len(intents) == 0 {
		return nil, nil
	}
	entries := make([]byte, 0, len(intents)*(1+DefaultAddressLen))
	for _, in := range intents {
		bz, err := AddressBytes(in.Address, opts.ValoperPrefix)
		if err != nil {
			return nil, err
		}
		entries = append(entries, WeightByte(in.Weight))
		entries = append(entries, bz...)
	}
	out, err := appendField(nil, FieldIntent, entries)
	if err != nil {
		return nil, err
	}

	if !opts.Is118 && opts.ReceivingAddress != "" {
		bz, err := AddressBytes(opts.ReceivingAddress, "")
		if err != nil {
			return nil, err
		}
		if out, err = appendField(out, FieldAccountMap, bz); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Encode returns the base64 memo for intents. An empty intent list yields "".
func Encode(intents []intent.Intent, opts Options) (string, error) {
	raw, err := EncodeBytes(intents, opts)
	if err != nil || len(raw) == 0 {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func appendField(dst []byte, tag byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxSectionLen {
		return nil, errorsmod.Wrapf(ErrMemoTooLarge, "field 0x%02x is %d bytes, limit %d", tag, len(payload), MaxSectionLen)
	}
	dst = append(dst, tag, byte(len(payload)))
	return append(dst, payload...), nil
}
