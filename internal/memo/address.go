package memo

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/btcsuite/btcutil/bech32"
)

// AddressBytes decodes a bech32 address into its raw payload bytes.
// When wantPrefix is non-empty the human-readable part must match it.
func AddressBytes(addr, wantPrefix string) ([]byte, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errorsmod.Wrap(ErrAddressDecode, "empty address")
	}
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrAddressDecode, "%s: %v", addr, err)
	}
	if wantPrefix != "" && hrp != wantPrefix {
		return nil, errorsmod.Wrapf(ErrAddressDecode, "%s: prefix %q, expected %q", addr, hrp, wantPrefix)
	}
	bz, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrAddressDecode, "%s: %v", addr, err)
	}
	if len(bz) == 0 {
		return nil, errorsmod.Wrapf(ErrAddressDecode, "%s: empty payload", addr)
	}
	return bz, nil
}

// AddressFromBytes is the inverse of AddressBytes.
func AddressFromBytes(prefix string, bz []byte) (string, error) {
	if prefix == "" {
		return "", errorsmod.Wrap(ErrAddressDecode, "empty prefix")
	}
	conv, err := bech32.ConvertBits(bz, 8, 5, true)
	if err != nil {
		return "", errorsmod.Wrapf(ErrAddressDecode, "convert bits: %v", err)
	}
	s, err := bech32.Encode(prefix, conv)
	if err != nil {
		return "", errorsmod.Wrapf(ErrAddressDecode, "encode: %v", err)
	}
	return s, nil
}
