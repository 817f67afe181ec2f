package memo

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// DefaultAddressLen is the validator address length assumed by the indexer.
const DefaultAddressLen = 20

// DecodeOptions controls how decoded address bytes are rendered.
type DecodeOptions struct {
	ValoperPrefix string // renders intent addresses; raw bytes only when empty
	AccountPrefix string // renders the receiving address
	AddressLen    int    // bytes per intent address, DefaultAddressLen when zero
}

// DecodedIntent is one entry of the intent field.
type DecodedIntent struct {
	Address    string         `json:"address,omitempty" yaml:"address,omitempty"`
	Raw        string         `json:"raw" yaml:"raw"`
	WeightByte byte           `json:"weight_byte" yaml:"weight_byte"`
	Weight     math.LegacyDec `json:"weight" yaml:"weight"`
}

// Decoded is the indexer's view of a memo.
type Decoded struct {
	Intents          []DecodedIntent `json:"intents" yaml:"intents"`
	ReceivingAddress string          `json:"receiving_address,omitempty" yaml:"receiving_address,omitempty"`
	ReceivingRaw     string          `json:"receiving_raw,omitempty" yaml:"receiving_raw,omitempty"`
}

// Decode parses a base64 memo produced by Encode.
func Decode(s string, opts DecodeOptions) (Decoded, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decoded{}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Decoded{}, errorsmod.Wrapf(ErrMalformedMemo, "base64: %v", err)
	}
	return DecodeBytes(raw, opts)
}

// DecodeBytes parses a raw memo produced by EncodeBytes.
func DecodeBytes(raw []byte, opts DecodeOptions) (Decoded, error) {
	addrLen := opts.AddressLen
	if addrLen <= 0 {
		addrLen = DefaultAddressLen
	}

	var out Decoded
	seen := make(map[byte]bool, 2)
	for i := 0; i < len(raw); {
		if len(raw)-i < 2 {
			return Decoded{}, errorsmod.Wrapf(ErrMalformedMemo, "truncated field header at offset %d", i)
		}
		tag, n := raw[i], int(raw[i+1])
		i += 2
		if len(raw)-i < n {
			return Decoded{}, errorsmod.Wrapf(ErrMalformedMemo, "field 0x%02x wants %d bytes, %d left", tag, n, len(raw)-i)
		}
		payload := raw[i : i+n]
		i += n

		if seen[tag] {
			return Decoded{}, errorsmod.Wrapf(ErrMalformedMemo, "field 0x%02x repeated", tag)
		}
		seen[tag] = true

		switch tag {
		case FieldIntent:
			intents, err := decodeIntents(payload, addrLen, opts.ValoperPrefix)
			if err != nil {
				return Decoded{}, err
			}
			out.Intents = intents
		case FieldAccountMap:
			if n == 0 {
				return Decoded{}, errorsmod.Wrap(ErrMalformedMemo, "empty account map")
			}
			out.ReceivingRaw = hex.EncodeToString(payload)
			if opts.AccountPrefix != "" {
				addr, err := AddressFromBytes(opts.AccountPrefix, payload)
				if err != nil {
					return Decoded{}, err
				}
				out.ReceivingAddress = addr
			}
		default:
			return Decoded{}, errorsmod.Wrapf(ErrMalformedMemo, "unknown field 0x%02x", tag)
		}
	}
	return out, nil
}

func decodeIntents(payload []byte, addrLen int, prefix string) ([]DecodedIntent, error) {
	entry := 1 + addrLen
	if len(payload)%entry != 0 {
		return nil, errorsmod.Wrapf(ErrMalformedMemo, "intent field of %d bytes is not a multiple of %d", len(payload), entry)
	}
	out := make([]DecodedIntent, 0, len(payload)/entry)
	for i := 0; i < len(payload); i += entry {
		b := payload[i]
		addr := payload[i+1 : i+entry]
		d := DecodedIntent{
			Raw:        hex.EncodeToString(addr),
			WeightByte: b,
			Weight:     WeightFromByte(b),
		}
		if prefix != "" {
			s, err := AddressFromBytes(prefix, addr)
			if err != nil {
				return nil, err
			}
			d.Address = s
		}
		out = append(out, d)
	}
	return out, nil
}
