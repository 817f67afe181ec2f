package memo

import errorsmod "cosmossdk.io/errors"

const codespace = "memo"

var (
	// ErrAddressDecode is returned when a bech32 address fails charset,
	// checksum, prefix or bit-regrouping checks.
	ErrAddressDecode = errorsmod.Register(codespace, 2, "address decode error")
	// ErrMemoTooLarge is returned when a memo section does not fit its
	// one-byte length header.
	ErrMemoTooLarge = errorsmod.Register(codespace, 3, "memo section too large")
	// ErrMalformedMemo is returned by the decoder for truncated, misaligned
	// or unknown memo sections.
	ErrMalformedMemo = errorsmod.Register(codespace, 4, "malformed memo")
)
