package memo

import (
	"bytes"
	"encoding/base64"
	"testing"

	"cosmossdk.io/math"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/require"

	"github.com/quicksilver-zone/qs-stake/internal/intent"
)

const (
	valoper = "cosmosvaloper"
	acc     = "quick"
)

// testAddr builds a valid bech32 address over 20 bytes of fill.
func testAddr(t *testing.T, prefix string, fill byte) (string, []byte) {
	t.Helper()
	bz := bytes.Repeat([]byte{fill}, 20)
	conv, err := bech32.ConvertBits(bz, 8, 5, true)
	require.NoError(t, err)
	s, err := bech32.Encode(prefix, conv)
	require.NoError(t, err)
	return s, bz
}

func dec(s string) math.LegacyDec { return math.LegacyMustNewDecFromStr(s) }

func TestWeightByte(t *testing.T) {
	tests := []struct {
		name string
		in   math.LegacyDec
		want byte
	}{
		{"zero", dec("0"), 0},
		{"one", dec("1"), 200},
		{"half", dec("0.5"), 100},
		{"third", dec("0.3333"), 67},
		{"rounds half up", dec("0.0025"), 1},
		{"above one clamps", dec("1.5"), 200},
		{"negative clamps", dec("-0.2"), 0},
		{"nil", math.LegacyDec{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, WeightByte(tc.in))
		})
	}
}

func TestWeightByte_Monotonic(t *testing.T) {
	prev := byte(0)
	for bp := int64(0); bp <= 10000; bp += 7 {
		b := WeightByte(math.LegacyNewDecWithPrec(bp, 4))
		require.GreaterOrEqual(t, b, prev, "bp=%d", bp)
		prev = b
	}
}

func TestEncode_EqualPair(t *testing.T) {
	v1, b1 := testAddr(t, valoper, 0x11)
	v2, b2 := testAddr(t, valoper, 0x22)

	intents, err := intent.Equal([]string{v1, v2})
	require.NoError(t, err)

	raw, err := EncodeBytes(intents, Options{Is118: true, ValoperPrefix: valoper})
	require.NoError(t, err)

	want := []byte{FieldIntent, 42, 100}
	want = append(want, b1...)
	want = append(want, 100)
	want = append(want, b2...)
	require.Equal(t, want, raw)

	s, err := Encode(intents, Options{Is118: true})
	require.NoError(t, err)
	require.Equal(t, base64.StdEncoding.EncodeToString(want), s)
}

func TestEncode_SingleValidator(t *testing.T) {
	v1, b1 := testAddr(t, valoper, 0x01)
	intents, err := intent.Equal([]string{v1})
	require.NoError(t, err)

	raw, err := EncodeBytes(intents, Options{Is118: true})
	require.NoError(t, err)
	require.Len(t, raw, 2+1+len(b1))
	require.Equal(t, FieldIntent, raw[0])
	require.Equal(t, byte(1+len(b1)), raw[1])
	require.Equal(t, byte(200), raw[2])
}

func TestEncode_Empty(t *testing.T) {
	s, err := Encode(nil, Options{ReceivingAddress: "ignored"})
	require.NoError(t, err)
	require.Empty(t, s)

	raw, err := EncodeBytes([]intent.Intent{}, Options{})
	require.NoError(t, err)
	require.Empty(t, raw)
}

func TestEncode_Deterministic(t *testing.T) {
	v1, _ := testAddr(t, valoper, 0x0a)
	v2, _ := testAddr(t, valoper, 0x0b)
	v3, _ := testAddr(t, valoper, 0x0c)
	addrs := []string{v1, v2, v3}

	w, err := intent.ParseCustomWeights(addrs, "20,30,50")
	require.NoError(t, err)
	intents, err := intent.Normalize(addrs, w)
	require.NoError(t, err)

	a, err := Encode(intents, Options{Is118: true})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := Encode(intents, Options{Is118: true})
		require.NoError(t, err)
		require.Equal(t, a, b)
	}
}

func TestEncode_AccountMap(t *testing.T) {
	v1, _ := testAddr(t, valoper, 0x31)
	recv, rb := testAddr(t, acc, 0x77)
	intents, err := intent.Equal([]string{v1})
	require.NoError(t, err)

	raw, err := EncodeBytes(intents, Options{Is118: false, ReceivingAddress: recv})
	require.NoError(t, err)
	tail := raw[2+21:]
	require.Equal(t, FieldAccountMap, tail[0])
	require.Equal(t, byte(len(rb)), tail[1])
	require.Equal(t, rb, tail[2:])

	// 118 chains never carry the account map.
	raw, err = EncodeBytes(intents, Options{Is118: true, ReceivingAddress: recv})
	require.NoError(t, err)
	require.Len(t, raw, 2+21)
}

func TestEncode_TooLarge(t *testing.T) {
	addrs := make([]string, 0, 13)
	for i := 0; i < 13; i++ {
		a, _ := testAddr(t, valoper, byte(i+1))
		addrs = append(addrs, a)
	}
	intents, err := intent.Equal(addrs)
	require.NoError(t, err)

	_, err = Encode(intents, Options{Is118: true})
	require.ErrorIs(t, err, ErrMemoTooLarge)

	// twelve 21-byte entries fit in 252 bytes
	_, err = Encode(intents[:12], Options{Is118: true})
	require.NoError(t, err)
}

func TestEncode_BadAddress(t *testing.T) {
	good, _ := testAddr(t, valoper, 0x44)
	last := good[len(good)-1]
	swap := byte('q')
	if last == 'q' {
		swap = 'p'
	}
	badChecksum := good[:len(good)-1] + string(swap)

	tests := []struct {
		name string
		addr string
	}{
		{"checksum", badChecksum},
		{"charset", valoper + "1bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		{"empty", ""},
		{"no separator", "notbech32"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode([]intent.Intent{{Address: tc.addr, Weight: math.LegacyOneDec()}}, Options{Is118: true})
			require.ErrorIs(t, err, ErrAddressDecode)
		})
	}
}

func TestEncode_PrefixEnforced(t *testing.T) {
	other, _ := testAddr(t, "osmovaloper", 0x55)
	_, err := Encode([]intent.Intent{{Address: other, Weight: math.LegacyOneDec()}}, Options{Is118: true, ValoperPrefix: valoper})
	require.ErrorIs(t, err, ErrAddressDecode)
}

func TestAddressRoundTrip(t *testing.T) {
	addr, bz := testAddr(t, valoper, 0x9c)
	got, err := AddressBytes(addr, valoper)
	require.NoError(t, err)
	require.Equal(t, bz, got)

	again, err := AddressFromBytes(valoper, got)
	require.NoError(t, err)
	require.Equal(t, addr, again)

	back, err := AddressBytes(again, "")
	require.NoError(t, err)
	require.Equal(t, bz, back)
}

func TestDecode_RoundTrip(t *testing.T) {
	v1, b1 := testAddr(t, valoper, 0x01)
	v2, _ := testAddr(t, valoper, 0x02)
	recv, _ := testAddr(t, acc, 0x03)
	addrs := []string{v1, v2}

	w, err := intent.ParseCustomWeights(addrs, "30,70")
	require.NoError(t, err)
	intents, err := intent.Normalize(addrs, w)
	require.NoError(t, err)

	s, err := Encode(intents, Options{Is118: false, ReceivingAddress: recv})
	require.NoError(t, err)

	got, err := Decode(s, DecodeOptions{ValoperPrefix: valoper, AccountPrefix: acc})
	require.NoError(t, err)
	require.Len(t, got.Intents, 2)
	require.Equal(t, v1, got.Intents[0].Address)
	require.Equal(t, v2, got.Intents[1].Address)
	require.Equal(t, byte(60), got.Intents[0].WeightByte)
	require.Equal(t, byte(140), got.Intents[1].WeightByte)
	require.True(t, got.Intents[0].Weight.Equal(dec("0.3")))
	require.True(t, got.Intents[1].Weight.Equal(dec("0.7")))
	require.Equal(t, recv, got.ReceivingAddress)
	require.Len(t, got.Intents[0].Raw, 2*len(b1))
}

func TestDecode_Malformed(t *testing.T) {
	_, b1 := testAddr(t, valoper, 0x01)
	entry := append([]byte{200}, b1...)

	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated header", []byte{FieldIntent}},
		{"short payload", append([]byte{FieldIntent, 30}, entry...)},
		{"misaligned", append([]byte{FieldIntent, 20}, entry[:20]...)},
		{"unknown field", []byte{0x09, 0}},
		{"repeated", append(append([]byte{FieldIntent, 21}, entry...), append([]byte{FieldIntent, 21}, entry...)...)},
		{"empty account map", []byte{FieldAccountMap, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeBytes(tc.raw, DecodeOptions{})
			require.ErrorIs(t, err, ErrMalformedMemo)
		})
	}

	_, err := Decode("not base64!!", DecodeOptions{})
	require.ErrorIs(t, err, ErrMalformedMemo)
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode("", DecodeOptions{})
	require.NoError(t, err)
	require.Empty(t, got.Intents)
}
