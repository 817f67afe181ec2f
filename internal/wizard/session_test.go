package wizard

import (
	"bytes"
	"errors"
	"testing"

	"cosmossdk.io/math"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/require"

	"github.com/quicksilver-zone/qs-stake/internal/config"
	"github.com/quicksilver-zone/qs-stake/internal/intent"
	"github.com/quicksilver-zone/qs-stake/internal/memo"
)

var hub = config.ChainConfig{
	Name:         "cosmoshub",
	ChainID:      "cosmoshub-4",
	Bech32Prefix: "cosmos",
	Is118:        true,
	MajorDenom:   "atom",
	MinorDenom:   "uatom",
	Exponent:     6,
	LCD:          "http://lcd",
}

func valoper(t *testing.T, fill byte) intent.Validator {
	t.Helper()
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{fill}, 20), 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("cosmosvaloper", conv)
	require.NoError(t, err)
	return intent.Validator{OperatorAddress: addr, Name: string('a' + rune(fill))}
}

func selectN(t *testing.T, s *Session, n int) []intent.Validator {
	t.Helper()
	vals := make([]intent.Validator, n)
	for i := range vals {
		vals[i] = valoper(t, byte(i+1))
		on, err := s.Toggle(vals[i])
		require.NoError(t, err)
		require.True(t, on)
	}
	return vals
}

func TestSession_EqualFlow(t *testing.T) {
	s := NewSession(hub, 0)
	require.Equal(t, StateSelectValidators, s.State())
	require.ErrorIs(t, s.Next(), intent.ErrNoValidators)

	selectN(t, s, 3)
	require.NoError(t, s.Next())
	// equal mode skips weights
	require.Equal(t, StateConfirm, s.State())

	intents, err := s.Intents()
	require.NoError(t, err)
	require.True(t, intent.Sum(intents).Equal(math.LegacyOneDec()))

	m, err := s.Memo()
	require.NoError(t, err)
	require.NotEmpty(t, m)

	require.ErrorIs(t, s.Next(), ErrInvalidTransition)
	require.NoError(t, s.Complete(Outcome{TxHash: "ABC"}))
	require.Equal(t, StateResult, s.State())
	o, ok := s.Outcome()
	require.True(t, ok)
	require.True(t, o.OK())
	require.ErrorIs(t, s.Retry(), ErrInvalidTransition)
}

func TestSession_CustomFlow(t *testing.T) {
	s := NewSession(hub, 0)
	vals := selectN(t, s, 2)
	require.NoError(t, s.SetMode(intent.ModeCustom))
	require.NoError(t, s.Next())
	require.Equal(t, StateSetWeights, s.State())

	require.NoError(t, s.SetWeight(vals[0].OperatorAddress, 30))
	require.ErrorIs(t, s.Next(), intent.ErrWeightsNotHundred)
	require.Equal(t, StateSetWeights, s.State())
	require.Equal(t, 30, s.Weights()[vals[0].OperatorAddress])

	require.ErrorIs(t, s.SetWeight(vals[1].OperatorAddress, 170), intent.ErrPercentOutOfRange)
	require.ErrorIs(t, s.SetWeight("cosmosvaloper1other", 70), ErrInvalidTransition)
	require.NoError(t, s.SetWeight(vals[1].OperatorAddress, 70))
	require.NoError(t, s.Next())
	require.Equal(t, StateConfirm, s.State())

	intents, err := s.Intents()
	require.NoError(t, err)
	require.Equal(t, "30.00%", intents[0].Percent())

	m, err := s.Memo()
	require.NoError(t, err)
	dec, err := memo.Decode(m, memo.DecodeOptions{ValoperPrefix: "cosmosvaloper"})
	require.NoError(t, err)
	require.Equal(t, byte(60), dec.Intents[0].WeightByte)
	require.Equal(t, byte(140), dec.Intents[1].WeightByte)

	require.NoError(t, s.Back())
	require.Equal(t, StateSetWeights, s.State())
	require.NoError(t, s.Back())
	require.Equal(t, StateSelectValidators, s.State())
	require.ErrorIs(t, s.Back(), ErrInvalidTransition)
}

func TestSession_SingleValidatorSkipsWeights(t *testing.T) {
	s := NewSession(hub, 0)
	selectN(t, s, 1)
	require.NoError(t, s.SetMode(intent.ModeCustom))
	require.NoError(t, s.Next())
	require.Equal(t, StateConfirm, s.State())

	intents, err := s.Intents()
	require.NoError(t, err)
	require.True(t, intents[0].Weight.Equal(math.LegacyOneDec()))

	require.NoError(t, s.Back())
	require.Equal(t, StateSelectValidators, s.State())
}

func TestSession_Cap(t *testing.T) {
	s := NewSession(hub, 2)
	selectN(t, s, 2)
	_, err := s.Toggle(valoper(t, 9))
	require.ErrorIs(t, err, intent.ErrTooManyValidators)
	require.Equal(t, 2, s.Selection().Len())

	capped := hub
	capped.MaxValidators = 3
	require.Equal(t, 3, NewSession(capped, 0).Selection().Max())
	require.Equal(t, intent.MaxValidatorsSecondary, NewSession(hub, 1000).Selection().Max())
}

func TestSession_RetryKeepsInput(t *testing.T) {
	s := NewSession(hub, 0)
	vals := selectN(t, s, 2)
	require.NoError(t, s.SetMode(intent.ModeCustom))
	require.NoError(t, s.Next())
	require.NoError(t, s.SetWeight(vals[0].OperatorAddress, 50))
	require.NoError(t, s.SetWeight(vals[1].OperatorAddress, 50))
	require.NoError(t, s.Next())
	require.NoError(t, s.SetAmount("1.5"))

	require.NoError(t, s.Complete(Outcome{Err: errors.New("insufficient funds")}))
	o, _ := s.Outcome()
	require.False(t, o.OK())
	require.ErrorIs(t, s.SetAmount("2"), ErrInvalidTransition)

	require.NoError(t, s.Retry())
	require.Equal(t, StateConfirm, s.State())
	require.Equal(t, "1.5", s.Amount())
	require.Equal(t, 2, s.Selection().Len())
	require.Equal(t, 50, s.Weights()[vals[0].OperatorAddress])
	_, ok := s.Outcome()
	require.False(t, ok)
}

func TestSession_ChangeChainResets(t *testing.T) {
	s := NewSession(hub, 0)
	selectN(t, s, 2)
	require.NoError(t, s.Next())

	osmo := hub
	osmo.Name, osmo.ChainID, osmo.Bech32Prefix = "osmosis", "osmosis-1", "osmo"
	require.NoError(t, s.ChangeChain(osmo))
	require.Equal(t, StateSelectValidators, s.State())
	require.Zero(t, s.Selection().Len())
	require.Empty(t, s.Weights())
	require.Equal(t, "osmosis", s.Chain().Name)
}

func TestSession_GuardsByState(t *testing.T) {
	s := NewSession(hub, 0)
	require.ErrorIs(t, s.SetWeight("x", 1), ErrInvalidTransition)
	require.ErrorIs(t, s.Complete(Outcome{}), ErrInvalidTransition)
	require.ErrorIs(t, s.Retry(), ErrInvalidTransition)

	selectN(t, s, 1)
	require.NoError(t, s.Next())
	_, err := s.Toggle(valoper(t, 7))
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, s.SetMode(intent.ModeCustom), ErrInvalidTransition)
}

func TestSession_MemoAccountMap(t *testing.T) {
	agoric := hub
	agoric.Is118 = false
	s := NewSession(agoric, 0)
	selectN(t, s, 1)
	conv, err := bech32.ConvertBits(bytes.Repeat([]byte{0x42}, 20), 8, 5, true)
	require.NoError(t, err)
	recv, err := bech32.Encode("quick", conv)
	require.NoError(t, err)
	require.NoError(t, s.SetReceiver(recv))
	require.NoError(t, s.Next())

	m, err := s.Memo()
	require.NoError(t, err)
	dec, err := memo.Decode(m, memo.DecodeOptions{AccountPrefix: "quick"})
	require.NoError(t, err)
	require.Equal(t, recv, dec.ReceivingAddress)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "set-weights", StateSetWeights.String())
	require.Equal(t, "State(9)", State(9).String())
}
