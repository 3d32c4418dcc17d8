package rpcclient

import (
	"context"
	"strconv"
	"strings"

	"github.com/ginjaninja78/whalewatch/internal/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Fixed fields of every synthetic transaction.
const (
	MockConfirmations = 123
	MockBlockTime     = 1672531200
	MockBlockHash     = "0000000000000000000aaaaabbbbbbcccccddddddeeeeee"
	MockAddress1      = "1MockAddress1_xxxxxxxxxxxxxxxxx"
	MockAddress2      = "1MockAddress2_yyyyyyyyyyyyyyyyy"

	mockScriptAsm   = "OP_DUP OP_HASH160 ... OP_EQUALVERIFY OP_CHECKSIG"
	mockPlaceholder = "..."
	finalSequence   = 4294967295
)

// MockClient produces synthetic transactions. Its output depends only on the
// identifier, so repeated calls return identical details.
type MockClient struct {
	log zerolog.Logger
}

// NewMockClient returns a MockClient that logs through log.
func NewMockClient(log zerolog.Logger) *MockClient {
	return &MockClient{log: log}
}

func (m *MockClient) Mode() Mode {
	return ModeSimulation
}

// GetRawTransaction returns a synthetic transaction for txid. It never fails.
func (m *MockClient) GetRawTransaction(_ context.Context, txid string) (*types.TransactionDetail, error) {
	m.log.Debug().Str("txid", shortID(txid)).Msg("simulated lookup")
	return MockTransaction(txid), nil
}

// MockSeed derives the value seed from txid: its first five characters read
// as hexadecimal, modulo 1000. Shorter identifiers use the whole string and a
// prefix that is not hexadecimal gives 0.
func MockSeed(txid string) int {
	prefix := txid
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	n, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return 0
	}
	return int(n % 1000)
}

// MockTransaction builds the synthetic detail for txid.
//
// Output values:
//   vout[0] = 10.0 + seed/100  -> MockAddress1
//   vout[1] =  5.0 - seed/200  -> MockAddress2
func MockTransaction(txid string) *types.TransactionDetail {
	seed := decimal.NewFromInt(int64(MockSeed(txid)))
	first := decimal.NewFromInt(10).Add(seed.Div(decimal.NewFromInt(100))).InexactFloat64()
	second := decimal.NewFromInt(5).Sub(seed.Div(decimal.NewFromInt(200))).InexactFloat64()

	return &types.TransactionDetail{
		TxID:     txid,
		Hash:     txid,
		Version:  1,
		Size:     250,
		VSize:    250,
		Weight:   1000,
		LockTime: 0,
		Vin: []types.Vin{{
			TxID:      strings.Repeat("a1", 32),
			Vout:      0,
			ScriptSig: &types.ScriptSig{Asm: mockPlaceholder, Hex: mockPlaceholder},
			Sequence:  finalSequence,
		}},
		Vout: []types.Vout{
			mockOutput(0, first, MockAddress1),
			mockOutput(1, second, MockAddress2),
		},
		Hex:           mockPlaceholder,
		BlockHash:     MockBlockHash,
		Confirmations: MockConfirmations,
		Time:          MockBlockTime,
		BlockTime:     MockBlockTime,
	}
}

func mockOutput(n int, value float64, address string) types.Vout {
	return types.Vout{
		Value: &value,
		N:     n,
		ScriptPubKey: types.ScriptPubKey{
			Asm:       mockScriptAsm,
			Hex:       mockPlaceholder,
			ReqSigs:   1,
			Type:      "pubkeyhash",
			Addresses: []string{address},
		},
	}
}
