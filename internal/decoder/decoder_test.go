package decoder

import (
	"math/big"
	"testing"

	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testToken     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testSender    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testRecipient = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testContract  = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// tokens converts a whole-token amount to its raw 18-decimal representation.
func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), weiPerToken)
}

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := New(logger.NewNopLogger())
	require.NoError(t, err)
	return d
}

func callTx(t *testing.T, d *Decoder, methodName string, args ...any) *types.Transaction {
	t.Helper()

	method, ok := d.contractABI.Methods[methodName]
	require.True(t, ok, "method %s not in ABI", methodName)

	packed, err := method.Inputs.Pack(args...)
	require.NoError(t, err)

	return types.NewTx(&types.LegacyTx{
		To:       &testContract,
		Gas:      100000,
		GasPrice: big.NewInt(1),
		Data:     append(append([]byte{}, method.ID...), packed...),
	})
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func TestDecodeYeet(t *testing.T) {
	d := newTestDecoder(t)

	tx := callTx(t, d, "shout", testToken, tokens(5), []byte("hello world"))

	raw := RawEvent{
		Log: types.Log{
			Topics: []common.Hash{
				YeetEventSig,
				addressTopic(testToken),
				common.BigToHash(tokens(5)),
				addressTopic(testSender),
			},
			Data:        common.BigToHash(big.NewInt(7)).Bytes(),
			TxHash:      common.HexToHash("0xaaaa"),
			BlockNumber: 100,
		},
		Tx:        tx,
		BlockTime: 1700000000,
	}

	ev, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, store.KindShout, ev.Kind)
	assert.Equal(t, testSender, ev.Sender)
	assert.Equal(t, testToken, ev.Token)
	assert.Equal(t, "5", ev.AmountBurned)
	assert.Equal(t, uint64(7), ev.SequenceID)
	assert.Equal(t, uint64(100), ev.BlockNumber)
	assert.Equal(t, int64(1700000000), ev.Timestamp)
	require.NotNil(t, ev.Content)
	assert.Equal(t, "hello world", *ev.Content)
	assert.Nil(t, ev.Recipient)
	assert.Nil(t, ev.GiftAmount)
	assert.Nil(t, ev.BoostForSequenceID)
	assert.True(t, ev.Verified)
}

func TestDecodeYeetNonUTF8Message(t *testing.T) {
	d := newTestDecoder(t)

	tx := callTx(t, d, "shout", testToken, tokens(1), []byte{0xff, 0xfe, 0x01})

	raw := RawEvent{
		Log: types.Log{
			Topics: []common.Hash{
				YeetEventSig,
				addressTopic(testToken),
				common.BigToHash(tokens(1)),
				addressTopic(testSender),
			},
			Data: common.BigToHash(big.NewInt(1)).Bytes(),
		},
		Tx: tx,
	}

	ev, err := d.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, ev.Content)
	assert.Equal(t, "0xfffe01", *ev.Content)
}

func TestDecodeYeetWithoutTransaction(t *testing.T) {
	d := newTestDecoder(t)

	raw := RawEvent{
		Log: types.Log{
			Topics: []common.Hash{
				YeetEventSig,
				addressTopic(testToken),
				common.BigToHash(tokens(1)),
				addressTopic(testSender),
			},
			Data: common.BigToHash(big.NewInt(1)).Bytes(),
		},
	}

	ev, err := d.Decode(raw)
	require.NoError(t, err)
	assert.Nil(t, ev.Content)
}

func TestDecodeGift(t *testing.T) {
	d := newTestDecoder(t)

	tx := callTx(t, d, "shoutAt", testToken, testRecipient, tokens(10), tokens(3), []byte("for you"))

	data := append(addressTopic(testSender).Bytes(), common.BigToHash(big.NewInt(9)).Bytes()...)

	raw := RawEvent{
		Log: types.Log{
			Topics: []common.Hash{
				GiftEventSig,
				addressTopic(testToken),
				common.BigToHash(tokens(10)),
				addressTopic(testRecipient),
			},
			Data:        data,
			TxHash:      common.HexToHash("0xbbbb"),
			BlockNumber: 200,
		},
		Tx:        tx,
		BlockTime: 1700000100,
	}

	ev, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, store.KindGift, ev.Kind)
	assert.Equal(t, testSender, ev.Sender)
	assert.Equal(t, "10", ev.AmountBurned)
	assert.Equal(t, uint64(9), ev.SequenceID)
	require.NotNil(t, ev.Recipient)
	assert.Equal(t, testRecipient, *ev.Recipient)
	require.NotNil(t, ev.GiftAmount)
	assert.Equal(t, "3", *ev.GiftAmount)
	require.NotNil(t, ev.Content)
	assert.Equal(t, "for you", *ev.Content)
}

func TestDecodeBoost(t *testing.T) {
	d := newTestDecoder(t)

	tx := callTx(t, d, "shoutFor", big.NewInt(9), testToken, tokens(2), []byte("boosting"))

	raw := RawEvent{
		Log: types.Log{
			Topics: []common.Hash{
				BoostEventSig,
				common.BigToHash(big.NewInt(9)),
				addressTopic(testToken),
				common.BigToHash(tokens(2)),
			},
			TxHash:      common.HexToHash("0xcccc"),
			BlockNumber: 300,
		},
		Tx:        tx,
		BlockTime: 1700000200,
		Sender:    testSender,
	}

	ev, err := d.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, store.KindBoost, ev.Kind)
	// Boost topics carry no sender, it comes from the receipt
	assert.Equal(t, testSender, ev.Sender)
	assert.Equal(t, "2", ev.AmountBurned)

	// The boosted shout is referenced only through BoostForSequenceID, and a
	// boost has no message even when its calldata carries one
	assert.Equal(t, uint64(0), ev.SequenceID)
	require.NotNil(t, ev.BoostForSequenceID)
	assert.Equal(t, uint64(9), *ev.BoostForSequenceID)
	assert.Nil(t, ev.Content)
}

func TestDecodeUnknownEvent(t *testing.T) {
	d := newTestDecoder(t)

	_, err := d.Decode(RawEvent{Log: types.Log{
		Topics: []common.Hash{common.HexToHash("0xdeadbeef")},
	}})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = d.Decode(RawEvent{Log: types.Log{}})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDecodeMalformedLog(t *testing.T) {
	d := newTestDecoder(t)

	// Yeet with missing topics
	_, err := d.Decode(RawEvent{Log: types.Log{
		Topics: []common.Hash{YeetEventSig, addressTopic(testToken)},
	}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEvent)

	// Gift with truncated data
	_, err = d.Decode(RawEvent{Log: types.Log{
		Topics: []common.Hash{
			GiftEventSig,
			addressTopic(testToken),
			common.BigToHash(tokens(1)),
			addressTopic(testRecipient),
		},
		Data: []byte{0x01},
	}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownEvent)
}

func TestFormatTokenAmount(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890000000000000000000", 10)
	require.True(t, ok)

	tests := []struct {
		name string
		raw  *big.Int
		want string
	}{
		{name: "zero", raw: big.NewInt(0), want: "0"},
		{name: "one token", raw: tokens(1), want: "1"},
		{name: "fractional", raw: big.NewInt(2500000000000000000), want: "2.5"},
		{name: "one wei", raw: big.NewInt(1), want: "0.000000000000000001"},
		{name: "beyond float64 precision", raw: huge, want: "123456789012345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTokenAmount(tt.raw))
		})
	}
}
