package decoder

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/earthshout/shout-indexer/internal/logger"
	"github.com/earthshout/shout-indexer/internal/store"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event signatures of the burn contract.
var (
	// Yeet(address indexed token, uint256 indexed amount, address indexed from, uint256 yeetId)
	YeetEventSig = crypto.Keccak256Hash([]byte("Yeet(address,uint256,address,uint256)"))

	// Gift(address indexed token, uint256 indexed amount, address indexed to, address from, uint256 yeetId)
	GiftEventSig = crypto.Keccak256Hash([]byte("Gift(address,uint256,address,address,uint256)"))

	// Boost(uint256 indexed yeetId, address indexed token, uint256 indexed amount)
	BoostEventSig = crypto.Keccak256Hash([]byte("Boost(uint256,address,uint256)"))
)

// ErrUnknownEvent marks a log whose topic0 is not one of the contract events.
// Such logs are skipped, not treated as failures.
var ErrUnknownEvent = errors.New("unknown event signature")

// contractABIJSON covers the contract functions whose calldata carries the
// broadcast message. Events themselves are decoded straight from topics.
const contractABIJSON = `[
	{"type":"function","name":"shout","inputs":[
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"message","type":"bytes"}]},
	{"type":"function","name":"shoutAt","inputs":[
		{"name":"token","type":"address"},
		{"name":"to","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"giftAmount","type":"uint256"},
		{"name":"message","type":"bytes"}]},
	{"type":"function","name":"shoutFor","inputs":[
		{"name":"yeetId","type":"uint256"},
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"message","type":"bytes"}]}
]`

// RawEvent bundles a contract log with the transaction context needed to
// fully decode it.
type RawEvent struct {
	Log types.Log

	// Tx is the transaction that emitted the log. May be nil when the fetch
	// failed; decoding then proceeds without calldata-derived fields.
	Tx *types.Transaction

	// BlockTime is the timestamp of the containing block.
	BlockTime uint64

	// Sender is the transaction sender from the receipt. Boost events do not
	// carry the sender in their topics, so it has to come from here.
	Sender common.Address
}

// Decoder turns raw contract logs into storage events.
type Decoder struct {
	contractABI abi.ABI
	log         *logger.Logger
}

// New creates a Decoder.
func New(log *logger.Logger) (*Decoder, error) {
	contractABI, err := abi.JSON(strings.NewReader(contractABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Decoder{
		contractABI: contractABI,
		log:         log,
	}, nil
}

// Topics returns the event signatures the indexer filters on.
func (d *Decoder) Topics() []common.Hash {
	return []common.Hash{YeetEventSig, GiftEventSig, BoostEventSig}
}

// Decode converts a raw log into a storage event. Returns ErrUnknownEvent for
// logs that are not Yeet, Gift or Boost.
func (d *Decoder) Decode(raw RawEvent) (*store.ShoutEvent, error) {
	if len(raw.Log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}

	switch raw.Log.Topics[0] {
	case YeetEventSig:
		return d.decodeYeet(raw)
	case GiftEventSig:
		return d.decodeGift(raw)
	case BoostEventSig:
		return d.decodeBoost(raw)
	default:
		return nil, ErrUnknownEvent
	}
}

const wordSize = 32

func (d *Decoder) decodeYeet(raw RawEvent) (*store.ShoutEvent, error) {
	if len(raw.Log.Topics) != 4 {
		return nil, fmt.Errorf("yeet event %s: expected 4 topics, got %d", raw.Log.TxHash.Hex(), len(raw.Log.Topics))
	}
	if len(raw.Log.Data) < wordSize {
		return nil, fmt.Errorf("yeet event %s: data too short", raw.Log.TxHash.Hex())
	}

	token := common.BytesToAddress(raw.Log.Topics[1].Bytes())
	amount := new(big.Int).SetBytes(raw.Log.Topics[2].Bytes())
	sender := common.BytesToAddress(raw.Log.Topics[3].Bytes())
	yeetID := new(big.Int).SetBytes(raw.Log.Data[:wordSize])

	content, _ := d.decodeCalldata(raw.Tx)

	return &store.ShoutEvent{
		Kind:         store.KindShout,
		Sender:       sender,
		Content:      content,
		SequenceID:   yeetID.Uint64(),
		Token:        token,
		AmountBurned: FormatTokenAmount(amount),
		TxHash:       raw.Log.TxHash,
		BlockNumber:  raw.Log.BlockNumber,
		Timestamp:    int64(raw.BlockTime),
		Verified:     true,
	}, nil
}

func (d *Decoder) decodeGift(raw RawEvent) (*store.ShoutEvent, error) {
	if len(raw.Log.Topics) != 4 {
		return nil, fmt.Errorf("gift event %s: expected 4 topics, got %d", raw.Log.TxHash.Hex(), len(raw.Log.Topics))
	}
	if len(raw.Log.Data) < 2*wordSize {
		return nil, fmt.Errorf("gift event %s: data too short", raw.Log.TxHash.Hex())
	}

	token := common.BytesToAddress(raw.Log.Topics[1].Bytes())
	amount := new(big.Int).SetBytes(raw.Log.Topics[2].Bytes())
	recipient := common.BytesToAddress(raw.Log.Topics[3].Bytes())
	sender := common.BytesToAddress(raw.Log.Data[:wordSize])
	yeetID := new(big.Int).SetBytes(raw.Log.Data[wordSize : 2*wordSize])

	content, giftAmount := d.decodeCalldata(raw.Tx)

	return &store.ShoutEvent{
		Kind:         store.KindGift,
		Sender:       sender,
		Content:      content,
		SequenceID:   yeetID.Uint64(),
		Token:        token,
		AmountBurned: FormatTokenAmount(amount),
		TxHash:       raw.Log.TxHash,
		BlockNumber:  raw.Log.BlockNumber,
		Timestamp:    int64(raw.BlockTime),
		Recipient:    &recipient,
		GiftAmount:   giftAmount,
		Verified:     true,
	}, nil
}

func (d *Decoder) decodeBoost(raw RawEvent) (*store.ShoutEvent, error) {
	if len(raw.Log.Topics) != 4 {
		return nil, fmt.Errorf("boost event %s: expected 4 topics, got %d", raw.Log.TxHash.Hex(), len(raw.Log.Topics))
	}

	yeetID := new(big.Int).SetBytes(raw.Log.Topics[1].Bytes())
	token := common.BytesToAddress(raw.Log.Topics[2].Bytes())
	amount := new(big.Int).SetBytes(raw.Log.Topics[3].Bytes())

	// A boost has no message and no sequence id of its own. The boosted
	// shout is referenced through BoostForSequenceID only, so a boost row
	// never shadows the shout that owns the sequence id.
	boostFor := yeetID.Uint64()

	return &store.ShoutEvent{
		Kind:               store.KindBoost,
		Sender:             raw.Sender,
		Token:              token,
		AmountBurned:       FormatTokenAmount(amount),
		TxHash:             raw.Log.TxHash,
		BlockNumber:        raw.Log.BlockNumber,
		Timestamp:          int64(raw.BlockTime),
		BoostForSequenceID: &boostFor,
		Verified:           true,
	}, nil
}

// decodeCalldata extracts the broadcast message and, for shoutAt, the gift
// amount from the transaction input. Calldata decoding is best effort:
// transactions routed through proxies or multicalls do not match the contract
// ABI and simply yield no content.
func (d *Decoder) decodeCalldata(tx *types.Transaction) (content, giftAmount *string) {
	if tx == nil {
		return nil, nil
	}

	input := tx.Data()
	if len(input) < 4 {
		return nil, nil
	}

	method, err := d.contractABI.MethodById(input[:4])
	if err != nil {
		d.log.Debugf("transaction %s: unknown method selector %s", tx.Hash().Hex(), hex.EncodeToString(input[:4]))
		return nil, nil
	}

	args := make(map[string]any)
	if err := method.Inputs.UnpackIntoMap(args, input[4:]); err != nil {
		d.log.Debugf("transaction %s: failed to unpack %s calldata: %v", tx.Hash().Hex(), method.Name, err)
		return nil, nil
	}

	if message, ok := args["message"].([]byte); ok && len(message) > 0 {
		text := messageToContent(message)
		content = &text
	}

	if rawGift, ok := args["giftAmount"].(*big.Int); ok {
		formatted := FormatTokenAmount(rawGift)
		giftAmount = &formatted
	}

	return content, giftAmount
}

// messageToContent renders message bytes as text when they are valid UTF-8,
// otherwise as a 0x-prefixed hex string so no payload is ever lost.
func messageToContent(message []byte) string {
	if utf8.Valid(message) {
		return string(message)
	}
	return "0x" + hex.EncodeToString(message)
}
