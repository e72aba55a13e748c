package calldata

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Selector is a function selector: the first four bytes of keccak256 of the
// canonical signature.
type Selector uint32

// Bytes returns the selector in call data order.
func (s Selector) Bytes() [4]byte {
	return [4]byte{byte(s >> 24), byte(s >> 16), byte(s >> 8), byte(s)}
}

const (
	// execute(address,uint256,bytes)
	SelectorAccountExecute   Selector = 0xb61d27f6
	// execute((address,address,uint256,uint256,uint48,bytes,bytes))
	SelectorForwarderExecute Selector = 0xdf905caf
	// transfer(address,uint256)
	SelectorERC20Transfer    Selector = 0xa9059cbb
	// borrowFrom(uint256,(address,address),uint256,uint256,address,uint256)
	SelectorBorrowFrom       Selector = 0x83b4cf2f
	// pay(uint256,address,uint256,address,uint256,string,bytes)
	SelectorTerminalPay      Selector = 0xfef43257
	// cashOutTokensOf(address,uint256,uint256,address,uint256,address,bytes)
	SelectorCashOutTokensOf  Selector = 0x13da8317
	// nonces(address)
	SelectorNonces           Selector = 0x7ecebe00
)

// ForwardRequestData is the tuple accepted by the forwarder's execute.
type ForwardRequestData struct {
	From      common.Address
	To        common.Address
	Value     *big.Int
	Gas       *big.Int
	Deadline  *big.Int // uint48
	Data      []byte
	Signature []byte
}

// BorrowParams are the loan contract's borrowFrom arguments. Source is the
// (token, terminal) pair encoded inline.
type BorrowParams struct {
	RevnetID          *big.Int
	SourceToken       common.Address
	SourceTerminal    common.Address
	MinBorrowAmount   *big.Int
	CollateralCount   *big.Int
	Beneficiary       common.Address
	PrepaidFeePercent *big.Int
}

// PayParams are the terminal's pay arguments.
type PayParams struct {
	ProjectID         *big.Int
	Token             common.Address
	Amount            *big.Int
	Beneficiary       common.Address
	MinReturnedTokens *big.Int
	Memo              string
	Metadata          []byte
}

// CashOutParams are the terminal's cashOutTokensOf arguments.
type CashOutParams struct {
	Holder             common.Address
	ProjectID          *big.Int
	CashOutCount       *big.Int
	TokenToReclaim     common.Address
	MinTokensReclaimed *big.Int
	Beneficiary        common.Address
	Metadata           []byte
}

// AccountExecute encodes smart-account execute(target, value, data).
func AccountExecute(target common.Address, value *big.Int, data []byte) (string, error) {
	return encode(SelectorAccountExecute, NewArgs().
		Address(target).
		Uint(value).
		Bytes(data))
}

// ForwarderExecute encodes the forwarder's execute. The request tuple is the
// only parameter, so the block starts with a 0x20 offset word.
func ForwarderExecute(req ForwardRequestData) (string, error) {
	tuple := NewArgs().
		Address(req.From).
		Address(req.To).
		Uint(req.Value).
		Uint(req.Gas).
		Uint48(req.Deadline).
		Bytes(req.Data).
		Bytes(req.Signature)
	return encode(SelectorForwarderExecute, NewArgs().Tuple(tuple))
}

// ERC20Transfer encodes transfer(to, amount).
func ERC20Transfer(to common.Address, amount *big.Int) (string, error) {
	return encode(SelectorERC20Transfer, NewArgs().
		Address(to).
		Uint(amount))
}

// BorrowFrom encodes the loan contract's borrowFrom. The source pair is
// static and sits inline as two address words.
func BorrowFrom(p BorrowParams) (string, error) {
	return encode(SelectorBorrowFrom, NewArgs().
		Uint(p.RevnetID).
		Address(p.SourceToken).
		Address(p.SourceTerminal).
		Uint(p.MinBorrowAmount).
		Uint(p.CollateralCount).
		Address(p.Beneficiary).
		Uint(p.PrepaidFeePercent))
}

// TerminalPay encodes the terminal's pay.
func TerminalPay(p PayParams) (string, error) {
	return encode(SelectorTerminalPay, NewArgs().
		Uint(p.ProjectID).
		Address(p.Token).
		Uint(p.Amount).
		Address(p.Beneficiary).
		Uint(p.MinReturnedTokens).
		String(p.Memo).
		Bytes(p.Metadata))
}

// CashOutTokensOf encodes the terminal's cashOutTokensOf.
func CashOutTokensOf(p CashOutParams) (string, error) {
	return encode(SelectorCashOutTokensOf, NewArgs().
		Address(p.Holder).
		Uint(p.ProjectID).
		Uint(p.CashOutCount).
		Address(p.TokenToReclaim).
		Uint(p.MinTokensReclaimed).
		Address(p.Beneficiary).
		Bytes(p.Metadata))
}

// Nonces encodes the forwarder's nonces(owner) view call.
func Nonces(owner common.Address) []byte {
	data, _ := Call(SelectorNonces, NewArgs().Address(owner))
	return data
}

func encode(selector Selector, args *Args) (string, error) {
	data, err := Call(selector, args)
	if err != nil {
		return "", err
	}
	return Hex(data), nil
}
