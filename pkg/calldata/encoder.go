// Package calldata builds ABI-encoded call data for the contracts the settlement
// pipeline talks to. Encoding is done on a typed word buffer instead of string
// concatenation so every value lands in an aligned 32-byte slot.
package calldata

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// WordSize is the ABI slot width in bytes.
const WordSize = 32

var (
	ErrNegativeValue = errors.New("calldata: negative integer")
	ErrValueOverflow = errors.New("calldata: integer does not fit in word")

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	maxUint48  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 48), big.NewInt(1))
)

// Word is a single 32-byte ABI slot.
type Word [WordSize]byte

// AddressWord left-pads an address into a slot.
func AddressWord(addr common.Address) Word {
	var w Word
	copy(w[WordSize-common.AddressLength:], addr.Bytes())
	return w
}

// UintWord left-pads an unsigned integer into a slot. nil encodes as zero.
func UintWord(v *big.Int) (Word, error) {
	return boundedUintWord(v, maxUint256)
}

// Uint48Word is UintWord with the uint48 range check applied.
func Uint48Word(v *big.Int) (Word, error) {
	return boundedUintWord(v, maxUint48)
}

// Uint64Word left-pads a uint64 into a slot.
func Uint64Word(v uint64) Word {
	w, _ := UintWord(new(big.Int).SetUint64(v))
	return w
}

func boundedUintWord(v *big.Int, limit *big.Int) (Word, error) {
	var w Word
	if v == nil {
		return w, nil
	}
	if v.Sign() < 0 {
		return w, ErrNegativeValue
	}
	if v.Cmp(limit) > 0 {
		return w, fmt.Errorf("%w: %s", ErrValueOverflow, v.String())
	}
	v.FillBytes(w[:])
	return w, nil
}

// PaddedLen rounds n up to the next multiple of WordSize.
func PaddedLen(n int) int {
	return (n + WordSize - 1) / WordSize * WordSize
}

// RightPad copies b into a zeroed buffer of PaddedLen(len(b)) bytes.
func RightPad(b []byte) []byte {
	out := make([]byte, PaddedLen(len(b)))
	copy(out, b)
	return out
}

// slot is one head entry: either a static word or a pointer to a tail blob.
type slot struct {
	word    Word
	tail    []byte
	dynamic bool
}

// Args accumulates an ABI parameter block. The first error sticks and is
// returned from Encode, so call chains do not need per-step checks.
type Args struct {
	slots []slot
	err   error
}

// NewArgs returns an empty parameter block.
func NewArgs() *Args {
	return &Args{}
}

// Word appends a raw static slot, e.g. a bytes32 hash.
func (a *Args) Word(w Word) *Args {
	a.slots = append(a.slots, slot{word: w})
	return a
}

// Address appends a static address parameter.
func (a *Args) Address(addr common.Address) *Args {
	a.slots = append(a.slots, slot{word: AddressWord(addr)})
	return a
}

// Uint appends a static uint256 parameter.
func (a *Args) Uint(v *big.Int) *Args {
	w, err := UintWord(v)
	a.setErr(err)
	a.slots = append(a.slots, slot{word: w})
	return a
}

// Uint48 appends a static uint48 parameter.
func (a *Args) Uint48(v *big.Int) *Args {
	w, err := Uint48Word(v)
	a.setErr(err)
	a.slots = append(a.slots, slot{word: w})
	return a
}

// Bytes appends a dynamic bytes parameter: a length word followed by the
// right-padded data. Empty input still produces the length word.
func (a *Args) Bytes(b []byte) *Args {
	length := Uint64Word(uint64(len(b)))
	tail := make([]byte, 0, WordSize+PaddedLen(len(b)))
	tail = append(tail, length[:]...)
	tail = append(tail, RightPad(b)...)
	a.slots = append(a.slots, slot{tail: tail, dynamic: true})
	return a
}

// String appends a dynamic string parameter, encoded like bytes.
func (a *Args) String(s string) *Args {
	return a.Bytes([]byte(s))
}

// Tuple appends a dynamic tuple parameter. The nested block is encoded with
// offsets relative to its own start.
func (a *Args) Tuple(t *Args) *Args {
	body, err := t.Encode()
	a.setErr(err)
	a.slots = append(a.slots, slot{tail: body, dynamic: true})
	return a
}

// Encode lays out heads then tails. Offsets are measured from the start of
// the parameter block.
func (a *Args) Encode() ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	headLen := len(a.slots) * WordSize
	tailLen := 0
	for _, s := range a.slots {
		if s.dynamic {
			tailLen += len(s.tail)
		}
	}

	out := make([]byte, 0, headLen+tailLen)
	offset := headLen
	for _, s := range a.slots {
		if s.dynamic {
			w := Uint64Word(uint64(offset))
			out = append(out, w[:]...)
			offset += len(s.tail)
			continue
		}
		out = append(out, s.word[:]...)
	}
	for _, s := range a.slots {
		if s.dynamic {
			out = append(out, s.tail...)
		}
	}
	return out, nil
}

func (a *Args) setErr(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

// Call prefixes an encoded parameter block with a selector.
func Call(selector Selector, args *Args) ([]byte, error) {
	body, err := args.Encode()
	if err != nil {
		return nil, err
	}
	sel := selector.Bytes()
	out := make([]byte, 0, len(sel)+len(body))
	out = append(out, sel[:]...)
	return append(out, body...), nil
}

// Hex renders call data as a 0x-prefixed lowercase hex string.
func Hex(data []byte) string {
	return hexutil.Encode(data)
}
