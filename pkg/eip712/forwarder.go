// Package eip712 hashes and signs ERC-2771 forward requests under a fixed
// forwarder domain. Only the chain id varies between chains.
package eip712

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"multichain-settlement/pkg/calldata"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of an r ‖ s ‖ v signature.
const SignatureLength = 65

// recoveryOffset is added to the raw 0/1 recovery id. The forwarder verifies
// through ecrecover, which only accepts 27/28.
const recoveryOffset = 27

var (
	// keccak256("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)")
	DomainTypeHash = common.HexToHash("0x8b73c3c69bb8fe3d512ecc4cf759cc79239f7b179b0ffacaa9a75d522b39400f")
	// keccak256("ForwardRequest(address from,address to,uint256 value,uint256 gas,uint256 nonce,uint48 deadline,bytes data)")
	ForwardRequestTypeHash = common.HexToHash("0x7f96328b83274ebc7c1cf4f7a3abda602b51a78b7fa1d86a2ce353d75e587cac")

	typedDataPrefix = []byte{0x19, 0x01}

	ErrInvalidSignature = errors.New("eip712: invalid signature")
	ErrNilKey           = errors.New("eip712: nil private key")
)

// ForwardRequest is the message the signer authorizes. Nonce must be read
// fresh from the forwarder before every signing.
type ForwardRequest struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Gas      *big.Int
	Nonce    *big.Int
	Deadline uint64 // uint48 on chain
	Data     []byte
}

// SignedForwardRequest pairs a request with its 65-byte signature.
type SignedForwardRequest struct {
	Request   ForwardRequest
	Signature []byte
}

// ExecuteData converts the signed request into the forwarder execute tuple.
// The nonce is not part of the tuple; the forwarder tracks it itself.
func (s SignedForwardRequest) ExecuteData() calldata.ForwardRequestData {
	return calldata.ForwardRequestData{
		From:      s.Request.From,
		To:        s.Request.To,
		Value:     s.Request.Value,
		Gas:       s.Request.Gas,
		Deadline:  new(big.Int).SetUint64(s.Request.Deadline),
		Data:      s.Request.Data,
		Signature: s.Signature,
	}
}

// Domain is the forwarder's EIP-712 domain minus the chain id.
type Domain struct {
	Name              string
	Version           string
	VerifyingContract common.Address
}

// NewDomain builds the forwarder domain.
func NewDomain(name, version string, verifyingContract common.Address) Domain {
	return Domain{Name: name, Version: version, VerifyingContract: verifyingContract}
}

// Separator returns the domain separator for chainID.
func (d Domain) Separator(chainID *big.Int) (common.Hash, error) {
	enc, err := calldata.NewArgs().
		Word(calldata.Word(DomainTypeHash)).
		Word(calldata.Word(crypto.Keccak256Hash([]byte(d.Name)))).
		Word(calldata.Word(crypto.Keccak256Hash([]byte(d.Version)))).
		Uint(chainID).
		Address(d.VerifyingContract).
		Encode()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding domain: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// StructHash hashes a forward request. The dynamic data field is folded in as
// keccak256(data), per EIP-712.
func (d Domain) StructHash(req ForwardRequest) (common.Hash, error) {
	enc, err := calldata.NewArgs().
		Word(calldata.Word(ForwardRequestTypeHash)).
		Address(req.From).
		Address(req.To).
		Uint(req.Value).
		Uint(req.Gas).
		Uint(req.Nonce).
		Uint48(new(big.Int).SetUint64(req.Deadline)).
		Word(calldata.Word(crypto.Keccak256Hash(req.Data))).
		Encode()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding forward request: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// SigningHash is keccak256(0x1901 ‖ domainSeparator ‖ structHash).
func (d Domain) SigningHash(chainID *big.Int, req ForwardRequest) (common.Hash, error) {
	sep, err := d.Separator(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	sh, err := d.StructHash(req)
	if err != nil {
		return common.Hash{}, err
	}
	buf := make([]byte, 0, len(typedDataPrefix)+2*common.HashLength)
	buf = append(buf, typedDataPrefix...)
	buf = append(buf, sep.Bytes()...)
	buf = append(buf, sh.Bytes()...)
	return crypto.Keccak256Hash(buf), nil
}

// Sign produces r ‖ s ‖ v with v in 27/28 form. Nonces are RFC 6979
// deterministic, so identical inputs give identical signatures.
func Sign(key *ecdsa.PrivateKey, hash common.Hash) ([]byte, error) {
	if key == nil {
		return nil, ErrNilKey
	}
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("signing hash: %w", err)
	}
	sig[64] += recoveryOffset
	return sig, nil
}

// Recover returns the address that produced sig over hash. It applies the
// same checks as the forwarder: 27/28 recovery id and low-s.
func Recover(hash common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	v := sig[64]
	if v != recoveryOffset && v != recoveryOffset+1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, v)
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v-recoveryOffset, r, s, true) {
		return common.Address{}, fmt.Errorf("%w: malleable or out of range", ErrInvalidSignature)
	}

	raw := make([]byte, SignatureLength)
	copy(raw, sig)
	raw[64] = v - recoveryOffset
	pub, err := crypto.SigToPub(hash.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
