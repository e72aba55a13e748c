// Package create2 derives counterfactual smart-account addresses.
package create2

import (
	"errors"
	"fmt"
	"math/big"

	"multichain-settlement/pkg/calldata"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrMissingInitCodeHash = errors.New("create2: init code hash is not configured")
	ErrMissingFactory      = errors.New("create2: factory address is not configured")
)

// FactorySalt is keccak256(abi.encode(owner, salt)), the salt the factory
// passes to CREATE2.
func FactorySalt(owner common.Address, salt *big.Int) (common.Hash, error) {
	enc, err := calldata.NewArgs().Address(owner).Uint(salt).Encode()
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding salt: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// Address computes keccak256(0xff ‖ deployer ‖ salt ‖ initCodeHash)[12:].
func Address(deployer common.Address, salt, initCodeHash common.Hash) common.Address {
	return crypto.CreateAddress2(deployer, salt, initCodeHash.Bytes())
}

// Deriver computes account addresses for one factory.
type Deriver struct {
	factory      common.Address
	initCodeHash common.Hash
}

// NewDeriver fails when either the factory or its init code hash is unset.
func NewDeriver(factory common.Address, initCodeHash common.Hash) (*Deriver, error) {
	if factory == (common.Address{}) {
		return nil, ErrMissingFactory
	}
	if initCodeHash == (common.Hash{}) {
		return nil, ErrMissingInitCodeHash
	}
	return &Deriver{factory: factory, initCodeHash: initCodeHash}, nil
}

// Derive returns the account address for (owner, salt). Deployment state does
// not matter.
func (d *Deriver) Derive(owner common.Address, salt *big.Int) (common.Address, error) {
	fs, err := FactorySalt(owner, salt)
	if err != nil {
		return common.Address{}, err
	}
	return Address(d.factory, fs, d.initCodeHash), nil
}

// Factory returns the configured factory address.
func (d *Deriver) Factory() common.Address { return d.factory }
