// Package chain reads on-chain state over JSON-RPC.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"multichain-settlement/config"
	"multichain-settlement/pkg/calldata"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// ContractCaller is the read side of an RPC client. *ethclient.Client
// satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// NonceReader implements ports.NonceReader against the forwarder contract.
type NonceReader struct {
	forwarder common.Address
	callers   map[int64]ContractCaller
	closers   []func()
}

// NewNonceReader wraps already connected callers, keyed by chain id.
func NewNonceReader(forwarder common.Address, callers map[int64]ContractCaller) *NonceReader {
	return &NonceReader{forwarder: forwarder, callers: callers}
}

// Dial connects to every configured chain and checks that each endpoint
// serves the chain it is configured for.
func Dial(ctx context.Context, forwarder common.Address, chains []config.ChainConfig, log zerolog.Logger) (*NonceReader, error) {
	r := NewNonceReader(forwarder, make(map[int64]ContractCaller, len(chains)))
	for _, c := range chains {
		client, err := ethclient.DialContext(ctx, c.RPCURL)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("dial chain %d: %w", c.ID, err)
		}

		idCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		id, err := client.ChainID(idCtx)
		cancel()
		if err != nil {
			client.Close()
			r.Close()
			return nil, fmt.Errorf("chain %d: read chain id: %w", c.ID, err)
		}
		if id.Int64() != c.ID {
			client.Close()
			r.Close()
			return nil, fmt.Errorf("chain %d: rpc endpoint serves chain %s", c.ID, id)
		}

		r.callers[c.ID] = client
		r.closers = append(r.closers, client.Close)
		log.Info().Int64("chain_id", c.ID).Str("name", c.Name).Msg("Chain RPC connected")
	}
	return r, nil
}

// ForwarderNonce reads nonces(owner) on the forwarder at the latest block.
func (r *NonceReader) ForwarderNonce(ctx context.Context, chainID int64, owner common.Address) (*big.Int, error) {
	caller, ok := r.callers[chainID]
	if !ok {
		return nil, fmt.Errorf("no rpc client for chain %d", chainID)
	}

	forwarder := r.forwarder
	out, err := caller.CallContract(ctx, ethereum.CallMsg{
		To:   &forwarder,
		Data: calldata.Nonces(owner),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call nonces on chain %d: %w", chainID, err)
	}
	if len(out) != 32 {
		return nil, fmt.Errorf("nonces on chain %d returned %d bytes", chainID, len(out))
	}
	return new(big.Int).SetBytes(out), nil
}

// Close disconnects dialed clients.
func (r *NonceReader) Close() {
	for _, closeFn := range r.closers {
		closeFn()
	}
	r.closers = nil
}
