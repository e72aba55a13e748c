package service

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"multichain-settlement/internal/core/domain"
	"multichain-settlement/internal/core/ports"
	"multichain-settlement/pkg/apperror"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// KeyServiceImpl implements ports.KeyService. Keys are stored as 32 raw bytes
// sealed with the user id as associated data, and are decrypted for one
// signing operation at a time.
type KeyServiceImpl struct {
	keyRepo ports.SigningKeyRepository
	encSvc  ports.EncryptionService
}

// NewKeyService creates a new KeyServiceImpl.
func NewKeyService(keyRepo ports.SigningKeyRepository, encSvc ports.EncryptionService) *KeyServiceImpl {
	return &KeyServiceImpl{keyRepo: keyRepo, encSvc: encSvc}
}

// Address returns the user's signer address without decrypting the key.
func (s *KeyServiceImpl) Address(ctx context.Context, userID uuid.UUID) (common.Address, error) {
	k, err := s.lookup(ctx, userID)
	if err != nil {
		return common.Address{}, err
	}
	return k.Address, nil
}

// WithKey decrypts the user's key, hands it to fn and wipes it on return.
func (s *KeyServiceImpl) WithKey(ctx context.Context, userID uuid.UUID, fn func(key *ecdsa.PrivateKey) error) error {
	k, err := s.lookup(ctx, userID)
	if err != nil {
		return err
	}

	raw, err := s.encSvc.Decrypt(k.EncryptedKey, userID[:])
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("decrypt signing key: %w", err))
	}
	defer clear(raw)

	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("parse signing key: %w", err))
	}
	defer wipeKey(key)

	if addr := crypto.PubkeyToAddress(key.PublicKey); addr != k.Address {
		return apperror.InternalError(fmt.Errorf("signing key for %s does not match stored address %s", userID, k.Address.Hex()))
	}
	return fn(key)
}

func (s *KeyServiceImpl) lookup(ctx context.Context, userID uuid.UUID) (*domain.SigningKey, error) {
	k, err := s.keyRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get signing key: %w", err))
	}
	if k == nil {
		return nil, apperror.ErrNotFound("Signing key")
	}
	return k, nil
}

// EncryptKey seals a private key for storage under userID.
func EncryptKey(encSvc ports.EncryptionService, userID uuid.UUID, key *ecdsa.PrivateKey) (string, error) {
	raw := crypto.FromECDSA(key)
	defer clear(raw)
	return encSvc.Encrypt(raw, userID[:])
}

func wipeKey(key *ecdsa.PrivateKey) {
	if key.D != nil {
		clear(key.D.Bits())
		key.D.SetInt64(0)
	}
}
