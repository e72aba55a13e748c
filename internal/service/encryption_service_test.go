package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Valid 32-byte key in hex (64 chars)
const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_NewInvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("shortkey")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("0123456789abcdef")
	assert.Error(t, err, "16-byte key is not AES-256")
}

func TestAESEncryptionService_EncryptDecrypt(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := []byte{0x01, 0x02, 0x03, 0xff}
	ciphertext, err := svc.Encrypt(plaintext, []byte("user-1"))
	require.NoError(t, err)

	decrypted, err := svc.Decrypt(ciphertext, []byte("user-1"))
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESEncryptionService_DifferentNonces(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := []byte("test_value")
	c1, err := svc.Encrypt(plaintext, nil)
	require.NoError(t, err)
	c2, err := svc.Encrypt(plaintext, nil)
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "same plaintext should produce different ciphertext due to random nonce")

	d1, _ := svc.Decrypt(c1, nil)
	d2, _ := svc.Decrypt(c2, nil)
	assert.Equal(t, d1, d2)
}

func TestAESEncryptionService_BoundToAssociatedData(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt([]byte("secret"), []byte("user-1"))
	require.NoError(t, err)

	_, err = svc.Decrypt(ciphertext, []byte("user-2"))
	assert.Error(t, err, "a ciphertext moved to another owner must not open")
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt([]byte("secret"), nil)
	require.NoError(t, err)

	tampered := ciphertext[:len(ciphertext)-2] + "ff"
	if tampered == ciphertext {
		tampered = ciphertext[:len(ciphertext)-2] + "00"
	}
	_, err = svc.Decrypt(tampered, nil)
	assert.Error(t, err)
}

func TestAESEncryptionService_Malformed(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	_, err = svc.Decrypt("zz", nil)
	assert.Error(t, err)

	_, err = svc.Decrypt("00ff", nil)
	assert.Error(t, err)
}
