package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAesGcmService(t *testing.T) {
	tests := []struct {
		name    string
		hexKey  string
		wantErr bool
	}{
		{"valid 32-byte key", testKey, false},
		{"invalid hex", "zzzz", true},
		{"AES-128 key rejected", "0123456789abcdef0123456789abcdef", true},
		{"too long", testKey + "00", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewAesGcmService(tt.hexKey)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	sealed, err := svc.Seal("ledger-api-key", "123456789")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ledger-api-key")

	plain, err := svc.Open(sealed, "123456789")
	require.NoError(t, err)
	assert.Equal(t, "ledger-api-key", plain)
}

func TestSeal_UniqueNonces(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	a, err := svc.Seal("same", "1")
	require.NoError(t, err)
	b, err := svc.Seal("same", "1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestOpen_WrongAccount(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	sealed, err := svc.Seal("ledger-api-key", "alice")
	require.NoError(t, err)

	_, err = svc.Open(sealed, "mallory")
	assert.Error(t, err)
}

func TestOpen_Malformed(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	_, err = svc.Open("not-hex!!", "1")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = svc.Open("abcd", "1")
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestOpen_Tampered(t *testing.T) {
	svc, err := NewAesGcmService(testKey)
	require.NoError(t, err)

	sealed, err := svc.Seal("secret", "1")
	require.NoError(t, err)

	tampered := []byte(sealed)
	if tampered[len(tampered)-1] == '0' {
		tampered[len(tampered)-1] = '1'
	} else {
		tampered[len(tampered)-1] = '0'
	}
	_, err = svc.Open(string(tampered), "1")
	assert.Error(t, err)
}

func TestNoopService_Passthrough(t *testing.T) {
	var svc Service = NoopService{}

	sealed, err := svc.Seal("plain", "1")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	plain, err := svc.Open(sealed, "2")
	require.NoError(t, err)
	assert.Equal(t, "plain", plain)
}
