package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "member-ledger", time.Hour)

	token, err := tm.Generate("admin")
	require.NoError(t, err)

	subject, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	issuer := NewTokenManager("secret", "member-ledger", time.Hour)

	token, err := issuer.Generate("admin")
	require.NoError(t, err)

	tests := []struct {
		name string
		tm   *TokenManager
	}{
		{"wrong secret", NewTokenManager("other", "member-ledger", time.Hour)},
		{"wrong issuer", NewTokenManager("secret", "someone-else", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tm.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", "member-ledger", time.Minute)
	issuedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issuedAt }

	token, err := tm.Generate("admin")
	require.NoError(t, err)

	tm.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOperatorAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	op := NewOperator("admin", string(hash))

	assert.True(t, op.Authenticate("admin", "s3cret!"))
	assert.False(t, op.Authenticate("admin", "wrong"))
	assert.False(t, op.Authenticate("root", "s3cret!"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")))
}
