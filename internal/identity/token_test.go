package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenProvider_RoundTrip(t *testing.T) {
	p := NewTokenProvider("test-secret")

	token, err := p.Mint(User{ID: "user_1", Email: "a@example.com"}, time.Hour)
	require.NoError(t, err)

	user, err := p.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)
	assert.Equal(t, "a@example.com", user.Email)
}

func TestTokenProvider_NoExpiry(t *testing.T) {
	p := NewTokenProvider("test-secret")

	token, err := p.Mint(User{ID: "user_1"}, 0)
	require.NoError(t, err)

	user, err := p.CurrentUser(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)
}

func TestTokenProvider_Expired(t *testing.T) {
	p := NewTokenProvider("test-secret")
	p.now = func() time.Time { return time.Unix(1000, 0) }

	token, err := p.Mint(User{ID: "user_1"}, time.Minute)
	require.NoError(t, err)

	p.now = func() time.Time { return time.Unix(2000, 0) }

	_, err = p.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenProvider_WrongSecret(t *testing.T) {
	minter := NewTokenProvider("secret-a")
	verifier := NewTokenProvider("secret-b")

	token, err := minter.Mint(User{ID: "user_1"}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenProvider_TamperedPayload(t *testing.T) {
	p := NewTokenProvider("test-secret")

	token, err := p.Mint(User{ID: "user_1"}, time.Hour)
	require.NoError(t, err)

	other, err := p.Mint(User{ID: "user_2"}, time.Hour)
	require.NoError(t, err)

	// Payload from one token, signature from another.
	payload, _, _ := strings.Cut(other, ".")
	_, sig, _ := strings.Cut(token, ".")

	_, err = p.CurrentUser(context.Background(), payload+"."+sig)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokenProvider_Malformed(t *testing.T) {
	p := NewTokenProvider("test-secret")

	for _, credential := range []string{"", "no-dot", "a.b", "!!!.???"} {
		_, err := p.CurrentUser(context.Background(), credential)
		assert.ErrorIs(t, err, ErrUnauthenticated, "credential %q", credential)
	}
}
