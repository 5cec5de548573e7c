package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	issuer, verifier := NewJWTCodec("test-secret")

	token, err := issuer.Issue("user-1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	userID, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
}

func TestJWTCodec_RejectsExpiredAndForeign(t *testing.T) {
	issuer, verifier := NewJWTCodec("test-secret")

	expired, err := issuer.Issue("user-1", "alice@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = verifier.Verify(expired)
	require.Error(t, err)

	otherIssuer, _ := NewJWTCodec("other-secret")
	foreign, err := otherIssuer.Issue("user-1", "alice@example.com", time.Hour)
	require.NoError(t, err)
	_, err = verifier.Verify(foreign)
	require.Error(t, err)

	_, err = verifier.Verify("not-a-token")
	require.Error(t, err)
}
