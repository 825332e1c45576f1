package jwtmw

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock function pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestNewCodec は各種設定でCodecが正しく生成されることを検証します。
func TestNewCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ttl     time.Duration
		wantTTL time.Duration
	}{
		{"explicit ttl", time.Hour, time.Hour},
		{"zero falls back to 30 days", 0, SessionTTL},
		{"negative falls back to 30 days", -time.Minute, SessionTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCodec("secret", tt.ttl)
			assert.Equal(t, []byte("secret"), c.secret)
			assert.Equal(t, tt.wantTTL, c.TTL())
		})
	}
}

// TestCodec_RoundTrip は発行したトークンを検証すると同じユーザーIDが得られることを検証します。
func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", SessionTTL)

	for _, id := range []uint{1, 42, 999999} {
		token, err := c.Issue(id)
		require.NoError(t, err)

		got, err := c.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

// TestCodec_Claims はsub・iat・expクレームが正しく設定されることを検証します。
func TestCodec_Claims(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewCodec("test-secret", SessionTTL).WithClock(fixedClock(issuedAt))

	tokenStr, err := c.Issue(7)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tokenStr, claims)
	require.NoError(t, err)

	assert.Equal(t, strconv.Itoa(7), claims.Subject)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(30*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

// TestCodec_Expiry は有効期限の前後で検証結果が切り替わることを検証します。
func TestCodec_Expiry(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	token, err := NewCodec("test-secret", SessionTTL).WithClock(fixedClock(issuedAt)).Issue(5)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"just issued", issuedAt, false},
		{"one second before expiry", issuedAt.Add(SessionTTL - time.Second), false},
		{"exactly at expiry", issuedAt.Add(SessionTTL), true},
		{"long after expiry", issuedAt.Add(2 * SessionTTL), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := NewCodec("test-secret", SessionTTL).WithClock(fixedClock(tt.now)).Verify(token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Zero(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(5), id)
		})
	}
}

// TestCodec_RejectsTampering はトークンのどのビットを反転しても検証に失敗することを検証します。
func TestCodec_RejectsTampering(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", SessionTTL)
	token, err := c.Issue(3)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(token)
			b[i] ^= 1 << bit
			_, err := c.Verify(string(b))
			if err == nil {
				t.Fatalf("tampered token accepted (byte %d, bit %d)", i, bit)
			}
		}
	}
}

// TestCodec_RejectsInvalidTokens は不正な構造・署名・アルゴリズムのトークンが拒否されることを検証します。
func TestCodec_RejectsInvalidTokens(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", SessionTTL)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"random string", "randomstring"},
		{"malformed", "not.a.valid.token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("wrong-secret"),
			jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp})},
		{"none algorithm", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp})},
		{"HS512 is not accepted", sign(jwt.SigningMethodHS512, []byte("test-secret"),
			jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp})},
		{"missing exp", sign(jwt.SigningMethodHS256, []byte("test-secret"),
			jwt.RegisteredClaims{Subject: "1"})},
		{"non numeric subject", sign(jwt.SigningMethodHS256, []byte("test-secret"),
			jwt.RegisteredClaims{Subject: "abc", ExpiresAt: exp})},
		{"zero subject", sign(jwt.SigningMethodHS256, []byte("test-secret"),
			jwt.RegisteredClaims{Subject: "0", ExpiresAt: exp})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := c.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Zero(t, id)
		})
	}
}

// TestCodec_DifferentUsersProduceDifferentTokens は異なるユーザーに対して異なるトークンが生成されることを検証します。
func TestCodec_DifferentUsersProduceDifferentTokens(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", time.Hour)

	token1, _ := c.Issue(1)
	token2, _ := c.Issue(2)

	assert.NotEqual(t, token1, token2)
}
