package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var voucherPattern = regexp.MustCompile(`^[A-Z]+-[0-9A-F]{8}$`)

func TestNewVoucherCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewVoucherCode("Starbucks")
		require.NoError(t, err)
		assert.Regexp(t, voucherPattern, code)
		assert.True(t, strings.HasPrefix(code, "STARBUCKS-"))
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45, "codes should be random")
}

func TestVoucherCodeKeepsBrandPunctuation(t *testing.T) {
	cases := map[string]string{
		"Cult.fit":     "CULT.FIT-",
		"  Uber Eats ": "UBER EATS-",
		"H&M":          "H&M-",
	}
	suffix := regexp.MustCompile(`-[0-9A-F]{8}$`)
	for brand, prefix := range cases {
		code, err := NewVoucherCode(brand)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(code, prefix), code)
		assert.Regexp(t, suffix, code)
		assert.NotRegexp(t, voucherPattern, code, "only letter-only brands fit BRAND-HEX")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "user-1", "police", 5)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "user-1", Role: "police"}, claims)
}

func TestParseAccessTokenRejects(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "user-1", "citizen", 5)
	require.NoError(t, err)

	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("s3cret", "user-1", "citizen", -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	raw, err := noRole.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("s3cret", raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("s3cret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	h := HashRefreshRaw(rt.Raw)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, h, HashRefreshRaw(rt.Raw+"x"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong"))

	_, err = HashPassword(strings.Repeat("a", 73), 4)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
