package auth

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-0123456789")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestAuthenticator(t *testing.T, opts ...Option) *Authenticator {
	t.Helper()
	a, err := New(testSecret, opts...)
	require.NoError(t, err)
	return a
}

// sign builds a token with arbitrary claims, the way older issuers did.
func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestNew_RejectsEmptySecret(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNew_CopiesSecret(t *testing.T) {
	secret := []byte("mutable-secret")
	a, err := New(secret)
	require.NoError(t, err)

	cred, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)

	secret[0] = 'X'
	_, err = a.Verify(cred.Token)
	require.NoError(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t)

	cred, err := a.Issue(Identity{ID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	assert.Equal(t, DefaultTTL, cred.ExpiresAt.Sub(cred.IssuedAt))

	s, err := a.Verify(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", s.UserID)
	assert.Equal(t, "a@x.com", s.Email)
	assert.True(t, s.ExpiresAt.Equal(cred.ExpiresAt))
}

func TestIssue_DistinctTokensForSameIdentity(t *testing.T) {
	t.Parallel()
	clock := newFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	a := newTestAuthenticator(t, WithClock(clock.Now))

	first, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)
	second, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)
	clock.Set(clock.Now().Add(time.Minute))
	third, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.NotEqual(t, second.Token, third.Token)
	for _, c := range []Credential{first, second, third} {
		s, err := a.Verify(c.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", s.UserID)
	}
}

func TestIssue_RejectsEmptyID(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.Issue(Identity{ID: "  ", Email: "a@x.com"})
	require.ErrorIs(t, err, ErrMalformedIdentity)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	clock := newFakeClock(t0)
	a := newTestAuthenticator(t, WithClock(clock.Now))

	cred, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)
	require.Equal(t, t0.Add(7*24*time.Hour), cred.ExpiresAt)

	clock.Set(t0.Add(7*24*time.Hour - time.Second))
	s, err := a.Verify(cred.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)

	clock.Set(t0.Add(7*24*time.Hour + time.Second))
	_, err = a.Verify(cred.Token)
	require.ErrorIs(t, err, ErrInvalidCredential)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_CustomTTL(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(t0)
	a := newTestAuthenticator(t, WithClock(clock.Now), WithTTL(time.Hour))
	assert.Equal(t, time.Hour, a.TTL())

	cred, err := a.Issue(Identity{ID: "u1"})
	require.NoError(t, err)

	clock.Set(t0.Add(2 * time.Hour))
	_, err = a.Verify(cred.Token)
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_EveryBitFlipIsRejected(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t)

	cred, err := a.Issue(Identity{ID: "user-123", Email: "a@x.com"})
	require.NoError(t, err)

	raw := []byte(cred.Token)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			tampered := append([]byte(nil), raw...)
			tampered[i] ^= 1 << bit

			_, err := a.Verify(string(tampered))
			if !errors.Is(err, ErrInvalidCredential) {
				t.Fatalf("flip byte %d bit %d: want ErrInvalidCredential, got %v", i, bit, err)
			}
		}
	}
}

func TestVerify_Absent(t *testing.T) {
	a := newTestAuthenticator(t)

	_, err := a.Verify("")
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_InvalidCredentials(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "two segments", token: "abc.def"},
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{"sub": "u1", "exp": exp})},
		{name: "other algorithm", token: sign(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"sub": "u1", "exp": exp})},
		{name: "alg none", token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "u1", "exp": exp})},
		{name: "no expiry", token: sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u1"})},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()})},
		{name: "not yet valid", token: sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u1", "exp": exp, "nbf": time.Now().Add(time.Minute).Unix()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Verify(tt.token)
			require.ErrorIs(t, err, ErrInvalidCredential)
			assert.NotErrorIs(t, err, ErrMalformedIdentity)
		})
	}
}

func TestVerify_IdentityNormalization(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{name: "subject", claims: jwt.MapClaims{"sub": "s1", "exp": exp}, want: "s1"},
		{name: "secondary alias only", claims: jwt.MapClaims{"id": "legacy-1", "email": "a@x.com", "exp": exp}, want: "legacy-1"},
		{name: "tertiary alias only", claims: jwt.MapClaims{"user_id": "legacy-2", "exp": exp}, want: "legacy-2"},
		{name: "subject beats aliases", claims: jwt.MapClaims{"sub": "s1", "id": "i1", "user_id": "u1", "exp": exp}, want: "s1"},
		{name: "secondary beats tertiary", claims: jwt.MapClaims{"id": "i1", "user_id": "u1", "exp": exp}, want: "i1"},
		{name: "blank subject falls through", claims: jwt.MapClaims{"sub": "  ", "id": "i1", "exp": exp}, want: "i1"},
		{name: "non-string subject falls through", claims: jwt.MapClaims{"sub": 42, "user_id": "u1", "exp": exp}, want: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := a.Verify(sign(t, jwt.SigningMethodHS256, testSecret, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.UserID)
		})
	}
}

func TestVerify_MalformedIdentity(t *testing.T) {
	t.Parallel()
	a := newTestAuthenticator(t)
	exp := time.Now().Add(time.Hour).Unix()

	for name, claims := range map[string]jwt.MapClaims{
		"no id fields":  {"email": "a@x.com", "exp": exp},
		"all empty":     {"sub": "", "id": "", "user_id": "", "exp": exp},
		"wrong types":   {"sub": 1, "id": true, "user_id": []string{"x"}, "exp": exp},
		"whitespace id": {"id": "\t ", "exp": exp},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(sign(t, jwt.SigningMethodHS256, testSecret, claims))
			require.ErrorIs(t, err, ErrMalformedIdentity)
			assert.NotErrorIs(t, err, ErrInvalidCredential)
		})
	}
}

func TestVerify_ConcurrentCalls(t *testing.T) {
	a := newTestAuthenticator(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred, err := a.Issue(Identity{ID: "u1"})
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := a.Verify(cred.Token); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
