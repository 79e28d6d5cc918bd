package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/storefront/adapters/jar"
	"storefront/internal/storefront/app/credentials"
	"storefront/internal/storefront/domain/entities"
	"storefront/internal/storefront/testutil"
)

// rawJar хранит значения без учета срока действия.
type rawJar struct {
	values  map[string]string
	expires map[string]time.Time
}

func newRawJar() *rawJar {
	return &rawJar{values: map[string]string{}, expires: map[string]time.Time{}}
}

func (j *rawJar) Set(_ context.Context, name, value string, expires time.Time) error {
	j.values[name] = value
	j.expires[name] = expires
	return nil
}

func (j *rawJar) Get(_ context.Context, name string) (string, bool, error) {
	v, ok := j.values[name]
	return v, ok, nil
}

func (j *rawJar) Delete(_ context.Context, names ...string) error {
	for _, n := range names {
		delete(j.values, n)
		delete(j.expires, n)
	}
	return nil
}

func TestSaveThenRead(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	store := credentials.NewStore(jar.NewMemoryJar(clock.Now), clock.Now)

	accessExp := clock.Now().Add(5 * time.Minute)
	refreshExp := clock.Now().Add(24 * time.Hour)
	pair := testutil.Pair(t, accessExp, refreshExp, false)

	require.NoError(t, store.Save(ctx, pair))

	tokens := store.Read(ctx)
	require.Equal(t, pair.AccessToken, tokens.AccessToken)
	require.Equal(t, pair.RefreshToken, tokens.RefreshToken)

	gotExp, err := store.Expiry(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, accessExp.Unix(), gotExp.Unix())

	assert.True(t, store.IsLogged(ctx))
	assert.False(t, store.IsAdmin(ctx))
}

func TestSavePersistsWithClaimExpiries(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	raw := newRawJar()
	store := credentials.NewStore(raw, func() time.Time { return now })

	accessExp := now.Add(5 * time.Minute)
	refreshExp := now.Add(24 * time.Hour)
	require.NoError(t, store.Save(ctx, testutil.Pair(t, accessExp, refreshExp, true)))

	assert.Equal(t, accessExp.Unix(), raw.expires[credentials.CookieAccessToken].Unix())
	assert.Equal(t, refreshExp.Unix(), raw.expires[credentials.CookieRefreshToken].Unix())
	assert.Equal(t, refreshExp.Unix(), raw.expires[credentials.CookieIsAdmin].Unix())
	assert.Equal(t, "true", raw.values[credentials.CookieIsAdmin])
	assert.True(t, store.IsAdmin(ctx))
}

func TestAccessTokenNotReadablePastExpiry(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	store := credentials.NewStore(jar.NewMemoryJar(clock.Now), clock.Now)

	require.NoError(t, store.Save(ctx, testutil.Pair(t,
		clock.Now().Add(time.Minute), clock.Now().Add(time.Hour), false)))

	clock.Advance(2 * time.Minute)

	tokens := store.Read(ctx)
	assert.Empty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.True(t, store.IsLogged(ctx))
}

func TestIsLoggedFalseForExpiredRefreshStillPresent(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	raw := newRawJar()
	store := credentials.NewStore(raw, clock.Now)

	require.NoError(t, store.Save(ctx, testutil.Pair(t,
		clock.Now().Add(time.Minute), clock.Now().Add(time.Hour), false)))

	clock.Advance(2 * time.Hour)

	assert.NotEmpty(t, raw.values[credentials.CookieRefreshToken], "refresh token is still physically present")
	assert.False(t, store.IsLogged(ctx))
}

func TestSaveRejectsMalformedTokens(t *testing.T) {
	ctx := context.Background()
	raw := newRawJar()
	store := credentials.NewStore(raw, nil)

	cases := map[string]entities.CredentialPair{
		"garbage access": {AccessToken: "not-a-jwt", RefreshToken: testutil.Token(t, "r", time.Now().Add(time.Hour))},
		"garbage refresh": {AccessToken: testutil.Token(t, "a", time.Now().Add(time.Hour)), RefreshToken: "x.y.z"},
		"empty": {},
	}

	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			err := store.Save(ctx, pair)
			require.ErrorIs(t, err, credentials.ErrMalformedToken)
			assert.Empty(t, raw.values)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	store := credentials.NewStore(jar.NewMemoryJar(clock.Now), clock.Now)

	require.NoError(t, store.Save(ctx, testutil.Pair(t,
		clock.Now().Add(time.Minute), clock.Now().Add(time.Hour), true)))
	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, entities.Tokens{}, store.Read(ctx))
	assert.False(t, store.IsLogged(ctx))
	assert.False(t, store.IsAdmin(ctx))
}
