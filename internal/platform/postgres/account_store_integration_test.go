package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/cardboardgarden/garden-api/internal/domain"
	"github.com/cardboardgarden/garden-api/internal/platform/postgres"
	"github.com/cardboardgarden/garden-api/internal/store"
	"github.com/cardboardgarden/garden-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAccount(t *testing.T, username, email string, now time.Time) *domain.Account {
	t.Helper()
	acct, err := domain.NewAccount(username, email, "$2a$04$integrationdigest", "", "", now)
	require.NoError(t, err)
	return acct
}

func TestAccountStoreIntegration(t *testing.T) {
	db := testdb.Open(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	ctx := context.Background()

	t.Run("case-insensitive uniqueness", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresAccountStore(tx, nil)

			require.NoError(t, s.Create(ctx, mustAccount(t, "Alice", "alice@example.com", now)))

			err := s.Create(ctx, mustAccount(t, "ALICE", "other@example.com", now))
			assert.ErrorIs(t, err, store.ErrUsernameExists)
		})
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresAccountStore(tx, nil)

			require.NoError(t, s.Create(ctx, mustAccount(t, "bob", "Bob@Example.com", now)))

			err := s.Create(ctx, mustAccount(t, "robert", "bob@example.COM", now))
			assert.ErrorIs(t, err, store.ErrEmailExists)
		})
	})

	t.Run("lookup by identifier and tokens", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresAccountStore(tx, nil)

			acct := mustAccount(t, "carol", "carol@example.com", now)
			acct.SetVerificationToken("verify-carol", now.Add(time.Hour), now)
			require.NoError(t, s.Create(ctx, acct))
			require.NotZero(t, acct.ID)

			byName, err := s.GetByIdentifier(ctx, "CAROL")
			require.NoError(t, err)
			assert.Equal(t, acct.ID, byName.ID)

			byEmail, err := s.GetByIdentifier(ctx, "Carol@Example.com")
			require.NoError(t, err)
			assert.Equal(t, acct.ID, byEmail.ID)

			byToken, err := s.GetByVerificationToken(ctx, "verify-carol")
			require.NoError(t, err)
			assert.Equal(t, acct.ID, byToken.ID)

			byToken.MarkEmailVerified(now)
			require.NoError(t, s.Update(ctx, byToken))

			_, err = s.GetByVerificationToken(ctx, "verify-carol")
			assert.ErrorIs(t, err, store.ErrAccountNotFound)
		})
	})

	t.Run("expired token sweep", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			s := postgres.NewPostgresAccountStore(tx, nil)

			stale := mustAccount(t, "stale", "stale@example.com", now)
			stale.SetVerificationToken("stale-verify", now.Add(-time.Hour), now)
			stale.SetResetToken("stale-reset", now.Add(-time.Minute), now)
			require.NoError(t, s.Create(ctx, stale))

			fresh := mustAccount(t, "fresh", "fresh@example.com", now)
			fresh.SetVerificationToken("fresh-verify", now.Add(time.Hour), now)
			require.NoError(t, s.Create(ctx, fresh))

			sweep, err := s.ClearExpiredTokens(ctx, now)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, sweep.VerificationTokens, int64(1))
			assert.GreaterOrEqual(t, sweep.ResetTokens, int64(1))

			again, err := s.ClearExpiredTokens(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, store.TokenSweep{}, again)

			reloaded, err := s.GetByID(ctx, stale.ID)
			require.NoError(t, err)
			assert.Nil(t, reloaded.VerificationToken)
			assert.Nil(t, reloaded.ResetToken)

			kept, err := s.GetByID(ctx, fresh.ID)
			require.NoError(t, err)
			require.NotNil(t, kept.VerificationToken)
			assert.Equal(t, "fresh-verify", *kept.VerificationToken)
		})
	})
}
