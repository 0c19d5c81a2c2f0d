package sessionsql_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/blog-client/internal/dbtest/postgrestest"
	"github.com/openkcm/blog-client/internal/session"

	sessionsql "github.com/openkcm/blog-client/internal/session/sql"
)

var dbPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pool, _, terminate := postgrestest.Start(ctx)
	dbPool = pool

	code := m.Run()

	terminate(ctx)
	os.Exit(code)
}

func TestSlot_Get(t *testing.T) {
	slot := sessionsql.NewSlot(dbPool)

	tests := []struct {
		name      string
		key       string
		want      string
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name:      "Seeded value",
			key:       postgrestest.SeededKey,
			want:      postgrestest.SeededToken,
			assertErr: assert.NoError,
		},
		{
			name: "Missing key",
			key:  "missing",
			assertErr: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, session.ErrSlotEmpty)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := slot.Get(t.Context(), tt.key)
			if !tt.assertErr(t, err, "Get() error") || err != nil {
				return
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlot_SetAndDelete(t *testing.T) {
	ctx := t.Context()
	slot := sessionsql.NewSlot(dbPool)
	const key = "set-delete"

	require.NoError(t, slot.Set(ctx, key, "abc"))

	got, err := slot.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, slot.Set(ctx, key, "xyz"), "upsert must replace the previous value")

	got, err = slot.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)

	require.NoError(t, slot.Delete(ctx, key))

	_, err = slot.Get(ctx, key)
	require.ErrorIs(t, err, session.ErrSlotEmpty)

	require.NoError(t, slot.Delete(ctx, key), "deleting a missing key must succeed")
}
