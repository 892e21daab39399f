package cardstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"HabitCards_V0.1/internal/database"
	"HabitCards_V0.1/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	out := map[string]Store{
		"memory": NewMemory(),
		"sqlite": NewSQLite(db, time.Second),
	}

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		svc, err := database.NewService(context.Background(), dsn, database.PoolOptions{MaxConns: 2})
		require.NoError(t, err)
		t.Cleanup(svc.Close)
		out["postgres"] = NewPostgres(svc.Queries(), time.Second)
	}
	return out
}

func sampleDraft(title string) generator.Draft {
	return generator.Draft{
		Title:           title,
		Description:     "Breathe in for four counts.",
		DurationSeconds: 90,
		IsAiGenerated:   true,
	}
}

func TestSave_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := "round-trip-" + name + "-" + time.Now().Format(time.RFC3339Nano)

			saved, err := s.Save(ctx, sampleDraft("Calm"), SaveContext{
				TemplateID:  7,
				Category:    "breathing",
				Difficulty:  "easy",
				Tags:        []string{"stress", "breathing"},
				Language:    "EN",
				UserGoal:    "reduce stress",
				EnergyLevel: "low",
				UserID:      userID,
			})
			require.NoError(t, err)

			assert.NotZero(t, saved.ID)
			assert.False(t, saved.CreatedAt.IsZero())
			require.NotNil(t, saved.TemplateID)
			assert.Equal(t, int64(7), *saved.TemplateID)
			assert.Equal(t, "Calm", saved.Title)
			assert.Equal(t, 90, saved.DurationSeconds)
			assert.Equal(t, []string{"stress", "breathing"}, saved.Tags)
			assert.True(t, saved.IsAiGenerated)
			require.NotNil(t, saved.UserGoal)
			assert.Equal(t, "reduce stress", *saved.UserGoal)

			listed, err := s.ListRecent(ctx, userID, 20)
			require.NoError(t, err)
			require.Len(t, listed, 1)

			got := listed[0]
			assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
			got.CreatedAt = saved.CreatedAt
			assert.Equal(t, saved, got)
		})
	}
}

func TestSave_WithoutTemplateOrContext(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			saved, err := s.Save(context.Background(), generator.Draft{Title: "T", Description: "D"}, SaveContext{Language: "RU"})
			require.NoError(t, err)

			assert.Nil(t, saved.TemplateID)
			assert.Nil(t, saved.UserGoal)
			assert.Nil(t, saved.EnergyLevel)
			assert.Nil(t, saved.UserID)
			assert.False(t, saved.IsAiGenerated)
			assert.Equal(t, []string{}, saved.Tags)
		})
	}
}

func TestSave_RejectsEmptyText(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(context.Background(), generator.Draft{Title: "only title"}, SaveContext{Language: "EN"})
			var perr *PersistenceError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "save", perr.Op)
		})
	}
}

func TestListRecent_OrderFilterAndLimit(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			suffix := name + "-" + time.Now().Format(time.RFC3339Nano)
			alice, bob := "alice-"+suffix, "bob-"+suffix

			var aliceIDs []int64
			for i, user := range []string{alice, bob, alice, alice} {
				c, err := s.Save(ctx, sampleDraft(string(rune('A'+i))), SaveContext{Language: "EN", UserID: user})
				require.NoError(t, err)
				if user == alice {
					aliceIDs = append(aliceIDs, c.ID)
				}
				time.Sleep(2 * time.Millisecond)
			}

			got, err := s.ListRecent(ctx, alice, 20)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []int64{aliceIDs[2], aliceIDs[1], aliceIDs[0]}, []int64{got[0].ID, got[1].ID, got[2].ID})
			for i := 1; i < len(got); i++ {
				assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt))
			}

			limited, err := s.ListRecent(ctx, alice, 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)
			assert.Equal(t, aliceIDs[2], limited[0].ID)

			bobs, err := s.ListRecent(ctx, bob, 20)
			require.NoError(t, err)
			assert.Len(t, bobs, 1)

			all, err := s.ListRecent(ctx, "", 3)
			require.NoError(t, err)
			assert.Len(t, all, 3)
			assert.Equal(t, aliceIDs[2], all[0].ID)

			// Reads are pure: same arguments, same answer.
			again, err := s.ListRecent(ctx, alice, 20)
			require.NoError(t, err)
			assert.Equal(t, got, again)

			none, err := s.ListRecent(ctx, "nobody-"+suffix, 20)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestCount(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.Save(ctx, sampleDraft("t"), SaveContext{Language: "EN"})
		require.NoError(t, err)
	}
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSQLite_SaveSurvivesCancelledRequest(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	s := NewSQLite(db, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saved, err := s.Save(ctx, sampleDraft("late"), SaveContext{Language: "EN"})
	require.NoError(t, err)

	listed, err := s.ListRecent(context.Background(), "", 5)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, saved.ID, listed[0].ID)
}

func TestSQLite_ClosedDatabaseIsPersistenceError(t *testing.T) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	s := NewSQLite(db, time.Second)
	db.Close()

	_, err = s.Save(context.Background(), sampleDraft("x"), SaveContext{Language: "EN"})
	var perr *PersistenceError
	assert.True(t, errors.As(err, &perr))

	_, err = s.ListRecent(context.Background(), "", 5)
	assert.True(t, errors.As(err, &perr))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		limit, def, max, want int
	}{
		{0, 20, 100, 20},
		{-5, 20, 100, 20},
		{10, 20, 100, 10},
		{1000, 20, 100, 100},
		{0, 0, 100, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.limit, tt.def, tt.max), "%+v", tt)
	}
}
