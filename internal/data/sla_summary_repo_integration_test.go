package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
	"github.com/target/sla-summary/internal/testutil"
)

func TestSLASummaryRepo_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	t.Run("create get update list", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			ctx := context.Background()
			require.NoError(t, EnsureSchemaIndexes(ctx, db, SLASummarySchema))
			repo := NewSLASummaryRepo(db, RepoConfig{})

			base := testutil.TestTime()
			a := testutil.NewSLASummary("wf-a").WithApp("billing", "alice").
				WithExpectedWindow(base, 3_600_000).
				WithLastModified(base.Add(time.Minute)).Build()
			b := testutil.NewSLASummary("wf-b").WithApp("billing", "bob").
				WithStatus("RUNNING", model.SLAStatusInProcess, model.EventStatusStartMet).
				WithLastModified(base.Add(2 * time.Minute)).Build()
			c := testutil.NewSLASummary("wf-c").WithApp("etl", "carol").Build()

			for _, s := range []*model.SLASummary{a, b, c} {
				require.NoError(t, repo.Create(ctx, s))
			}
			assert.True(t, apperrors.IsConflict(repo.Create(ctx, a)))

			got, err := repo.GetByJobID(ctx, "wf-a")
			require.NoError(t, err)
			assert.Equal(t, "alice", got.User)
			assert.Equal(t, int64(-1), got.ActualDuration)
			require.NotNil(t, got.ExpectedEnd)
			assert.True(t, got.ExpectedEnd.Equal(base.Add(time.Hour)))

			end := base.Add(30 * time.Minute)
			got.SetActualStart(&base)
			got.SetActualEnd(&end)
			require.NoError(t, repo.Update(ctx, got))

			got, err = repo.GetByJobID(ctx, "wf-a")
			require.NoError(t, err)
			assert.Equal(t, int64(1_800_000), got.ActualDuration)

			list, err := repo.List(ctx, model.SLASummaryListOptions{AppName: testutil.StringPtr("billing")})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "wf-b", list[0].JobID)
			assert.Equal(t, "wf-a", list[1].JobID)

			all, err := repo.List(ctx, model.SLASummaryListOptions{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "wf-c", all[2].JobID, "never-modified rows sort last")
		})
	})

	t.Run("mark processed and retention purge", func(t *testing.T) {
		testutil.WithAutoDB(t, func(db *sql.DB) {
			ctx := context.Background()
			now := testutil.TestTime()
			repo := NewSLASummaryRepo(db, RepoConfig{TimeProvider: NewFixedTimeProvider(now)})

			old := testutil.NewSLASummary("wf-old").WithLastModified(now.Add(-48 * time.Hour)).Build()
			fresh := testutil.NewSLASummary("wf-fresh").WithLastModified(now.Add(-time.Hour)).Build()
			unstamped := testutil.NewSLASummary("wf-unstamped").Build()
			for _, s := range []*model.SLASummary{old, fresh, unstamped} {
				require.NoError(t, repo.Upsert(ctx, s))
			}

			require.NoError(t, repo.MarkProcessed(ctx, "wf-fresh", 2))
			got, err := repo.GetByJobID(ctx, "wf-fresh")
			require.NoError(t, err)
			assert.Equal(t, int8(2), got.SLAProcessed)
			require.NotNil(t, got.LastModified)
			assert.True(t, got.LastModified.Equal(now))

			n, err := repo.DeleteModifiedBefore(ctx, core.DeleteModifiedBeforeParams{MaxAge: 24 * time.Hour, BatchSize: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			_, err = repo.GetByJobID(ctx, "wf-old")
			assert.True(t, apperrors.IsNotFound(err))
			_, err = repo.GetByJobID(ctx, "wf-unstamped")
			require.NoError(t, err)
		})
	})
}
