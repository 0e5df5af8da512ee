package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
	"github.com/BuzzLyutic/tasks-patch-api/pkg/patch"
)

func strPtr(s string) *string { return &s }

func assertSameTask(t *testing.T, want, got model.Task) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at: want %v, got %v", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updated_at: want %v, got %v", want.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
}

// runContract checks the behaviour every TaskRepository must share.
func runContract(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("create generates unique ids and equal timestamps", func(t *testing.T) {
		r := newRepo(t)
		seen := make(map[string]bool)
		for i := 0; i < 5; i++ {
			task, err := r.Create(ctx, model.CreateInput{Title: fmt.Sprintf("Task %d", i)})
			require.NoError(t, err)
			assert.NotEmpty(t, task.ID)
			assert.False(t, seen[task.ID], "id %s repeated", task.ID)
			seen[task.ID] = true
			assert.True(t, task.CreatedAt.Equal(task.UpdatedAt))
			assert.Nil(t, task.Description)
		}
	})

	t.Run("create then get round-trips", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Round trip", Description: strPtr("")})
		require.NoError(t, err)

		fetched, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assertSameTask(t, created, fetched)
		require.NotNil(t, fetched.Description)
		assert.Equal(t, "", *fetched.Description, "empty description is not absence")
	})

	t.Run("create rejects blank title", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Create(ctx, model.CreateInput{Title: "  "})
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("update with nothing set only moves updated_at", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Keep", Description: strPtr("same")})
		require.NoError(t, err)

		updated, err := r.Update(ctx, created.ID, model.UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.Description, updated.Description)
	})

	t.Run("update clears description", func(t *testing.T) {
		r := newRepo(t)
		for _, initial := range []*string{nil, strPtr("something")} {
			created, err := r.Create(ctx, model.CreateInput{Title: "Clear", Description: initial})
			require.NoError(t, err)

			updated, err := r.Update(ctx, created.ID, model.UpdateInput{Description: patch.Clear[string]()})
			require.NoError(t, err)
			assert.Nil(t, updated.Description)

			fetched, err := r.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, fetched.Description)
		}
	})

	t.Run("update sets fields", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Before"})
		require.NoError(t, err)

		updated, err := r.Update(ctx, created.ID, model.UpdateInput{
			Title:       patch.Set("After"),
			Description: patch.Set("x"),
		})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "x", *updated.Description)

		fetched, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assertSameTask(t, updated, fetched)
	})

	t.Run("null title keeps title and applies the rest", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Required"})
		require.NoError(t, err)

		in := model.UpdateInput{}
		require.NoError(t, json.Unmarshal([]byte(`{"title":null,"description":"d"}`), &in))

		updated, err := r.Update(ctx, created.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Required", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "d", *updated.Description)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		fetched, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assertSameTask(t, updated, fetched)
	})

	t.Run("update rejects blank title", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Required"})
		require.NoError(t, err)

		_, err = r.Update(ctx, created.ID, model.UpdateInput{Title: patch.Set(" "), Description: patch.Set("lost")})
		assert.ErrorIs(t, err, model.ErrValidation)

		fetched, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assertSameTask(t, created, fetched)
	})

	t.Run("missing id is not found everywhere", func(t *testing.T) {
		r := newRepo(t)
		missing := model.NewID()

		_, err := r.Get(ctx, missing)
		assert.ErrorIs(t, err, ErrorNotFound)

		_, err = r.Update(ctx, missing, model.UpdateInput{Title: patch.Set("x")})
		assert.ErrorIs(t, err, ErrorNotFound)
		assert.Contains(t, err.Error(), missing)

		err = r.Delete(ctx, missing)
		assert.ErrorIs(t, err, ErrorNotFound)
		assert.Contains(t, err.Error(), missing)
	})

	t.Run("delete is not idempotent", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Delete me"})
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, created.ID))

		_, err = r.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrorNotFound)

		err = r.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("scenario", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, model.CreateInput{Title: "Write spec"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Nil(t, created.Description)

		done, err := r.Update(ctx, created.ID, model.UpdateInput{Description: patch.Set("done")})
		require.NoError(t, err)
		assert.Equal(t, "Write spec", done.Title)
		require.NotNil(t, done.Description)
		assert.Equal(t, "done", *done.Description)
		assert.True(t, done.UpdatedAt.After(created.UpdatedAt))

		cleared, err := r.Update(ctx, created.ID, model.UpdateInput{Description: patch.Clear[string]()})
		require.NoError(t, err)
		assert.Nil(t, cleared.Description)
		assert.True(t, cleared.UpdatedAt.After(done.UpdatedAt))

		require.NoError(t, r.Delete(ctx, created.ID))
		_, err = r.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("concurrent updates are last writer wins", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.CreateInput{Title: "Race"})
		require.NoError(t, err)

		const writers = 8
		titles := make(map[string]bool, writers)
		for i := 0; i < writers; i++ {
			titles[fmt.Sprintf("Writer %d", i)] = true
		}

		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = r.Update(ctx, created.ID, model.UpdateInput{
					Title: patch.Set(fmt.Sprintf("Writer %d", idx)),
				})
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			require.NoError(t, err, "writer %d should not conflict", i)
		}

		final, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, titles[final.Title], "unexpected final title %q", final.Title)
		assert.True(t, final.CreatedAt.Equal(created.CreatedAt))
	})
}
