package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/tasks-patch-api/pkg/patch"
)

type Task struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
}

type CreateInput struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Description *string `json:"description"`
}

// UpdateInput is a PATCH body. Keys left out of the JSON object stay Unchanged.
type UpdateInput struct {
	Title       patch.Field[string] `json:"title"`
	Description patch.Field[string] `json:"description"`
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Now returns the current time in UTC at the precision both stores keep.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NextUpdatedAt returns now, or prev+1µs when now does not move past prev.
func NextUpdatedAt(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

// NewTask builds the entity a backend persists for in.
func NewTask(in CreateInput, now time.Time) Task {
	return Task{
		ID:          NewID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       in.Title,
		Description: cloneString(in.Description),
	}
}

// Apply resolves every field of in against existing and stamps updated_at.
// Every backend goes through Apply so the merge rule exists once. Title is
// required, so only a Set title replaces it; Cleared keeps the stored one.
func Apply(existing Task, in UpdateInput, now time.Time) (Task, error) {
	if err := in.Validate(); err != nil {
		return existing, err
	}

	out := existing
	if title, ok := in.Title.Value(); ok {
		out.Title = title
	}
	out.Description = cloneString(in.Description.Resolve(existing.Description))
	out.UpdatedAt = NextUpdatedAt(existing.UpdatedAt, now)
	return out, nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
