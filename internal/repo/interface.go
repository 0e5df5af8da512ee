package repo

import (
	"context"
	"fmt"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
)

// TaskRepository is the storage contract every backend honours identically.
type TaskRepository interface {
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, in model.CreateInput) (model.Task, error)
	Update(ctx context.Context, id string, in model.UpdateInput) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// Backend selects the store a process runs against.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendDynamo   Backend = "dynamodb"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendPostgres, BackendDynamo:
		return b, nil
	default:
		return "", fmt.Errorf("invalid data store %q: want %q or %q", s, BackendPostgres, BackendDynamo)
	}
}

var (
	_ TaskRepository = (*PostgresRepo)(nil)
	_ TaskRepository = (*DynamoRepo)(nil)
)
