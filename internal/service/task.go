package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
	"github.com/BuzzLyutic/tasks-patch-api/internal/repo"
)

type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
}

func NewTaskService(repo repo.TaskRepository, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, in model.CreateInput) (model.Task, error) {
	task, err := s.repo.Create(ctx, in)
	if err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task created", zap.String("task_id", task.ID))
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) Update(ctx context.Context, id string, in model.UpdateInput) (model.Task, error) {
	task, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return model.Task{}, err
	}

	s.logger.Info("task updated",
		zap.String("task_id", id),
		zap.Stringer("title", in.Title),
		zap.Stringer("description", in.Description),
	)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("task deleted", zap.String("task_id", id))
	return nil
}
