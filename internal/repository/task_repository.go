package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// TaskRepository is the SQLite-backed TaskStore.
type TaskRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

// Seed inserts tasks when the table is empty, so restarts keep user changes.
func (r *TaskRepository) Seed(ctx context.Context, tasks []model.Task) error {
	var count int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Task{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	if count > 0 || len(tasks) == 0 {
		return nil
	}
	if err := db.CreateInBatches(&tasks, 100).Error; err != nil {
		return fmt.Errorf("seed tasks: %w", err)
	}
	return nil
}

// GetAll lists tasks newest id first, matching front insertion of new tasks.
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (model.Task, error) {
	task, err := findTask(r.db.WithContext(ctx), id)
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// Create assigns max(id)+1 inside a transaction.
func (r *TaskRepository) Create(ctx context.Context, input model.NewTask) (model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int
		if err := tx.Model(&model.Task{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		task = input.Build(maxID+1, r.now())
		return tx.Create(&task).Error
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(tx, id)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}
		model.ApplyPatch(&task, patch, r.now())
		return tx.Save(&task).Error
	})
	if err != nil {
		return model.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	return nil
}

func findTask(db *gorm.DB, id int) (model.Task, error) {
	var task model.Task
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}
