package repository

import (
	"context"
	"errors"

	"taskhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetDetailed(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetAll(ctx context.Context) ([]model.Task, error)
	GetVisibleTo(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, taskID, commentID uuid.UUID) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID uuid.UUID) error
	AddPhoto(ctx context.Context, photo *model.Photo) error
	GetPhoto(ctx context.Context, taskID, photoID uuid.UUID) (*model.Photo, error)
	DeletePhoto(ctx context.Context, photoID uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID without associations
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetDetailed retrieves a task with assignee, creator, photos and comments
// (including comment authors) preloaded.
func (r *TaskRepository) GetDetailed(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Preload("Photos").
		Preload("Comments").
		Preload("Comments.Author").
		First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// GetAll retrieves every task (admin view)
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Preload("Photos").
		Preload("Comments").
		Preload("Comments.Author").
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// GetVisibleTo retrieves tasks where the user is assignee or creator
func (r *TaskRepository) GetVisibleTo(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Preload("Photos").
		Preload("Comments").
		Preload("Comments.Author").
		Where("assigned_to = ? OR created_by = ?", userID, userID).
		Order("created_at DESC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update saves an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID. Photo and comment rows go with it via
// the cascade constraint; photo files are the caller's problem.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AddComment appends a comment to a task
func (r *TaskRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetComment retrieves a comment belonging to the given task
func (r *TaskRepository) GetComment(ctx context.Context, taskID, commentID uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	result := r.db.WithContext(ctx).
		First(&comment, "id = ? AND task_id = ?", commentID, taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, result.Error
	}
	return &comment, nil
}

// DeleteComment removes a comment by its ID
func (r *TaskRepository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Comment{}, "id = ?", commentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// AddPhoto stores a photo record and, in the same transaction, moves the
// parent task from todo to inProgress. Tasks already past todo keep their
// status.
func (r *TaskRepository) AddPhoto(ctx context.Context, photo *model.Photo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return err
		}
		return tx.Model(&model.Task{}).
			Where("id = ? AND status = ?", photo.TaskID, model.StatusTodo).
			Update("status", model.StatusInProgress).Error
	})
}

// GetPhoto retrieves a photo belonging to the given task
func (r *TaskRepository) GetPhoto(ctx context.Context, taskID, photoID uuid.UUID) (*model.Photo, error) {
	var photo model.Photo
	result := r.db.WithContext(ctx).
		First(&photo, "id = ? AND task_id = ?", photoID, taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, result.Error
	}
	return &photo, nil
}

// DeletePhoto removes a photo record by its ID
func (r *TaskRepository) DeletePhoto(ctx context.Context, photoID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Photo{}, "id = ?", photoID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}
