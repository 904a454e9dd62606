package handler

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// PhotoStore abstracts the file side of photo uploads. Satisfied by
// *storage.LocalStore.
type PhotoStore interface {
	Save(c *gin.Context, file *multipart.FileHeader) (string, error)
	Remove(imageURL string) error
}

type TaskHandler struct {
	tasks repository.TaskRepositoryInterface
	users repository.UserRepositoryInterface
	store PhotoStore
}

func NewTaskHandler(
	tasks repository.TaskRepositoryInterface,
	users repository.UserRepositoryInterface,
	store PhotoStore,
) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users, store: store}
}

type CreateTaskRequest struct {
	Title            string `json:"title" binding:"required"`
	ShortDescription string `json:"shortDescription" binding:"required"`
	LongDescription  string `json:"longDescription"`
	Status           string `json:"status" binding:"omitempty,oneof=todo inProgress completed"`
	Priority         string `json:"priority" binding:"required,oneof=low medium high"`
	Deadline         string `json:"deadline" binding:"required"`
	Group            string `json:"group" binding:"required,oneof=Frontend Backend Database"`
	AssignedTo       string `json:"assignedTo" binding:"required,uuid"`
}

// UpdateTaskRequest is a partial patch. Only these fields are mutable;
// id, createdBy, createdAt, photos and comments cannot be patched.
type UpdateTaskRequest struct {
	Title            *string `json:"title"`
	ShortDescription *string `json:"shortDescription"`
	LongDescription  *string `json:"longDescription"`
	Status           *string `json:"status" binding:"omitempty,oneof=todo inProgress completed"`
	Priority         *string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Deadline         *string `json:"deadline"`
	Group            *string `json:"group" binding:"omitempty,oneof=Frontend Backend Database"`
	AssignedTo       *string `json:"assignedTo" binding:"omitempty,uuid"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PhotoView struct {
	ID         string    `json:"id"`
	ImageURL   string    `json:"imageUrl"`
	Caption    string    `json:"caption,omitempty"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CommentView struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	CreatedBy  string    `json:"createdBy"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type TaskView struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	ShortDescription string        `json:"shortDescription"`
	LongDescription  string        `json:"longDescription,omitempty"`
	Status           string        `json:"status"`
	Priority         string        `json:"priority"`
	Deadline         string        `json:"deadline"`
	Group            string        `json:"group"`
	AssignedTo       UserRef       `json:"assignedTo"`
	CreatedBy        UserRef       `json:"createdBy"`
	UpdatedBy        *string       `json:"updatedBy,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Photos           []PhotoView   `json:"photos"`
	Comments         []CommentView `json:"comments"`
}

const deadlineLayout = "2006-01-02"

func parseDeadline(value string) (time.Time, error) {
	if t, err := time.Parse(deadlineLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func toTaskView(task *model.Task) TaskView {
	view := TaskView{
		ID:               task.ID.String(),
		Title:            task.Title,
		ShortDescription: task.ShortDescription,
		LongDescription:  task.LongDescription,
		Status:           task.Status,
		Priority:         task.Priority,
		Deadline:         task.Deadline.Format(deadlineLayout),
		Group:            task.TeamGroup,
		AssignedTo: UserRef{
			ID:    task.AssignedTo.String(),
			Name:  task.Assignee.Name,
			Email: task.Assignee.Email,
		},
		CreatedBy: UserRef{
			ID:    task.CreatedBy.String(),
			Name:  task.Creator.Name,
			Email: task.Creator.Email,
		},
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
		Photos:    make([]PhotoView, 0, len(task.Photos)),
		Comments:  make([]CommentView, 0, len(task.Comments)),
	}

	if task.UpdatedBy != nil {
		id := task.UpdatedBy.String()
		view.UpdatedBy = &id
	}

	for _, p := range task.Photos {
		view.Photos = append(view.Photos, PhotoView{
			ID:         p.ID.String(),
			ImageURL:   p.ImageURL,
			Caption:    p.Caption,
			UploadedBy: p.UploadedBy.String(),
			CreatedAt:  p.CreatedAt,
		})
	}

	for _, cm := range task.Comments {
		view.Comments = append(view.Comments, CommentView{
			ID:         cm.ID.String(),
			Text:       cm.Text,
			CreatedBy:  cm.CreatedBy.String(),
			AuthorName: cm.Author.Name,
			CreatedAt:  cm.CreatedAt,
		})
	}

	return view
}

func canView(user *model.User, task *model.Task) bool {
	return user.Role == model.RoleAdmin || task.AssignedTo == user.ID || task.CreatedBy == user.ID
}

func canModify(user *model.User, task *model.Task) bool {
	return user.Role == model.RoleAdmin || task.CreatedBy == user.ID
}

func canAttach(user *model.User, task *model.Task) bool {
	return user.Role == model.RoleAdmin || task.AssignedTo == user.ID
}

// Create creates a task. Admin-only (enforced by the role gate on the
// route). The assignee gains the task through the assigned_to reference.
func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid deadline format, expected YYYY-MM-DD")
		return
	}

	assigneeID, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	assignee, err := h.users.GetByID(c.Request.Context(), assigneeID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if assignee == nil {
		respondError(c, http.StatusBadRequest, "Assigned user does not exist")
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusTodo
	}

	now := time.Now()
	task := &model.Task{
		ID:               uuid.New(),
		Title:            req.Title,
		ShortDescription: req.ShortDescription,
		LongDescription:  req.LongDescription,
		Status:           status,
		Priority:         req.Priority,
		Deadline:         deadline,
		TeamGroup:        req.Group,
		AssignedTo:       assigneeID,
		CreatedBy:        user.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	task.Assignee = *assignee
	task.Creator = *user
	respondData(c, http.StatusCreated, toTaskView(task))
}

// GetAll lists tasks visible to the caller: everything for admins,
// assigned-or-created for everyone else.
func (h *TaskHandler) GetAll(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		tasks []model.Task
		err   error
	)
	if user.Role == model.RoleAdmin {
		tasks, err = h.tasks.GetAll(c.Request.Context())
	} else {
		tasks, err = h.tasks.GetVisibleTo(c.Request.Context(), user.ID)
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, toTaskView(&tasks[i]))
	}

	respondList(c, views, len(views))
}

// GetByID returns one task. Missing tasks are 404; existing tasks the
// caller may not see are 403 — the two are deliberately distinct.
func (h *TaskHandler) GetByID(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	task, err := h.tasks.GetDetailed(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canView(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	respondData(c, http.StatusOK, toTaskView(task))
}

// Update applies a partial patch. Admin or creator only. Validation
// re-runs on the merged document via the binding tags and deadline parse.
func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canModify(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.ShortDescription != nil {
		task.ShortDescription = *req.ShortDescription
	}
	if req.LongDescription != nil {
		task.LongDescription = *req.LongDescription
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Group != nil {
		task.TeamGroup = *req.Group
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid deadline format, expected YYYY-MM-DD")
			return
		}
		task.Deadline = deadline
	}
	if req.AssignedTo != nil {
		assigneeID, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid ID format")
			return
		}
		assignee, err := h.users.GetByID(c.Request.Context(), assigneeID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if assignee == nil {
			respondError(c, http.StatusBadRequest, "Assigned user does not exist")
			return
		}
		task.AssignedTo = assigneeID
	}

	task.UpdatedBy = &user.ID
	task.UpdatedAt = time.Now()

	if err := h.tasks.Update(c.Request.Context(), task); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := h.tasks.GetDetailed(c.Request.Context(), task.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, toTaskView(updated))
}

// Delete removes a task. Photo files are unlinked best-effort first;
// failures there are logged and never block the delete.
func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	task, err := h.tasks.GetDetailed(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canModify(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	var unlinkErrs *multierror.Error
	for _, photo := range task.Photos {
		if err := h.store.Remove(photo.ImageURL); err != nil {
			unlinkErrs = multierror.Append(unlinkErrs, err)
		}
	}
	if err := unlinkErrs.ErrorOrNil(); err != nil {
		log.Printf("⚠️  Failed to delete photo files for task %s: %v", task.ID, err)
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{})
}

// AddComment appends a comment with a server-assigned id and timestamp
// and returns the whole updated task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canView(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	comment := &model.Comment{
		ID:        uuid.New(),
		TaskID:    task.ID,
		Text:      req.Text,
		CreatedBy: user.ID,
		CreatedAt: time.Now(),
	}

	if err := h.tasks.AddComment(c.Request.Context(), comment); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := h.tasks.GetDetailed(c.Request.Context(), task.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, toTaskView(updated))
}

// DeleteComment removes a comment. Author or admin only.
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid comment ID format")
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canView(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	comment, err := h.tasks.GetComment(c.Request.Context(), taskID, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			respondError(c, http.StatusNotFound, "Comment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if user.Role != model.RoleAdmin && comment.CreatedBy != user.ID {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	if err := h.tasks.DeleteComment(c.Request.Context(), commentID); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{})
}

// UploadPhoto stores the multipart "photo" field on disk and records it
// on the task. Admin or assignee only. Uploading to a todo task moves it
// to inProgress.
func (h *TaskHandler) UploadPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canAttach(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Please upload a file")
		return
	}

	imageURL, err := h.store.Save(c, file)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	photo := &model.Photo{
		ID:         uuid.New(),
		TaskID:     task.ID,
		ImageURL:   imageURL,
		Caption:    c.PostForm("caption"),
		UploadedBy: user.ID,
		CreatedAt:  time.Now(),
	}

	if err := h.tasks.AddPhoto(c.Request.Context(), photo); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, PhotoView{
		ID:         photo.ID.String(),
		ImageURL:   photo.ImageURL,
		Caption:    photo.Caption,
		UploadedBy: photo.UploadedBy.String(),
		CreatedAt:  photo.CreatedAt,
	})
}

// DeletePhoto removes a photo and its backing file. Unlike the task
// delete cascade, a failed file removal aborts the request.
func (h *TaskHandler) DeletePhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid photo ID format")
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "Task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !canAttach(user, task) {
		respondError(c, http.StatusForbidden, "Not authorized")
		return
	}

	photo, err := h.tasks.GetPhoto(c.Request.Context(), taskID, photoID)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			respondError(c, http.StatusNotFound, "Photo not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.store.Remove(photo.ImageURL); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.tasks.DeletePhoto(c.Request.Context(), photoID); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, gin.H{})
}
