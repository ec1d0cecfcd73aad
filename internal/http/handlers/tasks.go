package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

// TaskHandler serves the task list, archive and statistics endpoints.
type TaskHandler struct {
	tasks      *service.TaskService
	categories *service.CategoryService
}

func NewTaskHandler(tasks *service.TaskService, categories *service.CategoryService) *TaskHandler {
	return &TaskHandler{tasks: tasks, categories: categories}
}

// List returns the active view. Query: search, category, priority, status, sort.
func (h *TaskHandler) List(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	tasks, err := h.tasks.ActiveView(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": nonNil(tasks), "count": len(tasks)})
}

// Archive returns archived and completed tasks, most recently finished first.
func (h *TaskHandler) Archive(c *gin.Context) {
	tasks, err := h.tasks.ArchiveView(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": nonNil(tasks), "count": len(tasks)})
}

func (h *TaskHandler) Stats(c *gin.Context) {
	dashboard, err := h.tasks.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Due groups open tasks into overdue, today and upcoming. Query: within (days, default 7).
func (h *TaskHandler) Due(c *gin.Context) {
	days := 7
	if raw := c.Query("within"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "within must be a positive number of days")
			return
		}
		days = n
	}
	report, err := h.tasks.DueSoon(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"overdue":  nonNil(report.Overdue),
		"today":    nonNil(report.Today),
		"upcoming": nonNil(report.Upcoming),
	})
}

func (h *TaskHandler) Categories(c *gin.Context) {
	summaries, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var input model.NewTask
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	task, err := h.tasks.EditTask(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Toggle(c *gin.Context) {
	h.mutate(c, h.tasks.ToggleComplete)
}

func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	h.mutate(c, h.tasks.Archive)
}

func (h *TaskHandler) Restore(c *gin.Context) {
	h.mutate(c, h.tasks.Restore)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCompleted deletes completed tasks that are not archived.
func (h *TaskHandler) ClearCompleted(c *gin.Context) {
	deleted, err := h.tasks.ClearCompleted(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *TaskHandler) mutate(c *gin.Context, op func(ctx context.Context, id int) (model.Task, error)) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func filterFromQuery(c *gin.Context) (service.Filter, error) {
	status, err := service.ParseStatus(c.Query("status"))
	if err != nil {
		return service.Filter{}, err
	}
	order, err := service.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return service.Filter{}, err
	}
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	if category != "" && category != service.FilterAll && !model.Category(category).Valid() {
		return service.Filter{}, fmt.Errorf("%w: unknown category %q", service.ErrValidation, category)
	}
	priority := strings.ToLower(strings.TrimSpace(c.Query("priority")))
	if priority != "" && priority != service.FilterAll && !model.Priority(priority).Valid() {
		return service.Filter{}, fmt.Errorf("%w: unknown priority %q", service.ErrValidation, priority)
	}
	return service.Filter{
		Search:   c.Query("search"),
		Category: category,
		Priority: priority,
		Status:   status,
		Sort:     order,
	}, nil
}

func nonNil(tasks []model.Task) []model.Task {
	if tasks == nil {
		return []model.Task{}
	}
	return tasks
}
