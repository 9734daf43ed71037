package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-api/internal/domain"
)

func (h *Handler) listTasks(ctx *gin.Context) {
	tasks, err := h.tasks.ListTasks(ctx.Request.Context(), callerFrom(ctx))
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, newTaskResponse(&tasks[i]))
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *Handler) createTask(ctx *gin.Context) {
	var req taskRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	task, err := h.tasks.CreateTask(ctx.Request.Context(), callerFrom(ctx), in)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *Handler) getTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		h.writeError(ctx, domain.ErrNotFound)
		return
	}

	task, err := h.tasks.GetTask(ctx.Request.Context(), callerFrom(ctx), id)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) replaceTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		h.writeError(ctx, domain.ErrNotFound)
		return
	}

	var req taskRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	task, err := h.tasks.ReplaceTask(ctx.Request.Context(), callerFrom(ctx), id, in)
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) updateTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		h.writeError(ctx, domain.ErrNotFound)
		return
	}

	var req taskPatchRequest
	if err := bindJSON(ctx, &req); err != nil {
		h.writeError(ctx, err)
		return
	}

	task, err := h.tasks.UpdateTask(ctx.Request.Context(), callerFrom(ctx), id, req.patch())
	if err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *Handler) deleteTask(ctx *gin.Context) {
	id, ok := taskID(ctx)
	if !ok {
		h.writeError(ctx, domain.ErrNotFound)
		return
	}

	if err := h.tasks.DeleteTask(ctx.Request.Context(), callerFrom(ctx), id); err != nil {
		h.writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// taskID parses the :id path parameter. Anything that is not a positive
// integer cannot name a task.
func taskID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
