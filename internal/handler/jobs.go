package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"crmseguros/internal/apierror"
	"crmseguros/internal/worker"

	"github.com/gin-gonic/gin"
)

// ColaMuerta is the dead letter queue administration (worker.Dispatcher).
type ColaMuerta interface {
	Pendientes(ctx context.Context) (map[string]int64, error)
	Reencolar(ctx context.Context, queue string, limit int) (int, error)
}

type JobsHandler struct{ dlq ColaMuerta }

func NewJobsHandler(dlq ColaMuerta) *JobsHandler { return &JobsHandler{dlq: dlq} }

// Pendientes godoc
// @Summary Jobs fallidos por cola
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /v1/jobs/dlq [get]
func (h *JobsHandler) Pendientes(c *gin.Context) {
	resp, err := h.dlq.Pendientes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reencolar godoc
// @Summary Reencolar jobs fallidos
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param cola path string true "jobs:reportes o jobs:email"
// @Param limite query int false "Máximo de jobs (default 100)"
// @Success 200 {object} map[string]int
// @Failure 404 {object} apierror.APIError
// @Router /v1/jobs/dlq/{cola}/reencolar [post]
func (h *JobsHandler) Reencolar(c *gin.Context) {
	limite := 100
	if s := c.Query("limite"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			c.JSON(http.StatusUnprocessableEntity, apierror.New("limite debe estar entre 1 y 1000"))
			return
		}
		limite = n
	}
	n, err := h.dlq.Reencolar(c.Request.Context(), c.Param("cola"), limite)
	if err != nil {
		if errors.Is(err, worker.ErrColaDesconocida) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reencolados": n})
}
