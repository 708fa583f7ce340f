package handler

import (
	"net/http"

	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type TareasHandler struct{ svc service.TareaService }

func NewTareasHandler(svc service.TareaService) *TareasHandler { return &TareasHandler{svc: svc} }

// Listar godoc
// @Summary Listar tareas
// @Tags tareas
// @Security BearerAuth
// @Produce json
// @Param estado query string false "PENDIENTE o COMPLETADA"
// @Param tipo query string false "LLAMADA, REUNION, WHATSAPP, EMAIL u OTRO"
// @Param lead_id query string false "Lead"
// @Param cliente_id query string false "Cliente"
// @Success 200 {array} dto.TareaResponse
// @Router /v1/tareas [get]
func (h *TareasHandler) Listar(c *gin.Context) {
	var filter dto.TareaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSession(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary Alta de tarea
// @Tags tareas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GuardarTareaRequest true "Tarea"
// @Success 201 {object} dto.TareaResponse
// @Router /v1/tareas [post]
func (h *TareasHandler) Crear(c *gin.Context) {
	var req dto.GuardarTareaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary Editar tarea
// @Tags tareas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Tarea ID"
// @Param body body dto.GuardarTareaRequest true "Tarea"
// @Success 200 {object} dto.TareaResponse
// @Router /v1/tareas/{id} [put]
func (h *TareasHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarTareaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Completar godoc
// @Summary Marcar tarea como completada
// @Tags tareas
// @Security BearerAuth
// @Produce json
// @Param id path string true "Tarea ID"
// @Success 200 {object} dto.TareaResponse
// @Router /v1/tareas/{id}/completar [patch]
func (h *TareasHandler) Completar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Completar(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
