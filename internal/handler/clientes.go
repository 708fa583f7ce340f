package handler

import (
	"net/http"

	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

// Listar godoc
// @Summary Listar clientes visibles
// @Tags clientes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.ClienteResponse
// @Router /v1/clientes [get]
func (h *ClientesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtener cliente
// @Tags clientes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Cliente ID"
// @Success 200 {object} dto.ClienteResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/clientes/{id} [get]
func (h *ClientesHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Editar cliente
// @Tags clientes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Cliente ID"
// @Param body body dto.ActualizarClienteRequest true "Cambios"
// @Success 200 {object} dto.ClienteResponse
// @Router /v1/clientes/{id} [put]
func (h *ClientesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
