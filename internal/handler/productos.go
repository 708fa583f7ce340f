package handler

import (
	"net/http"

	"crmseguros/internal/dto"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de producto en el catálogo
// @Tags productos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Catálogo de productos
// @Tags productos
// @Security BearerAuth
// @Produce json
// @Param activo query string false "true (default), false o all"
// @Param nombre query string false "Filtro por nombre, sin distinguir acentos"
// @Param aseguradora query string false "Aseguradora"
// @Param ramo query string false "vida, ap o salud"
// @Success 200 {array} dto.ProductoResponse
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtener producto
// @Tags productos
// @Security BearerAuth
// @Produce json
// @Param id path string true "Producto ID"
// @Success 200 {object} dto.ProductoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id} [get]
func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar producto
// @Tags productos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Producto ID"
// @Param body body dto.ActualizarProductoRequest true "Cambios"
// @Success 200 {object} dto.ProductoResponse
// @Router /v1/productos/{id} [put]
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
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

// Desactivar godoc
// @Summary Desactivar producto
// @Tags productos
// @Security BearerAuth
// @Param id path string true "Producto ID"
// @Success 204
// @Router /v1/productos/{id} [delete]
func (h *ProductosHandler) Desactivar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductosHandler) Reactivar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
