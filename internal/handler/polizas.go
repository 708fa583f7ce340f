package handler

import (
	"net/http"

	"crmseguros/internal/apierror"
	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type PolizasHandler struct{ svc service.PolizaService }

func NewPolizasHandler(svc service.PolizaService) *PolizasHandler {
	return &PolizasHandler{svc: svc}
}

// Cotizar godoc
// @Summary Vista previa de líneas y totales
// @Description Calcula comisión por producto y totales de la póliza sin guardar nada.
// @Description Las líneas incompletas se omiten y se informan en "omitidos".
// @Tags polizas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CotizarRequest true "Líneas de producto"
// @Success 200 {object} dto.CotizacionResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/polizas/cotizar [post]
func (h *PolizasHandler) Cotizar(c *gin.Context) {
	var req dto.CotizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cotizar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary Alta de póliza multiproducto
// @Tags polizas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GuardarPolizaRequest true "Póliza"
// @Success 201 {object} dto.PolizaResponse
// @Failure 422 {object} apierror.APIError "Sin productos o sin cliente"
// @Failure 409 {object} apierror.APIError "Guardado en curso"
// @Router /v1/polizas [post]
func (h *PolizasHandler) Crear(c *gin.Context) {
	var req dto.GuardarPolizaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), middleware.GetSession(c), nil, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Actualizar godoc
// @Summary Editar póliza
// @Tags polizas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Póliza ID"
// @Param body body dto.GuardarPolizaRequest true "Póliza"
// @Success 200 {object} dto.PolizaResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "Guardado en curso"
// @Router /v1/polizas/{id} [put]
func (h *PolizasHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarPolizaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), middleware.GetSession(c), &id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerParaEdicion godoc
// @Summary Cargar póliza para edición
// @Description Las pólizas de un solo producto sin detalle se devuelven con una línea reconstruida (legacy=true).
// @Tags polizas
// @Security BearerAuth
// @Produce json
// @Param id path string true "Póliza ID"
// @Success 200 {object} dto.PolizaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/polizas/{id}/edicion [get]
func (h *PolizasHandler) ObtenerParaEdicion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerParaEdicion(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary Listar pólizas
// @Tags polizas
// @Security BearerAuth
// @Produce json
// @Param cliente_id query string false "Cliente"
// @Param estado query string false "Estado"
// @Param agente_id query string false "Agente (solo admin)"
// @Success 200 {array} dto.PolizaResponse
// @Router /v1/polizas [get]
func (h *PolizasHandler) Listar(c *gin.Context) {
	var filter dto.PolizaFilter
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

// ImportarLegacy godoc
// @Summary Importar pólizas del sistema anterior
// @Description Cada fila trae cliente y producto como objeto, lista o null; se toma el primero.
// @Tags polizas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body []dto.PolizaLegacyImport true "Filas exportadas"
// @Success 200 {object} dto.ImportarResultado
// @Router /v1/polizas/legacy/importar [post]
func (h *PolizasHandler) ImportarLegacy(c *gin.Context) {
	var rows []dto.PolizaLegacyImport
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("No hay filas para importar"))
		return
	}
	resp, err := h.svc.ImportarLegacy(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
