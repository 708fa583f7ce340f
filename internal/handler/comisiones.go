package handler

import (
	"net/http"

	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type ComisionesHandler struct{ svc service.ComisionService }

func NewComisionesHandler(svc service.ComisionService) *ComisionesHandler {
	return &ComisionesHandler{svc: svc}
}

// Reporte godoc
// @Summary Comisiones del mes
// @Description Pólizas ACTIVA con fecha de emisión en el mes. Un agente solo puede pedir su propio reporte.
// @Tags comisiones
// @Security BearerAuth
// @Produce json
// @Param mes query int false "Mes"
// @Param anio query int false "Año"
// @Param agente_id query string false "Agente"
// @Success 200 {object} dto.ComisionReporteResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/comisiones [get]
func (h *ComisionesHandler) Reporte(c *gin.Context) {
	var q dto.ComisionQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Reporte(c.Request.Context(), middleware.GetSession(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SolicitarReporte godoc
// @Summary Encolar reporte PDF de comisiones
// @Description El PDF se genera en segundo plano y se envía por email.
// @Tags comisiones
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ReporteComisionRequest true "Solicitud"
// @Success 202 {object} dto.ReporteEncoladoResponse
// @Failure 503 {object} apierror.APIError
// @Router /v1/comisiones/reporte [post]
func (h *ComisionesHandler) SolicitarReporte(c *gin.Context) {
	var req dto.ReporteComisionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SolicitarReporte(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
