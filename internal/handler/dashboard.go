package handler

import (
	"net/http"

	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Dashboard ────────────────────────────────────────────────────────────────

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen godoc
// @Summary Contadores y ventas contra metas del mes
// @Tags dashboard
// @Security BearerAuth
// @Produce json
// @Param mes query int false "Mes (1-12), por defecto el actual"
// @Param anio query int false "Año, por defecto el actual"
// @Success 200 {object} dashboard.Resumen
// @Router /v1/dashboard [get]
func (h *DashboardHandler) Resumen(c *gin.Context) {
	var q dto.DashboardQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), middleware.GetSession(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Metas ────────────────────────────────────────────────────────────────────

type MetasHandler struct{ svc service.MetaService }

func NewMetasHandler(svc service.MetaService) *MetasHandler { return &MetasHandler{svc: svc} }

// Obtener godoc
// @Summary Meta mensual vigente
// @Description Meta del agente, si no existe la global, y si tampoco los valores configurados.
// @Tags metas
// @Security BearerAuth
// @Produce json
// @Param mes query int false "Mes"
// @Param anio query int false "Año"
// @Param agente_id query string false "Agente (solo admin)"
// @Success 200 {object} dto.MetaResponse
// @Router /v1/metas [get]
func (h *MetasHandler) Obtener(c *gin.Context) {
	var q dto.MetaQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.GetSession(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar godoc
// @Summary Guardar meta mensual
// @Description Sin agente_id la meta es global.
// @Tags metas
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GuardarMetaRequest true "Meta"
// @Success 200 {object} dto.MetaResponse
// @Router /v1/metas [put]
func (h *MetasHandler) Guardar(c *gin.Context) {
	var req dto.GuardarMetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
