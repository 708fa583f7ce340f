package handler

import (
	"errors"
	"net/http"

	"crmseguros/internal/apierror"
	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/pipeline"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

// maxCSVBytes bounds the uploaded lead file.
const maxCSVBytes = 5 << 20

type LeadsHandler struct{ svc service.LeadService }

func NewLeadsHandler(svc service.LeadService) *LeadsHandler { return &LeadsHandler{svc: svc} }

// promocionFallida is the 502 body when the lead was saved but the client
// could not be created. The stage stays as saved.
type promocionFallida struct {
	Detail string           `json:"detail"`
	Lead   dto.LeadResponse `json:"lead"`
}

func (h *LeadsHandler) responderGuardado(c *gin.Context, status int, resp *dto.GuardarLeadResponse, err error) {
	if err != nil {
		if errors.Is(err, pipeline.ErrPromocion) && resp != nil {
			logFallo(c, err)
			c.JSON(http.StatusBadGateway, promocionFallida{Detail: pipeline.ErrPromocion.Error(), Lead: resp.Lead})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(status, resp)
}

// Pipeline godoc
// @Summary Tablero de leads por etapa
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PipelineResponse
// @Router /v1/leads/pipeline [get]
func (h *LeadsHandler) Pipeline(c *gin.Context) {
	resp, err := h.svc.Pipeline(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtener lead
// @Tags leads
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} dto.LeadResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/leads/{id} [get]
func (h *LeadsHandler) Obtener(c *gin.Context) {
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

// Crear godoc
// @Summary Alta de lead
// @Description Si la etapa es GANADO el lead se guarda y luego se convierte en cliente.
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GuardarLeadRequest true "Lead"
// @Success 201 {object} dto.GuardarLeadResponse
// @Failure 502 {object} handler.promocionFallida "Guardado sin conversión a cliente"
// @Router /v1/leads [post]
func (h *LeadsHandler) Crear(c *gin.Context) {
	var req dto.GuardarLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetSession(c), req)
	h.responderGuardado(c, http.StatusCreated, resp, err)
}

// Actualizar godoc
// @Summary Editar lead
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body dto.GuardarLeadRequest true "Lead"
// @Success 200 {object} dto.GuardarLeadResponse
// @Failure 409 {object} apierror.APIError "Guardado en curso"
// @Failure 502 {object} handler.promocionFallida "Guardado sin conversión a cliente"
// @Router /v1/leads/{id} [put]
func (h *LeadsHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetSession(c), id, req)
	h.responderGuardado(c, http.StatusOK, resp, err)
}

// Mover godoc
// @Summary Mover lead de etapa
// @Description Mover a la misma etapa no guarda nada. Si el guardado falla la etapa no cambia.
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param body body dto.MoverLeadRequest true "Etapa destino"
// @Success 200 {object} dto.GuardarLeadResponse
// @Failure 422 {object} apierror.APIError "Etapa desconocida"
// @Failure 502 {object} handler.promocionFallida "Guardado sin conversión a cliente"
// @Router /v1/leads/{id}/etapa [patch]
func (h *LeadsHandler) Mover(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.MoverLeadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Mover(c.Request.Context(), middleware.GetSession(c), id, req.Etapa)
	h.responderGuardado(c, http.StatusOK, resp, err)
}

// Importar godoc
// @Summary Importación masiva de leads (JSON)
// @Description Las etapas desconocidas se importan como NUEVO.
// @Tags leads
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.ImportarLeadsRequest true "Leads"
// @Success 200 {object} dto.ImportarResultado
// @Router /v1/leads/importar [post]
func (h *LeadsHandler) Importar(c *gin.Context) {
	var req dto.ImportarLeadsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Importar(c.Request.Context(), middleware.GetSession(c), req.Leads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportarCSV godoc
// @Summary Importación masiva de leads (CSV)
// @Description Archivo con encabezado; columnas nombre, email, telefono, fuente, etapa, notas.
// @Tags leads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param archivo formData file true "CSV"
// @Success 200 {object} dto.ImportarResultado
// @Failure 422 {object} apierror.APIError
// @Router /v1/leads/importar/csv [post]
func (h *LeadsHandler) ImportarCSV(c *gin.Context) {
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo CSV (campo 'archivo')"))
		return
	}
	if fh.Size > maxCSVBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("El archivo supera el tamaño máximo permitido"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	defer f.Close()

	resp, err := h.svc.ImportarCSV(c.Request.Context(), middleware.GetSession(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
