package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"crmseguros/internal/apierror"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

// maxArchivoBytes bounds a single uploaded document.
const maxArchivoBytes = 20 << 20

type ArchivosHandler struct{ svc service.ArchivoService }

func NewArchivosHandler(svc service.ArchivoService) *ArchivosHandler {
	return &ArchivosHandler{svc: svc}
}

// Listar godoc
// @Summary Documentos de una póliza, cliente o lead
// @Tags archivos
// @Security BearerAuth
// @Produce json
// @Param entidad_id path string true "ID de la póliza, cliente o lead"
// @Success 200 {array} dto.ArchivoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/archivos/{entidad_id} [get]
func (h *ArchivosHandler) Listar(c *gin.Context) {
	id, ok := paramID(c, "entidad_id")
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Subir godoc
// @Summary Subir documento
// @Tags archivos
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param entidad_id path string true "ID de la póliza, cliente o lead"
// @Param archivo formData file true "Documento"
// @Success 201 {object} dto.ArchivoResponse
// @Failure 422 {object} apierror.APIError
// @Failure 503 {object} apierror.APIError
// @Router /v1/archivos/{entidad_id} [post]
func (h *ArchivosHandler) Subir(c *gin.Context) {
	id, ok := paramID(c, "entidad_id")
	if !ok {
		return
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo (campo 'archivo')"))
		return
	}
	if fh.Size > maxArchivoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("El archivo supera el tamaño máximo permitido"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := h.svc.Subir(c.Request.Context(), middleware.GetSession(c), id, fh.Filename, f, fh.Size, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Descargar godoc
// @Summary Descargar documento
// @Tags archivos
// @Security BearerAuth
// @Produce octet-stream
// @Param entidad_id path string true "ID de la póliza, cliente o lead"
// @Param nombre path string true "Nombre del archivo"
// @Success 200 {file} binary
// @Failure 404 {object} apierror.APIError
// @Router /v1/archivos/{entidad_id}/{nombre} [get]
func (h *ArchivosHandler) Descargar(c *gin.Context) {
	id, ok := paramID(c, "entidad_id")
	if !ok {
		return
	}
	nombre := c.Param("nombre")
	rc, err := h.svc.Descargar(c.Request.Context(), middleware.GetSession(c), id, nombre)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(nombre))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": nombre}))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logFallo(c, err)
	}
}
