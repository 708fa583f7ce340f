package handler

import (
	"net/http"

	"crmseguros/internal/apierror"
	"crmseguros/internal/dto"
	"crmseguros/internal/middleware"
	"crmseguros/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Renovar el par de tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de usuario
// @Tags usuarios
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CrearUsuarioRequest true "Usuario"
// @Success 201 {object} dto.UsuarioResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/usuarios [post]
func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Listar usuarios
// @Tags usuarios
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.UsuarioResponse
// @Router /v1/usuarios [get]
func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar usuarios"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Agentes godoc
// @Summary Agentes visibles para el usuario
// @Description Los administradores ven todos los agentes activos; un agente solo se ve a sí mismo.
// @Tags usuarios
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.AgenteResponse
// @Router /v1/usuarios/agentes [get]
func (h *UsuariosHandler) Agentes(c *gin.Context) {
	resp, err := h.svc.ListarAgentes(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar usuario
// @Tags usuarios
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Usuario ID"
// @Param body body dto.ActualizarUsuarioRequest true "Cambios"
// @Success 200 {object} dto.UsuarioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/usuarios/{id} [put]
func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary Desactivar usuario
// @Tags usuarios
// @Security BearerAuth
// @Param id path string true "Usuario ID"
// @Success 204
// @Failure 422 {object} apierror.APIError
// @Router /v1/usuarios/{id} [delete]
func (h *UsuariosHandler) Desactivar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id == middleware.GetSession(c).UsuarioID {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("No puede desactivar su propio usuario"))
		return
	}
	if err := h.svc.DesactivarUsuario(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reactivar godoc
// @Summary Reactivar usuario
// @Tags usuarios
// @Security BearerAuth
// @Param id path string true "Usuario ID"
// @Success 204
// @Router /v1/usuarios/{id}/reactivar [patch]
func (h *UsuariosHandler) Reactivar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ReactivarUsuario(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
