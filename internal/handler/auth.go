package handler

import (
	"net/http"

	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/middleware"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc          service.AuthService
	secureCookie bool
}

// NewAuthHandler builds the handler; secureCookie marks the session cookie Secure
// (every environment except development).
func NewAuthHandler(svc service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookie: secureCookie}
}

// Login godoc
// @Summary Login de usuario
// @Description Sets the HTTP-only "token" cookie and also returns the token in the body.
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
	h.setTokenCookie(c, resp.Token, resp.ExpiresIn)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Cierra la sesion borrando la cookie
// @Tags auth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// Registrar godoc
// @Summary Registra un usuario (solo Almacen)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegistrarUsuarioRequest true "Usuario"
// @Success 201 {object} dto.UsuarioResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/auth/register [post]
func (h *AuthHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Me godoc
// @Summary Usuario autenticado
// @Tags usuarios
// @Produce json
// @Success 200 {object} dto.UsuarioResponse
// @Router /v1/usuarios/me [get]
func (h *UsuariosHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Me(c.Request.Context(), claims.UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVendedores godoc
// @Summary Lista los vendedores
// @Tags usuarios
// @Produce json
// @Success 200 {array} dto.UsuarioResponse
// @Router /v1/vendedores [get]
func (h *UsuariosHandler) ListarVendedores(c *gin.Context) {
	resp, err := h.svc.ListarVendedores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarVendedor godoc
// @Summary Actualiza nombre y telefono de un vendedor
// @Tags usuarios
// @Accept json
// @Produce json
// @Param id path string true "Vendedor ID"
// @Param body body dto.ActualizarVendedorRequest true "Datos"
// @Success 200 {object} dto.UsuarioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/vendedores/{id} [put]
func (h *UsuariosHandler) ActualizarVendedor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarVendedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarVendedor(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
