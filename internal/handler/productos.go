package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/menuvercel/mitienda-host/internal/apierror"
	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// maxFotoBytes bounds a multipart request carrying a product photo.
const maxFotoBytes = 8 << 20

type ProductosHandler struct {
	svc        service.ProductoService
	inventario service.InventarioService
}

func NewProductosHandler(svc service.ProductoService, inventario service.InventarioService) *ProductosHandler {
	return &ProductosHandler{svc: svc, inventario: inventario}
}

// Crear godoc
// @Summary Crea un producto (JSON o multipart con campo "foto")
// @Tags productos
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} dto.ProductoResponse
// @Failure 422 {object} apierror.ValidationError
// @Failure 502 {object} apierror.APIError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	foto, ok := bindProducto(c, &req)
	if !ok {
		return
	}
	if foto != nil {
		defer foto.close()
	}
	resp, err := h.svc.Crear(c.Request.Context(), req, foto.upload())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista los productos
// @Tags productos
// @Produce json
// @Success 200 {array} dto.ProductoResponse
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene un producto
// @Tags productos
// @Produce json
// @Param id path string true "Producto ID"
// @Success 200 {object} dto.ProductoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id} [get]
func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
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
// @Summary Actualiza un producto (JSON o multipart con campo "foto")
// @Tags productos
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Producto ID"
// @Success 200 {object} dto.ProductoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 502 {object} apierror.APIError
// @Router /v1/productos/{id} [put]
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	foto, ok := bindProducto(c, &req)
	if !ok {
		return
	}
	if foto != nil {
		defer foto.close()
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req, foto.upload())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SubirFoto godoc
// @Summary Sube o reemplaza la foto de un producto
// @Tags productos
// @Accept mpfd
// @Produce json
// @Param id path string true "Producto ID"
// @Param foto formData file true "Imagen"
// @Success 200 {object} dto.FotoResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/productos/{id}/foto [post]
func (h *ProductosHandler) SubirFoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFotoBytes)
	foto, err := openFoto(c)
	if err != nil || foto == nil {
		c.JSON(http.StatusBadRequest, apierror.New("Archivo de imagen requerido"))
		return
	}
	defer foto.close()

	resp, err := h.svc.SubirFoto(c.Request.Context(), id, *foto.upload())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Elimina un producto junto con sus asignaciones, transacciones y ventas
// @Tags productos
// @Param id path string true "Producto ID"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id} [delete]
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.inventario.EliminarProducto(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Multipart helpers ─────────────────────────────────────────────────────────

type fotoFile struct {
	file   multipart.File
	header *multipart.FileHeader
}

func (f *fotoFile) upload() *service.FotoUpload {
	if f == nil {
		return nil
	}
	return &service.FotoUpload{
		Filename:    f.header.Filename,
		ContentType: f.header.Header.Get("Content-Type"),
		Body:        f.file,
	}
}

func (f *fotoFile) close() { _ = f.file.Close() }

// openFoto returns the "foto" part of a multipart request, or nil when absent.
func openFoto(c *gin.Context) (*fotoFile, error) {
	header, err := c.FormFile("foto")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &fotoFile{file: file, header: header}, nil
}

// bindProducto binds a product request from JSON or from multipart form fields
// plus an optional "foto" file, then validates it.
func bindProducto(c *gin.Context, req interface{}) (*fotoFile, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, bindAndValidate(c, req)
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFotoBytes)
	if err := c.ShouldBind(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Formulario invalido: "+err.Error()))
		return nil, false
	}
	if raw, ok := c.GetPostForm("precio"); ok {
		precio, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Precio invalido"))
			return nil, false
		}
		switch r := req.(type) {
		case *dto.CrearProductoRequest:
			r.Precio = precio
		case *dto.ActualizarProductoRequest:
			r.Precio = &precio
		}
	}
	if !validateStruct(c, req) {
		return nil, false
	}
	foto, err := openFoto(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Archivo de imagen invalido"))
		return nil, false
	}
	return foto, true
}
