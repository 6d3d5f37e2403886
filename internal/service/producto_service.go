package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/menuvercel/mitienda-host/internal/apierror"
	"github.com/menuvercel/mitienda-host/internal/dto"
	"github.com/menuvercel/mitienda-host/internal/model"
	"github.com/menuvercel/mitienda-host/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrFotoNoImagen is returned when an uploaded file is not an image.
var ErrFotoNoImagen = apierror.Invalid("El archivo debe ser una imagen")

// PhotoStore persists an image and returns its public URL.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// FotoUpload is an image received with a product request.
type FotoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductoService defines the business logic contract for the catalog.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest, foto *FotoUpload) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest, foto *FotoUpload) (*dto.ProductoResponse, error)
	SubirFoto(ctx context.Context, id uuid.UUID, foto FotoUpload) (*dto.FotoResponse, error)
}

type productoService struct {
	tx    repository.TxRunner
	repo  repository.ProductoRepository
	fotos PhotoStore
}

func NewProductoService(tx repository.TxRunner, repo repository.ProductoRepository, fotos PhotoStore) ProductoService {
	return &productoService{tx: tx, repo: repo, fotos: fotos}
}

// Crear uploads the photo first; a failed upload leaves no product behind.
func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest, foto *FotoUpload) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		ID:          uuid.New(),
		Nombre:      strings.TrimSpace(req.Nombre),
		Precio:      req.Precio,
		Cantidad:    req.Cantidad,
		StockMinimo: req.StockMinimo,
	}
	if foto != nil {
		url, err := s.subir(ctx, p.ID, *foto)
		if err != nil {
			return nil, err
		}
		p.Foto = url
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductoNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = productoToResponse(&productos[i])
	}
	return resp, nil
}

// Actualizar applies the provided fields under a row lock so a concurrent
// Entrega or Baja is never overwritten. Allocation price snapshots are untouched.
func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest, foto *FotoUpload) (*dto.ProductoResponse, error) {
	if req.Precio != nil && req.Precio.IsNegative() {
		return nil, apierror.Invalid("El precio no puede ser negativo")
	}
	if _, err := s.ObtenerPorID(ctx, id); err != nil {
		return nil, err
	}

	var fotoURL string
	if foto != nil {
		url, err := s.subir(ctx, id, *foto)
		if err != nil {
			return nil, err
		}
		fotoURL = url
	}

	var actualizado model.Producto
	err := s.tx.RunInTx(ctx, func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdateTx(tx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductoNoEncontrado
		}
		if err != nil {
			return fmt.Errorf("actualizar producto: %w", err)
		}
		if req.Nombre != nil {
			p.Nombre = strings.TrimSpace(*req.Nombre)
		}
		if req.Precio != nil {
			p.Precio = *req.Precio
		}
		if req.Cantidad != nil {
			p.Cantidad = *req.Cantidad
		}
		if req.StockMinimo != nil {
			p.StockMinimo = *req.StockMinimo
		}
		if fotoURL != "" {
			p.Foto = fotoURL
		}
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return fmt.Errorf("actualizar producto: %w", err)
		}
		actualizado = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := productoToResponse(&actualizado)
	return &resp, nil
}

func (s *productoService) SubirFoto(ctx context.Context, id uuid.UUID, foto FotoUpload) (*dto.FotoResponse, error) {
	resp, err := s.Actualizar(ctx, id, dto.ActualizarProductoRequest{}, &foto)
	if err != nil {
		return nil, err
	}
	return &dto.FotoResponse{URL: resp.Foto}, nil
}

func (s *productoService) subir(ctx context.Context, productoID uuid.UUID, foto FotoUpload) (string, error) {
	if !strings.HasPrefix(foto.ContentType, "image/") {
		return "", ErrFotoNoImagen
	}
	if s.fotos == nil {
		return "", ErrSubidaFoto
	}
	key := fmt.Sprintf("productos/%s/%s%s", productoID, uuid.NewString(), strings.ToLower(path.Ext(foto.Filename)))
	url, err := s.fotos.Put(ctx, key, foto.ContentType, foto.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubidaFoto, err)
	}
	return url, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Precio:      p.Precio,
		Cantidad:    p.Cantidad,
		Foto:        p.Foto,
		StockMinimo: p.StockMinimo,
	}
}
