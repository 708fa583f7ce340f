package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/poliza"
	"crmseguros/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const catalogoCacheKey = "catalogo:activos"

// ProductoService manages the product catalog. The active catalog is cached in
// Redis and invalidated on every write.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	// Catalogo returns the active catalog, used to build policy lines.
	Catalogo(ctx context.Context) ([]model.Producto, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewProductoService builds the catalog service. rdb may be nil, which disables caching.
func NewProductoService(repo repository.ProductoRepository, rdb *redis.Client, ttl time.Duration) ProductoService {
	return &productoService{repo: repo, rdb: rdb, ttl: ttl}
}

func mapProducto(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:                 p.ID.String(),
		Nombre:             p.Nombre,
		Aseguradora:        p.Aseguradora,
		Categoria:          p.Categoria,
		Ramo:               string(poliza.RamoDeProducto(*p)),
		PorcentajeComision: p.PorcentajeComision,
		Activo:             p.Activo,
	}
}

func ramoPtr(s *string) *model.Ramo {
	if s == nil || *s == "" {
		return nil
	}
	r := model.Ramo(*s)
	return &r
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	categoria := req.Categoria
	if categoria == "" {
		categoria = "General"
	}
	p := &model.Producto{
		Nombre:             req.Nombre,
		Aseguradora:        req.Aseguradora,
		Categoria:          categoria,
		Ramo:               ramoPtr(req.Ramo),
		PorcentajeComision: req.PorcentajeComision,
		Activo:             true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	s.invalidar(ctx)
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "producto")
	}
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	var (
		productos []model.Producto
		err       error
	)
	if esCatalogoActivo(filter) {
		productos, err = s.Catalogo(ctx)
	} else {
		productos, err = s.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		resp[i] = mapProducto(&productos[i])
	}
	return resp, nil
}

func esCatalogoActivo(f dto.ProductoFilter) bool {
	return (f.Activo == "" || f.Activo == "true") && f.Nombre == "" && f.Aseguradora == "" && f.Ramo == ""
}

func (s *productoService) Catalogo(ctx context.Context) ([]model.Producto, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, catalogoCacheKey).Bytes(); err == nil {
			var productos []model.Producto
			if jsonErr := json.Unmarshal(cached, &productos); jsonErr == nil {
				return productos, nil
			}
		}
	}

	productos, err := s.repo.List(ctx, dto.ProductoFilter{Activo: "true"})
	if err != nil {
		return nil, fmt.Errorf("listar catálogo: %w", err)
	}

	// Best effort: a cache failure never fails the read.
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(productos); jsonErr == nil {
			if err := s.rdb.Set(ctx, catalogoCacheKey, b, s.ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("catalogo: cache set failed")
			}
		}
	}
	return productos, nil
}

func (s *productoService) invalidar(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, catalogoCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("catalogo: cache invalidation failed")
	}
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "producto")
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Aseguradora != nil {
		p.Aseguradora = *req.Aseguradora
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.Ramo != nil {
		p.Ramo = ramoPtr(req.Ramo)
	}
	if req.PorcentajeComision != nil {
		p.PorcentajeComision = *req.PorcentajeComision
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidar(ctx)
	resp := mapProducto(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, id); err != nil {
		return err
	}
	s.invalidar(ctx)
	return nil
}
