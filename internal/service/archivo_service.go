package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"crmseguros/internal/dto"
	"crmseguros/internal/infra"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ArchivoService stores documents attached to a policy, client or lead under
// {entityId}/{filename}. Access follows the visibility of the entity.
type ArchivoService interface {
	Listar(ctx context.Context, sess session.Session, entidadID uuid.UUID) ([]dto.ArchivoResponse, error)
	Subir(ctx context.Context, sess session.Session, entidadID uuid.UUID, nombre string, r io.Reader, size int64, contentType string) (*dto.ArchivoResponse, error)
	Descargar(ctx context.Context, sess session.Session, entidadID uuid.UUID, nombre string) (io.ReadCloser, error)
}

type archivoService struct {
	store    infra.FileStore
	polizas  repository.PolizaRepository
	clientes repository.ClienteRepository
	leads    repository.LeadRepository
}

func NewArchivoService(store infra.FileStore, polizas repository.PolizaRepository, clientes repository.ClienteRepository, leads repository.LeadRepository) ArchivoService {
	return &archivoService{store: store, polizas: polizas, clientes: clientes, leads: leads}
}

// nombreArchivo rejects names that would escape the entity folder.
func nombreArchivo(nombre string) (string, error) {
	n := strings.TrimSpace(nombre)
	if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) || path.Base(n) != n {
		return "", invalida("nombre de archivo")
	}
	return n, nil
}

func claveArchivo(entidadID uuid.UUID, nombre string) string {
	return entidadID.String() + "/" + nombre
}

// autorizar checks that entidadID is a policy, client or lead the caller can see.
func (s *archivoService) autorizar(ctx context.Context, sess session.Session, entidadID uuid.UUID) error {
	p, err := s.polizas.FindByID(ctx, entidadID)
	if err == nil {
		return permitir(sess, p.AgenteID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	c, err := s.clientes.FindByID(ctx, entidadID)
	if err == nil {
		return permitir(sess, c.AgenteID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	l, err := s.leads.FindByID(ctx, entidadID)
	if err != nil {
		return notFound(err, "entidad")
	}
	return permitir(sess, l.AgenteID)
}

func permitir(sess session.Session, agenteID *uuid.UUID) error {
	if !sess.PuedeVer(agenteID) {
		return ErrSinPermiso
	}
	return nil
}

func (s *archivoService) Listar(ctx context.Context, sess session.Session, entidadID uuid.UUID) ([]dto.ArchivoResponse, error) {
	if err := s.autorizar(ctx, sess, entidadID); err != nil {
		return nil, err
	}
	objs, err := s.store.ListFiles(ctx, entidadID.String()+"/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServicioExterno, err)
	}
	resp := make([]dto.ArchivoResponse, 0, len(objs))
	for _, o := range objs {
		resp = append(resp, dto.ArchivoResponse{
			Nombre:       path.Base(o.Key),
			Ruta:         o.Key,
			Tamano:       o.Size,
			ModificadoEn: o.LastModified,
		})
	}
	return resp, nil
}

func (s *archivoService) Subir(ctx context.Context, sess session.Session, entidadID uuid.UUID, nombre string, r io.Reader, size int64, contentType string) (*dto.ArchivoResponse, error) {
	n, err := nombreArchivo(nombre)
	if err != nil {
		return nil, err
	}
	if err := s.autorizar(ctx, sess, entidadID); err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := claveArchivo(entidadID, n)
	if err := s.store.UploadFile(ctx, key, r, size, contentType); err != nil {
		log.Error().Err(err).Str("entidad_id", entidadID.String()).Msg("no se pudo subir el archivo")
		return nil, fmt.Errorf("%w: %w", ErrServicioExterno, err)
	}
	log.Info().Str("key", key).Int64("bytes", size).Msg("archivo subido")
	return &dto.ArchivoResponse{Nombre: n, Ruta: key, Tamano: size}, nil
}

func (s *archivoService) Descargar(ctx context.Context, sess session.Session, entidadID uuid.UUID, nombre string) (io.ReadCloser, error) {
	n, err := nombreArchivo(nombre)
	if err != nil {
		return nil, err
	}
	if err := s.autorizar(ctx, sess, entidadID); err != nil {
		return nil, err
	}
	body, err := s.store.DownloadFile(ctx, claveArchivo(entidadID, n))
	if err != nil {
		if errors.Is(err, infra.ErrArchivoNoEncontrado) {
			return nil, fmt.Errorf("archivo: %w", ErrNoEncontrado)
		}
		return nil, fmt.Errorf("%w: %w", ErrServicioExterno, err)
	}
	return body, nil
}
