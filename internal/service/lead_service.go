package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/pipeline"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"
	"crmseguros/internal/texto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LeadService interface {
	Pipeline(ctx context.Context, sess session.Session) (*dto.PipelineResponse, error)
	Obtener(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.LeadResponse, error)
	// Crear and Actualizar persist the lead and then, if its stage is won, promote
	// it. A failed promotion returns the saved lead together with an error wrapping
	// pipeline.ErrPromocion.
	Crear(ctx context.Context, sess session.Session, req dto.GuardarLeadRequest) (*dto.GuardarLeadResponse, error)
	Actualizar(ctx context.Context, sess session.Session, id uuid.UUID, req dto.GuardarLeadRequest) (*dto.GuardarLeadResponse, error)
	// Mover is the drag-and-drop move of a lead to another stage.
	Mover(ctx context.Context, sess session.Session, id uuid.UUID, etapa string) (*dto.GuardarLeadResponse, error)
	Importar(ctx context.Context, sess session.Session, rows []dto.LeadImportRow) (*dto.ImportarResultado, error)
	ImportarCSV(ctx context.Context, sess session.Session, r io.Reader) (*dto.ImportarResultado, error)
}

type leadService struct {
	repo     repository.LeadRepository
	clientes repository.ClienteRepository
	guardia  *guardia
}

func NewLeadService(repo repository.LeadRepository, clientes repository.ClienteRepository) LeadService {
	return &leadService{repo: repo, clientes: clientes, guardia: nuevaGuardia()}
}

// leadPersistidor adapts the repository to pipeline.Persistidor.
type leadPersistidor struct{ repo repository.LeadRepository }

func (p leadPersistidor) GuardarLead(ctx context.Context, l *model.Lead) error {
	return p.repo.Save(ctx, l)
}

func mapLead(l *model.Lead) dto.LeadResponse {
	return dto.LeadResponse{
		ID:        l.ID.String(),
		Nombre:    l.Nombre,
		Email:     l.Email,
		Telefono:  l.Telefono,
		Fuente:    l.Fuente,
		Etapa:     l.Etapa,
		Notas:     l.Notas,
		AgenteID:  uuidStr(l.AgenteID),
		CreatedAt: l.CreatedAt,
	}
}

func (s *leadService) Pipeline(ctx context.Context, sess session.Session) (*dto.PipelineResponse, error) {
	leads, err := s.repo.List(ctx, sess.AgenteScope())
	if err != nil {
		return nil, err
	}
	cols := pipeline.NuevoBoard(leads, nil, nil).Columnas()
	resp := &dto.PipelineResponse{Columnas: make([]dto.ColumnaResponse, len(cols))}
	for i, c := range cols {
		col := dto.ColumnaResponse{Etapa: string(c.Etapa), Leads: make([]dto.LeadResponse, len(c.Leads))}
		for j := range c.Leads {
			col.Leads[j] = mapLead(&c.Leads[j])
		}
		resp.Columnas[i] = col
	}
	return resp, nil
}

func (s *leadService) cargar(ctx context.Context, sess session.Session, id uuid.UUID) (*model.Lead, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "lead")
	}
	if !sess.PuedeVer(l.AgenteID) {
		return nil, ErrSinPermiso
	}
	return l, nil
}

func (s *leadService) Obtener(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.LeadResponse, error) {
	l, err := s.cargar(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	resp := mapLead(l)
	return &resp, nil
}

func aplicarLead(l *model.Lead, sess session.Session, req dto.GuardarLeadRequest) error {
	l.Nombre = strings.TrimSpace(req.Nombre)
	l.Email = req.Email
	l.Telefono = req.Telefono
	l.Notas = req.Notas
	if req.Fuente != "" {
		l.Fuente = req.Fuente
	}
	if l.Fuente == "" {
		l.Fuente = "manual"
	}
	if req.Etapa != "" {
		l.Etapa = req.Etapa
	}
	if sess.EsAdmin() && req.AgenteID != nil {
		aid, err := uuid.Parse(*req.AgenteID)
		if err != nil {
			return invalida("agente_id")
		}
		l.AgenteID = &aid
	}
	return nil
}

func (s *leadService) Crear(ctx context.Context, sess session.Session, req dto.GuardarLeadRequest) (*dto.GuardarLeadResponse, error) {
	owner := sess.UsuarioID
	l := &model.Lead{AgenteID: &owner}
	if err := aplicarLead(l, sess, req); err != nil {
		return nil, err
	}
	// A lead being created has no id yet; the guard acts as the caller's saving
	// flag so a double submit of the same form is refused.
	liberar, err := s.guardia.tomar(sess.UsuarioID)
	if err != nil {
		return nil, err
	}
	defer liberar()
	return s.guardar(ctx, l)
}

func (s *leadService) Actualizar(ctx context.Context, sess session.Session, id uuid.UUID, req dto.GuardarLeadRequest) (*dto.GuardarLeadResponse, error) {
	l, err := s.cargar(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := aplicarLead(l, sess, req); err != nil {
		return nil, err
	}
	liberar, err := s.guardia.tomar(id)
	if err != nil {
		return nil, err
	}
	defer liberar()
	return s.guardar(ctx, l)
}

func (s *leadService) guardar(ctx context.Context, l *model.Lead) (*dto.GuardarLeadResponse, error) {
	c, err := pipeline.GuardarLead(ctx, l, leadPersistidor{s.repo}, s.clientes)
	if errors.Is(err, pipeline.ErrGuardado) {
		log.Error().Err(err).Str("lead_id", l.ID.String()).Msg("lead: save failed")
		return nil, err
	}
	resp := &dto.GuardarLeadResponse{Lead: mapLead(l)}
	if err != nil {
		promocionesFallidas.Inc()
		log.Warn().Err(err).Str("lead_id", l.ID.String()).Msg("lead: saved as won but promotion failed")
		return resp, err
	}
	if c != nil {
		leadsPromovidos.Inc()
		cr := mapCliente(c)
		resp.Cliente = &cr
		log.Info().Str("lead_id", l.ID.String()).Str("cliente_id", c.ID.String()).Msg("lead promovido a cliente")
	}
	return resp, nil
}

func (s *leadService) Mover(ctx context.Context, sess session.Session, id uuid.UUID, etapa string) (*dto.GuardarLeadResponse, error) {
	destino, ok := pipeline.ParseEtapa(etapa)
	if !ok {
		return nil, invalida(fmt.Sprintf("etapa desconocida %q", etapa))
	}
	l, err := s.cargar(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	liberar, err := s.guardia.tomar(id)
	if err != nil {
		return nil, err
	}
	defer liberar()

	board := pipeline.NuevoBoard([]model.Lead{*l}, leadPersistidor{s.repo}, s.clientes)
	mov, err := board.Mover(ctx, id, destino)
	resp := &dto.GuardarLeadResponse{Lead: mapLead(&mov.Lead)}
	switch {
	case errors.Is(err, pipeline.ErrPromocion):
		resp.Lead = mapLead(mov.Guardado)
		promocionesFallidas.Inc()
		log.Warn().Err(err).Str("lead_id", id.String()).Msg("lead: moved to won but promotion failed")
		return resp, err
	case err != nil:
		log.Error().Err(err).Str("lead_id", id.String()).Msg("lead: move failed")
		return resp, err
	}
	if mov.Promovido != nil {
		leadsPromovidos.Inc()
		cr := mapCliente(mov.Promovido)
		resp.Cliente = &cr
	}
	return resp, nil
}

// ── Bulk import ──────────────────────────────────────────────────────────────

// Importar creates leads in one batch. Stages are normalised, unknown ones land
// in NUEVO. Imported leads that are already won are promoted afterwards; a
// failed promotion is reported per row and does not undo the import.
func (s *leadService) Importar(ctx context.Context, sess session.Session, rows []dto.LeadImportRow) (*dto.ImportarResultado, error) {
	return s.importar(ctx, sess, rows, "json")
}

func (s *leadService) importar(ctx context.Context, sess session.Session, rows []dto.LeadImportRow, formato string) (*dto.ImportarResultado, error) {
	res := &dto.ImportarResultado{Errores: map[string]string{}}
	owner := sess.UsuarioID
	leads := make([]model.Lead, 0, len(rows))
	filas := make([]int, 0, len(rows))

	for i, r := range rows {
		nombre := strings.TrimSpace(r.Nombre)
		if nombre == "" {
			res.Omitidos++
			res.Errores[strconv.Itoa(i)] = "nombre requerido"
			continue
		}
		fuente := r.Fuente
		if fuente == "" {
			fuente = "importacion"
		}
		leads = append(leads, model.Lead{
			ID:       uuid.New(),
			Nombre:   nombre,
			Email:    r.Email,
			Telefono: r.Telefono,
			Fuente:   fuente,
			Etapa:    string(pipeline.NormalizarEtapa(r.Etapa)),
			Notas:    r.Notas,
			AgenteID: &owner,
		})
		filas = append(filas, i)
	}

	if err := s.repo.CreateBatch(ctx, leads); err != nil {
		return nil, fmt.Errorf("importar leads: %w", err)
	}
	res.Importados = len(leads)
	leadsImportados.WithLabelValues(formato).Add(float64(len(leads)))

	for i := range leads {
		if !pipeline.Etapa(leads[i].Etapa).EsGanado() {
			continue
		}
		if _, err := s.clientes.PromoverLead(ctx, &leads[i]); err != nil {
			promocionesFallidas.Inc()
			res.Errores[strconv.Itoa(filas[i])] = pipeline.ErrPromocion.Error()
			continue
		}
		leadsPromovidos.Inc()
	}

	if len(res.Errores) == 0 {
		res.Errores = nil
	}
	log.Info().Str("formato", formato).Int("importados", res.Importados).Int("omitidos", res.Omitidos).Msg("leads importados")
	return res, nil
}

// ImportarCSV reads a CSV with a header row. Recognised columns: nombre, email,
// telefono, fuente, etapa, notas (case and accent insensitive); others are ignored.
func (s *leadService) ImportarCSV(ctx context.Context, sess session.Session, r io.Reader) (*dto.ImportarResultado, error) {
	rows, err := leerLeadsCSV(r)
	if err != nil {
		return nil, err
	}
	return s.importar(ctx, sess, rows, "csv")
}

func leerLeadsCSV(r io.Reader) ([]dto.LeadImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, invalida("CSV vacío o ilegible")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[texto.Clave(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols["nombre"]; !ok {
		return nil, invalida("el CSV debe tener una columna 'nombre'")
	}

	campo := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	opcional := func(rec []string, name string) *string {
		v := campo(rec, name)
		if v == "" {
			return nil
		}
		return &v
	}

	var rows []dto.LeadImportRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, invalida(fmt.Sprintf("CSV mal formado: %v", err))
		}
		rows = append(rows, dto.LeadImportRow{
			Nombre:   campo(rec, "nombre"),
			Email:    opcional(rec, "email"),
			Telefono: opcional(rec, "telefono"),
			Fuente:   campo(rec, "fuente"),
			Etapa:    campo(rec, "etapa"),
			Notas:    opcional(rec, "notas"),
		})
	}
	return rows, nil
}
