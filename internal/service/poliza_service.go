package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/poliza"
	"crmseguros/internal/repository"
	"crmseguros/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var doce = decimal.NewFromInt(12)

// CatalogoProvider supplies the active product catalog.
type CatalogoProvider interface {
	Catalogo(ctx context.Context) ([]model.Producto, error)
}

type PolizaService interface {
	// Cotizar prices the given lines against the catalog without persisting.
	Cotizar(ctx context.Context, req dto.CotizarRequest) (*dto.CotizacionResponse, error)
	// Guardar creates (id nil) or updates a policy. Validation failures return
	// poliza.ErrSinProductos or poliza.ErrSinCliente before anything is written.
	Guardar(ctx context.Context, sess session.Session, id *uuid.UUID, req dto.GuardarPolizaRequest) (*dto.PolizaResponse, error)
	// ObtenerParaEdicion loads a policy with legacy single-product data rebuilt
	// into one product line.
	ObtenerParaEdicion(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.PolizaResponse, error)
	Listar(ctx context.Context, sess session.Session, filter dto.PolizaFilter) ([]dto.PolizaResponse, error)
	ImportarLegacy(ctx context.Context, rows []dto.PolizaLegacyImport) (*dto.ImportarResultado, error)
}

type polizaService struct {
	repo     repository.PolizaRepository
	clientes repository.ClienteRepository
	catalogo CatalogoProvider
	guardia  *guardia
}

func NewPolizaService(repo repository.PolizaRepository, clientes repository.ClienteRepository, catalogo CatalogoProvider) PolizaService {
	return &polizaService{repo: repo, clientes: clientes, catalogo: catalogo, guardia: nuevaGuardia()}
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func mapDetalle(d model.ProductoDetalle) dto.ProductoDetalleResponse {
	return dto.ProductoDetalleResponse{
		ProductoID:         d.ProductoID.String(),
		Nombre:             d.Nombre,
		Categoria:          d.Categoria,
		Ramo:               string(poliza.RamoDeDetalle(d)),
		Aseguradora:        d.Aseguradora,
		PrimaMensual:       d.PrimaMensual,
		SumaAsegurada:      d.SumaAsegurada,
		PorcentajeComision: d.PorcentajeComision,
		ComisionMensual:    d.ComisionGenerada,
		ComisionAnual:      d.ComisionAnual(),
		Legacy:             d.Legacy,
	}
}

func mapTotales(t poliza.Totales) dto.TotalesResponse {
	return dto.TotalesResponse{
		PrimaTotal:         t.PrimaTotal,
		SumaAseguradaTotal: t.SumaAseguradaTotal,
		ComisionAgente:     t.ComisionAgente,
		ComisionAnual:      t.ComisionAgente.Mul(doce),
	}
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapPoliza(p *model.Poliza, items []model.ProductoDetalle) dto.PolizaResponse {
	productos := make([]dto.ProductoDetalleResponse, len(items))
	for i, d := range items {
		productos[i] = mapDetalle(d)
	}
	resp := dto.PolizaResponse{
		ID:               p.ID.String(),
		NumeroPoliza:     p.NumeroPoliza,
		ClienteID:        p.ClienteID.String(),
		ProductoID:       uuidStr(p.ProductoID),
		Productos:        productos,
		Totales:          mapTotales(poliza.CalcularTotales(items).Redondear()),
		FechaEmision:     p.FechaEmision,
		FechaVencimiento: p.FechaVencimiento,
		Estado:           p.Estado,
		AgenteID:         uuidStr(p.AgenteID),
		CreatedAt:        p.CreatedAt,
	}
	if p.Cliente != nil {
		resp.ClienteNombre = p.Cliente.Nombre
	}
	return resp
}

// ── Line building ────────────────────────────────────────────────────────────

// agregarLineas adds the request lines to e. A line equal to a stored one (same
// product, premium and insured sum) keeps the stored snapshot, so re-saving a
// policy never re-prices untouched lines. An edited line whose product is no longer
// in the active catalog is re-priced from its stored snapshot.
//
// Returns the number of incomplete lines that were skipped and the number of
// stored lines that could not be rebuilt.
func agregarLineas(e *poliza.Editor, lineas []dto.LineaProductoRequest, previas []model.ProductoDetalle) (omitidas, perdidas int) {
	usadas := make([]bool, len(previas))
	for _, l := range lineas {
		id, err := uuid.Parse(l.ProductoID)
		if err != nil || l.PrimaMensual == nil || l.SumaAsegurada == nil {
			omitidas++
			continue
		}
		if i := buscarPrevia(previas, usadas, id, l); i >= 0 {
			usadas[i] = true
			e.ConservarDetalle(previas[i])
			continue
		}
		if e.AgregarProducto(id, l.PrimaMensual, l.SumaAsegurada) {
			continue
		}
		i := buscarPorProducto(previas, usadas, id)
		if i < 0 {
			omitidas++
			continue
		}
		usadas[i] = true
		if !e.RepreciarDetalle(previas[i], l.PrimaMensual, l.SumaAsegurada) {
			perdidas++
		}
	}
	return omitidas, perdidas
}

func buscarPrevia(previas []model.ProductoDetalle, usadas []bool, id uuid.UUID, l dto.LineaProductoRequest) int {
	for i, d := range previas {
		if usadas[i] || d.ProductoID != id {
			continue
		}
		if d.PrimaMensual.Equal(*l.PrimaMensual) && d.SumaAsegurada.Equal(*l.SumaAsegurada) {
			return i
		}
	}
	return -1
}

func buscarPorProducto(previas []model.ProductoDetalle, usadas []bool, id uuid.UUID) int {
	for i, d := range previas {
		if !usadas[i] && d.ProductoID == id {
			return i
		}
	}
	return -1
}

// ── Operations ───────────────────────────────────────────────────────────────

func (s *polizaService) Cotizar(ctx context.Context, req dto.CotizarRequest) (*dto.CotizacionResponse, error) {
	catalogo, err := s.catalogo.Catalogo(ctx)
	if err != nil {
		return nil, err
	}
	e := poliza.NuevoEditor(catalogo)
	omitidas, _ := agregarLineas(e, req.Productos, nil)

	productos := make([]dto.ProductoDetalleResponse, len(e.Productos))
	for i, d := range e.Productos {
		productos[i] = mapDetalle(d)
	}
	return &dto.CotizacionResponse{
		Productos: productos,
		Totales:   mapTotales(e.Totales().Redondear()),
		Omitidos:  omitidas,
	}, nil
}

func (s *polizaService) Guardar(ctx context.Context, sess session.Session, id *uuid.UUID, req dto.GuardarPolizaRequest) (*dto.PolizaResponse, error) {
	catalogo, err := s.catalogo.Catalogo(ctx)
	if err != nil {
		return nil, err
	}

	var (
		e       *poliza.Editor
		previas []model.ProductoDetalle
	)
	if id != nil {
		actual, err := s.repo.FindByID(ctx, *id)
		if err != nil {
			return nil, notFound(err, "póliza")
		}
		if !sess.PuedeVer(actual.AgenteID) {
			return nil, ErrSinPermiso
		}
		e = poliza.EditorDesdePoliza(actual, catalogo)
		previas = e.Productos
		e.Productos = []model.ProductoDetalle{}
	} else {
		e = poliza.NuevoEditor(catalogo)
		owner := sess.UsuarioID
		e.AgenteID = &owner
	}

	if _, perdidas := agregarLineas(e, req.Productos, previas); perdidas > 0 {
		return nil, invalida("un producto guardado ya no está en el catálogo y no puede modificarse")
	}
	e.ClienteID = nil
	if req.ClienteID != "" {
		if cid, err := uuid.Parse(req.ClienteID); err == nil {
			e.ClienteID = &cid
		}
	}
	if req.Estado != "" {
		if !poliza.EstadoValido(req.Estado) {
			return nil, invalida("estado de póliza desconocido")
		}
		e.Estado = req.Estado
	}
	e.NumeroPoliza = req.NumeroPoliza
	e.FechaEmision = req.FechaEmision
	e.FechaVencimiento = req.FechaVencimiento
	if sess.EsAdmin() && req.AgenteID != nil {
		aid, err := uuid.Parse(*req.AgenteID)
		if err != nil {
			return nil, invalida("agente_id")
		}
		e.AgenteID = &aid
	}

	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	cliente, err := s.clientes.FindByID(ctx, snap.ClienteID)
	if err != nil {
		return nil, notFound(err, "cliente")
	}
	if !sess.PuedeVer(cliente.AgenteID) {
		return nil, ErrSinPermiso
	}

	// Creates are keyed on the caller: one policy form saving at a time per user.
	clave := sess.UsuarioID
	operacion := "crear"
	if id != nil {
		clave = *id
		operacion = "actualizar"
	}
	liberar, err := s.guardia.tomar(clave)
	if err != nil {
		return nil, err
	}
	defer liberar()

	if err := s.repo.Save(ctx, snap); err != nil {
		log.Error().Err(err).Str("poliza_id", snap.ID.String()).Msg("poliza: save failed")
		return nil, fmt.Errorf("guardar póliza: %w", err)
	}
	polizasGuardadas.WithLabelValues(operacion).Inc()
	log.Info().
		Str("poliza_id", snap.ID.String()).
		Str("operacion", operacion).
		Int("productos", len(snap.ProductosDetalle)).
		Str("prima_total", snap.PrimaTotal.String()).
		Msg("poliza guardada")

	snap.Cliente = cliente
	resp := mapPoliza(snap, snap.ProductosDetalle)
	return &resp, nil
}

func (s *polizaService) ObtenerParaEdicion(ctx context.Context, sess session.Session, id uuid.UUID) (*dto.PolizaResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "póliza")
	}
	if !sess.PuedeVer(p.AgenteID) {
		return nil, ErrSinPermiso
	}
	resp := mapPoliza(p, poliza.ReconciliarLegacy(p))
	return &resp, nil
}

func (s *polizaService) Listar(ctx context.Context, sess session.Session, filter dto.PolizaFilter) ([]dto.PolizaResponse, error) {
	f := repository.PolizaFilter{AgenteID: sess.AgenteScope(), Estado: filter.Estado}
	if sess.EsAdmin() && filter.AgenteID != "" {
		aid, err := uuid.Parse(filter.AgenteID)
		if err != nil {
			return nil, invalida("agente_id")
		}
		f.AgenteID = &aid
	}
	if filter.ClienteID != "" {
		cid, err := uuid.Parse(filter.ClienteID)
		if err != nil {
			return nil, invalida("cliente_id")
		}
		f.ClienteID = &cid
	}

	polizas, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PolizaResponse, len(polizas))
	for i := range polizas {
		resp[i] = mapPoliza(&polizas[i], poliza.ReconciliarLegacy(&polizas[i]))
	}
	return resp, nil
}

// ImportarLegacy loads rows exported by the previous backend. Rows keep their
// single-product shape; they are reconciled into product lines when read.
func (s *polizaService) ImportarLegacy(ctx context.Context, rows []dto.PolizaLegacyImport) (*dto.ImportarResultado, error) {
	res := &dto.ImportarResultado{Errores: map[string]string{}}
	polizas := make([]model.Poliza, 0, len(rows))

	for i, row := range rows {
		p, err := polizaDesdeLegacy(row)
		if err != nil {
			res.Omitidos++
			res.Errores[strconv.Itoa(i)] = err.Error()
			continue
		}
		polizas = append(polizas, *p)
	}

	n, err := s.repo.ImportarLegacy(ctx, polizas)
	if err != nil {
		return nil, fmt.Errorf("importar pólizas: %w", err)
	}
	res.Importados = int(n)
	res.Omitidos += len(polizas) - int(n)
	if len(res.Errores) == 0 {
		res.Errores = nil
	}
	log.Info().Int("importados", res.Importados).Int("omitidos", res.Omitidos).Msg("polizas legacy importadas")
	return res, nil
}

func parseOpcional(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func polizaDesdeLegacy(row dto.PolizaLegacyImport) (*model.Poliza, error) {
	id, err := parseOpcional(row.ID)
	if err != nil {
		return nil, errors.New("id inválido")
	}
	clienteID, err := parseOpcional(row.ClienteID)
	if err != nil {
		return nil, errors.New("cliente_id inválido")
	}
	if clienteID == nil {
		if c := model.FirstRelated(row.Clientes); c != nil && c.ID != uuid.Nil {
			clienteID = &c.ID
		}
	}
	if clienteID == nil {
		return nil, poliza.ErrSinCliente
	}
	productoID, err := parseOpcional(row.ProductoID)
	if err != nil {
		return nil, errors.New("producto_id inválido")
	}
	if productoID == nil {
		if p := model.FirstRelated(row.Productos); p != nil && p.ID != uuid.Nil {
			productoID = &p.ID
		}
	}
	if productoID == nil {
		return nil, poliza.ErrSinProductos
	}
	agenteID, err := parseOpcional(row.AgenteID)
	if err != nil {
		return nil, errors.New("agente_id inválido")
	}

	estado := row.Estado
	if !poliza.EstadoValido(estado) {
		estado = model.PolizaPendientePago
	}
	p := &model.Poliza{
		NumeroPoliza:       row.NumeroPoliza,
		ClienteID:          *clienteID,
		ProductoID:         productoID,
		PrimaTotal:         row.PrimaTotal,
		SumaAseguradaTotal: row.SumaAseguradaTotal,
		ComisionAgente:     row.ComisionAgente,
		FechaEmision:       row.FechaEmision,
		FechaVencimiento:   row.FechaVencimiento,
		Estado:             estado,
		AgenteID:           agenteID,
	}
	if id != nil {
		p.ID = *id
	} else {
		p.ID = uuid.New()
	}
	return p, nil
}
