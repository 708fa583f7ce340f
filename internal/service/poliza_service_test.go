package service

import (
	"context"
	"encoding/json"
	"testing"

	"crmseguros/internal/dto"
	"crmseguros/internal/model"
	"crmseguros/internal/poliza"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramo(r model.Ramo) *model.Ramo { return &r }

type polizaFixture struct {
	svc      *polizaService
	repo     *stubPolizaRepo
	clientes *stubClienteRepo
	vida     model.Producto
	gmm      model.Producto
	agente   uuid.UUID
}

func newPolizaFixture() *polizaFixture {
	f := &polizaFixture{
		repo:     newStubPolizaRepo(),
		clientes: newStubClienteRepo(),
		vida:     model.Producto{ID: uuid.New(), Nombre: "Vida Plus", Aseguradora: "GNP", Categoria: "Vida", Ramo: ramo(model.RamoVida), PorcentajeComision: dec("10"), Activo: true},
		gmm:      model.Producto{ID: uuid.New(), Nombre: "GMM Total", Aseguradora: "AXA", Categoria: "Gastos Médicos Mayores", PorcentajeComision: dec("5"), Activo: true},
		agente:   uuid.New(),
	}
	f.svc = NewPolizaService(f.repo, f.clientes, catalogoFijo{f.vida, f.gmm}).(*polizaService)
	return f
}

func linea(p model.Producto, prima, suma string) dto.LineaProductoRequest {
	return dto.LineaProductoRequest{ProductoID: p.ID.String(), PrimaMensual: decPtr(prima), SumaAsegurada: decPtr(suma)}
}

func TestGuardarPoliza_SinProductosNoPersiste(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{ClienteID: c.ID.String()})

	assert.ErrorIs(t, err, poliza.ErrSinProductos)
	assert.Zero(t, f.repo.saves)
}

func TestGuardarPoliza_LineasIncompletasCuentanComoVacias(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	req := dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{{ProductoID: f.vida.ID.String(), PrimaMensual: decPtr("100")}},
	}

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, req)

	assert.ErrorIs(t, err, poliza.ErrSinProductos)
	assert.Zero(t, f.repo.saves)
}

func TestGuardarPoliza_SinClienteNoPersiste(t *testing.T) {
	f := newPolizaFixture()

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{
		Productos: []dto.LineaProductoRequest{linea(f.vida, "100", "500000")},
	})

	assert.ErrorIs(t, err, poliza.ErrSinCliente)
	assert.Zero(t, f.repo.saves)
}

func TestGuardarPoliza_MultiProducto(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)

	resp, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Estado:    model.PolizaActiva,
		Productos: []dto.LineaProductoRequest{
			linea(f.vida, "1000", "500000"),
			linea(f.gmm, "200", "1000000"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.saves)
	require.Len(t, resp.Productos, 2)
	assert.True(t, resp.Totales.PrimaTotal.Equal(dec("1200")))
	assert.True(t, resp.Totales.SumaAseguradaTotal.Equal(dec("1500000")))
	// 1000·10% + 200·5%
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("110")))
	assert.True(t, resp.Totales.ComisionAnual.Equal(dec("1320")))
	assert.Equal(t, "salud", resp.Productos[1].Ramo)
	require.NotNil(t, resp.AgenteID)
	assert.Equal(t, f.agente.String(), *resp.AgenteID)
	require.NotNil(t, resp.ProductoID)
	assert.Equal(t, f.vida.ID.String(), *resp.ProductoID)
}

func TestGuardarPoliza_ClienteDeOtroAgente(t *testing.T) {
	f := newPolizaFixture()
	otro := uuid.New()
	c := f.clientes.add(&otro)

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "100", "1000")},
	})

	assert.ErrorIs(t, err, ErrSinPermiso)
	assert.Zero(t, f.repo.saves)
}

func TestGuardarPoliza_ClienteInexistente(t *testing.T) {
	f := newPolizaFixture()

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{
		ClienteID: uuid.NewString(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "100", "1000")},
	})

	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func legacyPoliza(f *polizaFixture, c *model.Cliente) *model.Poliza {
	pid := f.vida.ID
	p := &model.Poliza{
		ID:             uuid.New(),
		ClienteID:      c.ID,
		ProductoID:     &pid,
		PrimaTotal:     dec("150"),
		ComisionAgente: dec("20"),
		Estado:         model.PolizaActiva,
		AgenteID:       &f.agente,
	}
	f.repo.polizas[p.ID] = p
	return p
}

func TestObtenerParaEdicion_ReconciliaLegacy(t *testing.T) {
	f := newPolizaFixture()
	p := legacyPoliza(f, f.clientes.add(&f.agente))

	resp, err := f.svc.ObtenerParaEdicion(context.Background(), agente(f.agente), p.ID)

	require.NoError(t, err)
	require.Len(t, resp.Productos, 1)
	assert.True(t, resp.Productos[0].PrimaMensual.Equal(dec("150")))
	assert.True(t, resp.Productos[0].ComisionMensual.Equal(dec("20")))
	assert.True(t, resp.Productos[0].Legacy)
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("20")))
}

func TestObtenerParaEdicion_OtroAgente(t *testing.T) {
	f := newPolizaFixture()
	p := legacyPoliza(f, f.clientes.add(&f.agente))

	_, err := f.svc.ObtenerParaEdicion(context.Background(), agente(uuid.New()), p.ID)

	assert.ErrorIs(t, err, ErrSinPermiso)
}

func TestGuardarPoliza_ReguardarLegacyConservaComision(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	p := legacyPoliza(f, c)

	resp, err := f.svc.Guardar(context.Background(), agente(f.agente), &p.ID, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Estado:    model.PolizaActiva,
		Productos: []dto.LineaProductoRequest{linea(f.vida, "150", "0")},
	})

	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), resp.ID)
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("20")))
	guardada := f.repo.polizas[p.ID]
	require.Len(t, guardada.ProductosDetalle, 1)
	assert.True(t, guardada.ProductosDetalle[0].Legacy)
}

func TestGuardarPoliza_LineaEditadaSeRecalcula(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	p := legacyPoliza(f, c)

	resp, err := f.svc.Guardar(context.Background(), agente(f.agente), &p.ID, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "300", "0")},
	})

	require.NoError(t, err)
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("30")))
	assert.False(t, resp.Productos[0].Legacy)
}

func TestGuardarPoliza_GuardadoEnCurso(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	p := legacyPoliza(f, c)
	liberar, err := f.svc.guardia.tomar(p.ID)
	require.NoError(t, err)
	defer liberar()

	_, err = f.svc.Guardar(context.Background(), agente(f.agente), &p.ID, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "150", "0")},
	})

	assert.ErrorIs(t, err, ErrGuardadoEnCurso)
	assert.Zero(t, f.repo.saves)
}

func TestGuardarPoliza_ErrorDeBackend(t *testing.T) {
	f := newPolizaFixture()
	f.repo.saveErr = errBackend
	c := f.clientes.add(&f.agente)

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), nil, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "100", "1000")},
	})

	assert.ErrorIs(t, err, errBackend)
	// the guard is released after a failure
	_, err = f.svc.guardia.tomar(f.agente)
	assert.NoError(t, err)
}

func TestGuardarPoliza_CreacionEnCursoDelMismoAgente(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	liberar, err := f.svc.guardia.tomar(f.agente)
	require.NoError(t, err)
	defer liberar()
	req := dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{linea(f.vida, "100", "1000")},
	}

	_, err = f.svc.Guardar(context.Background(), agente(f.agente), nil, req)
	assert.ErrorIs(t, err, ErrGuardadoEnCurso)

	otro := uuid.New()
	c2 := f.clientes.add(&otro)
	req.ClienteID = c2.ID.String()
	_, err = f.svc.Guardar(context.Background(), agente(otro), nil, req)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.repo.saves)
}

// polizaConProductoRetirado stores a policy with a line for a product that is no
// longer in the active catalog plus a GMM line.
func polizaConProductoRetirado(f *polizaFixture, c *model.Cliente) (*model.Poliza, model.Producto) {
	retirado := model.Producto{ID: uuid.New(), Nombre: "Accidentes Escolar", Categoria: "Accidentes Personales", PorcentajeComision: dec("10"), Activo: false}
	p := &model.Poliza{
		ID:        uuid.New(),
		ClienteID: c.ID,
		Estado:    model.PolizaActiva,
		AgenteID:  &f.agente,
		ProductosDetalle: []model.ProductoDetalle{
			poliza.ArmarDetalle(retirado, dec("100"), dec("1000")),
			poliza.ArmarDetalle(f.gmm, dec("200"), dec("5000")),
		},
	}
	f.repo.polizas[p.ID] = p
	return p, retirado
}

func TestGuardarPoliza_EditarLineaDeProductoInactivo(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	p, retirado := polizaConProductoRetirado(f, c)

	resp, err := f.svc.Guardar(context.Background(), agente(f.agente), &p.ID, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Estado:    model.PolizaActiva,
		Productos: []dto.LineaProductoRequest{
			linea(retirado, "120", "1000"),
			linea(f.gmm, "200", "5000"),
		},
	})

	require.NoError(t, err)
	guardada := f.repo.polizas[p.ID]
	require.Len(t, guardada.ProductosDetalle, 2)
	assert.Equal(t, retirado.ID, guardada.ProductosDetalle[0].ProductoID)
	assert.True(t, guardada.ProductosDetalle[0].PrimaMensual.Equal(dec("120")))
	assert.True(t, guardada.ProductosDetalle[0].ComisionGenerada.Equal(dec("12")))
	assert.True(t, resp.Totales.PrimaTotal.Equal(dec("320")))
	// 120·10% + 200·5%
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("22")))
}

func TestGuardarPoliza_LineaLegacyInactivaNoSePierde(t *testing.T) {
	f := newPolizaFixture()
	c := f.clientes.add(&f.agente)
	pid := uuid.New()
	p := &model.Poliza{
		ID:             uuid.New(),
		ClienteID:      c.ID,
		ProductoID:     &pid,
		PrimaTotal:     dec("150"),
		ComisionAgente: dec("20"),
		Estado:         model.PolizaActiva,
		AgenteID:       &f.agente,
	}
	f.repo.polizas[p.ID] = p

	_, err := f.svc.Guardar(context.Background(), agente(f.agente), &p.ID, dto.GuardarPolizaRequest{
		ClienteID: c.ID.String(),
		Productos: []dto.LineaProductoRequest{
			linea(model.Producto{ID: pid}, "180", "0"),
			linea(f.vida, "100", "1000"),
		},
	})

	assert.ErrorIs(t, err, ErrEntradaInvalida)
	assert.Zero(t, f.repo.saves)
}

func TestCotizar_OmiteLineasIncompletas(t *testing.T) {
	f := newPolizaFixture()

	resp, err := f.svc.Cotizar(context.Background(), dto.CotizarRequest{Productos: []dto.LineaProductoRequest{
		linea(f.vida, "100", "1000"),
		{ProductoID: f.gmm.ID.String()},
		linea(model.Producto{ID: uuid.New()}, "50", "10"),
	}})

	require.NoError(t, err)
	assert.Len(t, resp.Productos, 1)
	assert.Equal(t, 2, resp.Omitidos)
	assert.True(t, resp.Totales.ComisionAgente.Equal(dec("10")))
	assert.Zero(t, f.repo.saves)
}

func TestListarPolizas_AgenteSoloVeLasSuyas(t *testing.T) {
	f := newPolizaFixture()
	legacyPoliza(f, f.clientes.add(&f.agente))
	otro := uuid.New()
	ajena := &model.Poliza{ID: uuid.New(), AgenteID: &otro, Estado: model.PolizaActiva}
	f.repo.polizas[ajena.ID] = ajena

	propias, err := f.svc.Listar(context.Background(), agente(f.agente), dto.PolizaFilter{})
	require.NoError(t, err)
	assert.Len(t, propias, 1)

	todas, err := f.svc.Listar(context.Background(), admin(), dto.PolizaFilter{})
	require.NoError(t, err)
	assert.Len(t, todas, 2)
}

func TestImportarLegacy_RelacionesEnCualquierForma(t *testing.T) {
	f := newPolizaFixture()
	clienteID := uuid.New()
	raw := `[
		{"prima_total": "150", "comision_agente": "20", "estado": "ACTIVA",
		 "clientes": [{"ID": "` + clienteID.String() + `"}],
		 "productos": {"ID": "` + f.vida.ID.String() + `"}},
		{"prima_total": "80", "clientes": null, "productos": null}
	]`
	var rows []dto.PolizaLegacyImport
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))

	res, err := f.svc.ImportarLegacy(context.Background(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Importados)
	assert.Equal(t, 1, res.Omitidos)
	assert.Contains(t, res.Errores, "1")
	for _, p := range f.repo.polizas {
		assert.Equal(t, clienteID, p.ClienteID)
		require.NotNil(t, p.ProductoID)
		assert.Equal(t, f.vida.ID, *p.ProductoID)
		assert.Equal(t, model.PolizaActiva, p.Estado)
	}
}
