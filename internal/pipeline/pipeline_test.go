package pipeline

import (
	"context"
	"errors"
	"testing"

	"crmseguros/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ── Collaborator mocks ───────────────────────────────────────────────────────

type backendMock struct {
	mock.Mock
	llamadas []string
}

func (m *backendMock) GuardarLead(ctx context.Context, l *model.Lead) error {
	m.llamadas = append(m.llamadas, "guardar")
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *backendMock) PromoverLead(ctx context.Context, l *model.Lead) (*model.Cliente, error) {
	m.llamadas = append(m.llamadas, "promover")
	args := m.Called(ctx, l)
	c, _ := args.Get(0).(*model.Cliente)
	return c, args.Error(1)
}

func leadEn(etapa string) model.Lead {
	return model.Lead{ID: uuid.New(), Nombre: "Ana Pérez", Etapa: etapa}
}

// ── Stage vocabulary ─────────────────────────────────────────────────────────

func TestNormalizarEtapa(t *testing.T) {
	cases := map[string]Etapa{
		"NUEVO":             EtapaNuevo,
		"nuevo":             EtapaNuevo,
		"Cita Agendada":     EtapaCitaAgendada,
		"en_valoración":     EtapaEnValoracion,
		"propuesta-enviada": EtapaPropuestaEnviada,
		"PROSPECTO":         EtapaNuevo,
		"En Contacto":       EtapaContactado,
		"Cotización":        EtapaEnValoracion,
		"NEGOCIACION":       EtapaPropuestaEnviada,
		"cerrado  ganado":   EtapaGanado,
		"Vendido":           EtapaGanado,
		"DESCARTADO":        EtapaNoInteresado,
		"":                  EtapaNuevo,
		"FOO":               EtapaNuevo,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizarEtapa(in), in)
	}
}

func TestParseEtapa_Desconocida(t *testing.T) {
	_, ok := ParseEtapa("FOO")
	assert.False(t, ok)
	e, ok := ParseEtapa("ganado")
	assert.True(t, ok)
	assert.True(t, e.EsGanado())
}

func TestEsAvanzada(t *testing.T) {
	assert.True(t, EtapaEnValoracion.EsAvanzada())
	assert.True(t, EtapaPropuestaEnviada.EsAvanzada())
	assert.False(t, EtapaGanado.EsAvanzada())
	assert.False(t, EtapaNuevo.EsAvanzada())
}

// ── Manual edit ──────────────────────────────────────────────────────────────

func TestGuardarLead_GanadoPersisteAntesDePromover(t *testing.T) {
	m := &backendMock{}
	cliente := &model.Cliente{ID: uuid.New()}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(nil).Once()
	m.On("PromoverLead", mock.Anything, mock.Anything).Return(cliente, nil).Once()

	l := leadEn("Cerrado Ganado")
	c, err := GuardarLead(context.Background(), &l, m, m)

	require.NoError(t, err)
	assert.Same(t, cliente, c)
	assert.Equal(t, []string{"guardar", "promover"}, m.llamadas)
	assert.Equal(t, string(EtapaGanado), l.Etapa)
	m.AssertExpectations(t)
}

func TestGuardarLead_FallaPersistenciaNoPromueve(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(errors.New("db caída")).Once()

	l := leadEn(string(EtapaGanado))
	_, err := GuardarLead(context.Background(), &l, m, m)

	assert.ErrorIs(t, err, ErrGuardado)
	assert.Equal(t, []string{"guardar"}, m.llamadas)
	m.AssertNotCalled(t, "PromoverLead", mock.Anything, mock.Anything)
}

func TestGuardarLead_FallaPromocionEsParcial(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(nil).Once()
	m.On("PromoverLead", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	l := leadEn(string(EtapaGanado))
	_, err := GuardarLead(context.Background(), &l, m, m)

	assert.ErrorIs(t, err, ErrPromocion)
	assert.NotErrorIs(t, err, ErrGuardado)
	assert.Equal(t, string(EtapaGanado), l.Etapa)
}

func TestGuardarLead_NoGanadoNoPromueve(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(nil).Once()

	l := leadEn("interesado")
	c, err := GuardarLead(context.Background(), &l, m, m)

	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, string(EtapaEnValoracion), l.Etapa)
	m.AssertNotCalled(t, "PromoverLead", mock.Anything, mock.Anything)
}

// ── Drag and drop ────────────────────────────────────────────────────────────

func TestBoard_Columnas(t *testing.T) {
	a, b, c := leadEn("PROSPECTO"), leadEn("NEGOCIACION"), leadEn("NUEVO")
	board := NuevoBoard([]model.Lead{a, b, c}, nil, nil)

	cols := board.Columnas()
	require.Len(t, cols, len(Etapas))
	assert.Equal(t, EtapaNuevo, cols[0].Etapa)
	require.Len(t, cols[0].Leads, 2)
	assert.Equal(t, a.ID, cols[0].Leads[0].ID)
	assert.Equal(t, c.ID, cols[0].Leads[1].ID)
	require.Len(t, cols[4].Leads, 1)
	assert.Equal(t, b.ID, cols[4].Leads[0].ID)
	assert.NotNil(t, cols[5].Leads)
	assert.Empty(t, cols[5].Leads)
}

func TestBoard_MismaEtapaSinLlamadas(t *testing.T) {
	m := &backendMock{}
	l := leadEn(string(EtapaContactado))
	board := NuevoBoard([]model.Lead{l}, m, m)

	mov, err := board.Mover(context.Background(), l.ID, EtapaContactado)

	require.NoError(t, err)
	assert.False(t, mov.Cambio)
	assert.Empty(t, m.llamadas)
	m.AssertNotCalled(t, "GuardarLead", mock.Anything, mock.Anything)
}

func TestBoard_MoverSinPromocion(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.MatchedBy(func(l *model.Lead) bool {
		return l.Etapa == string(EtapaCitaAgendada)
	})).Return(nil).Once()

	l := leadEn(string(EtapaContactado))
	board := NuevoBoard([]model.Lead{l}, m, m)

	mov, err := board.Mover(context.Background(), l.ID, EtapaCitaAgendada)

	require.NoError(t, err)
	assert.True(t, mov.Cambio)
	assert.Nil(t, mov.Promovido)
	got, _ := board.Lead(l.ID)
	assert.Equal(t, string(EtapaCitaAgendada), got.Etapa)
	assert.Equal(t, []string{"guardar"}, m.llamadas)
}

func TestBoard_GanadoPersisteYPromueve(t *testing.T) {
	m := &backendMock{}
	cliente := &model.Cliente{ID: uuid.New()}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(nil).Once()
	m.On("PromoverLead", mock.Anything, mock.Anything).Return(cliente, nil).Once()

	l := leadEn(string(EtapaPropuestaEnviada))
	board := NuevoBoard([]model.Lead{l}, m, m)

	mov, err := board.Mover(context.Background(), l.ID, EtapaGanado)

	require.NoError(t, err)
	assert.Equal(t, []string{"guardar", "promover"}, m.llamadas)
	assert.Same(t, cliente, mov.Promovido)
	got, _ := board.Lead(l.ID)
	assert.Equal(t, string(EtapaGanado), got.Etapa)
}

func TestBoard_FallaPersistenciaRevierte(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(errors.New("db caída")).Once()

	l := leadEn(string(EtapaPropuestaEnviada))
	board := NuevoBoard([]model.Lead{l}, m, m)

	_, err := board.Mover(context.Background(), l.ID, EtapaGanado)

	assert.ErrorIs(t, err, ErrGuardado)
	assert.Equal(t, []string{"guardar"}, m.llamadas)
	m.AssertNotCalled(t, "PromoverLead", mock.Anything, mock.Anything)
	got, _ := board.Lead(l.ID)
	assert.Equal(t, string(EtapaPropuestaEnviada), got.Etapa)
}

func TestBoard_FallaPromocionRevierteTablero(t *testing.T) {
	m := &backendMock{}
	m.On("GuardarLead", mock.Anything, mock.Anything).Return(nil).Once()
	m.On("PromoverLead", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	l := leadEn(string(EtapaPropuestaEnviada))
	board := NuevoBoard([]model.Lead{l}, m, m)

	mov, err := board.Mover(context.Background(), l.ID, EtapaGanado)

	assert.ErrorIs(t, err, ErrPromocion)
	assert.Equal(t, []string{"guardar", "promover"}, m.llamadas)
	got, _ := board.Lead(l.ID)
	assert.Equal(t, string(EtapaPropuestaEnviada), got.Etapa)
	require.NotNil(t, mov.Guardado)
	assert.Equal(t, string(EtapaGanado), mov.Guardado.Etapa)
}

func TestBoard_LeadDesconocido(t *testing.T) {
	board := NuevoBoard(nil, &backendMock{}, &backendMock{})
	_, err := board.Mover(context.Background(), uuid.New(), EtapaGanado)
	assert.Error(t, err)
}
