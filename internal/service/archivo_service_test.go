package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"crmseguros/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objs map[string][]byte
}

func (m *memStore) ListFiles(_ context.Context, prefix string) ([]infra.ObjectInfo, error) {
	var out []infra.ObjectInfo
	for k, v := range m.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, infra.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memStore) UploadFile(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objs[key] = b
	return nil
}

func (m *memStore) DownloadFile(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := m.objs[key]
	if !ok {
		return nil, infra.ErrArchivoNoEncontrado
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func TestArchivos_SubirListarDescargar(t *testing.T) {
	ag := uuid.New()
	clientes := newStubClienteRepo()
	c := clientes.add(&ag)
	store := &memStore{objs: map[string][]byte{}}
	svc := NewArchivoService(store, newStubPolizaRepo(), clientes, newStubLeadRepo())
	ctx := context.Background()

	subido, err := svc.Subir(ctx, agente(ag), c.ID, "ine.pdf", strings.NewReader("pdf"), 3, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, c.ID.String()+"/ine.pdf", subido.Ruta)

	lista, err := svc.Listar(ctx, agente(ag), c.ID)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "ine.pdf", lista[0].Nombre)

	body, err := svc.Descargar(ctx, agente(ag), c.ID, "ine.pdf")
	require.NoError(t, err)
	b, _ := io.ReadAll(body)
	assert.Equal(t, "pdf", string(b))

	_, err = svc.Descargar(ctx, agente(ag), c.ID, "otro.pdf")
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestArchivos_Permisos(t *testing.T) {
	ag := uuid.New()
	leads := newStubLeadRepo()
	l := leads.add("NUEVO", &ag)
	svc := NewArchivoService(&memStore{objs: map[string][]byte{}}, newStubPolizaRepo(), newStubClienteRepo(), leads)
	ctx := context.Background()

	_, err := svc.Listar(ctx, agente(uuid.New()), l.ID)
	assert.ErrorIs(t, err, ErrSinPermiso)

	_, err = svc.Listar(ctx, admin(), uuid.New())
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestArchivos_NombreInvalido(t *testing.T) {
	svc := NewArchivoService(&memStore{objs: map[string][]byte{}}, newStubPolizaRepo(), newStubClienteRepo(), newStubLeadRepo())

	for _, n := range []string{"", "..", "a/b.pdf", `..\x`} {
		_, err := svc.Subir(context.Background(), admin(), uuid.New(), n, strings.NewReader(""), 0, "")
		assert.ErrorIs(t, err, ErrEntradaInvalida, n)
	}
}
