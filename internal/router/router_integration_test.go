//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/dashboard"
	"crmseguros/internal/dto"
	"crmseguros/internal/infra"
	"crmseguros/internal/router"
	"crmseguros/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

// memFiles keeps documents in memory; object storage is not under test here.
type memFiles struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memFiles) ListFiles(_ context.Context, prefix string) ([]infra.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []infra.ObjectInfo
	for k, v := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, infra.ObjectInfo{Key: k, Size: int64(len(v)), LastModified: time.Now()})
		}
	}
	return out, nil
}

func (m *memFiles) UploadFile(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

func (m *memFiles) DownloadFile(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, infra.ErrArchivoNoEncontrado
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	rdb    *redis.Client
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("crmseguros_test"),
		tcPostgres.WithUsername("crm"),
		tcPostgres.WithPassword("crm"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                    "test",
		JWTSecret:              "test-secret-key",
		JWTExpirationHours:     8,
		JWTRefreshHours:        24,
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		CatalogCacheTTLSeconds: 60,
		MetaVidaDefault:        1000,
	}

	require.NoError(t, infra.MigrateUp(pgURL))

	db, err := infra.NewDatabase(pgURL, false)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, rdURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(`INSERT INTO usuarios (username, nombre, password_hash, rol)
		VALUES ('admin', 'Admin E2E', ?, 'admin')`, string(hash)).Error)

	dispatcher := worker.NewDispatcher(rdb)
	engine := router.New(cfg, router.Deps{
		DB:       db,
		Redis:    rdb,
		Files:    &memFiles{data: map[string][]byte{}},
		Reportes: dispatcher,
		DLQ:      dispatcher,
	})
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Username: "admin", Password: "admin1234"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)

	return &testEnv{server: srv, rdb: rdb, token: login.AccessToken}
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Lead won → client → multi-line policy → dashboard and commission report.
func TestE2E_LeadAPolizaYDashboard(t *testing.T) {
	env := setupTestEnv(t)
	srv, tok := env.server, env.token

	vida := "vida"
	resp := do(t, srv, http.MethodPost, "/v1/productos", dto.CrearProductoRequest{
		Nombre: "Vida Plena", Aseguradora: "Aseguradora Uno", Categoria: "Vida",
		Ramo: &vida, PorcentajeComision: decimal.NewFromInt(10),
	}, tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod dto.ProductoResponse
	decodeJSON(t, resp, &prod)

	resp = do(t, srv, http.MethodPost, "/v1/productos", dto.CrearProductoRequest{
		Nombre: "GMM Familiar", Aseguradora: "Aseguradora Dos", Categoria: "Gastos Médicos Mayores",
		PorcentajeComision: decimal.NewFromInt(5),
	}, tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var gmm dto.ProductoResponse
	decodeJSON(t, resp, &gmm)

	// Lead saved directly as won is persisted and then promoted.
	resp = do(t, srv, http.MethodPost, "/v1/leads", dto.GuardarLeadRequest{Nombre: "Laura Pérez", Etapa: "Ganado"}, tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lead dto.GuardarLeadResponse
	decodeJSON(t, resp, &lead)
	assert.Equal(t, "GANADO", lead.Lead.Etapa)
	require.NotNil(t, lead.Cliente)

	// Same-stage move is a no-op and promotion stays idempotent.
	resp = do(t, srv, http.MethodPatch, "/v1/leads/"+lead.Lead.ID+"/etapa", dto.MoverLeadRequest{Etapa: "GANADO"}, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Policy without lines is rejected before anything is stored.
	resp = do(t, srv, http.MethodPost, "/v1/polizas", dto.GuardarPolizaRequest{ClienteID: lead.Cliente.ID}, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	now := time.Now().UTC()
	emision := time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC)
	p100, s1000 := decimal.NewFromInt(100), decimal.NewFromInt(1000)
	p200, s5000 := decimal.NewFromInt(200), decimal.NewFromInt(5000)
	resp = do(t, srv, http.MethodPost, "/v1/polizas", dto.GuardarPolizaRequest{
		ClienteID: lead.Cliente.ID,
		Estado:    "ACTIVA",
		Productos: []dto.LineaProductoRequest{
			{ProductoID: prod.ID, PrimaMensual: &p100, SumaAsegurada: &s1000},
			{ProductoID: gmm.ID, PrimaMensual: &p200, SumaAsegurada: &s5000},
		},
		FechaEmision: &emision,
	}, tok)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var pol dto.PolizaResponse
	decodeJSON(t, resp, &pol)
	require.Len(t, pol.Productos, 2)
	assert.True(t, pol.Totales.PrimaTotal.Equal(decimal.NewFromInt(300)), pol.Totales.PrimaTotal.String())
	assert.True(t, pol.Totales.ComisionAgente.Equal(decimal.NewFromInt(20)), pol.Totales.ComisionAgente.String())

	q := "?mes=" + now.Format("1") + "&anio=" + now.Format("2006")
	resp = do(t, srv, http.MethodGet, "/v1/dashboard"+q, nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dashboard.Resumen
	decodeJSON(t, resp, &res)
	assert.True(t, res.Ventas.Vida.Equal(decimal.NewFromInt(100)), res.Ventas.Vida.String())
	assert.True(t, res.Ventas.Salud.Equal(decimal.NewFromInt(200)), res.Ventas.Salud.String())
	assert.True(t, res.Ventas.AP.IsZero())

	resp = do(t, srv, http.MethodGet, "/v1/comisiones"+q, nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep dto.ComisionReporteResponse
	decodeJSON(t, resp, &rep)
	require.Len(t, rep.Polizas, 1)
	assert.True(t, rep.ComisionMensual.Equal(decimal.NewFromInt(20)))

	resp = do(t, srv, http.MethodPost, "/v1/comisiones/reporte", dto.ReporteComisionRequest{
		Mes: int(now.Month()), Anio: now.Year(), Email: "admin@example.com",
	}, tok)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	n, err := env.rdb.LLen(context.Background(), worker.QueueReportes).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	resp = do(t, srv, http.MethodGet, "/v1/jobs/dlq", nil, tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dlq map[string]int64
	decodeJSON(t, resp, &dlq)
	assert.Equal(t, int64(0), dlq[worker.QueueReportes])
}

func TestE2E_SinToken401(t *testing.T) {
	env := setupTestEnv(t)
	resp := do(t, env.server, http.MethodGet, "/v1/leads/pipeline", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
