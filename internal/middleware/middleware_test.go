package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crmseguros/internal/model"
	"crmseguros/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, uid, rol string, exp time.Time) string {
	t.Helper()
	claims := JWTClaims{
		UserID: uid,
		Nombre: "Laura Gómez",
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func engine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/yo", JWTAuth(secret), func(c *gin.Context) {
		s := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"id": s.UsuarioID.String(), "rol": s.Rol})
	})
	r.GET("/admin", JWTAuth(secret), RequireRole(model.RolAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAuth_SinToken(t *testing.T) {
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/yo", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestJWTAuth_TokenExpirado(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/yo", nil)
	req.Header.Set("Authorization", "Bearer "+firmar(t, uuid.NewString(), model.RolAgente, time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_ConstruyeSesion(t *testing.T) {
	uid := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/yo", nil)
	req.Header.Set("Authorization", "Bearer "+firmar(t, uid, model.RolAgente, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uid)
	assert.Contains(t, w.Body.String(), model.RolAgente)
}

func TestRequireRole(t *testing.T) {
	for rol, want := range map[string]int{
		model.RolAgente: http.StatusForbidden,
		model.RolAdmin:  http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+firmar(t, uuid.NewString(), rol, time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		engine().ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, rol)
	}
}

func TestRequestID_Propaga(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/yo", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestGetSession_TipoCorrecto(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	want := session.Session{UsuarioID: uuid.New(), Rol: model.RolAdmin}
	c.Set(SessionKey, want)
	assert.Equal(t, want, GetSession(c))
}

func TestLimitador_VentanaFija(t *testing.T) {
	l := nuevoLimitador(2, time.Minute)
	ahora := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return ahora }

	ok, _ := l.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.permitir("1.1.1.1")
	assert.False(t, ok)

	// Other clients keep their own count.
	ok, _ = l.permitir("2.2.2.2")
	assert.True(t, ok)

	ahora = ahora.Add(time.Minute + time.Second)
	ok, _ = l.permitir("1.1.1.1")
	assert.True(t, ok)
}

func TestLimitador_BarreExpirados(t *testing.T) {
	l := nuevoLimitador(5, time.Minute)
	ahora := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return ahora }

	l.permitir("1.1.1.1")
	l.permitir("2.2.2.2")
	ahora = ahora.Add(2 * time.Minute)
	l.permitir("3.3.3.3")

	assert.Len(t, l.clientes, 1)
}

func TestRateLimiter_429(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimiter(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestCORS_OrigenPermitido(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://crm.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://crm.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://otro.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
