package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/corte"
	"github.com/yeremiapane/restaurant-backoffice/database"
	"github.com/yeremiapane/restaurant-backoffice/kds"
	"github.com/yeremiapane/restaurant-backoffice/liveboard"
	"github.com/yeremiapane/restaurant-backoffice/services"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SilenceLogger()
}

// backend is a stand-in for the restaurant REST API.
type backend struct {
	mu          sync.Mutex
	calls       []string
	bodies      map[string]string
	historyFail bool
	historyAuth bool
	historyArgs url.Values
	mesasStatus int
	orderStatus string
}

func (b *backend) record(r *http.Request) (string, string) {
	var buf bytes.Buffer
	buf.ReadFrom(r.Body)
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls = append(b.calls, key)
	b.bodies[key] = buf.String()
	b.mu.Unlock()
	return key, buf.String()
}

func (b *backend) body(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *backend) lastHistoryArgs() url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.historyArgs
}

func (b *backend) called(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, body := b.record(r)
	b.mu.Lock()
	historyFail, mesasStatus, orderStatus := b.historyFail, b.mesasStatus, b.orderStatus
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch key {
	case "POST /auth/authenticate":
		var in struct{ Password string }
		json.Unmarshal([]byte(body), &in)
		if in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "s1", Path: "/"})
		w.Write([]byte(`{"user":{"id":7,"nombre":"Ana","email":"ana@example.com"},"token":"t1"}`))
	case "GET /verifyAuth":
		if !strings.Contains(r.Header.Get("Cookie"), "s1") {
			w.WriteHeader(http.StatusUnauthorized)
		}
	case "GET /categorias":
		w.Write([]byte(`[{"id":1,"nombre":"Bebidas","posicion":1},{"id":2,"nombre":"Postres","posicion":2}]`))
	case "PUT /categorias/reorder", "DELETE /categorias/2":
		w.WriteHeader(http.StatusOK)
	case "GET /mesas":
		w.WriteHeader(mesasStatus)
		w.Write([]byte(`[]`))
	case "GET /v1/descuentos/sucursal/1":
		w.Write([]byte(`[{"id":1,"nombre":"2x1","activo":true}]`))
	case "PUT /v1/descuentos/1/activar":
		w.Write([]byte(`{"id":1,"nombre":"2x1","activo":false}`))
	case "GET /ordenes/historial":
		b.mu.Lock()
		b.historyArgs = r.URL.Query()
		historyAuth := b.historyAuth
		b.mu.Unlock()
		if historyAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if historyFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"success":true,"data":[
			{"id":10,"estado":"COMPLETADA","tipoOrden":"COMER_AQUI","total":100},
			{"id":11,"estado":"COMPLETADA","tipoOrden":"PARA_LLEVAR","total":"50.50"},
			{"id":12,"estado":"RECHAZADA","tipoOrden":"COMER_AQUI","total":20}
		],"pagination":{"currentPage":1,"totalPages":1,"totalItems":3,"itemsPerPage":10}}`))
	case "GET /live/ordenes/1":
		w.Write([]byte(`[{"id":1,"estado":"` + orderStatus + `","tipoOrden":"COMER_AQUI","mesa":4,"total":35}]`))
	case "GET /live/ordenes-dia/1":
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	case "PUT /ordenes/1/status":
		w.WriteHeader(http.StatusOK)
	case "GET /ordenes/1":
		w.Write([]byte(`{"id":1,"estado":"PENDIENTE","usuarioNombre":"Luis","productos":[{"productoNombre":"Taco","cantidad":3,"subtotal":30}]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testApp struct {
	router  *gin.Engine
	backend *backend
	monitor *services.BoardMonitor
}

func setupApp(t *testing.T) *testApp {
	be := &backend{bodies: map[string]string{}, mesasStatus: http.StatusOK, orderStatus: "PENDIENTE"}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	api := client.New(srv.URL, 2*time.Second)
	audit := services.NewAuditService(db)
	board := liveboard.NewBoard(api, 1)
	hub := kds.NewHub()
	monitor := services.NewBoardMonitor(api, board, hub)
	t.Cleanup(monitor.Stop)

	r := SetupRouter(Deps{
		Registry:   session.NewRegistry(api, nil, time.Minute),
		History:    api,
		Catalog:    services.NewCatalogService(api, audit),
		Discounts:  services.NewDiscountService(api, 1, audit),
		Monitor:    monitor,
		Hub:        hub,
		Corte:      corte.NewService(api, db),
		Audit:      audit,
		CORSOrigin: "http://localhost:3000",
		LoginRate:  5,
	})
	return &testApp{router: r, backend: be, monitor: monitor}
}

type envelope struct {
	Status   bool            `json:"status"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Redirect string          `json:"redirect"`
	Notice   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"notice"`
}

func (a *testApp) do(t *testing.T, method, path, body string, authed bool) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "s1"})
		req.Header.Set("Authorization", "Bearer t1")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testApp) login(t *testing.T) {
	w, env := a.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"secret"}`, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, env.Status)
}

func TestPing(t *testing.T) {
	app := setupApp(t)
	w, _ := app.do(t, http.MethodGet, "/ping", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestLogin(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"secret"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=s1")
	assert.Contains(t, string(env.Data), `"token":"t1"`)

	w, env = app.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"nope"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Error al iniciar sesión", env.Error)

	w, _ = app.do(t, http.MethodPost, "/api/auth/login", `{"email":""}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyAndLogout(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/auth/verify", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"state":"authenticated"`)

	w, _ = app.do(t, http.MethodPost, "/api/auth/logout", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestProtectedRouteNeedsSession(t *testing.T) {
	app := setupApp(t)
	w, env := app.do(t, http.MethodGet, "/api/categorias", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, session.LoginPath, env.Redirect)
}

func TestCatalogRoutes(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/categorias", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Bebidas")

	w, env = app.do(t, http.MethodPost, "/api/categorias", `{"nombre":""}`, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), "El nombre de la categoría es requerido")
	assert.False(t, app.backend.called("POST /categorias"))

	w, env = app.do(t, http.MethodDelete, "/api/categorias/2", "", true)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Notice)
	assert.Equal(t, "info", env.Notice.Kind)
	assert.False(t, app.backend.called("DELETE /categorias/2"))

	w, env = app.do(t, http.MethodDelete, "/api/categorias/2?confirm=true", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Categoría eliminada exitosamente", env.Message)

	w, _ = app.do(t, http.MethodGet, "/api/categorias/abc", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogReorder(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodPost, "/api/categorias/reorder", `{"activeId":2,"overId":1}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Orden de categorías actualizado correctamente", env.Message)
	assert.JSONEq(t, `[{"id":2,"posicion":1},{"id":1,"posicion":2}]`, app.backend.body("PUT /categorias/reorder"))

	w, _ = app.do(t, http.MethodPost, "/api/categorias/reorder", `{"activeId":2,"overId":99}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackendRejectionExpiresSession(t *testing.T) {
	app := setupApp(t)
	app.login(t)
	app.backend.mu.Lock()
	app.backend.mesasStatus = http.StatusUnauthorized
	app.backend.mu.Unlock()

	w, env := app.do(t, http.MethodGet, "/api/mesas", "", true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, session.LoginPath, env.Redirect)
}

func TestDiscountRoutes(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/descuentos", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "2x1")

	w, env = app.do(t, http.MethodPut, "/api/descuentos/1/activar", `{"activo":false}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Descuento desactivado exitosamente", env.Message)

	w, _ = app.do(t, http.MethodPut, "/api/descuentos/1/activar", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryRoutes(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/ordenes/historial?page=1&estado=completada", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, env.Notice)
	assert.Contains(t, string(env.Data), `"estado":"COMPLETADA"`)

	w, _ = app.do(t, http.MethodGet, "/api/ordenes/historial?limit=5000", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	app.backend.mu.Lock()
	app.backend.historyFail = true
	app.backend.mu.Unlock()
	w, env = app.do(t, http.MethodGet, "/api/ordenes/historial", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Notice)
	assert.Equal(t, "Error al cargar las órdenes", env.Notice.Message)
	assert.Contains(t, string(env.Data), `"banner"`)
}

func TestHistoryListRoutes(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/historial", "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view struct {
		Orders  []json.RawMessage `json:"orders"`
		Total   int               `json:"total"`
		HasMore bool              `json:"hasMore"`
		Query   struct {
			Sort  string `json:"sort"`
			Order string `json:"order"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Orders, 3)
	assert.Equal(t, 3, view.Total)
	assert.False(t, view.HasMore)

	w, _ = app.do(t, http.MethodPost, "/api/historial/siguiente", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodPut, "/api/historial/filtros", `{"estado":"completada"}`, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETADA", app.backend.lastHistoryArgs().Get("estado"))
	assert.Equal(t, "1", app.backend.lastHistoryArgs().Get("page"))

	w, _ = app.do(t, http.MethodPut, "/api/historial/filtros", `{"fecha":"04/11/2025"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/historial/orden/total", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "total", view.Query.Sort)
	assert.Equal(t, "desc", view.Query.Order)
	assert.Equal(t, "COMPLETADA", app.backend.lastHistoryArgs().Get("estado"))

	w, env = app.do(t, http.MethodPost, "/api/historial/orden/total", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "asc", view.Query.Order)

	w, _ = app.do(t, http.MethodDelete, "/api/historial/filtros", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, app.backend.lastHistoryArgs().Get("estado"))

	app.backend.mu.Lock()
	app.backend.historyFail = true
	app.backend.mu.Unlock()
	w, env = app.do(t, http.MethodDelete, "/api/historial/filtros", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Notice)
	assert.Equal(t, "Error al cargar las órdenes", env.Notice.Message)

	app.backend.mu.Lock()
	app.backend.historyAuth = true
	app.backend.mu.Unlock()
	w, env = app.do(t, http.MethodDelete, "/api/historial/filtros", "", true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, session.LoginPath, env.Redirect)
}

func TestSessionsReportsScreens(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/sesiones", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Activas   int `json:"activas"`
		Pantallas int `json:"pantallas"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.GreaterOrEqual(t, data.Activas, 1)
	assert.Equal(t, 0, data.Pantallas)
}

func TestLiveBoardAndActions(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/live/board", "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"total":1`)

	w, env = app.do(t, http.MethodGet, "/api/ordenes/1", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"usuario":"Luis"`)
	assert.Contains(t, string(env.Data), `"partial":false`)

	w, env = app.do(t, http.MethodPost, "/api/ordenes/1/aceptar", "", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"estado":"PREPARANDO"`)
	assert.JSONEq(t, `{"status":"PREPARANDO"}`, app.backend.body("PUT /ordenes/1/status"))

	w, _ = app.do(t, http.MethodPost, "/api/ordenes/1/aceptar", "", true)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/ordenes/1/volar", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = app.do(t, http.MethodGet, "/api/auditoria?resource=ordenes", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"action":"transition"`)
}

func TestCorteRoutes(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	w, env := app.do(t, http.MethodGet, "/api/cortes?fecha=2024-03-01", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Fecha string `json:"fecha"`
		KPIs  struct {
			VentaTotal float64 `json:"ventaTotal"`
			NumOrdenes int     `json:"numOrdenes"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "2024-03-01", report.Fecha)
	assert.Equal(t, 150.5, report.KPIs.VentaTotal)
	assert.Equal(t, 2, report.KPIs.NumOrdenes)

	w, _ = app.do(t, http.MethodGet, "/api/cortes?fecha=01/03/2024", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = app.do(t, http.MethodPost, "/api/cortes/arqueo", `{"fecha":"2024-03-01","efectivo":140.5}`, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Arqueo registrado con faltante de $10.00", env.Message)

	w, env = app.do(t, http.MethodGet, "/api/cortes/arqueos?fecha=2024-03-01", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"usuario":"ana@example.com"`)
}

func TestLiveStreamResyncsBoard(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/live/stream", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "s1"})
	req.Header.Set("Authorization", "Bearer t1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if strings.Contains(scanner.Text(), "ORDEN_EXISTENTE") {
			break
		}
	}
	require.NotEmpty(t, lines)
	assert.Equal(t, "retry: 3000", lines[0])
	assert.Contains(t, lines[len(lines)-1], `"id":1`)
}

func TestKitchenScreenGetsActionNotice(t *testing.T) {
	app := setupApp(t)
	app.login(t)

	srv := httptest.NewServer(app.router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Cookie", session.CookieName+"=s1")
	header.Set("Authorization", "Bearer t1")
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/board", header)
	require.NoError(t, err)
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))

	var msg kds.Message
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, kds.EventBoardSnapshot, msg.Event)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/ordenes/1/aceptar", nil)
	require.NoError(t, err)
	req.Header = header.Clone()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for {
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Event == kds.EventStaffNotif {
			break
		}
	}
	assert.Equal(t, "Orden #1 actualizada a PREPARANDO", msg.Data)
}
