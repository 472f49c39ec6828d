package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/suite"

	agenthandler "fieldforce/internal/agent/handler"
	"fieldforce/internal/agent/service"
	"fieldforce/internal/agent/store"
	"fieldforce/internal/platform/health"
	"fieldforce/internal/platform/metrics"
	adminmw "fieldforce/pkg/platform/middleware/admin"
	"fieldforce/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	svc := service.New(store.NewInMemory(), logger, service.WithMetrics(metrics.NewWithRegistry(reg)))

	s.router = NewRouter(Deps{
		Agents:         agenthandler.New(svc, logger),
		Health:         health.New("test"),
		AdminToken:     "admin",
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
}

func (s *RouterSuite) serve(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) TestOpsEndpoints() {
	rec := s.serve(http.MethodGet, "/health/live", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	rec = s.serve(http.MethodGet, "/health/ready", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestAgentWritesNeedAdminToken() {
	body := `{"first_name":"Lerato","surname":"Molefe","id_type":"sa_id","sa_id_no":"` + testutil.NationalIDFemale1988 + `"}`

	rec := s.serve(http.MethodPost, "/agents", body, map[string]string{"Content-Type": "application/json"})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.serve(http.MethodPost, "/agents", body, map[string]string{
		"Content-Type":      "application/json",
		adminmw.HeaderToken: "admin",
		"X-Request-ID":      "import-42",
	})
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Equal("import-42", rec.Header().Get("X-Request-ID"))

	rec = s.serve(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "fieldforce_agents_created_total 1")
}

func (s *RouterSuite) TestRejectsNonJSONBodies() {
	rec := s.serve(http.MethodPost, "/identity/validate", "id_type=sa_id", map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}

func (s *RouterSuite) TestRejectsOversizedBodies() {
	body := `{"id_type":"passport","value":"` + strings.Repeat("A", 70*1024) + `"}`
	rec := s.serve(http.MethodPost, "/identity/validate", body, map[string]string{"Content-Type": "application/json"})
	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
}
