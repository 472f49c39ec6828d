//go:build e2e

package e2e

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	agenthandler "fieldforce/internal/agent/handler"
	"fieldforce/internal/agent/service"
	"fieldforce/internal/agent/store"
	"fieldforce/internal/platform/health"
	"fieldforce/internal/platform/metrics"
	httptransport "fieldforce/internal/transport/http"
)

var opts = godog.Options{
	Output: colors.Colored(os.Stdout),
	Format: "pretty",
	Paths:  []string{"features"},
}

func init() {
	godog.BindCommandLineFlags("godog.", &opts)
}

// TestFeatures runs against BASE_URL when set, otherwise against an in-process
// server backed by the in-memory store.
func TestFeatures(t *testing.T) {
	flag.Parse()
	opts.TestingT = t

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		srv := httptest.NewServer(newInProcessRouter())
		defer srv.Close()
		baseURL = srv.URL
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			InitializeScenario(sc, baseURL)
		},
		Options: &opts,
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext, baseURL string) {
	tc := NewTestContext(baseURL)

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*tc = *NewTestContext(baseURL)
		return ctx, nil
	})

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if err != nil {
			fmt.Printf("Scenario failed: %s\nLast Response: %s\n", sc.Name, string(tc.LastResponseBody))
		}
		return ctx, nil
	})

	RegisterSteps(sc, tc)
}

func newInProcessRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	svc := service.New(store.NewInMemory(), logger, service.WithMetrics(metrics.NewWithRegistry(reg)))

	return httptransport.NewRouter(httptransport.Deps{
		Agents:         agenthandler.New(svc, logger),
		Health:         health.New("e2e"),
		AdminToken:     AdminToken(),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
}
