package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/cucumber/godog"

	"datacash/internal/common/metrics"
	"datacash/internal/gateway/api"
	"datacash/internal/gateway/application"
	"datacash/internal/gateway/infrastructure/datacash"
	"datacash/internal/gateway/infrastructure/memory"
)

// offlineTransport fails every post, standing in for an unreachable gateway.
type offlineTransport struct{}

func (offlineTransport) Post(ctx context.Context, url, body string) (string, error) {
	return "", fmt.Errorf("gateway is offline in contract tests")
}

type contractState struct {
	server   *httptest.Server
	response *http.Response
	body     string
}

func InitializeContractScenario(sc *godog.ScenarioContext) {
	state := &contractState{}

	sc.Step(`^the service is running$`, state.theServiceIsRunning)
	sc.Step(`^I request the (health|metrics) endpoint$`, state.iRequestTheEndpoint)
	sc.Step(`^I post '([^']*)' to "([^"]*)"$`, state.iPostTo)
	sc.Step(`^the response status should be (\d+)$`, state.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, state.theResponseShouldContain)

	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		if state.server != nil {
			state.server.Close()
		}
		return ctx, nil
	})
}

func (s *contractState) theServiceIsRunning() error {
	service := application.NewGateway(datacash.Config{Test: true}, offlineTransport{}, memory.NewJournal())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})
	mux.Handle("GET /metrics", metrics.Handler())
	api.NewHandler(service).RegisterRoutes(mux)

	s.server = httptest.NewServer(metrics.Middleware(mux))
	return nil
}

func (s *contractState) capture(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	s.response, s.body = resp, string(body)
	return nil
}

func (s *contractState) iRequestTheEndpoint(name string) error {
	if s.server == nil {
		return fmt.Errorf("server not running")
	}
	return s.capture(http.Get(s.server.URL + "/" + name))
}

func (s *contractState) iPostTo(body, path string) error {
	if s.server == nil {
		return fmt.Errorf("server not running")
	}
	return s.capture(http.Post(s.server.URL+path, "application/json", strings.NewReader(body)))
}

func (s *contractState) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.body)
	}
	return nil
}

func (s *contractState) theResponseShouldContain(fragment string) error {
	if !strings.Contains(s.body, fragment) {
		return fmt.Errorf("expected response to contain %q", fragment)
	}
	return nil
}
