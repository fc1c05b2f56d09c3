package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoCodeAlone/fibonacci/app"
	"github.com/GoCodeAlone/fibonacci/modules/computer"
	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPAPIBDDTestContext holds state for the HTTP API scenarios
type HTTPAPIBDDTestContext struct {
	module   *HTTPAPIModule
	response *httptest.ResponseRecorder
	body     map[string]any
}

type strategyFeeder string

func (strategyFeeder) Feed(any) error { return nil }

func (f strategyFeeder) FeedKey(key string, target any) error {
	if cfg, ok := target.(*computer.ComputerConfig); ok && key == computer.ModuleName {
		cfg.Strategy = string(f)
	}
	return nil
}

func (ctx *HTTPAPIBDDTestContext) theHTTPAPIIsServingTheStrategy(strategy string) error {
	reg := prometheus.NewRegistry()
	application := app.NewStdApplication(app.NewStdConfigProvider(&struct{}{}), nil)
	application.SetConfigFeeders(strategyFeeder(strategy))
	application.RegisterModule(computer.NewModule(computer.WithRegisterer(reg)))
	ctx.module = NewModule(WithGatherer(reg))
	application.RegisterModule(ctx.module)
	return application.Init()
}

func (ctx *HTTPAPIBDDTestContext) iRequest(path string) error {
	ctx.response = httptest.NewRecorder()
	ctx.module.Handler().ServeHTTP(ctx.response, httptest.NewRequest(http.MethodGet, path, nil))
	ctx.body = nil
	return json.Unmarshal(ctx.response.Body.Bytes(), &ctx.body)
}

func (ctx *HTTPAPIBDDTestContext) theResponseStatusShouldBe(status int) error {
	if ctx.response.Code != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, ctx.response.Code, ctx.response.Body.String())
	}
	return nil
}

func (ctx *HTTPAPIBDDTestContext) theResponseFieldShouldBe(field, want string) error {
	value, ok := ctx.body[field]
	if !ok {
		return fmt.Errorf("response has no field %q", field)
	}

	var got string
	switch v := value.(type) {
	case string:
		got = v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		got = strings.Join(parts, ",")
	default:
		got = fmt.Sprint(v)
	}
	if got != want {
		return fmt.Errorf("field %q: expected %q, got %q", field, want, got)
	}
	return nil
}

func (ctx *HTTPAPIBDDTestContext) theResponseShouldContainAnError() error {
	if msg, ok := ctx.body["error"].(string); !ok || msg == "" {
		return errors.New("response has no error message")
	}
	return nil
}

// InitializeHTTPAPIScenario wires the step definitions
func InitializeHTTPAPIScenario(ctx *godog.ScenarioContext) {
	testCtx := &HTTPAPIBDDTestContext{}

	ctx.Step(`^the HTTP API is serving the "([^"]*)" strategy$`, testCtx.theHTTPAPIIsServingTheStrategy)
	ctx.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	ctx.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
	ctx.Step(`^the response should contain an error$`, testCtx.theResponseShouldContainAnError)
}

// TestHTTPAPIModuleBDD runs the BDD tests for the HTTP API module
func TestHTTPAPIModuleBDD(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeHTTPAPIScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/httpapi_module.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
