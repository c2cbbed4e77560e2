package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const healthCheckTimeout = 2 * time.Second

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, disabled, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Status int
	Body   HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := map[string]ComponentHealth{
		"store":  s.checkStore(ctx),
		"search": s.checkSearch(),
	}

	out := &HealthOutput{
		Status: http.StatusOK,
		Body:   HealthResponse{Status: "healthy", Components: components},
	}
	if components["store"].Status != "healthy" {
		out.Status = http.StatusServiceUnavailable
		out.Body.Status = "unhealthy"
	}
	return out, nil
}

// checkStore pings the persistence backend.
func (s *Server) checkStore(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Store health check failed", "error", err)
		return ComponentHealth{Status: "unhealthy", Message: "store unreachable"}
	}
	return ComponentHealth{Status: "healthy", Latency: time.Since(start).String()}
}

func (s *Server) checkSearch() ComponentHealth {
	if !s.opts.SearchEnabled {
		return ComponentHealth{Status: "disabled"}
	}
	return ComponentHealth{Status: "healthy"}
}
