package transport

import (
	"net/http"

	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterHealth exposes the gRPC health status of the whole server on GET /v1/health.
func RegisterHealth(mux *gwruntime.ServeMux, health HealthChecker) error {
	return mux.HandlePath(http.MethodGet, "/v1/health", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		resp, err := health.Check(r.Context(), &healthpb.HealthCheckRequest{})
		status := http.StatusOK
		switch {
		case err != nil:
			status = http.StatusServiceUnavailable
		case resp.GetStatus() != healthpb.HealthCheckResponse_SERVING:
			status = http.StatusServiceUnavailable
		}
		w.WriteHeader(status)
		if resp != nil {
			_, _ = w.Write([]byte(resp.GetStatus().String()))
		}
	})
}
