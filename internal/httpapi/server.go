package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"acestepd/internal/launcher"
	"acestepd/internal/memory"
	"acestepd/internal/security"
	"acestepd/pkg/types"
)

// Service defines the methods required by the control API layer.
type Service interface {
	Status() types.StatusResponse
	Memory() types.MemoryStatus
	Constraints() types.Constraints
	Processes() []types.ProcessStatus
	StopProcess(name string) error
	Admit(req types.AdmissionRequest, identifier string) (types.AdmissionResponse, error)
	Ready() bool
}

// NewMux builds the control API router with the full middleware chain.
func NewMux(svc Service, sec *security.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(requestLogger)
	r.Use(MetricsMiddleware)
	r.Use(securityHeaders(sec))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(ipAccess(sec))
	r.Use(rateLimit(sec))

	// Liveness and metrics stay reachable without credentials.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(authenticate(sec))

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Status())
		})
		r.Get("/memory", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Memory())
		})
		r.Get("/constraints", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Constraints())
		})
		r.Get("/processes", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"processes": svc.Processes()})
		})
		r.Post("/processes/{name}/stop", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			if err := svc.StopProcess(name); err != nil {
				if launcher.IsProcessNotFound(err) {
					writeJSONError(w, http.StatusNotFound, err.Error())
					return
				}
				writeJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, map[string]any{"stopped": name})
		})

		r.Post("/admission", func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			var req types.AdmissionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
			resp, err := svc.Admit(req, clientIP(r))
			if err != nil {
				if memory.IsBlocked(err) {
					CountRejection("memory")
					writeJSONError(w, http.StatusServiceUnavailable, err.Error())
					return
				}
				if he, ok := err.(HTTPError); ok {
					writeJSONError(w, he.StatusCode(), he.Error())
					return
				}
				writeJSONError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if !resp.Allowed {
				CountRejection("generation_quota")
				writeJSON2(w, http.StatusTooManyRequests, resp)
				return
			}
			writeJSON(w, resp)
		})
	})

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSON2(w, http.StatusOK, v)
}

func writeJSON2(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
