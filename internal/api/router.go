package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	authchain "github.com/icdevs/inspect-mo-sub000/internal/auth"
	"github.com/icdevs/inspect-mo-sub000/internal/config"
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/inspector"
	appmw "github.com/icdevs/inspect-mo-sub000/pkg/middleware"
)

// NewRouter builds the example host's HTTP surface: one route per
// inspected method, fronted by the usual chi middleware stack plus the
// auth provider chain that resolves a caller Principal before the
// Inspector ever sees the request.
func NewRouter(cfg *config.Config, insp *inspector.Inspector, chain *authchain.ProviderChain, rl ictx.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)
	r.Use(principalResolver(chain))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   parseCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Service-Token", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/greet", greetHandler(insp))
		r.Post("/transfer", transferHandler(insp, rl))
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("request received")
		next.ServeHTTP(w, req)
	})
}

// principalResolver runs the auth provider chain once per request and
// stashes the resolved Principal in context via pkg/middleware, so
// downstream handlers build ictx.Request without re-running auth.
func principalResolver(chain *authchain.ProviderChain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			principal, err := chain.Authenticate(req.Context(), req)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			ctx := appmw.SetPrincipal(req.Context(), principal)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func greetHandler(insp *inspector.Inspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var args GreetArgs
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, http.StatusBadRequest, "malformed json: "+err.Error())
			return
		}

		req := &ictx.Request{
			MethodName: "greet",
			Caller:     appmw.GetPrincipal(r.Context()),
			ArgBytes:   body,
			TypedMsg:   args,
			IsQuery:    true,
			IsInspect:  true,
		}

		if err := insp.InspectCheck(r.Context(), req); err != nil {
			writeRejection(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"greeting": "hello, " + args.Text})
	}
}

func transferHandler(insp *inspector.Inspector, rl ictx.RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var args TransferArgs
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := json.Unmarshal(body, &args); err != nil {
			writeError(w, http.StatusBadRequest, "malformed json: "+err.Error())
			return
		}

		caller := appmw.GetPrincipal(r.Context())

		boundaryReq := &ictx.Request{
			MethodName: "transfer",
			Caller:     caller,
			ArgBytes:   body,
			TypedMsg:   args,
			IsQuery:    false,
			IsInspect:  true,
		}
		if err := insp.InspectCheck(r.Context(), boundaryReq); err != nil {
			writeRejection(w, err)
			return
		}

		if rl != nil {
			if decision, err := rl.Check(r.Context(), caller, "transfer"); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			} else if !decision.Allowed {
				w.Header().Set("Retry-After", decision.RetryAfter.String())
				writeError(w, http.StatusTooManyRequests, decision.Reason)
				return
			}
		}

		guardReq := *boundaryReq
		guardReq.IsInspect = false
		if err := insp.GuardCheck(r.Context(), &guardReq); err != nil {
			writeRejection(w, err)
			return
		}

		if rl != nil {
			rl.Record(r.Context(), caller, "transfer")
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "accepted",
			"to":     args.To,
			"amount": args.Amount,
		})
	}
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeRejection(w http.ResponseWriter, err error) {
	writeError(w, http.StatusForbidden, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "inspectmo-exampleserver"})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": cfg.Version, "service": "inspectmo-exampleserver"})
	}
}

func parseCORSOrigins() []string {
	originsEnv := os.Getenv("INSPECTMO_CORS_ORIGINS")
	if originsEnv == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(originsEnv, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
