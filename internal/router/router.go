package router

import (
	"database/sql"
	"net/http"
	"os"

	_ "disercomi-tramites/docs"
	"disercomi-tramites/internal/adapters/registry/static"
	mem "disercomi-tramites/internal/adapters/storage/memory"
	pg "disercomi-tramites/internal/adapters/storage/postgres"
	"disercomi-tramites/internal/domain/audit"
	"disercomi-tramites/internal/domain/chatbot"
	"disercomi-tramites/internal/domain/procedures"
	"disercomi-tramites/internal/domain/validations"
	"disercomi-tramites/internal/middleware"
	"disercomi-tramites/internal/platform/logger"
	"disercomi-tramites/internal/ports/auth"
	"disercomi-tramites/internal/ports/registry"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: validador de registros estatales. Si es nil, usa el estático.
	Validator registry.Validator

	// Opcional: logger. Si es nil, se arma desde env.
	Log logger.Logger
}

// NewRouter arma el servicio completo. El cleanup devuelto drena la bitácora
// pendiente; llamarlo en el shutdown.
func NewRouter(opts Options) (http.Handler, func()) {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Portal público: los clientes de navegador consultan desde cualquier
	// origen (la página de rastreo no requiere sesión).
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-User-Name", "X-Debug-User-Role"},
		MaxAge:         300,
	}))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		procRepo  procedures.Repository
		auditRepo audit.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		procRepo = pg.NewProceduresRepo(db)
		auditRepo = pg.NewAuditRepo(db)
	} else {
		procRepo = mem.NewProceduresRepo()
		auditRepo = mem.NewAuditRepo()
	}

	recorder := audit.NewRecorder(auditRepo, log)

	procSvc := procedures.NewService(procRepo, recorder)

	validator := opts.Validator
	if validator == nil {
		validator = static.NewValidator()
	}

	procedures.RegisterRoutes(r, procSvc)
	audit.RegisterRoutes(r, auditRepo)
	validations.RegisterRoutes(r, validator)
	chatbot.RegisterRoutes(r)

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r, recorder.Close
}
