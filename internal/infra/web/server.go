package web

import (
	"net/http"
	"time"

	"case-portal/internal/infra/api"
	"case-portal/internal/infra/metrics"
	"case-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const defaultMaxUpload = 32 << 20

type Options struct {
	APIKey         string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type Server struct {
	flowUC    usecase.FlowUseCase
	caseUC    usecase.CaseUseCase
	auth      *AuthManager
	apiKey    string
	maxUpload int64
	timeout   time.Duration
	log       *zerolog.Logger
}

func NewServer(
	flowUC usecase.FlowUseCase,
	caseUC usecase.CaseUseCase,
	auth *AuthManager,
	opts Options,
	logger *zerolog.Logger,
) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		flowUC:    flowUC,
		caseUC:    caseUC,
		auth:      auth,
		apiKey:    opts.APIKey,
		maxUpload: opts.MaxUploadBytes,
		timeout:   opts.RequestTimeout,
		log:       &l,
	}
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return api.Chain(next,
		api.TraceID(),
		api.Recover(s.log),
		api.RequestLog(s.log),
		api.Instrument(),
		api.Timeout(s.timeout),
	)
}

// Handler builds the full routing tree. Public case routes serve summaries;
// applicant details are only served under /admin.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/services", s.handleServices)

		r.Route("/flows", func(r chi.Router) {
			r.Post("/", s.handleStartFlow)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleGetFlow)
				r.Delete("/", s.handleAbandonFlow)
				r.Put("/step", s.handleSetStep)
				r.Post("/next", s.handleNext)
				r.Post("/prev", s.handlePrev)
				r.Put("/service", s.handleSelectService)
				r.Patch("/personal-info", s.handlePersonalInfo)
				r.Put("/documents/{slot}", s.handleUploadDocument)
				r.Delete("/documents/{slot}", s.handleRemoveDocument)
				r.Post("/submit", s.handleSubmit)
			})
		})

		r.Get("/cases", s.handleListCases)
		r.Get("/cases/stats", s.handleCaseStats)
		r.Get("/cases/{caseID}", s.handleGetCase)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Get("/cases", s.handleAdminListCases)
				r.Get("/cases/{caseID}", s.handleAdminGetCase)
				r.Put("/cases/{caseID}/status", s.handleUpdateStatus)
			})
		})
	})
	return r
}
