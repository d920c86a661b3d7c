package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/ingestion"
	"github.com/poiesic/trialmatch/matching"
)

// MatchService is the application surface served over HTTP.
// Implemented by trialmatch.Service.
type MatchService interface {
	IngestPatient(ctx context.Context, patientID string, bundleJSON []byte) (*core.PatientRecord, error)
	ListPatients(ctx context.Context, limit int) ([]*core.PatientRecord, error)
	PatientDetail(ctx context.Context, patientID string) (*core.PatientRecord, *core.MatchRecord, error)
	RunMatching(ctx context.Context, patientID string, mode core.MatchMode, numTrials int) (*core.MatchRecord, error)
	RunBatch(ctx context.Context, patientIDs []string, mode core.MatchMode, numTrials int) []matching.BatchResult
	UploadTrials(ctx context.Context, items []ingestion.TrialUpload) (int, error)
}

// DefaultPatientListLimit is the number of patients returned by the index route.
const DefaultPatientListLimit = 100

// MaxBodyBytes bounds request bodies. Synthea bundles run to several megabytes.
const MaxBodyBytes = 32 << 20

type Server struct {
	router      *chi.Mux
	svc         MatchService
	adminSecret string
	logger      *slog.Logger
}

type Options func(*Server)

// WithAdminSecret requires an X-Admin-Token header equal to secret on admin routes.
// An empty secret leaves admin routes open.
func WithAdminSecret(secret string) Options {
	return func(s *Server) {
		s.adminSecret = secret
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Options {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(svc MatchService, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		svc:    svc,
		logger: slog.Default().With("component", "http"),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/patients_upload", s.uploadPatient)
		r.Get("/patients_index", s.listPatients)
		r.Get("/patient_detail", s.patientDetail)
		r.Post("/trials_match", s.matchTrials)
		r.Post("/trials_match_batch", s.matchTrialsBatch)

		r.Group(func(r chi.Router) {
			r.Use(adminTokenMiddleware(s.adminSecret))
			r.Post("/trials_upload", s.uploadTrials)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found.", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed.", http.StatusMethodNotAllowed)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("access",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
