package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ragserve/internal/port"
)

// Answerer streams a grounded answer for one query into a sink.
type Answerer interface {
	Answer(ctx context.Context, query string, topK int, sink func(delta string) error) error
}

// Ingester runs the document ingestion pipeline.
type Ingester interface {
	IngestFile(ctx context.Context, path, docType string) error
}

// Server is the transport layer: a dumb conduit between HTTP/WebSocket
// clients and the pipelines.
type Server struct {
	router      *mux.Router
	answerer    Answerer
	ingester    Ingester
	docs        port.DocStore
	dataDir     string
	defaultTopK int
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// New wires the transport around the given pipelines. Uploaded files
// are kept under dataDir.
func New(answerer Answerer, ingester Ingester, docs port.DocStore, dataDir string, defaultTopK int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:      mux.NewRouter(),
		answerer:    answerer,
		ingester:    ingester,
		docs:        docs,
		dataDir:     dataDir,
		defaultTopK: defaultTopK,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	s.router.HandleFunc("/add-rag", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/getdocs", s.handleListDocs).Methods(http.MethodGet)
	s.router.HandleFunc("/chat", s.handleChat).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list documents", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "failed to list documents",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"docs": docs})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
