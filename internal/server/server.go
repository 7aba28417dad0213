// Package server exposes the scenario engine over a small JSON API: post
// a YAML configuration, get the scenario table and the optimization
// summary back. The server keeps no state between requests.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-grid/internal/config"
	"github.com/iwvelando/mortgage-grid/internal/engine"
	"github.com/iwvelando/mortgage-grid/internal/optimizer"
	"github.com/iwvelando/mortgage-grid/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type gridResponse struct {
	Seed      int64                   `json:"seed"`
	Scenarios []engine.ScenarioRecord `json:"scenarios"`
	Summaries []optimizer.Summary     `json:"summaries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler constructs the HTTP handler that serves the grid API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	router := mux.NewRouter()
	router.HandleFunc("/api/grid", h.handleGrid).Methods(http.MethodPost)
	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	return router
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "version": h.version})
}

func (h *handler) handleGrid(w http.ResponseWriter, r *http.Request) {
	payload, err := h.readConfigPayload(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	var conf config.Configuration
	if err := yaml.Unmarshal(payload, &conf); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse configuration: %w", err))
		return
	}
	conf.ApplyDefaults()

	eng, err := engine.New(h.logger, &conf)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	rs, err := eng.Run(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	summaries, err := optimizer.Optimize(h.logger, rs)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.logger.Info("grid request served",
		zap.String("op", "server.handleGrid"),
		zap.Int("scenarios", len(rs.Records)),
		zap.Int("summaries", len(summaries)),
	)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(gridResponse{
		Seed:      rs.Seed,
		Scenarios: rs.Records,
		Summaries: summaries,
	})
}

// readConfigPayload accepts either a raw YAML body or a multipart upload
// with a "file" field, both capped at maxUploadSize.
func (h *handler) readConfigPayload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUploadSize)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			return nil, fmt.Errorf("failed to parse upload: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing config file upload: %w", err)
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(file)
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty configuration payload")
	}
	return payload, nil
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("request failed",
		zap.String("op", "server.writeError"),
		zap.Int("status", status),
		zap.Error(err),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
