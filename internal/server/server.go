// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fitmenu/internal/daily"
	"fitmenu/internal/metrics"
	"fitmenu/internal/models"
)

type Config struct {
	Host string
	Port int
}

// MenuPlanner produces today's topped-up menu.
type MenuPlanner interface {
	Today(ctx context.Context, save bool) (*daily.Result, error)
}

// MenuStore reads stored menus.
type MenuStore interface {
	GetMenus(ctx context.Context, startDate, endDate string, limit int) ([]*models.Menu, error)
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type MenuServer struct {
	httpServer *http.Server
	planner    MenuPlanner
	store      MenuStore
	metrics    *metrics.Metrics
	logger     *zap.Logger
	tools      map[string]toolHandler
}

func NewMenuServer(cfg *Config, planner MenuPlanner, store MenuStore, m *metrics.Metrics, logger *zap.Logger) (*MenuServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	menuServer := &MenuServer{
		planner: planner,
		store:   store,
		metrics: m,
		logger:  logger,
	}

	menuServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", menuServer.handleHTTP)
	if m != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	}

	menuServer.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return menuServer, nil
}

// Handler exposes the HTTP routes without starting a listener.
func (s *MenuServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *MenuServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		s.logger.Warn("tool call failed", zap.String("tool", request.Name), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, errInvalidParams) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *MenuServer) Start(ctx context.Context) error {
	s.logger.Info("starting fitmenu server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *MenuServer) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *MenuServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
