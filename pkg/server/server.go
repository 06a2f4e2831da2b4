// Package server mirrors the dashboard state over HTTP and a websocket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"tonunlock/pkg/dashboard"
	"tonunlock/pkg/loader"
	"tonunlock/pkg/logging"
	"tonunlock/pkg/models"
	"tonunlock/pkg/sorting"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Source is the loader surface the server reads from.
type Source interface {
	Status() loader.Status
	Subscribe() loader.Subscriber
	Unsubscribe(loader.Subscriber)
}

type Server struct {
	source  Source
	symbol  string
	logger  *zap.Logger
	sub     loader.Subscriber
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
	httpSrv *http.Server
}

// NewServer subscribes to src immediately so no event published after this
// call is missed.
func NewServer(src Source, symbol string, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger)
	s := &Server{
		source:  src,
		symbol:  symbol,
		logger:  logger,
		sub:     src.Subscribe(),
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	s.httpSrv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/wallets", s.handleWallets)
	s.mux.HandleFunc("/api/chart", s.handleChart)
	s.mux.HandleFunc("/ws", s.handleWS)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until the listener fails or Shutdown is called. Port 0 picks
// a free port. Calling Start after Shutdown returns nil without serving.
func (s *Server) Start(port int) error {
	go s.listenToLoader()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	s.logger.Info("api server listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and drops the loader subscription.
func (s *Server) Shutdown(ctx context.Context) error {
	s.source.Unsubscribe(s.sub)
	return s.httpSrv.Shutdown(ctx)
}

type statusResponse struct {
	Symbol          string                 `json:"symbol"`
	SchedulePending bool                   `json:"schedule_pending"`
	MetricsPending  bool                   `json:"metrics_pending"`
	Banner          string                 `json:"banner,omitempty"`
	ScheduleErr     string                 `json:"schedule_error,omitempty"`
	MetricsErr      string                 `json:"metrics_error,omitempty"`
	Footer          dashboard.Footer       `json:"footer"`
	Metrics         []dashboard.MetricSlot `json:"metrics"`
}

func (s *Server) snapshot() statusResponse {
	st := s.source.Status()
	resp := statusResponse{
		Symbol:          s.symbol,
		SchedulePending: st.SchedulePending,
		MetricsPending:  st.MetricsPending,
		ScheduleErr:     st.ScheduleErr,
		MetricsErr:      st.MetricsErr,
		Footer:          dashboard.FooterFor(st.AppData),
		Metrics: dashboard.MetricSlots(dashboard.State{
			Metrics:        st.Metrics,
			MetricsErr:     st.MetricsErr,
			MetricsPending: st.MetricsPending,
		}),
	}
	if st.ScheduleErr != "" {
		resp.Banner = dashboard.LoadFailedBanner
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

type walletsResponse struct {
	Sort struct {
		Field     string `json:"field"`
		Direction string `json:"direction"`
	} `json:"sort"`
	Rows    []dashboard.Row       `json:"rows"`
	Records []models.WalletRecord `json:"records"`
}

func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	state := sorting.DefaultState()
	q := r.URL.Query()
	if name := q.Get("sort"); name != "" {
		f, err := sorting.ParseField(name)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		state.Field = f
	}
	dir, err := sorting.ParseDirection(q.Get("dir"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state.Direction = dir

	rows := dashboard.TableRows(s.source.Status().AppData, state)
	if rows == nil {
		s.writeError(w, http.StatusServiceUnavailable, "schedule data not loaded")
		return
	}

	var resp walletsResponse
	resp.Sort.Field = state.Field.String()
	resp.Sort.Direction = state.Direction.String()
	resp.Rows = rows
	resp.Records = make([]models.WalletRecord, 0, len(rows))
	for _, row := range rows {
		resp.Records = append(resp.Records, row.Record)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type chartResponse struct {
	Legend string                 `json:"legend"`
	XTitle string                 `json:"x_title"`
	YTitle string                 `json:"y_title"`
	Points []dashboard.ChartPoint `json:"points"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, ok := dashboard.ChartSpec(s.source.Status().AppData, s.symbol)
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "chart data not loaded")
		return
	}
	s.writeJSON(w, http.StatusOK, chartResponse{
		Legend: spec.Legend,
		XTitle: spec.XTitle,
		YTitle: spec.YTitle,
		Points: dashboard.ChartPoints(spec),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	s.mu.Lock()
	s.clients[conn] = true
	// Send initial state before any broadcast can reach this client.
	err = conn.WriteJSON(map[string]interface{}{
		"type": "initial",
		"data": s.snapshot(),
	})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToLoader() {
	for event := range s.sub {
		s.broadcast(event)
	}
}

func (s *Server) broadcast(event loader.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
