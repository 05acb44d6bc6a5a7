package adminhttp

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/secure"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/prismrgb/prismd/internal/config"
	"github.com/prismrgb/prismd/internal/metrics"
	"github.com/prismrgb/prismd/internal/provider"
	"github.com/prismrgb/prismd/internal/version"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 10 * time.Second
	defaultWriteTimeout      = 15 * time.Second
	defaultShutdownTimeout   = 5 * time.Second
	defaultBroadcastInterval = 5 * time.Second
	defaultWebSocketReadLim  = 1024
)

// Server exposes the provider as a diagnostic/control HTTP surface.
type Server struct {
	addr      string
	mux       *mux.Router
	service   *provider.Service
	scanCfg   config.ScanConfig
	limiter   *rate.Limiter
	upgrader  websocket.Upgrader
	wsMu      sync.Mutex
	conns     map[*websocket.Conn]struct{}
	startTime time.Time
}

// NewServer builds the admin server for a provider service.
func NewServer(httpCfg *config.HTTPConfig, scanCfg config.ScanConfig, service *provider.Service) *Server {
	s := &Server{
		addr:      httpCfg.Listen,
		mux:       mux.NewRouter(),
		service:   service,
		scanCfg:   scanCfg,
		limiter:   rate.NewLimiter(rate.Every(scanCfg.RescanMinInterval), 1),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:     make(map[*websocket.Conn]struct{}),
		startTime: time.Now(),
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	api := s.mux.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/devices", s.handleDevices).Methods("GET")
	api.HandleFunc("/rescan", s.handleRescan).Methods("POST")
	api.HandleFunc("/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/info", s.handleInfo).Methods("GET")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")

	s.mux.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

// Start listens and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	// Fast-fail if port is occupied
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}

	_ = ln.Close()

	handler := s.buildMiddlewareChain(ctx)
	srv := s.createServer(ctx, handler)

	zerolog.Ctx(ctx).Info().Str("addr", s.addr).Msg("http listen")

	go func() { _ = srv.ListenAndServe() }()

	// periodic WS broadcasts
	go func() {
		ticker := time.NewTicker(defaultBroadcastInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.broadcast(map[string]any{
					"type": "status",
					"data": map[string]any{
						"status":  s.service.Status(),
						"uptime":  time.Since(s.startTime).Round(time.Second).String(),
						"metrics": metrics.Snapshot(),
					},
				})
			}
		}
	}()

	return nil
}

func (s *Server) buildMiddlewareChain(ctx context.Context) http.Handler {
	logger := zerolog.Ctx(ctx)

	var h http.Handler = s.mux

	// CORS
	c := cors.New(cors.Options{AllowOriginFunc: func(_ string) bool { return true }, AllowCredentials: true, AllowedHeaders: []string{"*"}})
	h = c.Handler(h)

	// Security headers
	sec := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
	h = sec.Handler(h)

	// Logging + request metadata
	h = hlog.NewHandler(*logger)(h)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		logger.Info().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("http")
	})(h)
	h = chimw.RequestID(h)
	h = chimw.RealIP(h)
	// Recoverer last to catch panics
	h = chimw.Recoverer(h)

	return otelhttp.NewHandler(h, "adminhttp")
}

func (s *Server) createServer(ctx context.Context, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
		WriteTimeout:      defaultWriteTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}

type deviceDTO struct {
	Slot         string `json:"slot"`
	Type         string `json:"type"`
	Layout       string `json:"layout,omitempty"`
	LegendLayout string `json:"legend_layout,omitempty"`
	Locale       string `json:"locale,omitempty"`
	LEDs         int    `json:"leds"`
}

func deviceToDTO(d *provider.Device) deviceDTO {
	info := d.Info()

	return deviceDTO{
		Slot:         info.Slot.String(),
		Type:         string(info.Type),
		Layout:       info.Layout.String(),
		LegendLayout: info.LegendLayout,
		Locale:       info.Locale.String(),
		LEDs:         d.LEDCount(),
	}
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.service.Devices()

	list := make([]deviceDTO, 0, len(devices))
	for _, device := range devices {
		list = append(list, deviceToDTO(device))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"devices": list,
		"count":   len(list),
	})
}

type rescanRequest struct {
	ExclusiveAccess *bool `json:"exclusive_access,omitempty"`
	Strict          *bool `json:"strict,omitempty"`
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		render.Status(r, http.StatusTooManyRequests)
		render.JSON(w, r, map[string]any{"error": "rescan rate limit exceeded"})

		return
	}

	opts := provider.ScanOptions{
		ExclusiveAccess: s.scanCfg.ExclusiveAccess,
		Strict:          s.scanCfg.Strict,
	}

	var req rescanRequest
	if err := render.DecodeJSON(r.Body, &req); err == nil {
		if req.ExclusiveAccess != nil {
			opts.ExclusiveAccess = *req.ExclusiveAccess
		}

		if req.Strict != nil {
			opts.Strict = *req.Strict
		}
	}

	ok, err := s.service.Rescan(r.Context(), opts)
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{"ok": false, "error": err.Error()})

		return
	}

	if !ok {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]any{"ok": false})

		return
	}

	status := s.service.Status()
	s.broadcast(map[string]any{"type": "rescan", "data": status})

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{"ok": true, "devices": status.Devices})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.service.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history := s.service.History()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"history": history,
		"count":   len(history),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	status := s.service.Status()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"version":          version.GetVersion(),
		"build_time":       version.GetBuildTime(),
		"go_version":       runtime.Version(),
		"os":               runtime.GOOS,
		"arch":             runtime.GOARCH,
		"sdk_architecture": status.LoadedArchitecture,
		"status":           status,
		"uptime":           time.Since(s.startTime).Round(time.Second).String(),
		"metrics":          metrics.Snapshot(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]any{
		"status":      "ok",
		"initialized": s.service.Status().Initialized,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	conn.SetReadLimit(defaultWebSocketReadLim)

	s.wsMu.Lock()
	s.conns[conn] = struct{}{}
	s.wsMu.Unlock()

	// Drain client messages; unregister on close.
	go func() {
		defer func() {
			s.wsMu.Lock()
			delete(s.conns, conn)
			s.wsMu.Unlock()
			_ = conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcast(payload map[string]any) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	for conn := range s.conns {
		if err := conn.WriteJSON(payload); err != nil {
			delete(s.conns, conn)
			_ = conn.Close()
		}
	}
}
