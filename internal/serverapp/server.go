package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdoom/internal/config"
	"pdoom/internal/game"
	"pdoom/internal/guide"
	"pdoom/internal/httpmw"
	"pdoom/internal/network"
	"pdoom/internal/player"
	"pdoom/internal/score"
	"pdoom/internal/server"
	"pdoom/internal/telemetry"
	staticfiles "pdoom/static"
)

type Options struct {
	Config        *config.Config
	DataDir       string
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
	Clock         game.Clock
}

// Server is the assembled HTTP handler plus the resources it owns.
type Server struct {
	http.Handler

	cancel  context.CancelFunc
	history *score.SQLiteRepo
}

// Close stops the websocket hub and closes the run history database.
func (s *Server) Close() error {
	s.cancel()
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.DataDir
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = "static"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = game.SystemClock
	}
	if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if opts.UseDiskStatic {
		staticHandler = http.FileServer(http.Dir(opts.StaticDir))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticHandler))

	scores, err := score.NewFileRepo(opts.DataDir, opts.Config.Server.ScoreboardLimit)
	if err != nil {
		if scores == nil {
			return nil, err
		}
		httpmw.Log(opts.Logger, "warn", "high_scores_reset", map[string]any{"error": err.Error()})
	}
	history, err := score.NewSQLiteRepo(filepath.Join(opts.DataDir, score.DBFileName))
	if err != nil {
		return nil, err
	}
	players, err := player.NewFileRepo(opts.DataDir)
	if err != nil {
		if players == nil {
			_ = history.Close()
			return nil, err
		}
		httpmw.Log(opts.Logger, "warn", "settings_reset", map[string]any{"error": err.Error()})
	}
	saves, err := game.NewSaveStore(filepath.Join(opts.DataDir, "saves"))
	if err != nil {
		_ = history.Close()
		return nil, err
	}
	guideText, err := guide.Load(opts.Config.Player.GuidePath)
	if err != nil {
		httpmw.Log(opts.Logger, "warn", "guide_fallback", map[string]any{"error": err.Error()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := network.NewHub(opts.Logger)
	go hub.Run(ctx)

	app := &server.App{
		Config:    opts.Config,
		Games:     game.NewMemoryRepo(opts.Config.Server.MaxSessions),
		Saves:     saves,
		Scores:    score.Multi{scores, history},
		History:   history,
		Players:   players,
		Telemetry: telemetry.NewMemoryRepository(),
		Hub:       hub,
		Guide:     guideText,
		Clock:     opts.Clock,
		Logger:    opts.Logger,
		BootNow:   opts.Clock.Now(),
	}

	rr := &server.RouteRegistry{}
	server.RegisterAPIRoutes(mux, rr, app)
	server.RegisterStatusPage(mux, rr, app)
	server.RegisterGuidePage(mux, rr, app)

	playerHandler := player.NewHandler()
	playerHandler.SetRepoResolver(func(*http.Request) *player.FileRepo { return players })
	server.Handle(mux, rr, "GET /api/player/settings", "Player settings", "", playerHandler.Settings)
	server.Handle(mux, rr, "PATCH /api/player/settings", "Update settings", `{"playerName":"Ada","keybindings":{"end_turn":"e"}}`, playerHandler.Settings)
	server.Handle(mux, rr, "GET /api/player/onboarding", "Tutorial progress", "", playerHandler.Onboarding)
	server.Handle(mux, rr, "POST /api/player/onboarding", "Mark a tutorial step", `{"step":"welcome"}`, playerHandler.Onboarding)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "pdoom",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})

	middlewares := []func(http.Handler) http.Handler{httpmw.WithRequestID}
	if opts.Config.Server.AccessLog {
		middlewares = append(middlewares, httpmw.WithAccessLog(opts.Logger))
	}
	middlewares = append(middlewares, httpmw.WithRecover(opts.Logger))

	return &Server{
		Handler: httpmw.Chain(mux, middlewares...),
		cancel:  cancel,
		history: history,
	}, nil
}

func UseDiskStaticByEnv() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PDOOM_DEV_STATIC"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
