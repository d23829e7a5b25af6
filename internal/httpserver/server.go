package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/carb-coach/internal/ai"
	"github.com/fdg312/carb-coach/internal/blob"
	"github.com/fdg312/carb-coach/internal/chat"
	"github.com/fdg312/carb-coach/internal/config"
	"github.com/fdg312/carb-coach/internal/profiles"
	"github.com/fdg312/carb-coach/internal/reports"
	"github.com/fdg312/carb-coach/internal/storage"
	"github.com/fdg312/carb-coach/internal/storage/memory"
	"github.com/fdg312/carb-coach/internal/storage/postgres"
	"github.com/fdg312/carb-coach/internal/storage/sqlite"
)

// Server представляет HTTP сервер
type Server struct {
	config   *config.Config
	mux      *http.ServeMux
	storage  storage.KeyValue
	provider ai.Provider
	profiles *profiles.Store
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	return NewWithProvider(cfg, ai.NewProvider(cfg))
}

// NewWithProvider creates a server around an explicit AI provider.
func NewWithProvider(cfg *config.Config, provider ai.Provider) *Server {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		provider: provider,
	}

	// Инициализируем storage
	kv, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("FATAL storage: %v", err)
	}
	s.storage = kv

	s.profiles = profiles.NewStore(s.storage, s.provider, log.Default())
	s.profiles.Load(context.Background())

	// Регистрируем маршруты
	s.routes()
	return s
}

// openStorage выбирает key-value backend по STORE_MODE. Outside local envs a
// backend that fails to open is an error, never a silent memory fallback.
func openStorage(cfg *config.Config) (storage.KeyValue, error) {
	switch cfg.StoreMode {
	case config.StoreModePostgres:
		log.Println("Подключение к PostgreSQL...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pgStorage, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fallbackStorage(cfg, "postgres", err)
		}
		log.Println("PostgreSQL подключен успешно")
		return pgStorage, nil

	case config.StoreModeSQLite:
		sqliteStorage, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return fallbackStorage(cfg, "sqlite", fmt.Errorf("path=%s: %w", cfg.SQLitePath, err))
		}
		log.Printf("INFO storage: sqlite path=%s", cfg.SQLitePath)
		return sqliteStorage, nil

	case config.StoreModeS3:
		kv, err := blob.NewS3KeyValue(context.Background(), cfg.S3, log.Default())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 store: %w", err)
		}
		return kv, nil

	default:
		log.Println("Используется in-memory storage")
		return memory.New(), nil
	}
}

func fallbackStorage(cfg *config.Config, mode string, err error) (storage.KeyValue, error) {
	if cfg.RequiresDurableStore() {
		return nil, fmt.Errorf("%s unavailable in %s: %w", mode, cfg.Env, err)
	}
	log.Printf("WARN storage: %s_unavailable=%q fallback=memory", mode, err.Error())
	return memory.New(), nil
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Profile creation and chat share one per-IP bucket
	limit := NewRateLimiter(s.config)
	aiLimit := func(h http.HandlerFunc) http.Handler {
		return limit(h)
	}

	// Profiles API
	profileHandler := profiles.NewHandler(s.profiles)

	// GET /v1/profiles - list all profiles
	s.mux.HandleFunc("GET /v1/profiles", profileHandler.HandleList)

	// POST /v1/profiles - generate a plan and create profile
	s.mux.Handle("POST /v1/profiles", aiLimit(profileHandler.HandleCreate))

	// GET|DELETE /v1/profiles/active - active profile / start over
	s.mux.HandleFunc("GET /v1/profiles/active", profileHandler.HandleGetActive)
	s.mux.HandleFunc("DELETE /v1/profiles/active", profileHandler.HandleClearActive)

	s.mux.HandleFunc("GET /v1/profiles/{id}", profileHandler.HandleGet)
	s.mux.HandleFunc("PATCH /v1/profiles/{id}", profileHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/profiles/{id}", profileHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/profiles/{id}/activate", profileHandler.HandleActivate)

	// Plan editing
	s.mux.HandleFunc("GET /v1/profiles/{id}/plan", profileHandler.HandleGetPlan)
	s.mux.HandleFunc("PUT /v1/profiles/{id}/plan/schedule", profileHandler.HandleUpdateSchedule)
	s.mux.HandleFunc("PUT /v1/profiles/{id}/plan/days/{index}", profileHandler.HandleChangeDay)

	// Progress logs
	s.mux.HandleFunc("GET /v1/profiles/{id}/logs", profileHandler.HandleListLogs)
	s.mux.HandleFunc("POST /v1/profiles/{id}/logs", profileHandler.HandleAppendLog)

	// Reports API
	reportsService := reports.NewService(s.profiles, reports.NewGenerator(s.config.ReportFontPath, log.Default()), log.Default())
	reportsHandler := reports.NewHandlers(reportsService)

	// GET /v1/profiles/{id}/report?format=pdf|csv|txt
	s.mux.HandleFunc("GET /v1/profiles/{id}/report", reportsHandler.HandleDownload)

	// Chat API
	chatService := chat.NewService(s.provider, s.config.ChatHistoryLimit, log.Default())
	chatHandler := chat.NewHandler(chatService, s.profiles)
	s.mux.Handle("POST /v1/chat/messages", aiLimit(chatHandler.HandleSendMessage))
	s.mux.HandleFunc("GET /v1/chat/greeting", chatHandler.HandleGreeting)
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"store_mode": s.storageMode(),
		"ai_mode":    s.config.AIMode,
		"profiles":   len(s.profiles.List()),
		"generating": s.profiles.Generating(),
	})
}

func (s *Server) storageMode() string {
	if s.config.StoreMode == "" {
		return config.StoreModeMemory
	}
	return s.config.StoreMode
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	// outermost first: CORS → Router (AI routes carry their own limiter)
	return CORSMiddleware(s.config, s.mux)
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("Сервер запущен на http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Profiles API: http://localhost%s/v1/profiles\n", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
