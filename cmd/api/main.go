package main

import (
	"log"
	"strings"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/carb-coach/internal/config"
	"github.com/fdg312/carb-coach/internal/dbmigrate"
	"github.com/fdg312/carb-coach/internal/httpserver"
)

func main() {
	cfg := config.Load()

	printStartupBanner(cfg)

	if cfg.StoreMode == config.StoreModePostgres && cfg.RunMigrationsOnStartup {
		dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
		if err != nil {
			log.Fatalf("FATAL startup migrations: %v", err)
		}
		if warning != "" {
			log.Printf("WARN startup migrations: %s", warning)
		}

		log.Printf("startup migrations: command=up using=%s", source)
		if err := dbmigrate.Run("up", dbURL, nil); err != nil {
			log.Fatalf("FATAL startup migrations failed: %v", err)
		}
		log.Printf("startup migrations: completed")
	}

	validateConfig(cfg)

	server := httpserver.New(cfg)
	defer server.Close()

	log.Fatal(server.Start())
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// No secrets are ever printed, only "set" / "not set".
func printStartupBanner(cfg *config.Config) {
	log.Println("========== Carb Coach API ==========")
	log.Printf("  env              = %s", cfg.Env)
	log.Printf("  port             = %d", cfg.Port)
	log.Printf("  log_level        = %s", cfg.LogLevel)

	// ---- Storage ----
	log.Println("---- storage ----")
	log.Printf("  store_mode       = %s", cfg.StoreMode)
	switch cfg.StoreMode {
	case config.StoreModeSQLite:
		log.Printf("  sqlite_path      = %s", nonEmptyOrDash(cfg.SQLitePath))
	case config.StoreModePostgres:
		log.Printf("  runtime_url      = %s", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled))
		log.Printf("  direct           = %s", setOrNot(cfg.DatabaseURLDirect))
		log.Printf("  migrations_on_startup = %t", cfg.RunMigrationsOnStartup)
	case config.StoreModeS3:
		log.Printf("  s3: %s", cfg.S3.DiagnosticsSummary())
	}

	// ---- AI ----
	log.Println("---- ai ----")
	log.Printf("  ai_mode          = %s", cfg.AIMode)
	log.Printf("  timeout_seconds  = %d", cfg.AITimeoutSeconds)
	switch cfg.AIMode {
	case config.AIModeOpenAI:
		log.Printf("  openai_model     = %s", cfg.OpenAIModel)
		log.Printf("  openai_api_key   = %s", setOrNot(cfg.OpenAIAPIKey))
	case config.AIModeGemini:
		log.Printf("  gemini_model     = %s", cfg.GeminiModel)
		log.Printf("  gemini_api_key   = %s", setOrNot(cfg.GeminiAPIKey))
	}
	if cfg.AIRateLimitRPS > 0 {
		log.Printf("  rate_limit       = %d rps (burst %d)", cfg.AIRateLimitRPS, cfg.AIRateLimitBurst)
	} else {
		log.Printf("  rate_limit       = off")
	}

	// ---- Reports ----
	log.Println("---- reports ----")
	log.Printf("  font_path        = %s", nonEmptyOrDash(cfg.ReportFontPath))

	log.Println("====================================")
}

// validateConfig performs fatal checks that only matter in non-local envs.
func validateConfig(cfg *config.Config) {
	if cfg.StoreMode == config.StoreModeS3 {
		if missing := cfg.S3.MissingRequired(); len(missing) > 0 {
			log.Fatalf("FATAL storage: STORE_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	if cfg.RequiresDurableStore() && cfg.StoreMode == config.StoreModeMemory {
		log.Fatalf("FATAL storage: STORE_MODE=memory loses every profile on restart; not allowed in %s", cfg.Env)
	}
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
