package blob

import (
	"context"
	"fmt"
	"strings"

	appcfg "github.com/fdg312/carb-coach/internal/config"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NewS3KeyValue builds the object-storage profile backend used by STORE_MODE=s3.
func NewS3KeyValue(ctx context.Context, cfg appcfg.S3Config, logger Logger) (*KeyValue, error) {
	if !cfg.IsConfigured() {
		missing := cfg.MissingRequired()
		summary := cfg.DiagnosticsSummary()
		logf(logger, "FATAL blob.s3: code=s3_config_incomplete missing=%v", missing)
		logf(logger, "FATAL blob.s3: %s", summary)
		return nil, fmt.Errorf("STORE_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
	}

	summary := cfg.DiagnosticsSummary()
	logf(logger, "INFO blob.s3: code=s3_ready %s", summary)
	store, err := NewS3Store(ctx, cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		logf(logger, "FATAL blob.s3: init_failed=%v", err)
		return nil, fmt.Errorf("STORE_MODE=s3 init failed: %w", err)
	}

	logf(logger, "INFO blob: store=s3 prefix=%s", cfg.KeyPrefix)
	return NewKeyValue(store, cfg.KeyPrefix), nil
}

func logf(logger Logger, format string, v ...any) {
	if logger == nil {
		return
	}
	logger.Printf(format, v...)
}
