package blob

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"

	appcfg "github.com/fdg312/carb-coach/internal/config"
)

func TestNewS3KeyValueMissingRequiredReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	kv, err := NewS3KeyValue(context.Background(), appcfg.S3Config{
		Endpoint: "https://storage.yandexcloud.net",
	}, logger)
	if err == nil {
		t.Fatal("expected error when required env are missing")
	}
	if kv != nil {
		t.Fatal("expected nil store on error")
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
	if !strings.Contains(buf.String(), "code=s3_config_incomplete") {
		t.Fatalf("expected diagnostics log, got: %s", buf.String())
	}
}

func TestNewS3KeyValueConfigured(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	kv, err := NewS3KeyValue(context.Background(), appcfg.S3Config{
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "us-east-1",
		Bucket:          "coach",
		AccessKeyID:     "key",
		SecretAccessKey: "s3cr3t-value",
		KeyPrefix:       "dev/",
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if kv == nil || kv.objectKey("scc_profiles") != "dev/scc_profiles" {
		t.Fatal("expected prefixed key value store")
	}
	logOut := buf.String()
	if strings.Contains(logOut, "s3cr3t-value") {
		t.Fatalf("log leaks secret: %s", logOut)
	}
}
