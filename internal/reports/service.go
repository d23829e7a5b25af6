package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/carb-coach/internal/profiles"
)

// ProfileSource is the read side of the profile store
type ProfileSource interface {
	Get(id string) (profiles.Profile, bool)
}

// Service builds report downloads for stored profiles
type Service struct {
	profiles  ProfileSource
	generator *Generator
	log       Logger
	now       func() time.Time
}

// NewService creates a new reports service
func NewService(source ProfileSource, generator *Generator, logger Logger) *Service {
	return &Service{
		profiles:  source,
		generator: generator,
		log:       logger,
		now:       time.Now,
	}
}

// ParseFormat normalizes the requested format. Empty means pdf.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f == "" {
		return FormatPDF, nil
	}
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return f, nil
}

// Build renders the report of profileID in format
func (s *Service) Build(ctx context.Context, profileID, format string) (*Report, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	p, ok := s.profiles.Get(profileID)
	if !ok {
		return nil, ErrProfileNotFound
	}

	started := s.now()
	data, err := s.generator.Generate(p, format)
	if err != nil {
		s.logf("ERROR reports: generate_failed profile=%s format=%s err=%q", profileID, format, err.Error())
		return nil, fmt.Errorf("generate report: %w", err)
	}

	created := s.now().UTC()
	s.logf("INFO reports: generated profile=%s format=%s size=%d duration_ms=%d",
		profileID, format, len(data), created.Sub(started).Milliseconds())

	return &Report{
		ProfileID:   profileID,
		Format:      format,
		Filename:    fmt.Sprintf("carb-coach-%s-%s.%s", created.Format("20060102"), shortID(profileID), format),
		ContentType: contentTypes[format],
		Data:        data,
		CreatedAt:   created,
	}, nil
}

func (s *Service) logf(format string, v ...any) {
	if s.log != nil {
		s.log.Printf(format, v...)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
