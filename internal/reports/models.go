package reports

import (
	"errors"
	"time"
)

// Report is a rendered export ready to be sent to the client.
type Report struct {
	ProfileID   string
	Format      string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Summary holds progress statistics over a profile's logs.
type Summary struct {
	LogCount       int
	FirstWeight    *float64
	LastWeight     *float64
	WeightDelta    *float64
	AvgEnergy      *float64
	CompletedDays  int
	CompletionRate *float64
}

// ErrorResponse: формат ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
	FormatTXT = "txt"
)

var (
	ErrInvalidFormat   = errors.New("invalid format")
	ErrProfileNotFound = errors.New("profile not found")
)

var contentTypes = map[string]string{
	FormatPDF: "application/pdf",
	FormatCSV: "text/csv; charset=utf-8",
	FormatTXT: "text/plain; charset=utf-8",
}
