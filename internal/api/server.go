// Package api serves the read-only reports consumed by the dashboard.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fjacquet/ledger-import/internal/logging"
	"fjacquet/ledger-import/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// ReportStore is the read side of the transaction store.
type ReportStore interface {
	Summarize(ctx context.Context) ([]models.SummaryRow, error)
	ExpensesByCategory(ctx context.Context, period models.Period) ([]models.CategoryTotal, error)
	AvailableMonths(ctx context.Context) ([]models.MonthYear, error)
	MonthlyTotals(ctx context.Context) ([]models.PeriodTotal, error)
}

// Expense is the total spent in one category.
type Expense struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Total is the sum of one transaction type in one month.
type Total struct {
	Type  string  `json:"type"`
	Total float64 `json:"total"`
	Month int     `json:"month,omitempty"`
	Year  int     `json:"year,omitempty"`
}

// SummaryLine is one type and category total.
type SummaryLine struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
}

// Server exposes the report endpoints over HTTP.
type Server struct {
	store          ReportStore
	logger         logging.Logger
	allowedOrigins []string
}

// NewServer creates a report server.
func NewServer(store ReportStore, logger logging.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Server{store: store, logger: logger, allowedOrigins: allowedOrigins}
}

// Handler returns the routes wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.GET("/summary", s.summary)
	api.GET("/expenses", s.expenses)
	api.GET("/available-months", s.availableMonths)
	api.GET("/total", s.total)

	return cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", logging.Field{Key: "address", Value: addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request served",
			logging.Field{Key: "method", Value: c.Request.Method},
			logging.Field{Key: "path", Value: c.Request.URL.Path},
			logging.Field{Key: "status", Value: c.Writer.Status()},
			logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	}
}

func (s *Server) summary(c *gin.Context) {
	rows, err := s.store.Summarize(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]SummaryLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, SummaryLine{Type: r.Type, Category: r.Category, TotalAmount: r.Total.InexactFloat64()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) expenses(c *gin.Context) {
	period, err := parsePeriod(c.Query("year"), c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Debug(fmt.Sprintf("Query expenses for month=%d year=%d", period.Month, period.Year))

	totals, err := s.store.ExpensesByCategory(c.Request.Context(), period)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]Expense, 0, len(totals))
	for _, t := range totals {
		out = append(out, Expense{Category: t.Category, Total: t.Total.InexactFloat64()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) availableMonths(c *gin.Context) {
	months, err := s.store.AvailableMonths(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if months == nil {
		months = []models.MonthYear{}
	}
	c.JSON(http.StatusOK, months)
}

func (s *Server) total(c *gin.Context) {
	totals, err := s.store.MonthlyTotals(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		out = append(out, Total{Type: t.Type, Total: t.Total.InexactFloat64(), Month: t.Month, Year: t.Year})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.WithError(err).Error("Report query failed",
		logging.Field{Key: "path", Value: c.Request.URL.Path})
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// parsePeriod reads the year and month filters. A month without a year is ignored.
func parsePeriod(year, month string) (models.Period, error) {
	var p models.Period
	if year == "" {
		return p, nil
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return p, fmt.Errorf("invalid year %q", year)
	}
	p.Year = y
	if month == "" {
		return p, nil
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return p, fmt.Errorf("invalid month %q", month)
	}
	p.Month = m
	return p, nil
}
