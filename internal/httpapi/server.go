// Package httpapi exposes the categorizer and the expense ledger as a JSON
// HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/metrics"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/gorilla/mux"
)

// Resolver classifies free-text expense descriptions.
type Resolver interface {
	Resolve(ctx context.Context, req categorizer.Request) (models.ClassificationResult, error)
}

// Ledger stores and summarizes confirmed expenses.
type Ledger interface {
	Save(ctx context.Context, req ledger.SaveRequest) (models.Expense, error)
	List(ctx context.Context, q models.ExpenseQuery) ([]models.Expense, error)
	Edit(ctx context.Context, id string, update models.ExpenseUpdate) error
	Delete(ctx context.Context, id string) error
	MonthlySummary(ctx context.Context, userID, month string) (models.MonthlySummary, error)
	CategorySummary(ctx context.Context, userID, category string) (models.CategorySummary, error)
}

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Resolver     Resolver
	Ledger       Ledger
	Metrics      *metrics.Metrics
	Logger       logging.Logger
}

// Server is the API's http.Server with its routes installed.
type Server struct {
	http.Server
	resolver Resolver
	ledger   Ledger
	metrics  *metrics.Metrics
	logger   logging.Logger
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetLogger()
	}
	router := mux.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
		},
		resolver: opts.Resolver,
		ledger:   opts.Ledger,
		metrics:  opts.Metrics,
		logger:   logger,
	}

	router.HandleFunc("/add", s.handleClassify).Methods(http.MethodPost)
	router.HandleFunc("/add", s.handleSave).Methods(http.MethodPut)
	router.HandleFunc("/list", s.handleList).Methods(http.MethodPost)
	router.HandleFunc("/edit", s.handleEdit).Methods(http.MethodPost)
	router.HandleFunc("/delete", s.handleDelete).Methods(http.MethodPost)
	router.HandleFunc("/summary/monthly", s.handleMonthlySummary).Methods(http.MethodPost)
	router.HandleFunc("/summary/category", s.handleCategorySummary).Methods(http.MethodPost)
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	router.Use(s.requestLogging)
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	return s
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
