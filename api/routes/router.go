package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hninyuwai/boutiquepos-backend/api/controllers"
	"github.com/hninyuwai/boutiquepos-backend/api/middleware"
	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/internal/customers"
	"github.com/hninyuwai/boutiquepos-backend/internal/distribution"
	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	possvc "github.com/hninyuwai/boutiquepos-backend/internal/pos"
	"github.com/hninyuwai/boutiquepos-backend/internal/reports"
	"github.com/hninyuwai/boutiquepos-backend/internal/shifts"
	"github.com/hninyuwai/boutiquepos-backend/internal/transactions"
	"github.com/hninyuwai/boutiquepos-backend/pkg/config"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	posService possvc.Service,
	distributionService distribution.Service,
	shiftService shifts.Service,
	reportService reports.Service,
	movementRepo movements.Repository,
	transactionRepo transactions.Repository,
	customerRepo customers.Repository,
	pingers ...db.Pinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Actor(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers...))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", controllers.ArticleList(catalogService, logg))
			r.Post("/", controllers.ArticleCreate(catalogService, logg))
			r.Get("/{articleId}", controllers.ArticleGet(catalogService, logg))
			r.Patch("/{articleId}", controllers.ArticleUpdate(catalogService, logg))
			r.Delete("/{articleId}", controllers.ArticleDelete(catalogService, logg))
		})
		r.Get("/scan/{code}", controllers.ArticleScan(catalogService, logg))

		r.Post("/pos/checkout", controllers.PosCheckout(posService, logg))

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", controllers.WorkflowCreate(distributionService, logg))
			r.Route("/{workflowId}", func(r chi.Router) {
				r.Get("/", controllers.WorkflowGet(distributionService, logg))
				r.Post("/scan", controllers.WorkflowScan(distributionService, logg))
				r.Put("/items/{line}", controllers.WorkflowSetItemQty(distributionService, logg))
				r.Post("/advance", controllers.WorkflowAdvance(distributionService, logg))
				r.Post("/back", controllers.WorkflowBack(distributionService, logg))
				r.Put("/details", controllers.WorkflowSetDetails(distributionService, logg))
				r.Post("/confirm", controllers.WorkflowConfirm(distributionService, logg))
				r.Delete("/", controllers.WorkflowCancel(distributionService, logg))
			})
		})

		r.Get("/movements", controllers.MovementList(movementRepo, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(transactionRepo, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(transactionRepo, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(customerRepo, logg))
			r.Post("/", controllers.CustomerCreate(customerRepo, logg))
			r.Get("/{customerId}", controllers.CustomerGet(customerRepo, logg))
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Post("/start", controllers.ShiftStart(shiftService, logg))
			r.Post("/end", controllers.ShiftEnd(shiftService, logg))
			r.Get("/current", controllers.ShiftCurrent(shiftService, logg))
			r.Get("/records", controllers.ShiftRecords(shiftService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/stock", controllers.ReportStock(reportService, logg))
			r.Get("/channels", controllers.ReportChannels(reportService, logg))
			r.Get("/reconciliation", controllers.ReportReconciliation(reportService, logg))
			r.Get("/export", controllers.ReportExport(reportService, logg))
		})
	})

	return r
}
