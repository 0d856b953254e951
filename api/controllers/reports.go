package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hninyuwai/boutiquepos-backend/api/responses"
	"github.com/hninyuwai/boutiquepos-backend/api/validators"
	"github.com/hninyuwai/boutiquepos-backend/internal/reports"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

func ReportStock(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.StockSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ReportChannels(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ChannelBreakdown(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ReportReconciliation(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Reconciliation(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReportExport streams the stock summary as a downloadable file. The
// format query selects csv or xlsx; csv is the default.
func ReportExport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "xlsx" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "format must be csv or xlsx"))
			return
		}

		rows, err := svc.StockSummary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := fmt.Sprintf("stock-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

		switch format {
		case "xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			err = reports.WriteStockXLSX(w, rows)
		default:
			w.Header().Set("Content-Type", "text/csv")
			err = reports.WriteStockCSV(w, rows)
		}
		if err != nil {
			logg.Error(r.Context(), "report.export", err)
		}
	}
}
