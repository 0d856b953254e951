package controllers

import (
	"net/http"

	"github.com/hninyuwai/boutiquepos-backend/api/responses"
	"github.com/hninyuwai/boutiquepos-backend/api/validators"
	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

func MovementList(repo movements.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := movements.Filter{
			ArticleID: r.URL.Query().Get("article_id"),
			SizeCode:  r.URL.Query().Get("size_code"),
		}
		if raw := r.URL.Query().Get("kind"); raw != "" {
			kind, err := enums.ParseMovementKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement kind"))
				return
			}
			filter.Kind = kind
		}
		if raw := r.URL.Query().Get("channel"); raw != "" {
			channel, err := enums.ParseChannel(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid channel"))
				return
			}
			filter.Channel = channel
		}
		if filter.From, err = validators.ParseQueryTime(r, "from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.To, err = validators.ParseQueryTime(r, "to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
