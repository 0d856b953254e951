package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/hninyuwai/boutiquepos-backend/api/middleware"
	"github.com/hninyuwai/boutiquepos-backend/api/responses"
	"github.com/hninyuwai/boutiquepos-backend/api/validators"
	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

type variantRequest struct {
	SizeCode      string           `json:"size_code" validate:"required"`
	SizeLabel     string           `json:"size_label" validate:"required"`
	StoreQty      int              `json:"store_qty" validate:"min=0"`
	WarehouseQty  int              `json:"warehouse_qty" validate:"min=0"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
}

type createArticleRequest struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Brand       string           `json:"brand,omitempty"`
	BasePrice   decimal.Decimal  `json:"base_price" validate:"required"`
	Description string           `json:"description,omitempty"`
	Material    string           `json:"material,omitempty"`
	Color       string           `json:"color,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Variants    []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func ArticleCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateInput{
			ID:          payload.ID,
			Name:        payload.Name,
			Category:    payload.Category,
			Brand:       payload.Brand,
			BasePrice:   payload.BasePrice,
			Description: payload.Description,
			Material:    payload.Material,
			Color:       payload.Color,
			Tags:        payload.Tags,
			Actor:       middleware.CashierFromContext(r.Context()),
		}
		for _, v := range payload.Variants {
			input.Variants = append(input.Variants, catalog.VariantInput{
				SizeCode:      v.SizeCode,
				SizeLabel:     v.SizeLabel,
				StoreQty:      v.StoreQty,
				WarehouseQty:  v.WarehouseQty,
				PriceOverride: v.PriceOverride,
				Barcode:       v.Barcode,
			})
		}

		article, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, article)
	}
}

type variantUpdateRequest struct {
	SizeCode      string           `json:"size_code" validate:"required"`
	SizeLabel     *string          `json:"size_label,omitempty"`
	StoreQty      *int             `json:"store_qty,omitempty" validate:"omitempty,min=0"`
	WarehouseQty  *int             `json:"warehouse_qty,omitempty" validate:"omitempty,min=0"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
}

type updateArticleRequest struct {
	Name        *string                `json:"name,omitempty"`
	Category    *string                `json:"category,omitempty"`
	Brand       *string                `json:"brand,omitempty"`
	BasePrice   *decimal.Decimal       `json:"base_price,omitempty"`
	Description *string                `json:"description,omitempty"`
	Material    *string                `json:"material,omitempty"`
	Color       *string                `json:"color,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Variants    []variantUpdateRequest `json:"variants,omitempty" validate:"omitempty,dive"`
}

func ArticleUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateInput{
			Name:        payload.Name,
			Category:    payload.Category,
			Brand:       payload.Brand,
			BasePrice:   payload.BasePrice,
			Description: payload.Description,
			Material:    payload.Material,
			Color:       payload.Color,
			Tags:        payload.Tags,
			Actor:       middleware.CashierFromContext(r.Context()),
		}
		for _, v := range payload.Variants {
			input.Variants = append(input.Variants, catalog.VariantUpdate{
				SizeCode:      v.SizeCode,
				SizeLabel:     v.SizeLabel,
				StoreQty:      v.StoreQty,
				WarehouseQty:  v.WarehouseQty,
				PriceOverride: v.PriceOverride,
				Barcode:       v.Barcode,
			})
		}

		article, err := svc.Update(r.Context(), chi.URLParam(r, "articleId"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

func ArticleGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := svc.Get(r.Context(), chi.URLParam(r, "articleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, article)
	}
}

func ArticleDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "articleId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func ArticleList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := catalog.Filter{
			Search:   r.URL.Query().Get("search"),
			Category: r.URL.Query().Get("category"),
			Tag:      r.URL.Query().Get("tag"),
		}

		articles, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, articles)
	}
}

func ArticleScan(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Scan(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
