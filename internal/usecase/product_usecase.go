package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cocolytics/internal/domain/model"
	"cocolytics/internal/pricing"
	repo "cocolytics/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /cocolumbersの入力DTO
type ListProductsInput struct {
	Page    int
	Limit   int
	Size    string
	StaffID *int64
}

type ProductView struct {
	model.Product
	PredictedPrice decimal.Decimal `json:"predicted_price"`
}

type ProductListOutput struct {
	Items []ProductView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 50
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:    in.Page,
		Limit:   in.Limit,
		Size:    strings.TrimSpace(in.Size),
		StaffID: in.StaffID,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	views := make([]ProductView, 0, len(items))
	for _, p := range items {
		views = append(views, ProductView{
			Product:        p,
			PredictedPrice: pricing.UnitPrice(p.Size, p.Length, p.QualityGrade),
		})
	}

	return ProductListOutput{
		Items: views,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductView, error) {
	if productID <= 0 {
		return ProductView{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductView{
		Product:        p,
		PredictedPrice: pricing.UnitPrice(p.Size, p.Length, p.QualityGrade),
	}, nil
}

type CreateProductInput struct {
	Size           string
	Length         decimal.Decimal
	Stock          int64
	QualityGrade   string
	ProductPicture string
}

// サイズ区分・長さ・品質グレードのチェック。作成と更新で共通。
func validateProductInput(size string, length decimal.Decimal, qualityGrade string) error {
	if strings.TrimSpace(size) == "" {
		return NewHTTPError(http.StatusBadRequest, "size is required")
	}
	if !pricing.IsKnownSize(size) {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown size category: %s", size))
	}

	if length.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "length must be >= 0")
	}
	if !length.IsZero() {
		min, max := pricing.LengthRange(size)
		if length.LessThan(min) || length.GreaterThan(max) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("length for %s must be between %s and %s cm", size, min.String(), max.String()))
		}
	}

	if qualityGrade != "" && !pricing.IsKnownQualityGrade(qualityGrade) {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown quality grade: %s", qualityGrade))
	}
	return nil
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, p Principal, in CreateProductInput) (ProductView, error) {
	if !p.CanManageInventory() {
		return ProductView{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if err := validateProductInput(in.Size, in.Length, in.QualityGrade); err != nil {
		return ProductView{}, err
	}
	if in.Stock < 0 {
		return ProductView{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	created, err := u.productRepo.Create(ctx, model.Product{
		Size:           strings.TrimSpace(in.Size),
		Length:         in.Length,
		Stock:          in.Stock,
		QualityGrade:   in.QualityGrade,
		ProductPicture: in.ProductPicture,
		StaffID:        p.ID,
	})
	if err != nil {
		return ProductView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductView{
		Product:        created,
		PredictedPrice: pricing.UnitPrice(created.Size, created.Length, created.QualityGrade),
	}, nil
}

type UpdateProductInput struct {
	Size           string
	Length         decimal.Decimal
	QualityGrade   string
	ProductPicture string
}

// スタッフは自分が登録した商品だけ更新できる。adminは全部。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, p Principal, productID int64, in UpdateProductInput) error {
	if !p.CanManageInventory() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateProductInput(in.Size, in.Length, in.QualityGrade); err != nil {
		return err
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsAdmin() && existing.StaffID != p.ID {
		return NewHTTPError(http.StatusForbidden, "you can only modify your own listings")
	}

	err = u.productRepo.Update(ctx, model.Product{
		ID:             productID,
		Size:           strings.TrimSpace(in.Size),
		Length:         in.Length,
		QualityGrade:   in.QualityGrade,
		ProductPicture: in.ProductPicture,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, p Principal, productID int64) error {
	if !p.CanManageInventory() {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsAdmin() && existing.StaffID != p.ID {
		return NewHTTPError(http.StatusForbidden, "you can only modify your own listings")
	}

	err = u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type QuoteInput struct {
	Size         string
	Length       decimal.Decimal
	QualityGrade string
	Quantity     int64
}

type QuoteOutput struct {
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// Quote はサイズ・長さ・品質・数量から見積もりを計算する。DBは触らない。
func (u *ProductUsecase) Quote(ctx context.Context, in QuoteInput) (QuoteOutput, error) {
	if in.Quantity <= 0 {
		in.Quantity = 1
	}
	if in.Size == "" {
		in.Size = pricing.DefaultSize
	}
	if !pricing.IsKnownSize(in.Size) {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown size category: %s", in.Size))
	}
	if in.Length.IsNegative() {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "length must be >= 0")
	}

	unit := pricing.UnitPrice(in.Size, in.Length, in.QualityGrade)
	breakdown := pricing.OrderTotal([]pricing.Line{{
		Size:         in.Size,
		Length:       in.Length,
		QualityGrade: in.QualityGrade,
		Quantity:     in.Quantity,
	}})

	return QuoteOutput{UnitPrice: unit, Breakdown: breakdown}, nil
}
