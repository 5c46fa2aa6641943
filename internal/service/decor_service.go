package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
	"craftopia/internal/repository"
	"craftopia/internal/storage"
)

const decorImageFolder = "decors"

var (
	// ErrDecorNotFound is returned when a decor id does not resolve or is hidden.
	ErrDecorNotFound = apperrors.Wrap(apperrors.ErrNotFound, "Decor item not found")
	// ErrUnknownCategory is returned when a decor references a missing category.
	ErrUnknownCategory = &apperrors.ValidationError{Message: "Category not found"}
)

var decorSortColumns = map[string]string{
	"createdAt":  "created_at",
	"price":      "price",
	"name":       "name",
	"rating":     "rating_average",
	"popularity": "view_count",
	"sales":      "sales_count",
	"stock":      "stock",
}

// AssetStore hosts uploaded images.
type AssetStore interface {
	Upload(ctx context.Context, folder string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// DecorListParams are the query options shared by the decor listings.
type DecorListParams struct {
	Query      string
	CategoryID *uuid.UUID
	Status     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Materials  []string
	Tags       []string
	Featured   *bool
	InStock    bool
	SortBy     string
	SortOrder  string
	PageRequest
}

// DecorInput carries decor fields. Nil fields are left unchanged on update.
//
// Images lists hosted URLs. On update a non-nil Images replaces the current
// list, a non-nil KeepImages retains only the listed current images, and
// with both nil every image stays. Uploads are appended after them.
type DecorInput struct {
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	Price         *decimal.Decimal
	OriginalPrice *decimal.Decimal
	Stock         *int
	Status        *model.DecorStatus
	IsFeatured    *bool
	Tags          []string
	Materials     []string
	Dimensions    *model.Dimensions
	Images        []string
	KeepImages    []string
	Uploads       [][]byte
}

// DecorService manages the decor catalog.
type DecorService interface {
	ListActive(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error)
	Featured(ctx context.Context, limit int) ([]model.Decor, error)
	Search(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*model.Decor, error)
	Create(ctx context.Context, createdBy uuid.UUID, in DecorInput) (*model.Decor, error)
	Update(ctx context.Context, id uuid.UUID, in DecorInput) (*model.Decor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int, status *model.DecorStatus) (*model.Decor, error)
	ListAll(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error)
	Stats(ctx context.Context) (*repository.DecorStats, error)
}

type decorService struct {
	repo         repository.DecorRepository
	categoryRepo repository.CategoryRepository
	assets       AssetStore
	cache        Cache
	logger       *zap.Logger
}

// NewDecorService builds a DecorService. Decor writes also invalidate the
// active category cache since they change decorCount.
func NewDecorService(repo repository.DecorRepository, categoryRepo repository.CategoryRepository, assets AssetStore, cache Cache, logger *zap.Logger) DecorService {
	return &decorService{
		repo:         repo,
		categoryRepo: categoryRepo,
		assets:       assets,
		cache:        cache,
		logger:       logger,
	}
}

func (s *decorService) ListActive(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error) {
	params.Status = string(model.DecorStatusActive)
	return s.list(ctx, params, DecorLimits)
}

// Featured returns the newest featured active items.
func (s *decorService) Featured(ctx context.Context, limit int) ([]model.Decor, error) {
	featured := true
	page := PageRequest{Page: 1, Limit: limit}.Normalize(FeaturedLimits)
	decors, _, err := s.repo.List(ctx, repository.DecorFilter{
		Statuses: []model.DecorStatus{model.DecorStatusActive},
		Featured: &featured,
		Sort:     repository.Sort{Column: "created_at", Desc: true},
		Page:     page.Window(),
	})
	if err != nil {
		return nil, fmt.Errorf("list featured decors: %w", err)
	}
	return decors, nil
}

func (s *decorService) Search(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, apperrors.Invalid("Search query is required")
	}
	params.Status = string(model.DecorStatusActive)
	return s.list(ctx, params, DecorLimits)
}

// ListAll is the admin listing across every status.
func (s *decorService) ListAll(ctx context.Context, params DecorListParams) (*PageResult[model.Decor], error) {
	return s.list(ctx, params, DecorLimits)
}

func (s *decorService) list(ctx context.Context, params DecorListParams, limits Limits) (*PageResult[model.Decor], error) {
	page := params.PageRequest.Normalize(limits)
	filter := repository.DecorFilter{
		Query:      strings.TrimSpace(params.Query),
		CategoryID: params.CategoryID,
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
		Materials:  params.Materials,
		Tags:       lowerAll(params.Tags),
		Featured:   params.Featured,
		InStock:    params.InStock,
		Sort:       parseSort(params.SortBy, params.SortOrder, decorSortColumns, "createdAt"),
		Page:       page.Window(),
	}
	if params.Status != "" {
		status := model.DecorStatus(params.Status)
		if !status.Valid() {
			return nil, apperrors.Invalid("invalid status filter %q", params.Status)
		}
		filter.Statuses = []model.DecorStatus{status}
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperrors.Invalid("minPrice cannot exceed maxPrice")
	}

	decors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list decors: %w", err)
	}
	return &PageResult[model.Decor]{Items: decors, Pagination: NewPagination(page, total)}, nil
}

// Get returns one item and counts the view. Inactive and discontinued items
// are hidden unless includeInactive is set; sold-out items stay visible.
func (s *decorService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*model.Decor, error) {
	decor, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeInactive && hidden(decor.Status) {
		return nil, ErrDecorNotFound
	}

	if err := s.repo.IncrementViews(ctx, decor.ID); err != nil {
		s.logger.Warn("failed to count decor view", zap.String("decor_id", decor.ID.String()), zap.Error(err))
	} else {
		decor.ViewCount++
	}
	return decor, nil
}

func (s *decorService) Create(ctx context.Context, createdBy uuid.UUID, in DecorInput) (*model.Decor, error) {
	if in.Name == nil || in.Description == nil || in.CategoryID == nil || in.Price == nil {
		return nil, apperrors.Invalid("name, description, categoryId and price are required")
	}
	category, err := s.category(ctx, *in.CategoryID)
	if err != nil {
		return nil, err
	}

	decor := &model.Decor{
		ID:          uuid.New(),
		Name:        *in.Name,
		Description: *in.Description,
		CategoryID:  category.ID,
		Price:       *in.Price,
		Images:      in.Images,
		Tags:        in.Tags,
		Materials:   in.Materials,
	}
	if createdBy != uuid.Nil {
		decor.CreatedBy = &createdBy
	}
	if in.OriginalPrice != nil {
		decor.OriginalPrice = decimal.NewNullDecimal(*in.OriginalPrice)
	}
	if in.IsFeatured != nil {
		decor.IsFeatured = *in.IsFeatured
	}
	if in.Dimensions != nil {
		decor.Dimensions = *in.Dimensions
	}
	decor.Status = model.DecorStatusActive
	if in.Stock != nil {
		decor.SetStock(*in.Stock)
	} else {
		decor.SetStock(0)
	}
	if in.Status != nil {
		decor.Status = *in.Status
	}

	decor.Normalize()
	if err := checkImageCount(len(decor.Images), len(in.Uploads)); err != nil {
		return nil, err
	}
	if err := decor.Validate(); err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}
	decor.Images = append(decor.Images, uploaded...)

	if err := s.repo.Create(ctx, decor); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("create decor: %w", err)
	}
	decor.Category = category
	s.invalidateCategories(ctx)
	return decor, nil
}

func (s *decorService) Update(ctx context.Context, id uuid.UUID, in DecorInput) (*model.Decor, error) {
	decor, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCategoryID := decor.CategoryID

	if in.CategoryID != nil && *in.CategoryID != decor.CategoryID {
		category, err := s.category(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		decor.CategoryID = category.ID
		decor.Category = category
	}
	if in.Name != nil {
		decor.Name = *in.Name
	}
	if in.Description != nil {
		decor.Description = *in.Description
	}
	if in.Price != nil {
		decor.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		decor.OriginalPrice = decimal.NewNullDecimal(*in.OriginalPrice)
	}
	if in.IsFeatured != nil {
		decor.IsFeatured = *in.IsFeatured
	}
	if in.Tags != nil {
		decor.Tags = in.Tags
	}
	if in.Materials != nil {
		decor.Materials = in.Materials
	}
	if in.Dimensions != nil {
		decor.Dimensions = *in.Dimensions
	}
	if in.Stock != nil {
		decor.SetStock(*in.Stock)
	}
	if in.Status != nil {
		decor.Status = *in.Status
	}

	kept, dropped := imagesAfterUpdate(decor.Images, in.KeepImages, in.Images)
	decor.Images = kept
	decor.Normalize()
	if err := checkImageCount(len(decor.Images), len(in.Uploads)); err != nil {
		return nil, err
	}
	if err := decor.Validate(); err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, in.Uploads)
	if err != nil {
		return nil, err
	}
	decor.Images = append(decor.Images, uploaded...)

	if err := s.repo.Update(ctx, decor, previousCategoryID); err != nil {
		s.discard(ctx, uploaded)
		return nil, fmt.Errorf("update decor: %w", err)
	}
	s.discard(ctx, dropped)
	if previousCategoryID != decor.CategoryID {
		s.invalidateCategories(ctx)
	}
	return decor, nil
}

func (s *decorService) Delete(ctx context.Context, id uuid.UUID) error {
	decor, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, decor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDecorNotFound
		}
		return fmt.Errorf("delete decor: %w", err)
	}
	s.discard(ctx, decor.Images)
	s.invalidateCategories(ctx)
	return nil
}

// UpdateStock sets the stock level. An explicit status wins over the
// stock-driven transition.
func (s *decorService) UpdateStock(ctx context.Context, id uuid.UUID, stock int, status *model.DecorStatus) (*model.Decor, error) {
	if stock < 0 {
		return nil, apperrors.Invalid("stock cannot be negative")
	}
	if status != nil && !status.Valid() {
		return nil, apperrors.Invalid("invalid status %q", *status)
	}
	decor, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	decor.SetStock(stock)
	if status != nil {
		decor.Status = *status
	}
	if err := s.repo.UpdateStock(ctx, decor.ID, decor.Stock, decor.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDecorNotFound
		}
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return decor, nil
}

func (s *decorService) Stats(ctx context.Context) (*repository.DecorStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("decor stats: %w", err)
	}
	return stats, nil
}

func (s *decorService) find(ctx context.Context, id uuid.UUID) (*model.Decor, error) {
	decor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDecorNotFound
		}
		return nil, fmt.Errorf("find decor: %w", err)
	}
	return decor, nil
}

func (s *decorService) category(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return category, nil
}

// upload hosts every file or none: a failure removes what was already stored.
func (s *decorService) upload(ctx context.Context, files [][]byte) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, data := range files {
		url, err := s.assets.Upload(ctx, decorImageFolder, data)
		if err != nil {
			s.discard(ctx, urls)
			if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrTooLarge) {
				return nil, apperrors.Invalid("image %d: %s", i+1, err.Error())
			}
			return nil, fmt.Errorf("%w: %v", apperrors.ErrUpload, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// discard deletes hosted images, logging failures.
func (s *decorService) discard(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.assets.Delete(ctx, url); err != nil {
			s.logger.Warn("failed to delete image", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *decorService) invalidateCategories(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeCategoriesKey); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}

// imagesAfterUpdate resolves the image list of an update. A non-nil images
// replaces current and a non-nil keep filters it.
func imagesAfterUpdate(current, keep, images []string) (next, dropped []string) {
	if images == nil {
		return splitImages(current, keep)
	}
	wanted := make(map[string]struct{}, len(images))
	next = make([]string, 0, len(images))
	for _, url := range images {
		url = strings.TrimSpace(url)
		wanted[url] = struct{}{}
		next = append(next, url)
	}
	for _, url := range current {
		if _, ok := wanted[url]; !ok {
			dropped = append(dropped, url)
		}
	}
	return next, dropped
}

// splitImages keeps the current images named in keep, preserving their
// order. A nil keep retains everything.
func splitImages(current, keep []string) (kept, dropped []string) {
	if keep == nil {
		return current, nil
	}
	wanted := make(map[string]struct{}, len(keep))
	for _, url := range keep {
		wanted[strings.TrimSpace(url)] = struct{}{}
	}
	kept = make([]string, 0, len(current))
	for _, url := range current {
		if _, ok := wanted[url]; ok {
			kept = append(kept, url)
		} else {
			dropped = append(dropped, url)
		}
	}
	return kept, dropped
}

func checkImageCount(existing, uploads int) error {
	if existing+uploads > model.MaxDecorImages {
		return apperrors.Invalid("Cannot have more than %d images", model.MaxDecorImages)
	}
	return nil
}

func hidden(status model.DecorStatus) bool {
	return status == model.DecorStatusInactive || status == model.DecorStatusDiscontinued
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
