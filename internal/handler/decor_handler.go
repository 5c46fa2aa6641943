package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	apperrors "craftopia/internal/errors"
	"craftopia/internal/middleware"
	"craftopia/internal/model"
	"craftopia/internal/service"
	"craftopia/internal/storage"
)

const imagesField = "images"

// DecorHandler serves decor endpoints.
type DecorHandler struct {
	svc service.DecorService
}

// NewDecorHandler creates a decor handler.
func NewDecorHandler(svc service.DecorService) *DecorHandler {
	return &DecorHandler{svc: svc}
}

// DecorRequest is the body of a decor create or update, sent as JSON or as
// multipart form fields next to "images" files. On update, images replaces
// the hosted URL list while keepImages lists the current URLs to retain.
type DecorRequest struct {
	Name          *string           `json:"name" validate:"omitempty,min=2,max=100"`
	Description   *string           `json:"description" validate:"omitempty,min=10,max=2000"`
	CategoryID    *string           `json:"categoryId" validate:"omitempty,uuid"`
	Price         *decimal.Decimal  `json:"price" swaggertype:"number"`
	OriginalPrice *decimal.Decimal  `json:"originalPrice" swaggertype:"number"`
	Stock         *int              `json:"stock" validate:"omitempty,min=0"`
	Status        *string           `json:"status" validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
	IsFeatured    *bool             `json:"isFeatured"`
	Tags          []string          `json:"tags" validate:"omitempty,max=20"`
	Materials     []string          `json:"materials" validate:"omitempty,max=15"`
	Dimensions    *model.Dimensions `json:"dimensions"`
	Images        []string          `json:"images" validate:"omitempty,max=10,dive,url"`
	KeepImages    []string          `json:"keepImages" validate:"omitempty,max=10"`
}

// StockRequest is the body of a stock update.
type StockRequest struct {
	Stock  *int    `json:"stock" validate:"required,min=0"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive out_of_stock discontinued"`
}

// ListActive godoc
// @Summary List active decors
// @Tags decors
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param category query string false "Category ID"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param materials query string false "Comma-separated materials"
// @Param tags query string false "Comma-separated tags"
// @Param featured query bool false "Featured only"
// @Param inStock query bool false "In stock only"
// @Param sortBy query string false "Sort key" Enums(createdAt, price, name, rating, popularity, sales, stock)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} Envelope{data=[]model.Decor}
// @Router /decors [get]
func (h *DecorHandler) ListActive(c echo.Context) error {
	params, err := decorListParams(c)
	if err != nil {
		return err
	}
	result, err := h.svc.ListActive(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return respondPage(c, "Decors retrieved successfully", emptyIfNil(result.Items), result.Pagination)
}

// Featured godoc
// @Summary List featured decors
// @Tags decors
// @Produce json
// @Param limit query int false "Number of items" default(8)
// @Success 200 {object} Envelope{data=[]model.Decor}
// @Router /decors/featured [get]
func (h *DecorHandler) Featured(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return apperrors.Invalid("limit must be a number")
	}
	decors, err := h.svc.Featured(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Featured decors retrieved successfully", emptyIfNil(decors))
}

// Search godoc
// @Summary Search decors
// @Tags decors
// @Produce json
// @Param q query string true "Search text"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param category query string false "Category ID"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param sortBy query string false "Sort key" Enums(createdAt, price, name, rating, popularity, sales, stock)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} Envelope{data=[]model.Decor}
// @Failure 400 {object} Envelope
// @Router /decors/search [get]
func (h *DecorHandler) Search(c echo.Context) error {
	params, err := decorListParams(c)
	if err != nil {
		return err
	}
	params.Query = c.QueryParam("q")
	result, err := h.svc.Search(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return respondPage(c, "Search results retrieved successfully", emptyIfNil(result.Items), result.Pagination)
}

// Get godoc
// @Summary Get decor by id
// @Description Inactive and discontinued items are only returned to admins passing includeInactive=true.
// @Tags decors
// @Produce json
// @Param id path string true "Decor ID"
// @Param includeInactive query bool false "Admin only"
// @Success 200 {object} Envelope{data=model.Decor}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /decors/{id} [get]
func (h *DecorHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	includeInactive := c.QueryParam("includeInactive") == "true" && middleware.IsAdmin(c)
	decor, err := h.svc.Get(c.Request().Context(), id, includeInactive)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Decor retrieved successfully", decor)
}

// Create godoc
// @Summary Create decor
// @Tags decors
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body DecorRequest true "Decor"
// @Success 201 {object} Envelope{data=model.Decor}
// @Failure 400 {object} Envelope
// @Failure 403 {object} Envelope
// @Failure 500 {object} Envelope
// @Router /decors [post]
func (h *DecorHandler) Create(c echo.Context) error {
	req, uploads, err := readDecorRequest(c)
	if err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	in.Uploads = uploads

	actor, _ := middleware.IdentityFrom(c)
	decor, err := h.svc.Create(c.Request().Context(), actor.ID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Decor created successfully", decor)
}

// Update godoc
// @Summary Update decor
// @Tags decors
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Decor ID"
// @Param request body DecorRequest true "Fields to change"
// @Success 200 {object} Envelope{data=model.Decor}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /decors/{id} [put]
func (h *DecorHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	req, uploads, err := readDecorRequest(c)
	if err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	in.KeepImages = req.KeepImages
	in.Uploads = uploads

	decor, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Decor updated successfully", decor)
}

// Delete godoc
// @Summary Delete decor
// @Tags decors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Decor ID"
// @Success 200 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /decors/{id} [delete]
func (h *DecorHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Decor deleted successfully", nil)
}

// UpdateStock godoc
// @Summary Update decor stock
// @Description Stock 0 moves an active item to out_of_stock and restocking moves it back, unless status is given.
// @Tags decors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Decor ID"
// @Param request body StockRequest true "Stock"
// @Success 200 {object} Envelope{data=model.Decor}
// @Failure 400 {object} Envelope
// @Failure 404 {object} Envelope
// @Router /decors/{id}/stock [patch]
func (h *DecorHandler) UpdateStock(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var status *model.DecorStatus
	if req.Status != nil {
		s := model.DecorStatus(*req.Status)
		status = &s
	}
	decor, err := h.svc.UpdateStock(c.Request().Context(), id, *req.Stock, status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Stock updated successfully", decor)
}

// ListAll godoc
// @Summary List decors in every status
// @Tags decors
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(active, inactive, out_of_stock, discontinued)
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Param search query string false "Matches name and description"
// @Success 200 {object} Envelope{data=[]model.Decor}
// @Failure 403 {object} Envelope
// @Router /decors/admin/all [get]
func (h *DecorHandler) ListAll(c echo.Context) error {
	params, err := decorListParams(c)
	if err != nil {
		return err
	}
	params.Status = c.QueryParam("status")
	result, err := h.svc.ListAll(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return respondPage(c, "Decors retrieved successfully", emptyIfNil(result.Items), result.Pagination)
}

// Stats godoc
// @Summary Decor statistics
// @Tags decors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Envelope{data=repository.DecorStats}
// @Failure 403 {object} Envelope
// @Router /decors/admin/stats [get]
func (h *DecorHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Decor statistics retrieved successfully", stats)
}

func decorListParams(c echo.Context) (service.DecorListParams, error) {
	q, err := bindListQuery(c)
	if err != nil {
		return service.DecorListParams{}, err
	}
	params := service.DecorListParams{
		Query:       q.Search,
		Materials:   splitList(c.QueryParams()["materials"]),
		Tags:        splitList(c.QueryParams()["tags"]),
		InStock:     c.QueryParam("inStock") == "true",
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		PageRequest: q.page(),
	}
	if params.CategoryID, err = optionalUUID(c, "category"); err != nil {
		return params, err
	}
	if params.MinPrice, err = optionalDecimal(c, "minPrice"); err != nil {
		return params, err
	}
	if params.MaxPrice, err = optionalDecimal(c, "maxPrice"); err != nil {
		return params, err
	}
	if params.Featured, err = optionalBool(c, "featured"); err != nil {
		return params, err
	}
	return params, nil
}

// readDecorRequest decodes a JSON or multipart decor body and returns the
// uploaded image bytes.
func readDecorRequest(c echo.Context) (*DecorRequest, [][]byte, error) {
	var req DecorRequest
	var uploads [][]byte

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, apperrors.Invalid("Invalid multipart form")
		}
		if err := req.fromForm(form.Value); err != nil {
			return nil, nil, err
		}
		if uploads, err = readUploads(c); err != nil {
			return nil, nil, err
		}
	} else if err := c.Bind(&req); err != nil {
		return nil, nil, apperrors.Invalid("Invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return nil, nil, err
	}
	return &req, uploads, nil
}

func readUploads(c echo.Context) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.Invalid("Invalid multipart form")
	}
	files := form.File[imagesField]
	if len(files) > model.MaxDecorImages {
		return nil, apperrors.Invalid("Cannot upload more than %d images", model.MaxDecorImages)
	}

	uploads := make([][]byte, 0, len(files))
	for _, fh := range files {
		if fh.Size > storage.MaxImageSize {
			return nil, apperrors.Invalid("%s: %s", fh.Filename, storage.ErrTooLarge.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.Invalid("Cannot read %s", fh.Filename)
		}
		data, err := storage.ReadLimited(f, storage.MaxImageSize)
		f.Close()
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, apperrors.Invalid("%s: %s", fh.Filename, err.Error())
			}
			return nil, apperrors.Invalid("Cannot read %s", fh.Filename)
		}
		uploads = append(uploads, data)
	}
	return uploads, nil
}

// fromForm fills the request from multipart values. List fields accept
// repeated keys or comma-separated values; dimensions is a JSON object.
func (r *DecorRequest) fromForm(values map[string][]string) error {
	str := func(key string) *string {
		if v, ok := values[key]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	list := func(key string) []string {
		if v, ok := values[key]; ok {
			return emptyIfNil(splitList(v))
		}
		return nil
	}

	r.Name = str("name")
	r.Description = str("description")
	r.CategoryID = str("categoryId")
	r.Status = str("status")
	r.Tags = list("tags")
	r.Materials = list("materials")
	r.Images = list("images")
	r.KeepImages = list("keepImages")

	for key, dst := range map[string]**decimal.Decimal{"price": &r.Price, "originalPrice": &r.OriginalPrice} {
		if s := str(key); s != nil && *s != "" {
			d, err := decimal.NewFromString(*s)
			if err != nil {
				return apperrors.Invalid("%s must be a number", key)
			}
			*dst = &d
		}
	}
	if s := str("stock"); s != nil && *s != "" {
		n, err := strconv.Atoi(*s)
		if err != nil {
			return apperrors.Invalid("stock must be an integer")
		}
		r.Stock = &n
	}
	if s := str("isFeatured"); s != nil && *s != "" {
		b, err := strconv.ParseBool(*s)
		if err != nil {
			return apperrors.Invalid("isFeatured must be true or false")
		}
		r.IsFeatured = &b
	}
	if s := str("dimensions"); s != nil && *s != "" {
		var dim model.Dimensions
		if err := json.Unmarshal([]byte(*s), &dim); err != nil {
			return apperrors.Invalid("dimensions must be a JSON object")
		}
		r.Dimensions = &dim
	}
	return nil
}

// input converts the request into service input. Uploads and keepImages are
// set by the caller.
func (r *DecorRequest) input() (service.DecorInput, error) {
	in := service.DecorInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Stock:         r.Stock,
		IsFeatured:    r.IsFeatured,
		Tags:          r.Tags,
		Materials:     r.Materials,
		Dimensions:    r.Dimensions,
		Images:        r.Images,
	}
	if r.CategoryID != nil {
		id, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return in, errInvalidID
		}
		in.CategoryID = &id
	}
	if r.Status != nil {
		s := model.DecorStatus(*r.Status)
		in.Status = &s
	}
	if r.Price != nil && r.Price.IsNegative() {
		return in, apperrors.Invalid("price cannot be negative")
	}
	return in, nil
}
