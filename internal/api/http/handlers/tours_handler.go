package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/api/dto"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/service"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// ToursHandler serves supplier tour endpoints and the shared status route.
type ToursHandler struct {
	products *service.ProductService
}

// NewToursHandler constructs handler.
func NewToursHandler(products *service.ProductService) *ToursHandler {
	return &ToursHandler{products: products}
}

// Create handles POST /tours.
func (h *ToursHandler) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.CreateProduct(c.UserContext(), a, productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// List handles GET /tours.
func (h *ToursHandler) List(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	filters, err := productFilters(c)
	if err != nil {
		return err
	}
	products, err := h.products.ListOwnProducts(c.UserContext(), a, filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// Get handles GET /tours/:id.
func (h *ToursHandler) Get(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	product, err := h.products.GetProduct(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update handles PUT /tours/:id.
func (h *ToursHandler) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.UpdateContent(c.UserContext(), a, c.Params("id"), productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// UpdateStatus handles PUT /tours/:id/status for owners and admins.
func (h *ToursHandler) UpdateStatus(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	target, err := domain.ParseWorkflowState(req.Status)
	if err != nil {
		return apperrors.NewValidationError("unknown product status", map[string]any{"status": req.Status})
	}
	product, err := h.products.UpdateStatus(c.UserContext(), a, c.Params("id"), target, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete handles DELETE /tours/:id.
func (h *ToursHandler) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.products.SoftDelete(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// History handles GET /tours/:id/history.
func (h *ToursHandler) History(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	entries, err := h.products.History(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusChangeResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewStatusChangeResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:        req.Title,
		Description:  req.Description,
		Destination:  req.Destination,
		DurationDays: req.DurationDays,
		Price:        req.Price,
		Currency:     req.Currency,
	}
}

func productFilters(c *fiber.Ctx) (service.ProductListFilters, error) {
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		return service.ProductListFilters{}, err
	}
	filters := service.ProductListFilters{
		Statuses:    statuses,
		Destination: optionalQuery(c, "destination"),
		SearchTerm:  optionalQuery(c, "q"),
	}
	filters.Limit, filters.Offset = parsePage(c)
	return filters, nil
}
