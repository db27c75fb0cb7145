package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/api/dto"
	"github.com/spec-kit/tour-marketplace/internal/service"
)

// CatalogHandler serves published tours to agencies.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /catalog.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	filters := service.CatalogFilters{
		Destination: optionalQuery(c, "destination"),
		SearchTerm:  optionalQuery(c, "q"),
	}
	filters.Limit, filters.Offset = parsePage(c)
	products, err := h.catalog.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// Get handles GET /catalog/:id.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	product, err := h.catalog.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}
