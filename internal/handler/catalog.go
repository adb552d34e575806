package handler

import (
	"net/http"

	"pantry-be/internal/category"
	"pantry-be/internal/product"
	"pantry-be/internal/uom"
	"pantry-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListProducts handles GET /api/products. Only admins see inactive items.
func (h *Handlers) ListProducts(c *gin.Context) {
	opts := product.ListOptions{
		Search:     optionalQuery(c, "search"),
		CategoryID: optionalQuery(c, "categoryId"),
		OnlyActive: !utils.IsAdmin(c.Request.Context()) || c.Query("active") == "true",
		Limit:      queryInt(c, "limit"),
		Page:       queryInt(c, "page"),
	}

	res, err := h.Products.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.Products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.IsActive && !utils.IsAdmin(c.Request.Context()) {
		respondError(c, product.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) GetProductBySlug(c *gin.Context) {
	p, err := h.Products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !p.IsActive && !utils.IsAdmin(c.Request.Context()) {
		respondError(c, product.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreateProduct(c *gin.Context) {
	var in product.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.Products.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/products/:id. Stock fields in the body
// are ignored; stock moves through /api/inventory.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	var in product.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	in.ID = c.Param("id")

	p, err := h.Products.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) DeleteProduct(c *gin.Context) {
	if err := h.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.Categories.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var in category.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	cat, err := h.Categories.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.Categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListUOMs(c *gin.Context) {
	units, err := h.UOMs.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *Handlers) CreateUOM(c *gin.Context) {
	var in uom.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	u, err := h.UOMs.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
