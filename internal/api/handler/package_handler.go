package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

// PackageHandler serves meal package listing and administration.
type PackageHandler struct {
	service ports.PackageService
}

func NewPackageHandler(service ports.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

// List handles GET /api/meal-packages and GET /api/admin/packages.
//
// @Summary      List meal packages
// @Tags         packages
// @Produce      json
// @Success      200  {object}  Envelope
// @Router       /api/meal-packages [get]
func (h *PackageHandler) List(c echo.Context) error {
	pkgs, err := h.service.ListPackages(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]any{"packages": pkgs})
}

// Create handles POST /api/admin/packages.
//
// @Summary      Create a meal package
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createPackageRequest  true  "Package"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /api/admin/packages [post]
func (h *PackageHandler) Create(c echo.Context) error {
	var req createPackageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pkg, err := h.service.CreatePackage(c.Request().Context(), req.Name, req.Price)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Meal package created successfully", map[string]any{"package": pkg})
}

// Update handles PUT /api/admin/packages/:id.
//
// @Summary      Update a meal package
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Package id"
// @Param        body  body      updatePackageRequest  true  "Fields to change"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /api/admin/packages/{id} [put]
func (h *PackageHandler) Update(c echo.Context) error {
	var req updatePackageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pkg, err := h.service.UpdatePackage(c.Request().Context(), c.Param("id"), ports.PackageUpdate{Name: req.Name, Price: req.Price})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meal package updated successfully", map[string]any{"package": pkg})
}

// Delete handles DELETE /api/admin/packages/:id.
//
// @Summary      Delete a meal package
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Package id"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /api/admin/packages/{id} [delete]
func (h *PackageHandler) Delete(c echo.Context) error {
	if err := h.service.DeletePackage(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Meal package deleted successfully", nil)
}
