package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aquario/identity-service/internal/core/ports"
)

// DirectoryHandler serves the read-only center and course listings the
// registration form needs.
type DirectoryHandler struct {
	centers ports.CenterDirectory
	courses ports.CourseDirectory
}

func NewDirectoryHandler(centers ports.CenterDirectory, courses ports.CourseDirectory) *DirectoryHandler {
	return &DirectoryHandler{centers: centers, courses: courses}
}

type centerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"nome"`
	Acronym string `json:"sigla"`
}

type courseResponse struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

type coursesRequest struct {
	CenterID string `param:"id" json:"id" validate:"required,uuid"`
}

// ListCenters returns every academic center.
//
// @Summary      List centers
// @Tags         directory
// @Produce      json
// @Success      200  {array}   centerResponse
// @Failure      503  {object}  api.errorResponse
// @Router       /centros [get]
func (h *DirectoryHandler) ListCenters(c echo.Context) error {
	centers, err := h.centers.ListCenters(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]centerResponse, 0, len(centers))
	for _, ct := range centers {
		out = append(out, centerResponse{ID: ct.ID, Name: ct.Name, Acronym: ct.Acronym})
	}
	return c.JSON(http.StatusOK, out)
}

// ListCourses returns the courses offered by one center.
//
// @Summary      List courses of a center
// @Tags         directory
// @Produce      json
// @Param        id   path      string  true  "Center ID"
// @Success      200  {array}   courseResponse
// @Failure      400  {object}  api.errorResponse
// @Failure      404  {object}  api.errorResponse
// @Router       /centros/{id}/cursos [get]
func (h *DirectoryHandler) ListCourses(c echo.Context) error {
	req := coursesRequest{CenterID: c.Param("id")}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.centers.FindCenter(ctx, req.CenterID); err != nil {
		return err
	}

	courses, err := h.courses.ListCoursesByCenter(ctx, req.CenterID)
	if err != nil {
		return err
	}

	out := make([]courseResponse, 0, len(courses))
	for _, cs := range courses {
		out = append(out, courseResponse{ID: cs.ID, Name: cs.Name})
	}
	return c.JSON(http.StatusOK, out)
}
