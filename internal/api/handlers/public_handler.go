package handlers

import (
	"errors"
	"net/http"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/aldianriski/portfolioapi/pkg/utils/zaplogger"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PublicHandler serves the read-only content of the public site. Lists are
// returned as bare JSON arrays.
type PublicHandler struct {
	projects       *repository.ContentRepository[models.Project]
	experience     *repository.ContentRepository[models.Experience]
	education      *repository.ContentRepository[models.Education]
	organizations  *repository.ContentRepository[models.Organization]
	skills         *repository.ContentRepository[models.Skill]
	testimonials   *repository.ContentRepository[models.Testimonial]
	certifications *repository.ContentRepository[models.Certification]
	settings       *repository.SettingsRepository
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{
		projects:       repository.NewContentRepository[models.Project](db),
		experience:     repository.NewContentRepository[models.Experience](db),
		education:      repository.NewContentRepository[models.Education](db),
		organizations:  repository.NewContentRepository[models.Organization](db),
		skills:         repository.NewContentRepository[models.Skill](db),
		testimonials:   repository.NewContentRepository[models.Testimonial](db),
		certifications: repository.NewContentRepository[models.Certification](db),
		settings:       repository.NewSettingsRepository(db),
	}
}

func fetchError(c echo.Context, what string, err error) error {
	zaplogger.Error("failed to fetch "+what, zaplogger.Fields{"error": err})
	return response.ServerErrorResponse(c)
}

// GetProjects lists projects; `featured=true` keeps featured ones only
func (h *PublicHandler) GetProjects(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	var projects []models.Project
	if c.QueryParam("featured") == "true" {
		projects, err = h.projects.ListWhere(c.Request().Context(), locale, "featured = ?", true)
	} else {
		projects, err = h.projects.List(c.Request().Context(), locale)
	}
	if err != nil {
		return fetchError(c, "projects", err)
	}
	return c.JSON(http.StatusOK, projects)
}

// GetProjectBySlug returns one project of a locale
func (h *PublicHandler) GetProjectBySlug(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	project, err := h.projects.FindOne(c.Request().Context(), "slug = ? AND locale = ?", c.Param("slug"), locale)
	if errors.Is(err, repository.ErrNotFound) {
		return response.ErrorResponse(c, http.StatusNotFound, response.NotFoundException, "Project not found")
	}
	if err != nil {
		return fetchError(c, "project", err)
	}
	return c.JSON(http.StatusOK, project)
}

// GetExperience lists work history
func (h *PublicHandler) GetExperience(c echo.Context) error {
	return listPublic(c, "experience", h.experience)
}

// GetTestimonials lists testimonials
func (h *PublicHandler) GetTestimonials(c echo.Context) error {
	return listPublic(c, "testimonials", h.testimonials)
}

// GetCertifications lists certifications
func (h *PublicHandler) GetCertifications(c echo.Context) error {
	return listPublic(c, "certifications", h.certifications)
}

// GetSkills returns skills split into hard and soft
func (h *PublicHandler) GetSkills(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	skills, err := h.skills.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "skills", err)
	}
	grouped := models.SkillsByCategory{Hard: []models.Skill{}, Soft: []models.Skill{}}
	for _, s := range skills {
		if s.Category == models.SkillCategorySoft {
			grouped.Soft = append(grouped.Soft, s)
		} else {
			grouped.Hard = append(grouped.Hard, s)
		}
	}
	return c.JSON(http.StatusOK, grouped)
}

// GetEducation returns education and organizations together
func (h *PublicHandler) GetEducation(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	education, err := h.education.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "education", err)
	}
	organizations, err := h.organizations.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "organizations", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"education":     education,
		"organizations": organizations,
	})
}

// GetHeroSettings returns the hero slice
func (h *PublicHandler) GetHeroSettings(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	hero, err := h.settings.Hero(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "hero settings", err)
	}
	return c.JSON(http.StatusOK, hero)
}

// GetContactSettings returns the contact slice
func (h *PublicHandler) GetContactSettings(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	contact, err := h.settings.Contact(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "contact settings", err)
	}
	return c.JSON(http.StatusOK, contact)
}

// GetSocialSettings returns the social links slice
func (h *PublicHandler) GetSocialSettings(c echo.Context) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	social, err := h.settings.Social(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, "social settings", err)
	}
	return c.JSON(http.StatusOK, social)
}

func listPublic[T any](c echo.Context, what string, repo *repository.ContentRepository[T]) error {
	locale, ok, err := readLocale(c)
	if !ok {
		return err
	}
	items, err := repo.List(c.Request().Context(), locale)
	if err != nil {
		return fetchError(c, what, err)
	}
	return c.JSON(http.StatusOK, items)
}
