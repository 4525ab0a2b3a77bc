package handlers

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapHandler serves sitemap.xml for the public site
type SitemapHandler struct {
	siteURL  string
	projects *repository.ContentRepository[models.Project]
	now      func() time.Time
}

func NewSitemapHandler(siteURL string, db *gorm.DB) *SitemapHandler {
	return &SitemapHandler{
		siteURL:  strings.TrimRight(siteURL, "/"),
		projects: repository.NewContentRepository[models.Project](db),
		now:      time.Now,
	}
}

// Sitemap lists the home page of each locale and every project page
func (h *SitemapHandler) Sitemap(c echo.Context) error {
	today := h.now().UTC().Format("2006-01-02")
	set := sitemapURLSet{Xmlns: sitemapNamespace}
	for _, locale := range models.Locales {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/" + locale,
			LastMod:    today,
			ChangeFreq: "weekly",
			Priority:   "1.0",
		})
	}

	projects, err := h.projects.List(c.Request().Context(), "")
	if err != nil {
		return fetchError(c, "sitemap projects", err)
	}
	for _, p := range projects {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + "/" + p.Locale + "/projects/" + p.Slug,
			LastMod:    p.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fetchError(c, "sitemap", err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, append([]byte(xml.Header), body...))
}
