package handlers

import (
	"context"

	"github.com/aldianriski/portfolioapi/internal/api/middleware"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/pkg/utils/response"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// StatsHandler serves the dashboard counters
type StatsHandler struct {
	counters map[string]func(ctx context.Context, locale string) (int64, error)
	messages *repository.MessageRepository
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{
		counters: map[string]func(ctx context.Context, locale string) (int64, error){
			models.ProjectsTableName:       repository.NewContentRepository[models.Project](db).Count,
			models.ExperienceTableName:     repository.NewContentRepository[models.Experience](db).Count,
			models.EducationTableName:      repository.NewContentRepository[models.Education](db).Count,
			models.SkillsTableName:         repository.NewContentRepository[models.Skill](db).Count,
			models.TestimonialsTableName:   repository.NewContentRepository[models.Testimonial](db).Count,
			models.CertificationsTableName: repository.NewContentRepository[models.Certification](db).Count,
			models.OrganizationsTableName:  repository.NewContentRepository[models.Organization](db).Count,
		},
		messages: repository.NewMessageRepository(db),
	}
}

type statsResponse struct {
	Counts         map[string]int64 `json:"counts"`
	Messages       int64            `json:"messages"`
	UnreadMessages int64            `json:"unread_messages"`
}

// Get returns per-entity row counts of a locale plus the inbox counts
func (h *StatsHandler) Get(c echo.Context) error {
	locale, ok, err := readOptionalLocale(c)
	if !ok {
		return err
	}
	ctx := c.Request().Context()
	stats := statsResponse{Counts: make(map[string]int64, len(h.counters))}
	for entity, count := range h.counters {
		n, err := count(ctx, locale)
		if err != nil {
			return fetchError(c, entity+" count", err)
		}
		stats.Counts[entity] = n
	}
	if stats.Messages, err = h.messages.Count(ctx); err != nil {
		return fetchError(c, "message count", err)
	}
	if stats.UnreadMessages, err = h.messages.CountUnread(ctx); err != nil {
		return fetchError(c, "unread count", err)
	}
	middleware.AddRateLimitHeaders(c)
	return response.SuccessResponse(c, stats)
}
