package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/testutil"
)

func TestContentRepositoryListOrdersByOrderIndex(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewContentRepository[models.Skill](db)
	ctx := context.Background()

	for i, name := range []string{"Go", "Rust", "Kotlin"} {
		skill := &models.Skill{Name: name, Category: models.SkillCategoryHard}
		skill.OrderIndex = 3 - i
		if err := repo.Create(ctx, skill); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	other := &models.Skill{Name: "Golang", Category: models.SkillCategoryHard}
	other.Locale = models.LocaleID
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create id skill: %v", err)
	}

	skills, err := repo.List(ctx, models.LocaleEN)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(skills) != 3 {
		t.Fatalf("expected 3 en skills, got %d", len(skills))
	}
	want := []string{"Kotlin", "Rust", "Go"}
	for i, s := range skills {
		if s.Name != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], s.Name)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 skills across locales, got %d", len(all))
	}
}

func TestContentRepositoryCreateAssignsIDAndLocale(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewContentRepository[models.Project](db)

	project := &models.Project{Title: "Portfolio", Slug: "portfolio", TechStack: models.StringList{"Go", "Postgres"}}
	if err := repo.Create(context.Background(), project); err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.ID == "" {
		t.Fatalf("expected generated id")
	}
	if project.Locale != models.LocaleEN {
		t.Fatalf("expected default locale en, got %q", project.Locale)
	}

	stored, err := repo.Get(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.TechStack) != 2 || stored.TechStack[1] != "Postgres" {
		t.Fatalf("unexpected tech stack: %v", stored.TechStack)
	}
}

func TestContentRepositoryUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewContentRepository[models.Testimonial](db)
	ctx := context.Background()

	item := &models.Testimonial{Name: "Ana", Content: "Great", Rating: 5}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, item.ID, &models.Testimonial{Name: "Ana B", Content: "Great lead", Rating: 4})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != item.ID || updated.Name != "Ana B" || updated.Rating != 4 {
		t.Fatalf("unexpected row after update: %+v", updated)
	}
	if updated.CreatedAt.IsZero() {
		t.Fatalf("created_at was cleared")
	}

	if _, err := repo.Update(ctx, "missing", &models.Testimonial{Name: "x", Content: "y", Rating: 1}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContentRepositoryDeleteAndBulkDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewContentRepository[models.Certification](db)
	ctx := context.Background()

	ids := make([]string, 0, 3)
	for _, name := range []string{"CKA", "AWS SAA", "GCP ACE"} {
		c := &models.Certification{Name: name, Issuer: "issuer"}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, c.ID)
	}

	if err := repo.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, ids[0]); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	deleted, err := repo.BulkDelete(ctx, []string{ids[1], ids[2], "missing"})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	count, err := repo.Count(ctx, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d", count)
	}
}

func TestContentRepositoryReorder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewContentRepository[models.Experience](db)
	ctx := context.Background()

	a := &models.Experience{Company: "A", Position: "Dev", StartDate: "2020-01-01"}
	b := &models.Experience{Company: "B", Position: "Lead", StartDate: "2022-01-01"}
	b.OrderIndex = 1
	for _, e := range []*models.Experience{a, b} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	err := repo.Reorder(ctx, []models.ReorderItem{{ID: a.ID, OrderIndex: 1}, {ID: b.ID, OrderIndex: 0}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, err := repo.List(ctx, models.LocaleEN)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].Company != "B" || list[1].Company != "A" {
		t.Fatalf("unexpected order: %s, %s", list[0].Company, list[1].Company)
	}
}
