package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"
)

// ResumeData is everything printed on the résumé
type ResumeData struct {
	Name           string
	Title          string
	Email          string
	Phone          string
	Location       string
	Summary        string
	Experience     []models.Experience
	Education      []models.Education
	Skills         []models.Skill
	Certifications []models.Certification
}

// ResumeService builds the PDF résumé from stored content
type ResumeService struct {
	settings       *repository.SettingsRepository
	experience     *repository.ContentRepository[models.Experience]
	education      *repository.ContentRepository[models.Education]
	skills         *repository.ContentRepository[models.Skill]
	certifications *repository.ContentRepository[models.Certification]
}

// NewResumeService creates a new résumé service
func NewResumeService(db *gorm.DB) *ResumeService {
	return &ResumeService{
		settings:       repository.NewSettingsRepository(db),
		experience:     repository.NewContentRepository[models.Experience](db),
		education:      repository.NewContentRepository[models.Education](db),
		skills:         repository.NewContentRepository[models.Skill](db),
		certifications: repository.NewContentRepository[models.Certification](db),
	}
}

// Collect reads the résumé content of a locale
func (s *ResumeService) Collect(ctx context.Context, locale string) (*ResumeData, error) {
	values, err := s.settings.Map(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	hero, err := s.settings.Hero(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("read hero settings: %w", err)
	}

	data := &ResumeData{
		Name:     hero.Name,
		Title:    hero.Title,
		Email:    values[models.SettingContactEmail],
		Phone:    values[models.SettingContactPhone],
		Location: values[models.SettingLocation],
		Summary:  hero.Description,
	}
	if data.Experience, err = s.experience.List(ctx, locale); err != nil {
		return nil, fmt.Errorf("read experience: %w", err)
	}
	if data.Education, err = s.education.List(ctx, locale); err != nil {
		return nil, fmt.Errorf("read education: %w", err)
	}
	if data.Skills, err = s.skills.List(ctx, locale); err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	if data.Certifications, err = s.certifications.List(ctx, locale); err != nil {
		return nil, fmt.Errorf("read certifications: %w", err)
	}
	return data, nil
}

// Build renders the résumé of a locale
func (s *ResumeService) Build(ctx context.Context, locale string) ([]byte, error) {
	data, err := s.Collect(ctx, locale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := RenderResume(data, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResumeFileName returns the download name of the résumé
func ResumeFileName(name string) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		slug = "resume"
	}
	return slug + "_resume.pdf"
}

var (
	htmlTags     = regexp.MustCompile(`<[^>]*>`)
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

const resumeMargin = 20.0

// RenderResume writes data as an A4 PDF
func RenderResume(data *ResumeData, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(resumeMargin, resumeMargin, resumeMargin)
	pdf.SetAutoPageBreak(true, resumeMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*resumeMargin

	pdf.AddPage()

	// header band
	pdf.SetFillColor(41, 128, 185)
	pdf.Rect(0, 0, pageWidth, 50, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(resumeMargin, 20, tr(data.Name))
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(resumeMargin, 30, tr(data.Title))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(resumeMargin, 40, tr(joinNonEmpty(" | ", data.Email, data.Phone, data.Location)))
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(60)

	text := func(s string, size float64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, size)
		pdf.MultiCell(contentWidth, size*0.5, tr(s), "", "L", false)
	}
	section := func(title string) {
		pdf.Ln(8)
		y := pdf.GetY()
		pdf.SetLineWidth(0.5)
		pdf.Line(resumeMargin, y, pageWidth-resumeMargin, y)
		pdf.Ln(3)
		text(title, 14, true)
		pdf.Ln(3)
	}

	if data.Summary != "" {
		section("PROFESSIONAL SUMMARY")
		text(stripTags(data.Summary), 10, false)
	}

	if len(data.Experience) > 0 {
		section("PROFESSIONAL EXPERIENCE")
		for i, exp := range data.Experience {
			if i > 0 {
				pdf.Ln(5)
			}
			text(exp.Company, 11, true)
			text(exp.Position, 10, false)
			text(monthYear(exp.StartDate)+" - "+endOrPresent(exp.EndDate), 9, false)
			pdf.Ln(2)
			if desc := stripTags(exp.Description); desc != "" {
				text(desc, 9, false)
			}
			if len(exp.Achievements) > 0 {
				pdf.Ln(2)
				for _, a := range exp.Achievements {
					text("• "+a, 9, false)
				}
			}
		}
	}

	if len(data.Education) > 0 {
		section("EDUCATION")
		for i, edu := range data.Education {
			if i > 0 {
				pdf.Ln(5)
			}
			text(edu.Institution, 11, true)
			degree := edu.Degree
			if edu.FieldOfStudy != "" {
				degree += " in " + edu.FieldOfStudy
			}
			text(degree, 10, false)
			if edu.GPA != "" {
				text("GPA: "+edu.GPA, 9, false)
			}
			end := ""
			if edu.EndDate != nil {
				end = *edu.EndDate
			}
			text(year(edu.StartDate)+" - "+year(end), 9, false)
		}
	}

	if len(data.Skills) > 0 {
		section("SKILLS")
		var hard, soft []string
		for _, s := range data.Skills {
			if s.Category == models.SkillCategorySoft {
				soft = append(soft, s.Name)
			} else {
				hard = append(hard, s.Name)
			}
		}
		if len(hard) > 0 {
			text("Technical Skills:", 10, true)
			text(strings.Join(hard, ", "), 9, false)
			pdf.Ln(3)
		}
		if len(soft) > 0 {
			text("Soft Skills:", 10, true)
			text(strings.Join(soft, ", "), 9, false)
		}
	}

	if len(data.Certifications) > 0 {
		section("CERTIFICATIONS")
		for i, cert := range data.Certifications {
			if i > 0 {
				pdf.Ln(3)
			}
			text(cert.Name, 10, true)
			text(cert.Issuer, 9, false)
			issued := "Issued: " + monthYear(cert.IssueDate)
			if cert.ExpiryDate != nil && *cert.ExpiryDate != "" {
				issued += " | Expires: " + monthYear(*cert.ExpiryDate)
			}
			text(issued, 8, false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render resume: %w", err)
	}
	return nil
}

func stripTags(s string) string {
	return strings.TrimSpace(htmlTags.ReplaceAllString(s, ""))
}

func monthYear(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2006")
}

func year(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("2006")
}

func endOrPresent(date *string) string {
	if date == nil || *date == "" {
		return "Present"
	}
	return monthYear(*date)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
