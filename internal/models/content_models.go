package models

import (
	"fmt"
	"strings"
)

// Table names for the content entities
const (
	ProjectsTableName       = "projects"
	ExperienceTableName     = "experience"
	EducationTableName      = "education"
	SkillsTableName         = "skills"
	TestimonialsTableName   = "testimonials"
	CertificationsTableName = "certifications"
	OrganizationsTableName  = "organizations"
)

// ContentTables lists the orderable tables; these are also the reorder entity names
var ContentTables = []string{
	EducationTableName,
	ExperienceTableName,
	ProjectsTableName,
	SkillsTableName,
	OrganizationsTableName,
	TestimonialsTableName,
	CertificationsTableName,
}

// Project is a portfolio project
type Project struct {
	Base
	Slug          string     `gorm:"size:200;not null;index" json:"slug"`
	Title         string     `gorm:"not null" json:"title"`
	Description   string     `json:"description"`
	Role          string     `json:"role"`
	TechStack     StringList `json:"tech_stack"`
	Contributions string     `json:"contributions"`
	Impact        string     `json:"impact"`
	ImageURL      string     `json:"image_url"`
	ProjectURL    string     `json:"project_url"`
	GithubURL     string     `json:"github_url"`
	Featured      bool       `gorm:"not null;default:false" json:"featured"`
}

func (Project) TableName() string {
	return ProjectsTableName
}

func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("`title` is required")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("`slug` is required")
	}
	return nil
}

// Experience is a work history entry
type Experience struct {
	Base
	Company      string     `gorm:"not null" json:"company"`
	Position     string     `gorm:"not null" json:"position"`
	Description  string     `json:"description"`
	StartDate    string     `gorm:"size:10;not null" json:"start_date"`
	EndDate      *string    `gorm:"size:10" json:"end_date"`
	IsCurrent    bool       `gorm:"not null;default:false" json:"is_current"`
	Location     string     `json:"location"`
	Achievements StringList `json:"achievements"`
}

func (Experience) TableName() string {
	return ExperienceTableName
}

func (e *Experience) Validate() error {
	if strings.TrimSpace(e.Company) == "" || strings.TrimSpace(e.Position) == "" {
		return fmt.Errorf("`company` and `position` are required")
	}
	if strings.TrimSpace(e.StartDate) == "" {
		return fmt.Errorf("`start_date` is required")
	}
	return nil
}

// Education is a degree or course of study
type Education struct {
	Base
	Institution  string  `gorm:"not null" json:"institution"`
	Degree       string  `gorm:"not null" json:"degree"`
	FieldOfStudy string  `json:"field_of_study"`
	GPA          string  `gorm:"column:gpa" json:"gpa"`
	StartDate    string  `gorm:"size:10" json:"start_date"`
	EndDate      *string `gorm:"size:10" json:"end_date"`
	Description  string  `json:"description"`
}

func (Education) TableName() string {
	return EducationTableName
}

func (e *Education) Validate() error {
	if strings.TrimSpace(e.Institution) == "" || strings.TrimSpace(e.Degree) == "" {
		return fmt.Errorf("`institution` and `degree` are required")
	}
	return nil
}

// Skill categories
const (
	SkillCategoryHard = "hard"
	SkillCategorySoft = "soft"
)

// Skill is a hard or soft skill with a proficiency score
type Skill struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Category    string `gorm:"size:10;not null;index" json:"category"`
	Subcategory string `json:"subcategory"`
	Proficiency int    `gorm:"not null;default:0" json:"proficiency"`
	Icon        string `json:"icon"`
}

func (Skill) TableName() string {
	return SkillsTableName
}

func (s *Skill) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("`name` is required")
	}
	if s.Category != SkillCategoryHard && s.Category != SkillCategorySoft {
		return fmt.Errorf("`category` must be hard or soft")
	}
	if s.Proficiency < 0 || s.Proficiency > 100 {
		return fmt.Errorf("`proficiency` must be between 0 and 100")
	}
	return nil
}

// SkillsByCategory splits skills into hard and soft
type SkillsByCategory struct {
	Hard []Skill `json:"hard"`
	Soft []Skill `json:"soft"`
}

// Testimonial is a quote from a colleague or client
type Testimonial struct {
	Base
	Name      string `gorm:"not null" json:"name"`
	Position  string `json:"position"`
	Company   string `json:"company"`
	Content   string `gorm:"not null" json:"content"`
	AvatarURL string `json:"avatar_url"`
	Rating    int    `gorm:"not null;default:5" json:"rating"`
}

func (Testimonial) TableName() string {
	return TestimonialsTableName
}

func (t *Testimonial) Validate() error {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("`name` and `content` are required")
	}
	if t.Rating < 1 || t.Rating > 5 {
		return fmt.Errorf("`rating` must be between 1 and 5")
	}
	return nil
}

// Certification is a professional certificate
type Certification struct {
	Base
	Name          string  `gorm:"not null" json:"name"`
	Issuer        string  `gorm:"not null" json:"issuer"`
	IssueDate     string  `gorm:"size:10" json:"issue_date"`
	ExpiryDate    *string `gorm:"size:10" json:"expiry_date"`
	CredentialID  string  `json:"credential_id"`
	CredentialURL string  `json:"credential_url"`
}

func (Certification) TableName() string {
	return CertificationsTableName
}

func (c *Certification) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Issuer) == "" {
		return fmt.Errorf("`name` and `issuer` are required")
	}
	return nil
}

// Organization is a volunteer or community role
type Organization struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Position    string  `gorm:"not null" json:"position"`
	Description string  `json:"description"`
	StartDate   string  `gorm:"size:10" json:"start_date"`
	EndDate     *string `gorm:"size:10" json:"end_date"`
}

func (Organization) TableName() string {
	return OrganizationsTableName
}

func (o *Organization) Validate() error {
	if strings.TrimSpace(o.Name) == "" || strings.TrimSpace(o.Position) == "" {
		return fmt.Errorf("`name` and `position` are required")
	}
	return nil
}
