package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aldianriski/portfolioapi/internal/api"
	"github.com/aldianriski/portfolioapi/internal/config"
	"github.com/aldianriski/portfolioapi/internal/models"
	"github.com/aldianriski/portfolioapi/internal/repository"
	"github.com/aldianriski/portfolioapi/internal/service"
	"github.com/aldianriski/portfolioapi/internal/testutil"
	"github.com/aldianriski/portfolioapi/pkg/utils/logger"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const adminPassword = "correct-horse"

func testConfig() *config.Config {
	return &config.Config{
		APIName:                 "Portfolio API",
		APIVersion:              "v1",
		Environment:             config.EnvTest,
		SiteURL:                 "https://example.com/",
		AdminPassword:           adminPassword,
		SessionSecret:           strings.Repeat("k", 32),
		SessionDuration:         8 * time.Hour,
		SessionRefreshThreshold: 30 * time.Minute,
		CsrfTTL:                 24 * time.Hour,
		CsrfHeader:              "x-csrf-token",
		AdminRateLimit:          100,
		AdminRateWindow:         15 * time.Minute,
		LoginRateLimit:          10,
		LoginRateWindow:         15 * time.Minute,
		ContactRateLimit:        5,
		ContactRateWindow:       10 * time.Minute,
	}
}

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	audit, err := logger.New(db)
	if err != nil {
		t.Fatalf("audit logger: %v", err)
	}
	newStore := func() service.RateLimitStore { return repository.NewMemoryRateLimitStore() }
	deps, err := api.NewDependencies(cfg, db, newStore, nil, service.NopNotifier{}, audit)
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	e := echo.New()
	api.SetupRoutes(e, deps)
	return &testServer{e: e, db: db}
}

type requestOption func(*http.Request)

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func withHeader(name, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func (s *testServer) do(method, path, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// login returns the session and csrf cookies and the csrf token
func (s *testServer) login(t *testing.T) ([]*http.Cookie, string) {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/admin/login", `{"password":"`+adminPassword+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			CsrfToken string `json:"csrf_token"`
		} `json:"data"`
	}
	decode(t, rec, &body)
	if body.Data.CsrfToken == "" {
		t.Fatal("login returned no csrf token")
	}
	return rec.Result().Cookies(), body.Data.CsrfToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func seedProjects(t *testing.T, db *gorm.DB, slugs ...string) []models.Project {
	t.Helper()
	repo := repository.NewContentRepository[models.Project](db)
	projects := make([]models.Project, 0, len(slugs))
	for i, slug := range slugs {
		p := models.Project{Base: models.Base{OrderIndex: i}, Slug: slug, Title: strings.ToUpper(slug)}
		if err := repo.Create(context.Background(), &p); err != nil {
			t.Fatalf("seed %s: %v", slug, err)
		}
		projects = append(projects, p)
	}
	return projects
}

func listSlugs(t *testing.T, s *testServer) []string {
	t.Helper()
	rec := s.do(http.MethodGet, "/api/projects", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var projects []models.Project
	decode(t, rec, &projects)
	slugs := make([]string, 0, len(projects))
	for _, p := range projects {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Portfolio API v1") {
		t.Fatalf("index = %d %s", rec.Code, rec.Body.String())
	}
}

func TestReorderSwapsProjects(t *testing.T) {
	s := newTestServer(t, testConfig())
	projects := seedProjects(t, s.db, "alpha", "beta", "gamma")
	cookies, token := s.login(t)

	body := `{"items":[{"id":"` + projects[0].ID + `","order_index":2},{"id":"` + projects[2].ID + `","order_index":0}]}`
	rec := s.do(http.MethodPost, "/api/projects/reorder", body, withCookies(cookies), withHeader("x-csrf-token", token))
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("reorder body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-RateLimit-Limit") != "100" {
		t.Fatalf("X-RateLimit-Limit = %q", rec.Header().Get("X-RateLimit-Limit"))
	}

	got := strings.Join(listSlugs(t, s), ",")
	if got != "gamma,beta,alpha" {
		t.Fatalf("order after reorder = %s", got)
	}
}

func TestReorderWithoutCsrfIsForbidden(t *testing.T) {
	s := newTestServer(t, testConfig())
	projects := seedProjects(t, s.db, "alpha", "beta")
	cookies, _ := s.login(t)

	body := `{"items":[{"id":"` + projects[0].ID + `","order_index":1}]}`
	rec := s.do(http.MethodPost, "/api/projects/reorder", body, withCookies(cookies))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	rec = s.do(http.MethodPost, "/api/projects/reorder", body, withCookies(cookies), withHeader("x-csrf-token", strings.Repeat("0", 64)))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token status = %d, want 403", rec.Code)
	}
}

func TestReorderWithoutSessionIsUnauthorized(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodPost, "/api/skills/reorder", `{"items":[]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestReorderRequiresItems(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	rec := s.do(http.MethodPost, "/api/education/reorder", `{}`, withCookies(cookies), withHeader("x-csrf-token", token))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAdminRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AdminRateLimit = 2
	s := newTestServer(t, cfg)
	cookies, _ := s.login(t)

	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodGet, "/api/admin/session", "", withCookies(cookies))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := s.do(http.MethodGet, "/api/admin/session", "", withCookies(cookies))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("headers = %v", rec.Header())
	}
	var body struct {
		ResetTime int64 `json:"resetTime"`
	}
	decode(t, rec, &body)
	if body.ResetTime <= time.Now().UnixMilli() {
		t.Fatalf("resetTime = %d, want a future epoch ms", body.ResetTime)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodPost, "/api/admin/login", `{"password":"wrong-password"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.Value != "" {
			t.Fatal("session cookie set on failed login")
		}
	}
}

func TestLogoutEndsSession(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)

	rec := s.do(http.MethodPost, "/api/admin/logout", "", withCookies(cookies), withHeader("x-csrf-token", token))
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the session cookie")
	}
}

func TestCsrfEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodGet, "/api/admin/csrf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	decode(t, rec, &body)
	if len(body.Token) != 64 {
		t.Fatalf("token length = %d, want 64", len(body.Token))
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.CsrfCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != body.Token || !cookie.HttpOnly {
		t.Fatalf("csrf cookie = %+v", cookie)
	}
}

func TestAdminContentCrud(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	auth := []requestOption{withCookies(cookies), withHeader("x-csrf-token", token)}

	rec := s.do(http.MethodPost, "/api/admin/skills", `{"id":"chosen","name":"Go","category":"hard","proficiency":90}`, auth...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data models.Skill `json:"data"`
	}
	decode(t, rec, &created)
	if created.Data.ID == "" || created.Data.ID == "chosen" {
		t.Fatalf("id = %q, want a server assigned id", created.Data.ID)
	}
	if created.Data.Locale != models.LocaleEN {
		t.Fatalf("locale = %q, want en", created.Data.Locale)
	}

	rec = s.do(http.MethodPost, "/api/admin/skills", `{"name":"Go","category":"other"}`, auth...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d, want 400", rec.Code)
	}

	rec = s.do(http.MethodPut, "/api/admin/skills/"+created.Data.ID, `{"proficiency":95}`, auth...)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Data models.Skill `json:"data"`
	}
	decode(t, rec, &updated)
	if updated.Data.Proficiency != 95 || updated.Data.Name != "Go" {
		t.Fatalf("updated = %+v", updated.Data)
	}

	rec = s.do(http.MethodGet, "/api/admin/skills/export?format=csv", "", auth...)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Header().Get(echo.HeaderContentDisposition), "skills_all_") {
		t.Fatalf("export = %d %v", rec.Code, rec.Header())
	}

	rec = s.do(http.MethodDelete, "/api/admin/skills/"+created.Data.ID, "", auth...)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = s.do(http.MethodDelete, "/api/admin/skills/"+created.Data.ID, "", auth...)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}

	var audit struct {
		Data []logger.Entry `json:"data"`
	}
	decode(t, s.do(http.MethodGet, "/api/admin/audit", "", auth...), &audit)
	actions := map[logger.Action]bool{}
	for _, entry := range audit.Data {
		actions[entry.Action] = true
	}
	for _, want := range []logger.Action{logger.LOGIN, logger.CREATE, logger.UPDATE, logger.DELETE} {
		if !actions[want] {
			t.Fatalf("audit log missing %s: %v", want, actions)
		}
	}
}

func TestContactHoneypot(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodPost, "/api/contact", `{"name":"Bot","email":"bot@example.com","message":"buy now","website":"http://spam.example"}`)
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Fatalf("honeypot = %d %s", rec.Code, rec.Body.String())
	}
	count, err := repository.NewMessageRepository(s.db).Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("stored %d messages, want 0", count)
	}
}

func TestContactRateLimit(t *testing.T) {
	s := newTestServer(t, testConfig())
	body := `{"name":"Ann","email":"ann@example.com","message":"Hello there"}`
	for i := 1; i <= 5; i++ {
		rec := s.do(http.MethodPost, "/api/contact", body, withHeader("X-Forwarded-For", "203.0.113.7"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, body %s", i, rec.Code, rec.Body.String())
		}
	}
	rec := s.do(http.MethodPost, "/api/contact", body, withHeader("X-Forwarded-For", "203.0.113.7"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}

	rec = s.do(http.MethodPost, "/api/contact", body, withHeader("X-Forwarded-For", "203.0.113.8"))
	if rec.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", rec.Code)
	}
}

func TestContactValidation(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := s.do(http.MethodPost, "/api/contact", `{"name":"Ann","email":"not-an-email","message":"Hello"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPublicRejectsUnsupportedLocale(t *testing.T) {
	s := newTestServer(t, testConfig())
	for _, path := range []string{"/api/projects?locale=fr", "/api/skills?locale=de", "/api/settings/hero?locale=xx"} {
		rec := s.do(http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestPublicProjectBySlug(t *testing.T) {
	s := newTestServer(t, testConfig())
	seedProjects(t, s.db, "alpha")

	rec := s.do(http.MethodGet, "/api/projects/alpha", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = s.do(http.MethodGet, "/api/projects/alpha?locale=id", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other locale status = %d, want 404", rec.Code)
	}
}

func TestPublicSkillsAreGrouped(t *testing.T) {
	s := newTestServer(t, testConfig())
	repo := repository.NewContentRepository[models.Skill](s.db)
	for _, skill := range []models.Skill{
		{Name: "Go", Category: models.SkillCategoryHard},
		{Name: "Mentoring", Category: models.SkillCategorySoft},
	} {
		skill := skill
		if err := repo.Create(context.Background(), &skill); err != nil {
			t.Fatal(err)
		}
	}

	rec := s.do(http.MethodGet, "/api/skills", "")
	var grouped models.SkillsByCategory
	decode(t, rec, &grouped)
	if len(grouped.Hard) != 1 || len(grouped.Soft) != 1 || grouped.Soft[0].Name != "Mentoring" {
		t.Fatalf("grouped = %+v", grouped)
	}
}

func TestSitemap(t *testing.T) {
	s := newTestServer(t, testConfig())
	seedProjects(t, s.db, "alpha")

	rec := s.do(http.MethodGet, "/sitemap.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://example.com/en</loc>",
		"<loc>https://example.com/id</loc>",
		"<loc>https://example.com/en/projects/alpha</loc>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("sitemap missing %s:\n%s", want, body)
		}
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	rec := s.do(http.MethodDelete, "/api/admin/upload?path=projects/a.png", "", withCookies(cookies), withHeader("x-csrf-token", token))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAdminInbox(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	auth := []requestOption{withCookies(cookies), withHeader("x-csrf-token", token)}

	for _, name := range []string{"Ann", "Budi"} {
		rec := s.do(http.MethodPost, "/api/contact", `{"name":"`+name+`","email":"x@example.com","message":"Hi"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("contact status = %d", rec.Code)
		}
	}

	var inbox struct {
		Data []models.ContactMessage `json:"data"`
	}
	rec := s.do(http.MethodGet, "/api/admin/messages?status=unread", "", auth...)
	decode(t, rec, &inbox)
	if len(inbox.Data) != 2 {
		t.Fatalf("unread = %d, want 2", len(inbox.Data))
	}

	id := inbox.Data[0].ID
	rec = s.do(http.MethodPatch, "/api/admin/messages/"+id, `{"is_read":true}`, auth...)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPatch, "/api/admin/messages/"+id, `{}`, auth...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing is_read status = %d, want 400", rec.Code)
	}

	var stats struct {
		Data struct {
			Counts         map[string]int64 `json:"counts"`
			Messages       int64            `json:"messages"`
			UnreadMessages int64            `json:"unread_messages"`
		} `json:"data"`
	}
	rec = s.do(http.MethodGet, "/api/admin/stats", "", auth...)
	decode(t, rec, &stats)
	if stats.Data.Messages != 2 || stats.Data.UnreadMessages != 1 {
		t.Fatalf("stats = %+v", stats.Data)
	}
	if _, ok := stats.Data.Counts[models.ProjectsTableName]; !ok {
		t.Fatalf("counts = %v", stats.Data.Counts)
	}

	rec = s.do(http.MethodPost, "/api/admin/messages/bulk-delete", `{"ids":["`+inbox.Data[0].ID+`","`+inbox.Data[1].ID+`"]}`, auth...)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deleted":2`) {
		t.Fatalf("bulk delete = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminSettings(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	auth := []requestOption{withCookies(cookies), withHeader("x-csrf-token", token)}

	body := `{"items":[{"key":"hero_name","value":"Aldian","locale":"en"},{"key":"working_status","value":"busy"}]}`
	rec := s.do(http.MethodPut, "/api/admin/settings", body, auth...)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodPut, "/api/admin/settings", `{"items":[{"key":"hero_name","value":"x","locale":"fr"}]}`, auth...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad locale status = %d, want 400", rec.Code)
	}

	var hero models.HeroSettings
	decode(t, s.do(http.MethodGet, "/api/settings/hero", ""), &hero)
	if hero.Name != "Aldian" {
		t.Fatalf("hero = %+v", hero)
	}
	var contact models.ContactSettings
	decode(t, s.do(http.MethodGet, "/api/settings/contact", ""), &contact)
	if contact.WorkingStatus != models.WorkingStatusBusy {
		t.Fatalf("contact = %+v", contact)
	}
}

func TestAdminSettingsListsAllLocales(t *testing.T) {
	s := newTestServer(t, testConfig())
	cookies, token := s.login(t)
	auth := []requestOption{withCookies(cookies), withHeader("x-csrf-token", token)}

	body := `{"items":[{"key":"hero_name","value":"Aldian","locale":"en"},{"key":"hero_name","value":"Aldian ID","locale":"id"}]}`
	if rec := s.do(http.MethodPut, "/api/admin/settings", body, auth...); rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var all struct {
		Data []models.Setting `json:"data"`
	}
	decode(t, s.do(http.MethodGet, "/api/admin/settings", "", auth...), &all)
	if len(all.Data) != 2 {
		t.Fatalf("all locales = %+v, want 2 rows", all.Data)
	}

	var id struct {
		Data []models.Setting `json:"data"`
	}
	decode(t, s.do(http.MethodGet, "/api/admin/settings?locale=id", "", auth...), &id)
	if len(id.Data) != 1 || id.Data[0].Locale != models.LocaleID {
		t.Fatalf("id locale = %+v", id.Data)
	}
}
