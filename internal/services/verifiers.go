package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alfredoptarigan/candidate-scorer/internal/logger"
)

const maxPageBytes = 2 << 20

// profileFetcher is the HTTP client shared by the verifiers.
type profileFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	log       *zap.Logger
}

type FetcherConfig struct {
	Timeout       time.Duration
	UserAgent     string
	RatePerSecond float64
	Burst         int
}

func newProfileFetcher(cfg FetcherConfig, log *zap.Logger) *profileFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &profileFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		log:       logger.OrNop(log),
	}
}

func (f *profileFetcher) get(ctx context.Context, target string, header http.Header) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	f.log.Debug("profile page fetched", zap.String("url", target), zap.Int("bytes", len(body)))
	return body, nil
}

func (f *profileFetcher) document(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := f.get(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

type githubVerifier struct {
	fetcher *profileFetcher
	apiURL  string
	token   string
}

// NewGitHubVerifier reads public profile data from the GitHub REST API.
func NewGitHubVerifier(cfg FetcherConfig, apiURL, token string, log *zap.Logger) ProfileVerifier {
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	return &githubVerifier{
		fetcher: newProfileFetcher(cfg, log),
		apiURL:  strings.TrimRight(apiURL, "/"),
		token:   token,
	}
}

type githubUser struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
}

type githubRepo struct {
	Name        string `json:"name"`
	HTMLURL     string `json:"html_url"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Fork        bool   `json:"fork"`
}

// Verify implements ProfileVerifier.
func (g *githubVerifier) Verify(ctx context.Context, profileURL string) (map[string]any, error) {
	username, err := githubUsername(profileURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{"Accept": []string{"application/vnd.github+json"}}
	if g.token != "" {
		header.Set("Authorization", "Bearer "+g.token)
	}

	var user githubUser
	if err := g.getJSON(ctx, fmt.Sprintf("%s/users/%s", g.apiURL, url.PathEscape(username)), header, &user); err != nil {
		return nil, err
	}

	var repos []githubRepo
	reposURL := fmt.Sprintf("%s/users/%s/repos?per_page=10&sort=updated", g.apiURL, url.PathEscape(username))
	if err := g.getJSON(ctx, reposURL, header, &repos); err != nil {
		g.fetcher.log.Warn("failed to list github repositories", zap.String("user", username), zap.Error(err))
		repos = nil
	}

	repoList := make([]map[string]any, 0, len(repos))
	for _, r := range repos {
		repoList = append(repoList, map[string]any{
			"name":        r.Name,
			"url":         r.HTMLURL,
			"description": r.Description,
			"language":    r.Language,
			"stars":       r.Stars,
		})
	}

	return map[string]any{
		"username": username,
		"profile": map[string]any{
			"name":         user.Name,
			"bio":          user.Bio,
			"company":      user.Company,
			"location":     user.Location,
			"public_repos": user.PublicRepos,
			"followers":    user.Followers,
			"following":    user.Following,
		},
		"repositories":     repoList,
		"activity_summary": githubActivitySummary(user, repos),
	}, nil
}

func (g *githubVerifier) getJSON(ctx context.Context, target string, header http.Header, out any) error {
	body, err := g.fetcher.get(ctx, target, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode github response: %w", err)
	}
	return nil
}

func githubUsername(profileURL string) (string, error) {
	parsed, err := url.Parse(profileURL)
	if err != nil {
		return "", fmt.Errorf("invalid github url: %w", err)
	}
	segment := strings.Split(strings.Trim(parsed.Path, "/"), "/")[0]
	if segment == "" {
		return "", fmt.Errorf("no username in github url %q", profileURL)
	}
	return segment, nil
}

var projectKeywords = []string{"web", "api", "app", "machine learning", "ml", "ai", "data", "mobile"}

func githubActivitySummary(user githubUser, repos []githubRepo) string {
	var parts []string
	if user.PublicRepos > 0 {
		parts = append(parts, fmt.Sprintf("Has %d public repositories", user.PublicRepos))
	}
	if user.Followers > 10 {
		parts = append(parts, fmt.Sprintf("Has %d followers", user.Followers))
	}

	languages := map[string]int{}
	for _, r := range repos {
		if r.Language != "" {
			languages[r.Language]++
		}
	}
	if len(languages) > 0 {
		parts = append(parts, "Primary languages: "+strings.Join(topKeys(languages, 3), ", "))
	}

	found := map[string]int{}
	for _, r := range repos {
		text := strings.ToLower(r.Name + " " + r.Description)
		for _, kw := range projectKeywords {
			if strings.Contains(text, kw) {
				found[kw]++
			}
		}
	}
	if len(found) > 0 {
		parts = append(parts, "Project types: "+strings.Join(topKeys(found, 3), ", "))
	}

	if len(parts) == 0 {
		return "Limited GitHub activity found"
	}
	return strings.Join(parts, ". ")
}

// topKeys orders by count then name.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

type linkedinVerifier struct {
	fetcher *profileFetcher
}

// NewLinkedInVerifier only checks that the profile page is reachable.
// LinkedIn blocks deeper scraping.
func NewLinkedInVerifier(cfg FetcherConfig, log *zap.Logger) ProfileVerifier {
	return &linkedinVerifier{fetcher: newProfileFetcher(cfg, log)}
}

// Verify implements ProfileVerifier.
func (l *linkedinVerifier) Verify(ctx context.Context, profileURL string) (map[string]any, error) {
	doc, err := l.fetcher.document(ctx, profileURL)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"accessible": true,
		"title":      strings.TrimSpace(doc.Find("title").First().Text()),
		"summary":    "LinkedIn profile accessible but detailed scraping limited due to platform restrictions",
	}, nil
}

type portfolioVerifier struct {
	fetcher *profileFetcher
}

func NewPortfolioVerifier(cfg FetcherConfig, log *zap.Logger) ProfileVerifier {
	return &portfolioVerifier{fetcher: newProfileFetcher(cfg, log)}
}

var (
	portfolioTechnologies = []string{
		"react", "angular", "vue", "javascript", "typescript", "python", "java",
		"node.js", "django", "flask", "spring", "mongodb", "postgresql", "mysql",
		"aws", "azure", "docker", "kubernetes", "git", "html", "css", "sass", "golang",
	}
	portfolioSections = []string{
		"experience", "skills", "projects", "portfolio", "about",
		"contact", "resume", "work", "education", "achievements",
	}
)

// Verify implements ProfileVerifier.
func (p *portfolioVerifier) Verify(ctx context.Context, profileURL string) (map[string]any, error) {
	doc, err := p.fetcher.document(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript").Remove()
	text := strings.ToLower(doc.Find("body").Text())

	technologies := []string{}
	for _, tech := range portfolioTechnologies {
		if strings.Contains(text, tech) {
			technologies = append(technologies, tech)
		}
	}

	var sections []string
	for _, s := range portfolioSections {
		if strings.Contains(text, s) {
			sections = append(sections, s)
		}
	}
	summary := "Basic website with limited professional content"
	if len(sections) > 0 {
		if len(sections) > 5 {
			sections = sections[:5]
		}
		summary = "Professional portfolio with sections: " + strings.Join(sections, ", ")
	}

	return map[string]any{
		"accessible":      true,
		"title":           title,
		"technologies":    technologies,
		"content_summary": summary,
	}, nil
}
