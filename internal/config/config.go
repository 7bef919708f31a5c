package config

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Environment variables holding secrets.
const (
	EnvAPIKey            = "INTEL_HUB_API_KEY"
	EnvGoogleAPIKey      = "GOOGLE_API_KEY"
	EnvSheetsCredentials = "INTEL_HUB_SHEETS_CREDENTIALS"
	EnvDataDir           = "INTEL_HUB_DIR"
)

// Summary providers.
const (
	ProviderNone   = "none"
	ProviderOllama = "ollama"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Bookmark backends.
const (
	BackendLocal  = "local"
	BackendSheets = "sheets"
)

// ErrMissingSecret is returned when a configured feature needs a secret
// that could not be resolved.
var ErrMissingSecret = errors.New("missing secret")

type PaperCategory struct {
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

type Blog struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type AIConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	Stream   bool   `yaml:"stream"`
	// Host overrides the provider endpoint (OLLAMA_HOST style for ollama).
	Host string `yaml:"host,omitempty"`
}

type BookmarksConfig struct {
	Backend         string `yaml:"backend"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file"`
	// FolderID is the Drive folder new spreadsheets are created in.
	FolderID string `yaml:"folder_id,omitempty"`
}

type Config struct {
	WindowDays    int             `yaml:"window_days"`
	PaperLimit    int             `yaml:"paper_limit"`
	BlogLimit     int             `yaml:"blog_limit"`
	NewsLimit     int             `yaml:"news_limit"`
	ContentBudget int             `yaml:"content_budget"`
	HTTPTimeout   string          `yaml:"http_timeout"`
	Papers        []PaperCategory `yaml:"papers"`
	Blogs         []Blog          `yaml:"blogs"`
	News          []string        `yaml:"news"`
	AI            AIConfig        `yaml:"ai"`
	Bookmarks     BookmarksConfig `yaml:"bookmarks"`
}

// DataDir returns the directory holding config, state and credentials.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".intel-hub"), nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path. A missing file yields the embedded
// defaults, which are also written to path for the user to edit.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults are still usable.
			if err := writeDefaults(path); err != nil {
				log.Printf("Warning: could not write default config to %s: %v", path, err)
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.WindowDays < 0 {
		return fmt.Errorf("window_days must not be negative, got %d", cfg.WindowDays)
	}
	for i, p := range cfg.Papers {
		if p.Label == "" || p.Category == "" {
			return fmt.Errorf("papers[%d]: label and category are required", i)
		}
	}
	for i, b := range cfg.Blogs {
		if err := ValidateBlog(b); err != nil {
			return fmt.Errorf("blogs[%d]: %w", i, err)
		}
	}
	switch cfg.AI.Provider {
	case "", ProviderNone, ProviderOllama, ProviderClaude, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown ai provider %q (valid: none, ollama, claude, openai, gemini)", cfg.AI.Provider)
	}
	switch cfg.Bookmarks.Backend {
	case "", BackendLocal, BackendSheets:
	default:
		return fmt.Errorf("unknown bookmarks backend %q (valid: local, sheets)", cfg.Bookmarks.Backend)
	}
	if _, err := time.ParseDuration(cfg.HTTPTimeout); cfg.HTTPTimeout != "" && err != nil {
		return fmt.Errorf("invalid http_timeout %q: %w", cfg.HTTPTimeout, err)
	}
	return nil
}

// ValidateBlog checks that b has a name and an http(s) feed URL.
func ValidateBlog(b Blog) error {
	if b.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(b.Name, "\r\n") {
		return fmt.Errorf("name %q must be a single line", b.Name)
	}
	if err := validateURL(b.URL); err != nil {
		return fmt.Errorf("blog %q: %w", b.Name, err)
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// Timeout returns the HTTP client timeout, 30s when unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Window returns the default recency window in days.
func (c *Config) Window() int {
	if c.WindowDays <= 0 {
		return 7
	}
	return c.WindowDays
}

// Budget returns the summarizer character budget.
func (c *Config) Budget() int {
	if c.ContentBudget <= 0 {
		return 8000
	}
	return c.ContentBudget
}

// PaperCatalog maps category labels to arXiv terms.
func (c *Config) PaperCatalog() map[string]string {
	m := make(map[string]string, len(c.Papers))
	for _, p := range c.Papers {
		m[p.Label] = p.Category
	}
	return m
}

// BlogCatalog maps blog names to feed URLs.
func (c *Config) BlogCatalog() map[string]string {
	m := make(map[string]string, len(c.Blogs))
	for _, b := range c.Blogs {
		m[b.Name] = b.URL
	}
	return m
}

// PaperLabels returns every configured category label in config order.
func (c *Config) PaperLabels() []string {
	out := make([]string, 0, len(c.Papers))
	for _, p := range c.Papers {
		out = append(out, p.Label)
	}
	return out
}

// BlogNames returns every configured blog name in config order.
func (c *Config) BlogNames() []string {
	out := make([]string, 0, len(c.Blogs))
	for _, b := range c.Blogs {
		out = append(out, b.Name)
	}
	return out
}

// MergeBlogs appends blogs not already configured under the same name.
func (c *Config) MergeBlogs(extra []Blog) {
	known := c.BlogCatalog()
	for _, b := range extra {
		if _, ok := known[b.Name]; ok {
			continue
		}
		known[b.Name] = b.URL
		c.Blogs = append(c.Blogs, b)
	}
}

// SummariesEnabled reports whether a summary provider is configured.
func (c *Config) SummariesEnabled() bool {
	return c.AI.Provider != "" && c.AI.Provider != ProviderNone
}

// APIKey resolves the summary provider key from config or environment.
// The gemini provider also accepts GOOGLE_API_KEY.
func (c *Config) APIKey() string {
	if c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	if c.AI.Provider == ProviderGemini {
		return os.Getenv(EnvGoogleAPIKey)
	}
	return ""
}

// SheetsCredentials resolves the service account JSON for the sheets
// backend: the environment variable wins over credentials_file, which
// defaults to credentials.json in dataDir.
func (c *Config) SheetsCredentials(dataDir string) ([]byte, error) {
	if raw := os.Getenv(EnvSheetsCredentials); raw != "" {
		return []byte(raw), nil
	}
	path := c.Bookmarks.CredentialsFile
	if path == "" {
		path = filepath.Join(dataDir, "credentials.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: sheets credentials (set %s or provide %s): %v", ErrMissingSecret, EnvSheetsCredentials, path, err)
	}
	return data, nil
}

// CheckSecrets verifies that every secret the configuration depends on can
// be resolved. It is called once at startup; failure is fatal.
func (c *Config) CheckSecrets(dataDir string) error {
	switch c.AI.Provider {
	case ProviderClaude, ProviderOpenAI, ProviderGemini:
		if c.APIKey() == "" {
			return fmt.Errorf("%w: %s provider needs an API key (set %s or ai.api_key)", ErrMissingSecret, c.AI.Provider, EnvAPIKey)
		}
	}
	if c.Bookmarks.Backend == BackendSheets {
		if _, err := c.SheetsCredentials(dataDir); err != nil {
			return err
		}
	}
	return nil
}

// LoadBlogsFromFile reads extra blogs, one "Name URL" pair per line. Blank
// lines and lines starting with # are skipped; the URL is the last field so
// names may contain spaces.
func LoadBlogsFromFile(filename string) ([]Blog, error) {
	var blogs []Blog

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected \"Name URL\", got %q", lineNum, line)
		}
		feedURL := fields[len(fields)-1]
		if err := validateURL(feedURL); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		blogs = append(blogs, Blog{
			Name: strings.Join(fields[:len(fields)-1], " "),
			URL:  feedURL,
		})
	}

	return blogs, scanner.Err()
}
