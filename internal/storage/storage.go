package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/thedittmer/intel-hub/internal/config"
)

// Storage is the on-disk data directory: config, extra blogs, the created
// spreadsheet id and the local state database all live here.
type Storage struct {
	dataDir string
}

// NewStorage opens dataDir, creating it when needed.
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the data directory path.
func (s *Storage) Dir() string { return s.dataDir }

func (s *Storage) ConfigPath() string { return filepath.Join(s.dataDir, "config.yaml") }
func (s *Storage) StatePath() string  { return filepath.Join(s.dataDir, "state.db") }
func (s *Storage) BlogsPath() string  { return filepath.Join(s.dataDir, "blogs.txt") }

// writeFileAtomic writes to a temporary file first and renames it over
// path so readers never see a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("error writing temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SaveBlogs writes extra blogs to blogs.txt.
func (s *Storage) SaveBlogs(blogs []config.Blog) error {
	var b strings.Builder
	b.WriteString("# Extra blog feeds (one per line: Name URL)\n")
	b.WriteString("# Lines starting with # are comments\n")
	b.WriteString("# Example: Hugging Face https://huggingface.co/blog/feed.xml\n\n")
	for _, blog := range blogs {
		b.WriteString(blog.Name + " " + blog.URL + "\n")
	}

	if err := writeFileAtomic(s.BlogsPath(), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("error saving blogs: %w", err)
	}
	return nil
}

// LoadBlogs reads blogs.txt. A missing file means no extra blogs.
func (s *Storage) LoadBlogs() ([]config.Blog, error) {
	path := s.BlogsPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	blogs, err := config.LoadBlogsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading blogs file: %w", err)
	}
	log.Printf("Loaded %d extra blogs from: %s", len(blogs), path)
	return blogs, nil
}

// SaveSpreadsheetID remembers the spreadsheet created by init-sheet.
func (s *Storage) SaveSpreadsheetID(id string) error {
	path := filepath.Join(s.dataDir, "spreadsheet.json")
	data := map[string]string{"id": id}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling spreadsheet ID: %w", err)
	}
	if err := writeFileAtomic(path, jsonData, 0o644); err != nil {
		return fmt.Errorf("error saving spreadsheet ID: %w", err)
	}
	return nil
}

// LoadSpreadsheetID returns the remembered spreadsheet id, or "" if none
// was saved.
func (s *Storage) LoadSpreadsheetID() (string, error) {
	path := filepath.Join(s.dataDir, "spreadsheet.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("error reading spreadsheet ID: %w", err)
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", fmt.Errorf("error parsing spreadsheet ID: %w", err)
	}
	return stored["id"], nil
}
