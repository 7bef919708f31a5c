package models

import (
	"time"
)

// Kind identifies which source adapter produced an item.
type Kind string

const (
	KindPaper Kind = "paper"
	KindBlog  Kind = "blog"
	KindNews  Kind = "news"
)

// Icon returns the display glyph for items of this kind.
func (k Kind) Icon() string {
	switch k {
	case KindPaper:
		return "🎓"
	case KindBlog:
		return "🏢"
	case KindNews:
		return "🌍"
	}
	return "•"
}

// Item is one normalized unit of content from any source.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Icon    string `json:"icon"`

	Kind      Kind      `json:"kind"`
	Published time.Time `json:"published"`
}

// HasTimestamp reports whether the provider gave a parseable publish time.
func (i Item) HasTimestamp() bool {
	return !i.Published.IsZero()
}

// Selection is the set of sources a user asked to aggregate.
type Selection struct {
	Papers []string `json:"papers"`
	Blogs  []string `json:"blogs"`
	News   []string `json:"news"`
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Papers) == 0 && len(s.Blogs) == 0 && len(s.News) == 0
}
