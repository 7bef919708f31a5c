// Package session holds the state one reader session works against: the
// last refreshed feed, the summary cache and the set of saved item ids.
//
// State is a value. Every operation returns a new State and leaves the
// receiver untouched, so callers thread it explicitly.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thedittmer/intel-hub/internal/models"
)

type State struct {
	Feed      []models.Item
	Summaries map[string]string
	Saved     map[string]bool
}

// New returns an empty State.
func New() State {
	return State{Summaries: map[string]string{}, Saved: map[string]bool{}}
}

// WithFeed replaces the feed wholesale.
func (s State) WithFeed(items []models.Item) State {
	s.Feed = append([]models.Item(nil), items...)
	return s
}

// WithSummary records the summary for id.
func (s State) WithSummary(id, summary string) State {
	out := make(map[string]string, len(s.Summaries)+1)
	for k, v := range s.Summaries {
		out[k] = v
	}
	out[id] = summary
	s.Summaries = out
	return s
}

// WithSummaries merges cached summaries into the state.
func (s State) WithSummaries(summaries map[string]string) State {
	for id, text := range summaries {
		s = s.WithSummary(id, text)
	}
	return s
}

// WithSaved replaces the saved set.
func (s State) WithSaved(saved map[string]bool) State {
	s.Saved = copySet(saved)
	return s
}

func (s State) MarkSaved(id string) State {
	saved := copySet(s.Saved)
	saved[id] = true
	s.Saved = saved
	return s
}

func (s State) MarkDeleted(id string) State {
	saved := copySet(s.Saved)
	delete(saved, id)
	s.Saved = saved
	return s
}

func (s State) Summary(id string) (string, bool) {
	text, ok := s.Summaries[id]
	return text, ok
}

func (s State) IsSaved(id string) bool {
	return s.Saved[id]
}

// Lookup finds a feed item by its 1-based position or by exact id.
func (s State) Lookup(ref string) (models.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Item{}, fmt.Errorf("empty item reference")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.Feed) {
			return models.Item{}, fmt.Errorf("item %d out of range (feed has %d items)", n, len(s.Feed))
		}
		return s.Feed[n-1], nil
	}

	for _, item := range s.Feed {
		if item.ID == ref {
			return item, nil
		}
	}
	return models.Item{}, fmt.Errorf("no item with id %q in the current feed", ref)
}

func copySet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in)+1)
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}
