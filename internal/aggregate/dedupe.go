package aggregate

import "github.com/thedittmer/intel-hub/internal/models"

// Dedupe keeps the first occurrence of every item ID and preserves the
// relative order of what remains. IDs are compared exactly; no URL
// normalization is done.
func Dedupe(items []models.Item) []models.Item {
	seen := make(map[string]bool, len(items))
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
