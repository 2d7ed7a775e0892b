package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

var ErrUnknownItem = errors.New("unknown item")

// maxSuggestDistance bounds how far a suggestion may be from the query.
const maxSuggestDistance = 3

// normalize folds case and drops spaces, underscores and punctuation, so
// "Rabbit's Foot", "rabbits_foot" and "RabbitsFoot" are the same name.
func normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Lookup resolves an object name to its id. On a miss the error names the
// closest known item when one is near enough.
func (c *Catalog) Lookup(name string) (int, error) {
	key := normalize(name)
	if id, ok := c.byName[key]; ok {
		return id, nil
	}

	best, bestDist := "", maxSuggestDistance+1
	for _, o := range c.Objects {
		if o.Name == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(key, normalize(o.Name)); d < bestDist {
			best, bestDist = o.Name, d
		}
	}
	if best != "" {
		return 0, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownItem, name, best)
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownItem, name)
}

// Resolve accepts either a numeric id ("433", "(O)433") or an item name.
func (c *Catalog) Resolve(token string) (int, error) {
	t := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "(O)"))
	if id, err := strconv.Atoi(t); err == nil {
		return id, nil
	}
	return c.Lookup(t)
}
