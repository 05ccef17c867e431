package fixture

import (
	"context"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/places"
	"github.com/aretw0/voyage/pkg/ports"
)

// DefaultShortlistSize caps the number of proposed candidates.
const DefaultShortlistSize = 5

// Discoverer ranks catalog activities by how many of the requested interests they match.
// Activities whose name or tags appear in rejection feedback are left out.
type Discoverer struct {
	catalog *Catalog
	places  *places.Directory
	size    int
}

// NewDiscoverer creates a discoverer.
func NewDiscoverer(c *Catalog, dir *places.Directory) *Discoverer {
	return &Discoverer{catalog: c, places: dir, size: DefaultShortlistSize}
}

// Discover implements ports.Discoverer. An unknown destination yields an empty shortlist.
func (d *Discoverer) Discover(ctx context.Context, q ports.DiscoveryQuery) (domain.Shortlist, error) {
	if err := ctx.Err(); err != nil {
		return domain.Shortlist{}, err
	}
	code, ok := d.places.Code(q.Request.Destination)
	if !ok {
		return domain.Shortlist{}, nil
	}
	dest, ok := d.catalog.Destination(code)
	if !ok {
		return domain.Shortlist{}, nil
	}

	feedback := stems(strings.Join(q.Feedback, " "))
	interests := make([]string, 0, len(q.Request.Interests))
	for _, i := range q.Request.Interests {
		interests = append(interests, strings.ToLower(i))
	}

	type scored struct {
		activity Activity
		score    int
	}
	var pool []scored
	for _, a := range dest.Activities {
		if rejected(a, feedback) {
			continue
		}
		score := 0
		for _, tag := range a.Tags {
			if slices.Contains(interests, strings.ToLower(tag)) {
				score++
			}
		}
		pool = append(pool, scored{activity: a, score: score})
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	var list domain.Shortlist
	for _, s := range pool {
		if len(list.Candidates) == d.size {
			break
		}
		list.Candidates = append(list.Candidates, domain.Candidate{
			Name:        s.activity.Name,
			Description: s.activity.Description,
			Kind:        s.activity.Kind,
			Tags:        slices.Clone(s.activity.Tags),
			Source:      "catalog",
		})
	}
	return list, nil
}

// rejected reports whether feedback names the activity or one of its tags.
// Matching is by whole word stems, so "too many museums" drops activities tagged
// "museum" while "start later" leaves an "art" tag alone.
func rejected(a Activity, feedback []string) bool {
	if len(feedback) == 0 {
		return false
	}
	if name := stems(a.Name); len(name) > 0 && containsRun(feedback, name) {
		return true
	}
	for _, tag := range a.Tags {
		if slices.Contains(feedback, stem(tag)) {
			return true
		}
	}
	return false
}

// stems splits text into lower-case word stems.
func stems(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		words[i] = stem(w)
	}
	return words
}

func stem(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") {
		return word[:len(word)-1]
	}
	return word
}

// containsRun reports whether run appears in words as consecutive elements.
func containsRun(words, run []string) bool {
	for i := 0; i+len(run) <= len(words); i++ {
		if slices.Equal(words[i:i+len(run)], run) {
			return true
		}
	}
	return false
}
