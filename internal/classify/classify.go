package classify

import (
	"sort"
	"strings"

	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/types"
)

// Classifier derives post types and vocabulary categories from captions.
// Matching is case-insensitive substring matching, so "exfoliat" covers
// both "exfoliate" and "exfoliating".
type Classifier struct {
	rules    []rule
	scents   []vocabulary
	products []vocabulary
}

// rule binds a post type to the caption markers that select it. Rules are
// checked in order and the first hit wins.
type rule struct {
	label   types.PostType
	markers []string
}

// vocabulary binds a category label to its caption patterns.
type vocabulary struct {
	label    string
	patterns []string
}

// New builds a Classifier from the configured vocabularies.
func New(cfg config.CategoriesConfig) *Classifier {
	return &Classifier{
		rules: []rule{
			{label: types.PostTypeGiveaway, markers: lowerAll(cfg.GiveawayKeywords)},
			{label: types.PostTypePR, markers: lowerAll(cfg.PRKeywords)},
		},
		scents:   toVocabularies(cfg.Scents),
		products: toVocabularies(cfg.Products),
	}
}

// PostType assigns exactly one type per caption: giveaway outranks PR
// recruitment, and anything unmatched is a regular post.
func (c *Classifier) PostType(caption string) types.PostType {
	lc := strings.ToLower(caption)
	for _, r := range c.rules {
		for _, m := range r.markers {
			if m != "" && strings.Contains(lc, m) {
				return r.label
			}
		}
	}
	return types.PostTypeRegular
}

// Scents returns every scent label whose patterns appear in the caption,
// sorted. A caption can mention several scents or none.
func (c *Classifier) Scents(caption string) []string {
	return matchLabels(c.scents, caption)
}

// Products returns every product label whose patterns appear in the caption, sorted.
func (c *Classifier) Products(caption string) []string {
	return matchLabels(c.products, caption)
}

func matchLabels(vocabs []vocabulary, caption string) []string {
	lc := strings.ToLower(caption)
	var labels []string
	for _, v := range vocabs {
		for _, p := range v.patterns {
			if p != "" && strings.Contains(lc, p) {
				labels = append(labels, v.label)
				break
			}
		}
	}
	return labels
}

// toVocabularies flattens the config map into a list ordered by label so
// match output is stable run to run.
func toVocabularies(m map[string][]string) []vocabulary {
	vocabs := make([]vocabulary, 0, len(m))
	for label, patterns := range m {
		vocabs = append(vocabs, vocabulary{label: label, patterns: lowerAll(patterns)})
	}
	sort.Slice(vocabs, func(i, j int) bool { return vocabs[i].label < vocabs[j].label })
	return vocabs
}

func lowerAll(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return out
}
