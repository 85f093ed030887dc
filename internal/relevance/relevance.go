// Package relevance ranks saved items against keyword phrases with TF-IDF
// scoring.
//
// The inverse document frequency is Laplace-smoothed: idf = log10(N / (1+df))
// rather than the textbook N/df, which keeps the denominator nonzero for
// terms that match no stored item. One consequence worth knowing: a term
// matching df documents scores zero when 1+df == N and negative when
// 1+df > N, and [Rank] drops those items along with everything else that is
// not a normal positive score.
package relevance

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/desertthunder/recall/internal/models"
)

// minNormal is the smallest positive normal float64. Scores below it are
// zero, subnormal, or negative and are treated as irrelevant.
const minNormal = 0x1p-1022

// Scored pairs a saved item with its relevance score.
type Scored struct {
	Item  models.SavedItem
	Score float64
}

// ItemSource is the slice of the storage layer the index reads from.
type ItemSource interface {
	GetByUser(ctx context.Context, userID int64) ([]models.SavedItem, error)
}

// Index ranks a user's stored items against keyword phrases.
type Index struct {
	items ItemSource
}

func NewIndex(items ItemSource) *Index {
	return &Index{items: items}
}

// Search loads the user's full item set and ranks it against phrase.
func (i *Index) Search(ctx context.Context, userID int64, phrase string) ([]Scored, error) {
	corpus, err := i.items.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Rank(phrase, corpus), nil
}

// Rank scores every item in the corpus against the whitespace-split,
// case-folded terms of phrase and returns the relevant items ordered by
// descending score. Ties keep the corpus order. Items whose score is not a
// normal positive number are dropped, so an empty phrase or a corpus with no
// matches yields an empty result.
func Rank(phrase string, corpus []models.SavedItem) []Scored {
	terms := strings.Fields(strings.ToLower(phrase))
	if len(terms) == 0 || len(corpus) == 0 {
		return nil
	}

	frequencies := make([]map[string]int, len(corpus))
	for idx := range corpus {
		frequencies[idx] = termFrequencies(terms, &corpus[idx])
	}

	documentFrequency := make(map[string]int, len(terms))
	for _, counts := range frequencies {
		for term, count := range counts {
			if count > 0 {
				documentFrequency[term]++
			}
		}
	}

	total := float64(len(corpus))
	var ranked []Scored
	for idx := range corpus {
		var score float64
		for _, term := range terms {
			tf := frequencies[idx][term]
			if tf == 0 {
				continue
			}
			score += float64(tf) * math.Log10(total/float64(1+documentFrequency[term]))
		}
		if isNormalPositive(score) {
			ranked = append(ranked, Scored{Item: corpus[idx], Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// termFrequencies counts query-term occurrences in one item: exact matches
// against the whitespace tokens of the title and excerpt, plus substring
// occurrences in the URL, which is not whitespace-delimited.
func termFrequencies(terms []string, item *models.SavedItem) map[string]int {
	want := make(map[string]bool, len(terms))
	for _, term := range terms {
		want[term] = true
	}

	counts := make(map[string]int, len(terms))
	for _, token := range strings.Fields(strings.ToLower(item.Title + " " + item.ExcerptText())) {
		if want[token] {
			counts[token]++
		}
	}

	if loweredURL := strings.ToLower(item.URLText()); loweredURL != "" {
		for term := range want {
			counts[term] += strings.Count(loweredURL, term)
		}
	}

	return counts
}

func isNormalPositive(score float64) bool {
	return score >= minNormal && !math.IsInf(score, 0)
}
