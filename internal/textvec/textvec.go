// Package textvec provides a deterministic TF-IDF vectorizer over book
// content documents. There is no randomness anywhere in the pipeline:
// fitting the same corpus twice yields an identical vocabulary and
// identical weights.
package textvec

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultMaxFeatures caps the vocabulary at the most frequent terms.
	DefaultMaxFeatures = 5000

	// MinTokenLength filters out single-character tokens, which carry no
	// useful signal for similarity.
	MinTokenLength = 2
)

// Vectorizer maps text documents to L2-normalized TF-IDF vectors. The
// vocabulary and IDF weights are fixed at fit time. All fields are exported
// so a fitted vectorizer survives a gob round trip.
type Vectorizer struct {
	MaxFeatures int
	Vocabulary  map[string]int // term -> column index
	Terms       []string       // column index -> term
	IDF         []float64      // per-column inverse document frequency
	DocCount    int            // corpus size at fit time
}

// Tokenize lowercases text and splits it into alphanumeric runs, dropping
// stop words and tokens shorter than MinTokenLength. Bigrams are formed
// downstream, after stop-word removal.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < MinTokenLength {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms expands a token stream into unigrams plus adjacent bigrams.
func terms(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	for i, tok := range tokens {
		out = append(out, tok)
		if i+1 < len(tokens) {
			out = append(out, tok+" "+tokens[i+1])
		}
	}
	return out
}

// Fit builds a vectorizer over the corpus. The vocabulary keeps the
// maxFeatures terms with the highest total corpus frequency; ties are broken
// lexicographically so the selection is deterministic. maxFeatures <= 0
// means DefaultMaxFeatures.
func Fit(docs []string, maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	corpusFreq := make(map[string]int) // total occurrences across the corpus
	docFreq := make(map[string]int)    // number of documents containing term

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range terms(Tokenize(doc)) {
			corpusFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	candidates := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		candidates = append(candidates, term)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if corpusFreq[candidates[i]] != corpusFreq[candidates[j]] {
			return corpusFreq[candidates[i]] > corpusFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > maxFeatures {
		candidates = candidates[:maxFeatures]
	}

	// Columns are assigned in sorted term order so the layout does not
	// depend on map iteration.
	sort.Strings(candidates)

	v := &Vectorizer{
		MaxFeatures: maxFeatures,
		Vocabulary:  make(map[string]int, len(candidates)),
		Terms:       candidates,
		IDF:         make([]float64, len(candidates)),
		DocCount:    len(docs),
	}
	for i, term := range candidates {
		v.Vocabulary[term] = i
		// Smoothed IDF: ln((1+n)/(1+df)) + 1. Terms present in every
		// document still get a positive weight.
		v.IDF[i] = math.Log(float64(1+len(docs))/float64(1+docFreq[term])) + 1
	}
	return v
}

// Transform maps one document to a dense L2-normalized TF-IDF vector in the
// fitted vocabulary space. Documents sharing no terms with the vocabulary
// produce an all-zero vector.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.Terms))
	for _, term := range terms(Tokenize(doc)) {
		if col, ok := v.Vocabulary[term]; ok {
			vec[col] += v.IDF[col]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// TransformAll maps a corpus to its matrix of row vectors.
func (v *Vectorizer) TransformAll(docs []string) [][]float64 {
	rows := make([][]float64, len(docs))
	for i, doc := range docs {
		rows[i] = v.Transform(doc)
	}
	return rows
}

// Dimensions returns the vocabulary size.
func (v *Vectorizer) Dimensions() int {
	return len(v.Terms)
}
