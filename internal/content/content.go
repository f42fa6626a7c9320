// Package content implements the content-based half of the recommender: a
// TF-IDF vector space over book text and a full pairwise cosine-similarity
// matrix indexed by fit-time book order.
package content

import (
	"errors"
	"sort"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/textvec"
)

// ErrBookNotIndexed is returned when a queried book was not present at fit
// time. There is no fallback: similarity against an unknown book is
// undefined.
var ErrBookNotIndexed = errors.New("book not in content model")

// Model is a fitted content model. All fields are exported so a fitted model
// survives a gob round trip.
type Model struct {
	Vectorizer *textvec.Vectorizer
	BookIDs    []int       // fit-time book order
	Rows       map[int]int // book ID -> row index
	Similarity [][]float64 // square, symmetric, diagonal 1.0
}

// Neighbor is one entry in a similarity ranking.
type Neighbor struct {
	BookID     int     `json:"book_id"`
	Similarity float64 `json:"similarity"`
}

// Fit builds a content model over the given books. The full similarity
// matrix is O(n^2) in the number of books, which is acceptable at catalog
// scale (hundreds to low thousands); this is a documented scaling ceiling.
func Fit(books []catalog.Book) *Model {
	docs := make([]string, len(books))
	ids := make([]int, len(books))
	rows := make(map[int]int, len(books))
	for i, b := range books {
		docs[i] = b.ContentDocument()
		ids[i] = b.ID
		rows[b.ID] = i
	}

	v := textvec.Fit(docs, textvec.DefaultMaxFeatures)
	vectors := v.TransformAll(docs)

	return &Model{
		Vectorizer: v,
		BookIDs:    ids,
		Rows:       rows,
		Similarity: similarityMatrix(vectors),
	}
}

// similarityMatrix computes pairwise cosine similarity. Rows are already
// L2-normalized, so cosine reduces to a dot product. The diagonal is forced
// to 1.0 so the self-similarity invariant holds even for all-zero documents.
func similarityMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1.0
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var dot float64
			for k := range vectors[i] {
				dot += vectors[i][k] * vectors[j][k]
			}
			sim[i][j] = dot
			sim[j][i] = dot
		}
	}
	return sim
}

// Neighbors returns the k books most similar to the given book, excluding
// the book itself, sorted by similarity descending. Ties keep fit-time book
// order (stable sort). Returns ErrBookNotIndexed if the book was not present
// at fit time.
func (m *Model) Neighbors(bookID, k int) ([]Neighbor, error) {
	row, ok := m.Rows[bookID]
	if !ok {
		return nil, ErrBookNotIndexed
	}

	sims := m.Similarity[row]
	order := make([]int, 0, len(m.BookIDs)-1)
	for i := range m.BookIDs {
		if i == row {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})

	if k > 0 && len(order) > k {
		order = order[:k]
	}
	neighbors := make([]Neighbor, len(order))
	for i, idx := range order {
		neighbors[i] = Neighbor{BookID: m.BookIDs[idx], Similarity: sims[idx]}
	}
	return neighbors, nil
}

// HasBook reports whether a book was present at fit time.
func (m *Model) HasBook(bookID int) bool {
	_, ok := m.Rows[bookID]
	return ok
}

// Size returns the number of books in the fitted model.
func (m *Model) Size() int {
	return len(m.BookIDs)
}
