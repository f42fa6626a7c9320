// Package recommend implements the hybrid recommender: it owns the fitted
// content and collaborative models, persists them as a single versioned blob,
// and blends both signals into a ranked, explained recommendation list.
package recommend

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/collab"
	"github.com/dunn/stacks/internal/content"
	"github.com/dunn/stacks/internal/storage"
)

const (
	// DefaultModelName is the fixed blob key for the hybrid model.
	DefaultModelName = "hybrid_recommender"

	// DefaultN is the recommendation list length when the caller does not
	// specify one.
	DefaultN = 10

	// Default blend weights. Collaborative signal dominates when both
	// anchors are present.
	DefaultContentWeight = 0.3
	DefaultCollabWeight  = 0.7
)

// BlobStore is the persistence boundary: a named key-value slot for opaque
// versioned blobs in whatever durable store the caller provides.
// *storage.DB satisfies it.
type BlobStore interface {
	SaveModelBlob(name string, payload []byte, now time.Time) (int, error)
	LoadModelBlob(name string) (*storage.ModelBlob, error)
}

// Recommender owns the fitted models for its lifetime. Lifecycle is
// caller-controlled: construct, optionally Load, optionally Train, query.
// Instances are not safe for concurrent mutation; training and scoring are
// synchronous, CPU-bound calls.
type Recommender struct {
	store BlobStore
	name  string

	content      *content.Model
	collab       *collab.Model
	books        []catalog.Book
	interactions []collab.Interaction

	version   int
	trainedAt time.Time
}

// New creates a recommender bound to a blob store under DefaultModelName.
// No model is loaded; call Load or Train before querying.
func New(store BlobStore) *Recommender {
	return &Recommender{store: store, name: DefaultModelName}
}

// NewNamed creates a recommender bound to a custom model name.
func NewNamed(store BlobStore, name string) *Recommender {
	return &Recommender{store: store, name: name}
}

// Load replaces the in-memory models with the persisted blob. Returns false
// if no blob exists under the model name; that is not an error, it means
// the model needs training.
func (r *Recommender) Load() (bool, error) {
	blob, err := r.store.LoadModelBlob(r.name)
	if err != nil {
		return false, fmt.Errorf("loading model: %w", err)
	}
	if blob == nil {
		return false, nil
	}

	bundle, err := decodeBundle(blob.Payload)
	if err != nil {
		return false, fmt.Errorf("decoding model: %w", err)
	}

	r.content = bundle.Content
	r.collab = bundle.Collab
	r.books = bundle.Books
	r.interactions = bundle.Interactions
	r.version = blob.Version
	r.trainedAt = blob.TrainedAt
	return true, nil
}

// Train fits both models from full snapshots and persists the result.
// A failed fit or save leaves the previously installed model untouched.
// Returns the new persisted version.
func (r *Recommender) Train(books []catalog.Book, interactions []collab.Interaction) (int, error) {
	if len(books) == 0 {
		return 0, fmt.Errorf("%w: empty book snapshot", ErrInvalidRequest)
	}

	// Fit into fresh values; install only after the save succeeds.
	contentModel := content.Fit(books)
	collabModel := collab.Fit(interactions)

	payload, err := encodeBundle(&modelBundle{
		FormatVersion: blobFormatVersion,
		Content:       contentModel,
		Collab:        collabModel,
		Books:         books,
		Interactions:  interactions,
	})
	if err != nil {
		return 0, fmt.Errorf("encoding model: %w", err)
	}

	now := time.Now().UTC()
	version, err := r.store.SaveModelBlob(r.name, payload, now)
	if err != nil {
		return 0, fmt.Errorf("saving model: %w", err)
	}

	r.content = contentModel
	r.collab = collabModel
	r.books = books
	r.interactions = interactions
	r.version = version
	r.trainedAt = now
	return version, nil
}

// Candidate is one ranked recommendation.
type Candidate struct {
	BookID int     `json:"book_id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Request describes one recommendation query. Nil anchors are absent; zero
// N and weights take the package defaults.
type Request struct {
	UserID        *int
	BookID        *int
	N             int
	ContentWeight float64
	CollabWeight  float64
}

func (req *Request) applyDefaults() {
	if req.N <= 0 {
		req.N = DefaultN
	}
	if req.ContentWeight == 0 && req.CollabWeight == 0 {
		req.ContentWeight = DefaultContentWeight
		req.CollabWeight = DefaultCollabWeight
	}
}

// Recommend blends content and collaborative signals into a ranked list of
// at most req.N candidates.
//
// A book anchor contributes contentWeight x similarity for its top-N content
// neighbors; a user anchor contributes collabWeight x predicted score for
// the top-N predicted books in the fitted catalog. Contributions for the
// same book add. Final order is combined score descending; ties keep the
// order candidates were first encountered during the pass (content source
// first).
//
// A source whose model is missing, or whose anchor is unknown to it,
// contributes nothing rather than failing the request. The call fails with
// ErrModelNotTrained only when every anchored source was missing its model
// and no candidates were produced.
func (r *Recommender) Recommend(req Request) ([]Candidate, error) {
	if req.UserID == nil && req.BookID == nil {
		return nil, ErrInvalidRequest
	}
	req.applyDefaults()

	scores := make(map[int]float64)
	var order []int
	add := func(bookID int, score float64) {
		if _, ok := scores[bookID]; !ok {
			order = append(order, bookID)
		}
		scores[bookID] += score
	}

	anchoredMissing := 0
	if req.BookID != nil {
		if r.content == nil {
			anchoredMissing++
		} else if neighbors, err := r.content.Neighbors(*req.BookID, req.N); err == nil {
			for _, n := range neighbors {
				add(n.BookID, req.ContentWeight*n.Similarity)
			}
		}
	}
	if req.UserID != nil {
		if r.collab == nil {
			anchoredMissing++
		} else {
			for _, c := range r.topPredicted(*req.UserID, req.N) {
				add(c.BookID, req.CollabWeight*c.Score)
			}
		}
	}

	if len(order) == 0 && anchoredMissing > 0 {
		return nil, ErrModelNotTrained
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > req.N {
		order = order[:req.N]
	}

	reason := recommendReason(req.UserID != nil, req.BookID != nil)
	candidates := make([]Candidate, len(order))
	for i, id := range order {
		candidates[i] = Candidate{BookID: id, Score: scores[id], Reason: reason}
	}
	return candidates, nil
}

// topPredicted scores every book in the fitted catalog for a user and
// returns the top n. Ties keep catalog order (stable sort).
func (r *Recommender) topPredicted(userID, n int) []Candidate {
	predictions := make([]Candidate, 0, len(r.books))
	for _, b := range r.books {
		predictions = append(predictions, Candidate{
			BookID: b.ID,
			Score:  r.collab.Predict(userID, b.ID),
		})
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})
	if len(predictions) > n {
		predictions = predictions[:n]
	}
	return predictions
}

// recommendReason picks the explanation template from which anchors were
// used. The selection rule is the contract; the wording is presentation.
func recommendReason(userAnchor, bookAnchor bool) string {
	switch {
	case userAnchor && bookAnchor:
		return "Recommended based on your interest in similar books and your reading history."
	case userAnchor:
		return "Recommended based on your reading history and preferences."
	default:
		return "Recommended based on similarity to books you've viewed."
	}
}

// ContentNeighbors exposes the content model's neighbor ranking. Returns
// ErrModelNotTrained before a fit or load, and content.ErrBookNotIndexed
// for a book absent at fit time.
func (r *Recommender) ContentNeighbors(bookID, k int) ([]content.Neighbor, error) {
	if r.content == nil {
		return nil, ErrModelNotTrained
	}
	return r.content.Neighbors(bookID, k)
}

// Predict exposes the collaborative predictor. Returns ErrModelNotTrained
// before a fit or load; cold-start pairs fall back to the global mean, never
// an error.
func (r *Recommender) Predict(userID, bookID int) (float64, error) {
	if r.collab == nil {
		return 0, ErrModelNotTrained
	}
	return r.collab.Predict(userID, bookID), nil
}

// Info summarizes the installed model.
type Info struct {
	Name         string    `json:"name"`
	Version      int       `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	Books        int       `json:"books"`
	Users        int       `json:"users"`
	Interactions int       `json:"interactions"`
	Vocabulary   int       `json:"vocabulary"`
}

// Info returns a summary of the installed model, or ErrModelNotTrained if
// none is installed.
func (r *Recommender) Info() (Info, error) {
	if r.content == nil || r.collab == nil {
		return Info{}, ErrModelNotTrained
	}
	return Info{
		Name:         r.name,
		Version:      r.version,
		TrainedAt:    r.trainedAt,
		Books:        len(r.books),
		Users:        len(r.collab.UserIndex),
		Interactions: len(r.interactions),
		Vocabulary:   r.content.Vectorizer.Dimensions(),
	}, nil
}

// Trained reports whether both models are installed.
func (r *Recommender) Trained() bool {
	return r.content != nil && r.collab != nil
}

// IsNotFound reports whether an error means a queried entity was absent
// from the fitted model.
func IsNotFound(err error) bool {
	return errors.Is(err, content.ErrBookNotIndexed)
}
