package recommend

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/collab"
	"github.com/dunn/stacks/internal/content"
	"github.com/dunn/stacks/internal/storage"
)

func testStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "stacks.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testBooks() []catalog.Book {
	return []catalog.Book{
		{ID: 1, Title: "The Dragon Keep", Author: "Ana Reyes",
			Description: "A dragon guards a mountain keep.", Genres: []string{"fantasy"}},
		{ID: 2, Title: "Dragon Mountain", Author: "Ana Reyes",
			Description: "A mountain dragon and its keep.", Genres: []string{"fantasy"}},
		{ID: 3, Title: "Orbital Decay", Author: "Chen Wu",
			Description: "A station crew fights orbital decay.", Genres: []string{"science fiction"}},
		{ID: 4, Title: "Quiet Harvest", Author: "Mair Lloyd",
			Description: "A farming village through the seasons.", Genres: []string{"literary"}},
	}
}

func testInteractions() []collab.Interaction {
	return []collab.Interaction{
		{UserID: 10, BookID: 1, Score: 0.9},
		{UserID: 10, BookID: 2, Score: 0.8},
		{UserID: 20, BookID: 1, Score: 0.7},
		{UserID: 20, BookID: 3, Score: 0.2},
	}
}

func intPtr(v int) *int { return &v }

func TestRecommendNoAnchors(t *testing.T) {
	r := New(testStore(t))
	_, err := r.Recommend(Request{})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestRecommendUntrained(t *testing.T) {
	r := New(testStore(t))
	_, err := r.Recommend(Request{UserID: intPtr(10), BookID: intPtr(1)})
	if !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("err = %v, want ErrModelNotTrained", err)
	}
}

func TestTrainEmptySnapshot(t *testing.T) {
	r := New(testStore(t))
	_, err := r.Train(nil, testInteractions())
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
	if r.Trained() {
		t.Error("failed train must not install a model")
	}
}

func TestTrainVersionsIncrement(t *testing.T) {
	r := New(testStore(t))

	for want := 1; want <= 2; want++ {
		got, err := r.Train(testBooks(), testInteractions())
		if err != nil {
			t.Fatalf("Train #%d: %v", want, err)
		}
		if got != want {
			t.Errorf("train #%d returned version %d", want, got)
		}
	}
	info, err := r.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Version != 2 {
		t.Errorf("info version = %d, want 2", info.Version)
	}
}

func TestRecommendUserAnchor(t *testing.T) {
	r := New(testStore(t))
	if _, err := r.Train(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	got, err := r.Recommend(Request{UserID: intPtr(10), N: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("got %d candidates, want 1..3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("candidates out of order at %d: %v then %v", i, got[i-1].Score, got[i].Score)
		}
	}
	want := "Recommended based on your reading history and preferences."
	if got[0].Reason != want {
		t.Errorf("reason = %q, want %q", got[0].Reason, want)
	}
}

func TestRecommendBlendsSources(t *testing.T) {
	books := testBooks()
	contentModel := content.Fit(books)

	// Hand-built collaborative model with exact predictions:
	// user 7 scores book 2 at 0.8 and book 3 at 0.6; books 1 and 4 are
	// unseen and fall back to the zero global mean.
	collabModel := &collab.Model{
		Factors:     1,
		UserIndex:   map[int]int{7: 0},
		BookIndex:   map[int]int{2: 0, 3: 1},
		UserFactors: [][]float64{{1}},
		BookFactors: [][]float64{{0.8}, {0.6}},
		UserBias:    []float64{0},
		BookBias:    []float64{0, 0},
	}

	r := &Recommender{
		store:   testStore(t),
		name:    DefaultModelName,
		content: contentModel,
		collab:  collabModel,
		books:   books,
	}

	got, err := r.Recommend(Request{UserID: intPtr(7), BookID: intPtr(1), N: 4})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no candidates")
	}

	if got[0].BookID != 2 {
		t.Fatalf("top candidate = book %d, want book 2 (both signals agree)", got[0].BookID)
	}

	neighbors, err := contentModel.Neighbors(1, 4)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	var simTo2 float64
	for _, n := range neighbors {
		if n.BookID == 2 {
			simTo2 = n.Similarity
		}
	}
	wantScore := DefaultContentWeight*simTo2 + DefaultCollabWeight*0.8
	if math.Abs(got[0].Score-wantScore) > 1e-9 {
		t.Errorf("blended score = %v, want %v", got[0].Score, wantScore)
	}

	wantReason := "Recommended based on your interest in similar books and your reading history."
	if got[0].Reason != wantReason {
		t.Errorf("reason = %q, want %q", got[0].Reason, wantReason)
	}
}

func TestRecommendCustomWeights(t *testing.T) {
	books := testBooks()
	contentModel := content.Fit(books)
	collabModel := &collab.Model{
		Factors:     1,
		UserIndex:   map[int]int{7: 0},
		BookIndex:   map[int]int{2: 0},
		UserFactors: [][]float64{{1}},
		BookFactors: [][]float64{{0.8}},
		UserBias:    []float64{0},
		BookBias:    []float64{0},
	}
	r := &Recommender{store: testStore(t), name: DefaultModelName,
		content: contentModel, collab: collabModel, books: books}

	// All weight on content: the collaborative prediction for book 2 must
	// not move the score.
	got, err := r.Recommend(Request{UserID: intPtr(7), BookID: intPtr(1), N: 4,
		ContentWeight: 1.0, CollabWeight: 0.0})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	neighbors, err := contentModel.Neighbors(1, 4)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	var simTo2 float64
	for _, n := range neighbors {
		if n.BookID == 2 {
			simTo2 = n.Similarity
		}
	}
	for _, c := range got {
		if c.BookID == 2 && math.Abs(c.Score-simTo2) > 1e-9 {
			t.Errorf("book 2 score = %v, want pure similarity %v", c.Score, simTo2)
		}
	}
}

func TestRecommendDegradesWhenOneModelMissing(t *testing.T) {
	books := testBooks()
	contentModel := content.Fit(books)
	r := &Recommender{store: testStore(t), name: DefaultModelName,
		content: contentModel, books: books}

	// Collaborative model missing, but the content anchor still produces
	// candidates; the request must not fail.
	got, err := r.Recommend(Request{UserID: intPtr(7), BookID: intPtr(1), N: 4})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected content-only candidates")
	}
}

func TestRecommendLimit(t *testing.T) {
	r := New(testStore(t))
	if _, err := r.Train(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	got, err := r.Recommend(Request{UserID: intPtr(10), N: 2})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) > 2 {
		t.Errorf("got %d candidates, want at most 2", len(got))
	}
}

func TestLoadAbsent(t *testing.T) {
	r := New(testStore(t))
	ok, err := r.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("Load reported true with no persisted model")
	}
	if r.Trained() {
		t.Error("recommender trained after empty load")
	}
}

func TestTrainLoadRoundTrip(t *testing.T) {
	db := testStore(t)
	trained := New(db)
	if _, err := trained.Train(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	loaded := New(db)
	ok, err := loaded.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load reported no persisted model after Train")
	}

	// Predictions and neighbor rankings must survive the round trip.
	for _, in := range testInteractions() {
		a, err := trained.Predict(in.UserID, in.BookID)
		if err != nil {
			t.Fatalf("Predict (trained): %v", err)
		}
		b, err := loaded.Predict(in.UserID, in.BookID)
		if err != nil {
			t.Fatalf("Predict (loaded): %v", err)
		}
		if math.Abs(a-b) > 1e-6 {
			t.Errorf("Predict(%d, %d): trained %v, loaded %v", in.UserID, in.BookID, a, b)
		}
	}

	na, err := trained.ContentNeighbors(1, 3)
	if err != nil {
		t.Fatalf("ContentNeighbors (trained): %v", err)
	}
	nb, err := loaded.ContentNeighbors(1, 3)
	if err != nil {
		t.Fatalf("ContentNeighbors (loaded): %v", err)
	}
	if len(na) != len(nb) {
		t.Fatalf("neighbor counts differ: %d vs %d", len(na), len(nb))
	}
	for i := range na {
		if na[i].BookID != nb[i].BookID || math.Abs(na[i].Similarity-nb[i].Similarity) > 1e-6 {
			t.Errorf("neighbor %d: trained %+v, loaded %+v", i, na[i], nb[i])
		}
	}

	ia, _ := trained.Info()
	ib, err := loaded.Info()
	if err != nil {
		t.Fatalf("Info (loaded): %v", err)
	}
	if ib.Version != ia.Version || ib.Books != ia.Books || ib.Vocabulary != ia.Vocabulary {
		t.Errorf("info mismatch: trained %+v, loaded %+v", ia, ib)
	}
}

func TestDecodeBundleRejectsUnknownFormat(t *testing.T) {
	payload, err := encodeBundle(&modelBundle{FormatVersion: blobFormatVersion + 1})
	if err != nil {
		t.Fatalf("encodeBundle: %v", err)
	}
	if _, err := decodeBundle(payload); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestPredictUntrained(t *testing.T) {
	r := New(testStore(t))
	if _, err := r.Predict(10, 1); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("err = %v, want ErrModelNotTrained", err)
	}
	if _, err := r.ContentNeighbors(1, 3); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("err = %v, want ErrModelNotTrained", err)
	}
	if _, err := r.Info(); !errors.Is(err, ErrModelNotTrained) {
		t.Errorf("err = %v, want ErrModelNotTrained", err)
	}
}

func TestContentNeighborsUnknownBook(t *testing.T) {
	r := New(testStore(t))
	if _, err := r.Train(testBooks(), testInteractions()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	_, err := r.ContentNeighbors(99999, 3)
	if !IsNotFound(err) {
		t.Errorf("err = %v, want a not-found error", err)
	}
}

func TestRecommendReason(t *testing.T) {
	tests := []struct {
		user, book bool
		want       string
	}{
		{true, true, "Recommended based on your interest in similar books and your reading history."},
		{true, false, "Recommended based on your reading history and preferences."},
		{false, true, "Recommended based on similarity to books you've viewed."},
	}
	for _, tt := range tests {
		if got := recommendReason(tt.user, tt.book); got != tt.want {
			t.Errorf("recommendReason(%v, %v) = %q, want %q", tt.user, tt.book, got, tt.want)
		}
	}
}
