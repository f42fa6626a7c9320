// Package collab implements the collaborative half of the recommender: a
// latent-factor model (biased matrix factorization trained by SGD) over a
// sparse user-item interaction matrix.
package collab

import (
	"math"
	"math/rand"
)

// Training hyperparameters. These match the model the catalog was tuned
// against; changing them invalidates persisted blobs only in quality, not in
// format.
const (
	DefaultFactors        = 64
	DefaultEpochs         = 15
	DefaultLearningRate   = 0.01
	DefaultRegularization = 0.01

	// MinScore and MaxScore bound predictions to the interaction scale.
	MinScore = 0.0
	MaxScore = 1.0

	// factorInitStdDev is the standard deviation for factor initialization.
	factorInitStdDev = 0.1

	// fitSeed fixes the PRNG so repeated fits of the same data are
	// repeatable. Bit-exact cross-platform parity is not promised.
	fitSeed = 1
)

// Interaction is one (user, book, score) training triple with score in [0, 1].
type Interaction struct {
	UserID int     `json:"user_id"`
	BookID int     `json:"book_id"`
	Score  float64 `json:"score"`
}

// Config holds fit hyperparameters.
type Config struct {
	Factors        int
	Epochs         int
	LearningRate   float64
	Regularization float64
}

// DefaultConfig returns the standard hyperparameters.
func DefaultConfig() Config {
	return Config{
		Factors:        DefaultFactors,
		Epochs:         DefaultEpochs,
		LearningRate:   DefaultLearningRate,
		Regularization: DefaultRegularization,
	}
}

// Model is a fitted latent-factor predictor. All fields are exported so a
// fitted model survives a gob round trip.
type Model struct {
	Factors    int
	GlobalMean float64

	// Dense index remapping, in order of first appearance at fit time.
	UserIndex map[int]int
	BookIndex map[int]int

	UserFactors [][]float64
	BookFactors [][]float64
	UserBias    []float64
	BookBias    []float64

	// EpochLoss records the mean squared training error per epoch.
	EpochLoss []float64
}

// Fit trains a model with default hyperparameters.
func Fit(interactions []Interaction) *Model {
	return FitConfig(interactions, DefaultConfig())
}

// FitConfig trains a model on the given interactions. Duplicate (user, book)
// pairs resolve last-one-wins. An empty input produces a valid model whose
// predictions are all the zero global mean.
func FitConfig(interactions []Interaction, cfg Config) *Model {
	m := &Model{
		Factors:   cfg.Factors,
		UserIndex: make(map[int]int),
		BookIndex: make(map[int]int),
	}

	// Remap ids to dense indices in order of first appearance, resolving
	// duplicate pairs last-one-wins while keeping first-appearance order of
	// the pairs themselves.
	type cell struct{ u, b int }
	scores := make(map[cell]float64)
	order := make([]cell, 0, len(interactions))
	for _, in := range interactions {
		u, ok := m.UserIndex[in.UserID]
		if !ok {
			u = len(m.UserIndex)
			m.UserIndex[in.UserID] = u
		}
		b, ok := m.BookIndex[in.BookID]
		if !ok {
			b = len(m.BookIndex)
			m.BookIndex[in.BookID] = b
		}
		c := cell{u, b}
		if _, seen := scores[c]; !seen {
			order = append(order, c)
		}
		scores[c] = in.Score
	}

	var sum float64
	for _, c := range order {
		sum += scores[c]
	}
	if len(order) > 0 {
		m.GlobalMean = sum / float64(len(order))
	}

	rng := rand.New(rand.NewSource(fitSeed))
	m.UserFactors = initFactors(rng, len(m.UserIndex), cfg.Factors)
	m.BookFactors = initFactors(rng, len(m.BookIndex), cfg.Factors)
	m.UserBias = make([]float64, len(m.UserIndex))
	m.BookBias = make([]float64, len(m.BookIndex))

	lr, reg := cfg.LearningRate, cfg.Regularization
	m.EpochLoss = make([]float64, 0, cfg.Epochs)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		var sqErr float64
		for _, c := range order {
			r := scores[c]
			pu, qi := m.UserFactors[c.u], m.BookFactors[c.b]

			pred := m.GlobalMean + m.UserBias[c.u] + m.BookBias[c.b] + dot(pu, qi)
			err := r - pred
			sqErr += err * err

			m.UserBias[c.u] += lr * (err - reg*m.UserBias[c.u])
			m.BookBias[c.b] += lr * (err - reg*m.BookBias[c.b])
			for f := 0; f < cfg.Factors; f++ {
				puf, qif := pu[f], qi[f]
				pu[f] += lr * (err*qif - reg*puf)
				qi[f] += lr * (err*puf - reg*qif)
			}
		}
		if len(order) > 0 {
			m.EpochLoss = append(m.EpochLoss, sqErr/float64(len(order)))
		}
	}

	return m
}

func initFactors(rng *rand.Rand, n, k int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, k)
		for f := range row {
			row[f] = rng.NormFloat64() * factorInitStdDev
		}
		rows[i] = row
	}
	return rows
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Predict estimates the interaction score for a (user, book) pair. Unseen
// users or books degrade to the known bias terms, and ultimately to the
// global training mean; cold start is never an error. The result is clamped
// to [MinScore, MaxScore].
func (m *Model) Predict(userID, bookID int) float64 {
	pred := m.GlobalMean
	u, knownUser := m.UserIndex[userID]
	b, knownBook := m.BookIndex[bookID]

	if knownUser {
		pred += m.UserBias[u]
	}
	if knownBook {
		pred += m.BookBias[b]
	}
	if knownUser && knownBook {
		pred += dot(m.UserFactors[u], m.BookFactors[b])
	}

	return math.Min(MaxScore, math.Max(MinScore, pred))
}

// HasUser reports whether a user was seen at fit time.
func (m *Model) HasUser(userID int) bool {
	_, ok := m.UserIndex[userID]
	return ok
}

// HasBook reports whether a book was seen at fit time.
func (m *Model) HasBook(bookID int) bool {
	_, ok := m.BookIndex[bookID]
	return ok
}
