package recommend

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/dunn/stacks/internal/catalog"
	"github.com/dunn/stacks/internal/collab"
	"github.com/dunn/stacks/internal/content"
)

// blobFormatVersion is the payload format version. Increment on breaking
// changes to the bundle layout; Load rejects mismatched payloads.
const blobFormatVersion = 1

// modelBundle is the full persisted artifact set: vectorizer and similarity
// matrix (inside Content), the latent-factor predictor, the books snapshot,
// and the interaction triples.
type modelBundle struct {
	FormatVersion int
	Content       *content.Model
	Collab        *collab.Model
	Books         []catalog.Book
	Interactions  []collab.Interaction
}

func encodeBundle(b *modelBundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encoding bundle: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBundle(payload []byte) (*modelBundle, error) {
	var b modelBundle
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if b.FormatVersion != blobFormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (retrain with 'stacks train')",
			ErrUnsupportedVersion, b.FormatVersion, blobFormatVersion)
	}
	return &b, nil
}
