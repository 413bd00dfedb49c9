package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docchat/cli/internal/store"
)

// ErrIncomplete reports that a document's full-text namespace is missing
// chunks. It is distinct from the document not being stored at all:
// concatenating partial text silently would be a correctness violation.
var ErrIncomplete = errors.New("incomplete document reconstruction")

// Reconstructor reassembles full document text from its size-bounded slices.
type Reconstructor struct {
	store store.Store
}

// NewReconstructor creates a reconstructor over the given store.
func NewReconstructor(st store.Store) *Reconstructor {
	return &Reconstructor{store: st}
}

// Reconstruct returns the complete text of docID, or "" with a nil error when
// no full text was ever stored for it. Every slice carries its index and the
// document-wide total; the total must match the number of slices found before
// anything is concatenated. Slices are ordered by index, not arrival order.
func (rc *Reconstructor) Reconstruct(ctx context.Context, docID string) (string, error) {
	ns := store.FullNamespace(docID)
	matches, err := rc.store.Scan(ctx, ns)
	if err != nil {
		return "", fmt.Errorf("scan namespace %s: %w", ns, err)
	}
	if len(matches) == 0 {
		return "", nil
	}

	type slice struct {
		index int
		text  string
	}
	slices := make([]slice, 0, len(matches))
	total := -1
	for _, m := range matches {
		index, ok := m.Metadata.Int(store.KeyChunkIndex)
		text := m.Metadata[store.KeyFullTextChunk]
		if !ok || text == "" {
			continue
		}
		if t, tok := m.Metadata.Int(store.KeyTotalChunks); tok {
			total = t
		}
		slices = append(slices, slice{index: index, text: text})
	}

	if total < 0 || len(slices) != total {
		return "", fmt.Errorf("%w: have %d of %d chunks for %q", ErrIncomplete, len(slices), total, docID)
	}

	sort.Slice(slices, func(i, j int) bool { return slices[i].index < slices[j].index })
	var b strings.Builder
	for _, s := range slices {
		b.WriteString(s.text)
	}
	return b.String(), nil
}
