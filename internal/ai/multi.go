package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// Multi runs several backends concurrently and joins their results.
type Multi struct {
	names    []string
	backends []Classifier
}

// NewMulti creates a classifier over backends, labelled by names.
func NewMulti(names []string, backends []Classifier) *Multi {
	return &Multi{names: names, backends: backends}
}

// Classify returns "name: result" for every backend that answered, in
// configuration order. It fails only when every backend failed.
func (m *Multi) Classify(ctx context.Context, text string) (string, error) {
	results := make([]string, len(m.backends))
	errs := make([]error, len(m.backends))

	p := pool.New().WithContext(ctx)
	for i, backend := range m.backends {
		p.Go(func(ctx context.Context) error {
			results[i], errs[i] = backend.Classify(ctx, text)
			return nil
		})
	}
	_ = p.Wait()

	parts := make([]string, 0, len(m.backends))
	for i, result := range results {
		if errs[i] == nil {
			parts = append(parts, fmt.Sprintf("%s: %s", m.names[i], result))
		}
	}

	if len(parts) == 0 {
		return "", errors.Join(errs...)
	}

	return strings.Join(parts, " | "), nil
}
