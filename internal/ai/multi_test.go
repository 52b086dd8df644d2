package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/robalyx/modreport/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClassifier struct {
	result string
	err    error
	calls  int
}

func (c *fixedClassifier) Classify(context.Context, string) (string, error) {
	c.calls++
	return c.result, c.err
}

func TestMultiJoinsResultsInOrder(t *testing.T) {
	t.Parallel()

	multi := ai.NewMulti(
		[]string{"first", "broken", "second"},
		[]ai.Classifier{
			&fixedClassifier{result: "one"},
			&fixedClassifier{err: errors.New("down")},
			&fixedClassifier{result: "two"},
		},
	)

	got, err := multi.Classify(t.Context(), "text")
	require.NoError(t, err)
	assert.Equal(t, "first: one | second: two", got)
}

func TestMultiFailsWhenEveryBackendFails(t *testing.T) {
	t.Parallel()

	errA := errors.New("a down")
	errB := errors.New("b down")
	multi := ai.NewMulti(
		[]string{"a", "b"},
		[]ai.Classifier{&fixedClassifier{err: errA}, &fixedClassifier{err: errB}},
	)

	_, err := multi.Classify(t.Context(), "text")
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}
