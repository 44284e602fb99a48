package utils

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type summingConsumer struct {
	mu   sync.Mutex
	sum  int
	tags Set[string]
}

func (c *summingConsumer) Consume(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sum += result.Data().(int)
	c.tags.Add(result.Tag())
}

func TestParallelJobExecutorRoutesResultsByTag(t *testing.T) {
	executor := NewSimpleParallelJobExecutor(4)
	evens := &summingConsumer{tags: NewMapSet[string]()}
	odds := &summingConsumer{tags: NewMapSet[string]()}
	executor.RegisterConsumer(func(tag string) bool { return tag == "even" }, evens)
	executor.RegisterConsumer(func(tag string) bool { return tag == "odd" }, odds)

	var errMu sync.Mutex
	var failures []error
	executor.RegisterErrorHandler(func(err error) {
		errMu.Lock()
		failures = append(failures, err)
		errMu.Unlock()
	})
	executor.Start()

	for i := 1; i <= 10; i++ {
		executor.SubmitJob(func() (Result, error) {
			if i == 10 {
				return Result{}, errors.New("job 10 failed")
			}
			if i%2 == 0 {
				return NewResult(i, "even"), nil
			}
			return NewResult(i, "odd"), nil
		})
	}
	executor.Stop()

	assert.Equal(t, 2+4+6+8, evens.sum)
	assert.Equal(t, 1+3+5+7+9, odds.sum)
	assert.Equal(t, []string{"even"}, evens.tags.ToSlice())
	assert.Equal(t, []string{"odd"}, odds.tags.ToSlice())
	assert.Len(t, failures, 1)
	assert.True(t, strings.Contains(failures[0].Error(), "job 10"))
}
