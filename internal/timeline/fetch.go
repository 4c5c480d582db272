package timeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/model"
)

// Contribution is what one collaborator delivered. Err is set when the source
// failed, timed out or panicked, in which case Records is empty.
type Contribution[T any] struct {
	Records []T
	Err     error
}

type outcome[T any] struct {
	records []T
	err     error
}

// fetch runs call under the aggregator's per-source timeout. It never returns
// an error to the caller: failures are logged and recorded on the Contribution.
func fetch[T any](ctx context.Context, log logrus.FieldLogger, kind model.EventKind, call func(context.Context) ([]T, error)) Contribution[T] {
	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("%s source panicked: %v", kind, r)}
			}
		}()
		records, err := call(ctx)
		done <- outcome[T]{records: records, err: err}
	}()

	var res outcome[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = fmt.Errorf("%s source: %w", kind, ctx.Err())
	}

	if res.err != nil {
		log.WithFields(logrus.Fields{
			"source": kind,
			"error":  res.err,
		}).Warn("collaborator unavailable, continuing without it")
		return Contribution[T]{Err: res.err}
	}
	return Contribution[T]{Records: res.records}
}
