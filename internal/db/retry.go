package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryConnect retries ping with exponential backoff for at most maxElapsed.
// maxElapsed <= 0 means a single attempt.
func retryConnect(maxElapsed time.Duration, ping func() error) error {
	if maxElapsed <= 0 {
		return ping()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.Multiplier = 2.0
	exp.MaxInterval = 5 * time.Second
	exp.RandomizationFactor = 0.5
	exp.Reset()

	_, err := backoff.Retry(
		context.Background(),
		func() (struct{}, error) { return struct{}{}, ping() },
		backoff.WithBackOff(exp),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	return err
}
