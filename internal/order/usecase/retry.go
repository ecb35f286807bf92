package usecase

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"

	apperrors "comanda/internal/errors"
)

// Backoff intervals per attempt; jitter of up to ±20% is added on top.
var retryBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

// withDeadlockRetry reruns fn on MySQL deadlock/lock-wait errors up to
// maxAttempts times. Any other error returns immediately.
func withDeadlockRetry[T any](maxAttempts int, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !isDeadlockError(err) {
			return zero, err
		}
		if attempt < maxAttempts {
			base := retryBackoffs[(attempt-1)%len(retryBackoffs)]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
		}
	}

	return zero, apperrors.NewDeadlockError("max retries exceeded")
}
