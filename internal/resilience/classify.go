package resilience

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresClassifier retries connection failures, serialization failures
// and deadlocks. Constraint and data errors are permanent and are not
// recorded as breaker failures.
func PostgresClassifier(err error) ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return ErrorClassification{Retryable: true, RecordFailure: true}
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return ErrorClassification{Retryable: true, RecordFailure: true}
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return defaultClassifier(err)
}
