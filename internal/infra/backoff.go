package infra

import (
	"time"
)

const (
	backoffBaseDelay = 1 * time.Second
	backoffMaxDelay  = 60 * time.Second
)

// CalculateBackoff returns the exponential backoff duration for a given
// retry count: baseDelay * 2^retryCount, capped at maxDelay. Used only
// by the stream watcher reconnect loop; REST calls never retry.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return backoffBaseDelay
	}

	// 2^30 seconds is already far beyond the cap.
	if retryCount > 30 {
		return backoffMaxDelay
	}

	backoff := backoffBaseDelay * time.Duration(1<<retryCount)
	if backoff > backoffMaxDelay {
		return backoffMaxDelay
	}

	return backoff
}
