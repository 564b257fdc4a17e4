package queue

import (
	"math"
	"time"
)

const (
	DefaultBackoffBase = time.Second
	DefaultBackoffMax  = 60 * time.Second
)

// backoffMultipliers scale the exponential delay per error kind. Invalid is
// absent on purpose: it is never retried.
var backoffMultipliers = map[ErrorKind]float64{
	ErrorKindRateLimit: 5,
	ErrorKindServer:    3,
	ErrorKindNetwork:   2,
	ErrorKindUnknown:   2,
}

// Backoff computes retry delays.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns min(Base * 2^(retryCount-1) * multiplier[kind], Max).
// retryCount is the number of failures so far (1 for the first retry).
// Invalid failures get 0 because they are never rescheduled.
func (b Backoff) Delay(retryCount int, kind ErrorKind) time.Duration {
	mult, ok := backoffMultipliers[kind]
	if !ok {
		if kind == ErrorKindInvalid {
			return 0
		}
		mult = backoffMultipliers[ErrorKindUnknown]
	}

	base := b.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}
	ceiling := b.Max
	if ceiling <= 0 {
		ceiling = DefaultBackoffMax
	}

	if retryCount < 1 {
		retryCount = 1
	}

	delay := float64(base) * math.Pow(2, float64(retryCount-1)) * mult
	if delay >= float64(ceiling) {
		return ceiling
	}
	return time.Duration(delay)
}
