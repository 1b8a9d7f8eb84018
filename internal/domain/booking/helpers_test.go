//go:build unit

package booking_test

import "time"

func intPtr(v int) *int {
	return &v
}

func zeroTime() time.Time {
	return time.Time{}
}
