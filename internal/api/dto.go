package api

import "hr-timer/pkg/hrtimer"

// ReadingDTO is the API representation of one timer reading.
type ReadingDTO struct {
	Seconds float64 `json:"seconds"`
	Millis  uint64  `json:"millis"`
	Micros  uint64  `json:"micros"`
	Elapsed string  `json:"elapsed"`
}

// ResetResponse reports what the timer read just before it was reset.
type ResetResponse struct {
	Reset          bool   `json:"reset"`
	PreviousMicros uint64 `json:"previous_micros"`
}

// DiffResponse carries the operands and the wraparound-safe difference a-b.
type DiffResponse struct {
	A    uint64 `json:"a"`
	B    uint64 `json:"b"`
	Diff int64  `json:"diff"`
}

func newReadingDTO(t *hrtimer.Timer) ReadingDTO {
	return ReadingDTO{
		Seconds: t.ReadSeconds(),
		Millis:  t.ReadMillis(),
		Micros:  t.ReadMicros(),
		Elapsed: t.Elapsed().String(),
	}
}
