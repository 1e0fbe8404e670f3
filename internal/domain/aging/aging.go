// Package aging classifies receivables by how long they are past due.
package aging

import (
	"math"
	"time"
)

// Bucket is a day-range classification of an overdue amount
type Bucket string

const (
	Bucket0To30  Bucket = "0-30"
	Bucket31To60 Bucket = "31-60"
	Bucket61To90 Bucket = "61-90"
	Bucket90Plus Bucket = "90+"
)

// AllBuckets returns the buckets in ascending order
func AllBuckets() []Bucket {
	return []Bucket{Bucket0To30, Bucket31To60, Bucket61To90, Bucket90Plus}
}

// String returns the bucket label
func (b Bucket) String() string {
	return string(b)
}

const day = 24 * time.Hour

// DaysOverdue returns floor((asOf - due) / 1 day), or 0 when due is not in the past
func DaysOverdue(due, asOf time.Time) int {
	if !due.Before(asOf) {
		return 0
	}
	return int(math.Floor(float64(asOf.Sub(due)) / float64(day)))
}

// BucketFor maps a days-overdue count to its bucket. Lower bounds are inclusive.
func BucketFor(days int) Bucket {
	switch {
	case days >= 91:
		return Bucket90Plus
	case days >= 61:
		return Bucket61To90
	case days >= 31:
		return Bucket31To60
	default:
		return Bucket0To30
	}
}

// Result is the aging classification of a single record
type Result struct {
	Overdue     bool   `json:"is_overdue"`
	DaysOverdue int    `json:"days_overdue"`
	Bucket      Bucket `json:"bucket,omitempty"`
}

// Classify ages a record due at due. A settled record is never overdue.
func Classify(due time.Time, settled bool, asOf time.Time) Result {
	if settled || !due.Before(asOf) {
		return Result{}
	}
	days := DaysOverdue(due, asOf)
	return Result{
		Overdue:     true,
		DaysOverdue: days,
		Bucket:      BucketFor(days),
	}
}

// Tally counts overdue records per bucket
type Tally map[Bucket]int

// NewTally returns a tally with every bucket present at zero
func NewTally() Tally {
	t := make(Tally, 4)
	for _, b := range AllBuckets() {
		t[b] = 0
	}
	return t
}

// Add records r when it is overdue
func (t Tally) Add(r Result) {
	if r.Overdue {
		t[r.Bucket]++
	}
}
