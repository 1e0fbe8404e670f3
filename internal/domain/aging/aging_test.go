package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"future", now.Add(48 * time.Hour), 0},
		{"same instant", now, 0},
		{"few hours late", now.Add(-5 * time.Hour), 0},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"just under two days", now.Add(-47 * time.Hour), 1},
		{"thirty one days", now.AddDate(0, 0, -31), 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysOverdue(tt.due, now))
		})
	}
}

func TestBucketFor_Boundaries(t *testing.T) {
	assert.Equal(t, Bucket0To30, BucketFor(0))
	assert.Equal(t, Bucket0To30, BucketFor(30))
	assert.Equal(t, Bucket31To60, BucketFor(31))
	assert.Equal(t, Bucket31To60, BucketFor(60))
	assert.Equal(t, Bucket61To90, BucketFor(61))
	assert.Equal(t, Bucket61To90, BucketFor(90))
	assert.Equal(t, Bucket90Plus, BucketFor(91))
	assert.Equal(t, Bucket90Plus, BucketFor(400))
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("31 days past due lands in 31-60", func(t *testing.T) {
		r := Classify(now.AddDate(0, 0, -31), false, now)
		assert.True(t, r.Overdue)
		assert.Equal(t, 31, r.DaysOverdue)
		assert.Equal(t, Bucket31To60, r.Bucket)
	})

	t.Run("settled is never overdue", func(t *testing.T) {
		r := Classify(now.AddDate(0, 0, -120), true, now)
		assert.False(t, r.Overdue)
		assert.Empty(t, r.Bucket)
	})

	t.Run("past due by hours is day zero", func(t *testing.T) {
		r := Classify(now.Add(-time.Hour), false, now)
		assert.True(t, r.Overdue)
		assert.Equal(t, 0, r.DaysOverdue)
		assert.Equal(t, Bucket0To30, r.Bucket)
	})

	t.Run("not yet due", func(t *testing.T) {
		assert.False(t, Classify(now.Add(time.Hour), false, now).Overdue)
	})
}

func TestTally(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tally := NewTally()
	tally.Add(Classify(now.AddDate(0, 0, -5), false, now))
	tally.Add(Classify(now.AddDate(0, 0, -45), false, now))
	tally.Add(Classify(now.AddDate(0, 0, -46), false, now))
	tally.Add(Classify(now.AddDate(0, 0, -200), false, now))
	tally.Add(Classify(now.AddDate(0, 0, -200), true, now))

	assert.Equal(t, Tally{Bucket0To30: 1, Bucket31To60: 2, Bucket61To90: 0, Bucket90Plus: 1}, tally)
}
