package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cshub/backend/internal/domain/shared"
)

func ptr[T any](v T) *T { return &v }

func newTestOpportunity(t *testing.T) *Opportunity {
	t.Helper()
	o, err := NewOpportunity(OpportunityInput{
		CustomerID: uuid.New(),
		Title:      "Voice expansion",
		Value:      decimal.NewFromInt(50000),
	}, nil)
	require.NoError(t, err)
	return o
}

func TestStage_DefaultProbability(t *testing.T) {
	want := map[Stage]int{
		StageIdentified:  10,
		StageQualified:   25,
		StageProposal:    50,
		StageNegotiation: 75,
		StageClosedWon:   100,
		StageClosedLost:  0,
		StageHold:        0,
	}
	for stage, p := range want {
		assert.Equal(t, p, stage.DefaultProbability(), stage)
	}
	assert.Len(t, AllStages(), len(want))
}

func TestNewOpportunity(t *testing.T) {
	o := newTestOpportunity(t)
	assert.Equal(t, StageIdentified, o.Stage)
	assert.Equal(t, 10, o.Probability)
	assert.Equal(t, TypeUpsell, o.Type)
	assert.Empty(t, o.StageLog())

	_, err := NewOpportunity(OpportunityInput{Value: decimal.NewFromInt(-5), Stage: "Won"}, nil)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("customer_id"))
	assert.True(t, verr.Has("title"))
	assert.True(t, verr.Has("value"))
	assert.True(t, verr.Has("stage"))
}

func TestOpportunity_MoveStage(t *testing.T) {
	o := newTestOpportunity(t)
	o.Probability = 33
	actor := uuid.New()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	moved, err := o.MoveStage(StageNegotiation, &actor, now)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 75, o.Probability)

	log := o.StageLog()
	require.Len(t, log, 1)
	assert.Equal(t, StageChange{
		ID:                log[0].ID,
		Sequence:          1,
		From:              StageIdentified,
		To:                StageNegotiation,
		ChangedAt:         now,
		ProbabilityBefore: 33,
		ProbabilityAfter:  75,
		ChangedBy:         &actor,
	}, log[0])

	moved, err = o.MoveStage(StageNegotiation, &actor, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Len(t, o.StageLog(), 1)

	_, err = o.MoveStage("Signed", &actor, now)
	assert.True(t, shared.IsValidation(err))
}

func TestOpportunity_SequenceContinuesAfterRestore(t *testing.T) {
	o := newTestOpportunity(t)
	o.RestoreStageLog([]StageChange{{Sequence: 1, From: StageIdentified, To: StageQualified}})
	o.Stage = StageQualified

	_, err := o.MoveStage(StageProposal, nil, time.Now())
	require.NoError(t, err)
	require.Len(t, o.PendingStageChanges(), 1)
	assert.Equal(t, 2, o.PendingStageChanges()[0].Sequence)

	o.MarkStageChangesPersisted()
	assert.Empty(t, o.PendingStageChanges())
	assert.Len(t, o.StageLog(), 2)
}

func TestOpportunity_Apply(t *testing.T) {
	t.Run("probability edit does not log", func(t *testing.T) {
		o := newTestOpportunity(t)
		changed, err := o.Apply(OpportunityPatch{Probability: ptr(40)}, nil, time.Now())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 40, o.Probability)
		assert.Empty(t, o.StageLog())
	})

	t.Run("stage in patch wins over probability", func(t *testing.T) {
		o := newTestOpportunity(t)
		changed, err := o.Apply(OpportunityPatch{Stage: ptr(StageProposal), Probability: ptr(90)}, nil, time.Now())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 50, o.Probability)
		assert.Len(t, o.StageLog(), 1)
		assert.Equal(t, 2, o.Version)
	})

	t.Run("identical patch changes nothing", func(t *testing.T) {
		o := newTestOpportunity(t)
		changed, err := o.Apply(OpportunityPatch{Stage: ptr(StageIdentified), Title: ptr("Voice expansion")}, nil, time.Now())
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, o.Version)
	})
}
