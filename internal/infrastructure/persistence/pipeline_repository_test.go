package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppipeline "github.com/cshub/backend/internal/application/pipeline"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/pipeline"
	"github.com/cshub/backend/internal/domain/shared"
)

func TestGormOpportunityRepository_StageLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedCustomer(t, db, account.CustomerInput{CompanyName: "Acme Corp"})

	repo := NewGormOpportunityRepository(db)
	svc := apppipeline.NewOpportunityService(repo, NewGormCustomerRepository(db), NewGormPipelineTransactionScope(db), nil)

	created, err := svc.Create(ctx, pipeline.OpportunityInput{
		CustomerID: c.ID,
		Title:      "Seat expansion",
		Value:      decimal.NewFromInt(50000),
	}, nil)
	require.NoError(t, err)

	history, err := repo.StageHistory(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = svc.MoveStage(ctx, created.ID, pipeline.StageProposal, nil)
	require.NoError(t, err)
	moved, err := svc.MoveStage(ctx, created.ID, pipeline.StageClosedWon, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, moved.Probability)

	// same stage again is a no-op
	_, err = svc.MoveStage(ctx, created.ID, pipeline.StageClosedWon, nil)
	require.NoError(t, err)

	history, err = repo.StageHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
	assert.Equal(t, pipeline.StageIdentified, history[0].From)
	assert.Equal(t, pipeline.StageProposal, history[0].To)
	assert.Equal(t, 10, history[0].ProbabilityBefore)
	assert.Equal(t, 50, history[0].ProbabilityAfter)
	assert.Equal(t, 2, history[1].Sequence)
	assert.Equal(t, pipeline.StageClosedWon, history[1].To)

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.StageLog(), 2)
	assert.Empty(t, loaded.PendingStageChanges())
	assert.Equal(t, 3, loaded.Version)
}

func TestGormOpportunityRepository_StaleWriteAppendsNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := seedCustomer(t, db, account.CustomerInput{CompanyName: "Acme Corp"})
	repo := NewGormOpportunityRepository(db)

	o, err := pipeline.NewOpportunity(pipeline.OpportunityInput{CustomerID: c.ID, Title: "Renewal"}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	scope := NewGormPipelineTransactionScope(db)
	require.NoError(t, scope.Execute(ctx, func(repos apppipeline.TransactionalRepositories) error {
		if _, err := first.MoveStage(pipeline.StageQualified, nil, first.UpdatedAt); err != nil {
			return err
		}
		return repos.OpportunityRepo().SaveWithLock(ctx, first)
	}))

	err = scope.Execute(ctx, func(repos apppipeline.TransactionalRepositories) error {
		if _, err := second.MoveStage(pipeline.StageHold, nil, second.UpdatedAt); err != nil {
			return err
		}
		return repos.OpportunityRepo().SaveWithLock(ctx, second)
	})
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	history, err := repo.StageHistory(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, pipeline.StageQualified, history[0].To)
}

func TestGormOpportunityRepository_FindAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedCustomer(t, db, account.CustomerInput{CompanyName: "Acme Corp"})
	b := seedCustomer(t, db, account.CustomerInput{CompanyName: "Globex"})
	repo := NewGormOpportunityRepository(db)

	for _, in := range []pipeline.OpportunityInput{
		{CustomerID: a.ID, Title: "Upsell voice", Stage: pipeline.StageProposal},
		{CustomerID: a.ID, Title: "Renewal 2027", Type: pipeline.TypeRenewal},
		{CustomerID: b.ID, Title: "Chat add-on", Stage: pipeline.StageProposal},
	} {
		o, err := pipeline.NewOpportunity(in, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, o))
	}

	forA, err := repo.FindAll(ctx, pipeline.OpportunityFilter{Filter: shared.Filter{PageSize: 10}, CustomerID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	proposals, err := repo.Count(ctx, pipeline.OpportunityFilter{Stage: pipeline.StageProposal})
	require.NoError(t, err)
	assert.Equal(t, int64(2), proposals)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}
