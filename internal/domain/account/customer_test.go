package account

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

func newTestCustomer(t *testing.T) *Customer {
	t.Helper()
	c, err := NewCustomer(CustomerInput{CompanyName: "Acme Corp", ARR: decimal.NewFromInt(120000)}, nil)
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func validChurnInput() ChurnInput {
	return ChurnInput{
		ChurnType:              ChurnTypeLogo,
		EffectiveChurnDate:     ptr(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)),
		RevenueImpact:          ptr(decimal.NewFromInt(120000)),
		PrimaryReason:          ChurnReasonPrice,
		SecondaryReasons:       []SecondaryReason{SecondaryLowROI, SecondaryLowROI, SecondaryBudgetCuts},
		CouldHaveBeenPrevented: PreventableUncertain,
		OwnerResponsible:       ChurnOwnerCS,
	}
}

func validGateRisk() *RiskInput {
	return &RiskInput{
		Title:        "Usage dropped",
		Description:  "Logins fell by half over the last month",
		Category:     RiskCategoryProductUsage,
		Subcategory:  "Low Login Frequency",
		Severity:     RiskSeverityHigh,
		AssignedToID: ptr(uuid.New()),
	}
}

func TestNewCustomer_Defaults(t *testing.T) {
	actor := uuid.New()
	c, err := NewCustomer(CustomerInput{
		CompanyName:       "  Acme Corp  ",
		ProductsPurchased: []string{"Voice", "Voice", " ", "Chat"},
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", c.CompanyName)
	assert.Equal(t, AccountStatusOnboarding, c.AccountStatus)
	assert.Equal(t, HealthStatusHealthy, c.HealthStatus)
	assert.Equal(t, DefaultHealthScore, c.HealthScore)
	assert.Equal(t, OnboardingNotStarted, c.OnboardingStatus)
	assert.Equal(t, []string{"Voice", "Chat"}, c.ProductsPurchased)
	assert.Equal(t, 1, c.Version)
	assert.Equal(t, &actor, c.CreatedBy)
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerCreated, c.GetDomainEvents()[0].EventType())
}

func TestNewCustomer_ReportsEveryInvalidField(t *testing.T) {
	_, err := NewCustomer(CustomerInput{
		CompanyName: "",
		Region:      "Mars",
		ARR:         decimal.NewFromInt(-1),
		HealthScore: ptr(140),
		Stakeholders: []Stakeholder{
			{FullName: "", Email: "not-an-email"},
		},
	}, nil)
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("company_name"))
	assert.True(t, verr.Has("region"))
	assert.True(t, verr.Has("arr"))
	assert.True(t, verr.Has("health_score"))
	assert.True(t, verr.Has("stakeholders[0].full_name"))
	assert.True(t, verr.Has("stakeholders[0].email"))
	assert.Contains(t, verr.Error(), "company_name required")
	assert.Contains(t, verr.Error(), "arr must be non-negative")
}

func TestNewCustomer_CannotStartChurned(t *testing.T) {
	_, err := NewCustomer(CustomerInput{CompanyName: "Acme", AccountStatus: AccountStatusChurn}, nil)
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestCustomer_Apply_SamePatchTwiceIsNoOp(t *testing.T) {
	c := newTestCustomer(t)
	patch := CustomerPatch{
		Industry:          ptr("Fintech"),
		ARR:               ptr(decimal.NewFromInt(150000)),
		RenewalDate:       ptr(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)),
		ProductsPurchased: ptr([]string{"Voice"}),
	}

	changed, err := c.Apply(patch, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, c.Version)

	changed, err = c.Apply(patch, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, c.Version)
	assert.Len(t, c.GetDomainEvents(), 1)
}

func TestCustomer_Apply_RejectsBlankName(t *testing.T) {
	c := newTestCustomer(t)
	_, err := c.Apply(CustomerPatch{CompanyName: ptr("   "), ActiveUsers: ptr(-3)}, nil)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("company_name"))
	assert.True(t, verr.Has("active_users"))
	assert.Equal(t, "Acme Corp", c.CompanyName)
}

func TestCustomer_ChangeAccountStatus(t *testing.T) {
	t.Run("plain transition", func(t *testing.T) {
		c := newTestCustomer(t)
		changed, err := c.ChangeAccountStatus(AccountStatusLive, nil)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, AccountStatusLive, c.AccountStatus)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		c := newTestCustomer(t)
		changed, err := c.ChangeAccountStatus(AccountStatusOnboarding, nil)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, c.Version)
	})

	t.Run("churn needs documentation", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.ChangeAccountStatus(AccountStatusChurn, nil)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, AccountStatusOnboarding, c.AccountStatus)
	})

	t.Run("unknown status", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.ChangeAccountStatus("Dormant", nil)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("churned account cannot leave churn", func(t *testing.T) {
		c := newTestCustomer(t)
		_, err := c.Churn(validChurnInput(), nil, time.Now())
		require.NoError(t, err)

		_, err = c.ChangeAccountStatus(AccountStatusLive, nil)
		assert.True(t, shared.IsConflict(err))
		assert.Equal(t, AccountStatusChurn, c.AccountStatus)
	})
}

func TestCustomer_Churn(t *testing.T) {
	c := newTestCustomer(t)
	actor := uuid.New()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	record, err := c.Churn(validChurnInput(), &actor, now)
	require.NoError(t, err)

	assert.Equal(t, AccountStatusChurn, c.AccountStatus)
	assert.Equal(t, c.ID, record.CustomerID)
	assert.True(t, record.ARRAtChurn.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, []SecondaryReason{SecondaryLowROI, SecondaryBudgetCuts}, record.SecondaryReasons)
	assert.Equal(t, now, record.ChurnedAt)
	assert.Equal(t, &actor, record.RecordedBy)

	types := []string{}
	for _, e := range c.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{EventTypeAccountStatusChanged, EventTypeCustomerChurned}, types)

	_, err = c.Churn(validChurnInput(), &actor, now)
	assert.True(t, shared.IsConflict(err))
}

func TestCustomer_Churn_ValidatesEverythingBeforeWriting(t *testing.T) {
	c := newTestCustomer(t)
	in := ChurnInput{PrimaryReason: ChurnReasonOther}

	_, err := c.Churn(in, nil, time.Now())

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{
		"churn_data.churn_type",
		"churn_data.effective_churn_date",
		"churn_data.revenue_impact",
		"churn_data.primary_reason_other",
		"churn_data.could_have_been_prevented",
		"churn_data.owner_responsible",
	} {
		assert.True(t, verr.Has(field), field)
	}
	assert.Equal(t, AccountStatusOnboarding, c.AccountStatus)
	assert.Equal(t, 1, c.Version)
}

func TestCustomer_ChangeHealthStatus(t *testing.T) {
	t.Run("degrade requires a risk", func(t *testing.T) {
		c := newTestCustomer(t)
		_, _, err := c.ChangeHealthStatus(HealthStatusAtRisk, nil, nil)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("risk"))
		assert.Equal(t, HealthStatusHealthy, c.HealthStatus)
	})

	t.Run("degrade with mismatched subcategory is rejected", func(t *testing.T) {
		c := newTestCustomer(t)
		risk := validGateRisk()
		risk.Category = RiskCategoryOnboarding
		risk.Subcategory = "SLA Breaches"
		_, _, err := c.ChangeHealthStatus(HealthStatusCritical, risk, nil)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("risk.subcategory"))
		assert.Equal(t, HealthStatusHealthy, c.HealthStatus)
	})

	t.Run("gate requires description and assignee", func(t *testing.T) {
		c := newTestCustomer(t)
		risk := validGateRisk()
		risk.Description = ""
		risk.AssignedToID = nil
		_, _, err := c.ChangeHealthStatus(HealthStatusAtRisk, risk, nil)
		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("risk.description"))
		assert.True(t, verr.Has("risk.assigned_to_id"))
	})

	t.Run("degrade creates a risk for the customer", func(t *testing.T) {
		c := newTestCustomer(t)
		c.HealthScore = 80
		risk, changed, err := c.ChangeHealthStatus(HealthStatusAtRisk, validGateRisk(), nil)
		require.NoError(t, err)
		assert.True(t, changed)
		require.NotNil(t, risk)
		assert.Equal(t, c.ID, risk.CustomerID)
		assert.Equal(t, RiskSourceHealthChange, risk.Source)
		assert.Equal(t, RiskStatusOpen, risk.Status)
		assert.Equal(t, HealthStatusAtRisk, c.HealthStatus)
		assert.Equal(t, 80, c.HealthScore)
	})

	t.Run("same degraded status needs no risk", func(t *testing.T) {
		c := newTestCustomer(t)
		c.HealthStatus = HealthStatusCritical
		risk, changed, err := c.ChangeHealthStatus(HealthStatusCritical, nil, nil)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Nil(t, risk)
	})

	t.Run("recovering to healthy needs no risk", func(t *testing.T) {
		c := newTestCustomer(t)
		c.HealthStatus = HealthStatusCritical
		risk, changed, err := c.ChangeHealthStatus(HealthStatusHealthy, nil, nil)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, risk)
		assert.Equal(t, HealthStatusHealthy, c.HealthStatus)
	})
}
