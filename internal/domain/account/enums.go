package account

// AccountStatus is the lifecycle stage of a customer account
type AccountStatus string

const (
	AccountStatusPOC        AccountStatus = "POC/Pilot"
	AccountStatusOnboarding AccountStatus = "Onboarding"
	AccountStatusUAT        AccountStatus = "UAT"
	AccountStatusLive       AccountStatus = "Live"
	AccountStatusHold       AccountStatus = "Hold"
	AccountStatusChurn      AccountStatus = "Churn"
)

// AllAccountStatuses returns every account status
func AllAccountStatuses() []AccountStatus {
	return []AccountStatus{
		AccountStatusPOC,
		AccountStatusOnboarding,
		AccountStatusUAT,
		AccountStatusLive,
		AccountStatusHold,
		AccountStatusChurn,
	}
}

// IsValid checks if the status is a known value
func (s AccountStatus) IsValid() bool {
	for _, v := range AllAccountStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation
func (s AccountStatus) String() string {
	return string(s)
}

// IsChurned reports whether the account has been lost
func (s AccountStatus) IsChurned() bool {
	return s == AccountStatusChurn
}

// HealthStatus is the categorical well-being of an account
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "Healthy"
	HealthStatusAtRisk   HealthStatus = "At Risk"
	HealthStatusCritical HealthStatus = "Critical"
)

// AllHealthStatuses returns every health status
func AllHealthStatuses() []HealthStatus {
	return []HealthStatus{HealthStatusHealthy, HealthStatusAtRisk, HealthStatusCritical}
}

// IsValid checks if the health status is a known value
func (h HealthStatus) IsValid() bool {
	switch h {
	case HealthStatusHealthy, HealthStatusAtRisk, HealthStatusCritical:
		return true
	}
	return false
}

// String returns the string representation
func (h HealthStatus) String() string {
	return string(h)
}

// IsDegraded reports whether the status requires a documented risk
func (h HealthStatus) IsDegraded() bool {
	return h == HealthStatusAtRisk || h == HealthStatusCritical
}

// PlanType is the commercial plan of an account
type PlanType string

const (
	PlanTypeHourly       PlanType = "Hourly"
	PlanTypeLicense      PlanType = "License"
	PlanTypeSubscription PlanType = "Subscription"
	PlanTypeUsageBased   PlanType = "Usage Based"
	PlanTypePOC          PlanType = "POC"
	PlanTypeTrial        PlanType = "Trial"
)

// IsValid checks if the plan type is a known value
func (p PlanType) IsValid() bool {
	switch p {
	case PlanTypeHourly, PlanTypeLicense, PlanTypeSubscription, PlanTypeUsageBased, PlanTypePOC, PlanTypeTrial:
		return true
	}
	return false
}

// OnboardingStatus tracks implementation progress
type OnboardingStatus string

const (
	OnboardingNotStarted OnboardingStatus = "Not Started"
	OnboardingInProgress OnboardingStatus = "In Progress"
	OnboardingCompleted  OnboardingStatus = "Completed"
)

// IsValid checks if the onboarding status is a known value
func (o OnboardingStatus) IsValid() bool {
	switch o {
	case OnboardingNotStarted, OnboardingInProgress, OnboardingCompleted:
		return true
	}
	return false
}

// Region is the sales territory of an account
type Region string

const (
	RegionSouthIndia Region = "South India"
	RegionWestIndia  Region = "West India"
	RegionNorthIndia Region = "North India"
	RegionEastIndia  Region = "East India"
	RegionGlobal     Region = "Global"
)

// IsValid checks if the region is a known value
func (r Region) IsValid() bool {
	switch r {
	case RegionSouthIndia, RegionWestIndia, RegionNorthIndia, RegionEastIndia, RegionGlobal:
		return true
	}
	return false
}
