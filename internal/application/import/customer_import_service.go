// Package importapp creates customers in bulk from CSV uploads.
package importapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	accountapp "github.com/cshub/backend/internal/application/account"
	"github.com/cshub/backend/internal/domain/account"
	"github.com/cshub/backend/internal/domain/shared"
	"github.com/cshub/backend/internal/domain/user"
	csvimport "github.com/cshub/backend/internal/infrastructure/import"
	"github.com/cshub/backend/internal/infrastructure/logger"
	"github.com/cshub/backend/internal/infrastructure/telemetry"
)

// Defaults for columns absent from an import row
const (
	DefaultPlanType    = account.PlanTypeLicense
	DefaultHealthScore = 75
	DefaultHealth      = account.HealthStatusHealthy

	defaultLookupTimeout = 2 * time.Second
)

// Column names understood by the importer
const (
	ColCompanyName   = "company_name"
	ColIndustry      = "industry"
	ColRegion        = "region"
	ColPlanType      = "plan_type"
	ColARR           = "arr"
	ColRenewalDate   = "renewal_date"
	ColCSMEmail      = "csm_email"
	ColWebsite       = "website"
	ColAccountStatus = "account_status"
	ColHealthStatus  = "health_status"
	ColHealthScore   = "health_score"
)

// CustomerCreator creates one customer with the full creation rules
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, in account.CustomerInput, actor *uuid.UUID) (*accountapp.CustomerResponse, error)
}

// UserLookup resolves directory users by email
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Result is the outcome of a bulk upload.
// SuccessCount + ErrorCount always equals TotalRows.
type Result struct {
	TotalRows    int                  `json:"total_rows"`
	SuccessCount int                  `json:"success_count"`
	ErrorCount   int                  `json:"error_count"`
	Errors       []csvimport.RowError `json:"errors"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
}

// ImportRecorder receives per-upload row counts
type ImportRecorder interface {
	RecordImport(ctx context.Context, imported, failed int)
}

// Option configures a CustomerImportService
type Option func(*CustomerImportService)

// WithLookupTimeout bounds each csm_email lookup
func WithLookupTimeout(d time.Duration) Option {
	return func(s *CustomerImportService) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

// WithMaxErrors caps the number of row errors kept in a result
func WithMaxErrors(n int) Option {
	return func(s *CustomerImportService) { s.maxErrors = n }
}

// WithRecorder reports row outcomes to r
func WithRecorder(r ImportRecorder) Option {
	return func(s *CustomerImportService) { s.recorder = r }
}

// CustomerImportService handles customer bulk import
type CustomerImportService struct {
	customers     CustomerCreator
	users         UserLookup
	recorder      ImportRecorder
	lookupTimeout time.Duration
	maxErrors     int
}

// NewCustomerImportService creates a new CustomerImportService
func NewCustomerImportService(customers CustomerCreator, users UserLookup, opts ...Option) *CustomerImportService {
	s := &CustomerImportService{
		customers:     customers,
		users:         users,
		lookupTimeout: defaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportCustomers creates one customer per data row, in order. A row that
// fails is reported and the rest continue. Only an unreadable payload or a
// missing company_name column fails the whole upload.
func (s *CustomerImportService) ImportCustomers(ctx context.Context, r io.Reader, actor *uuid.UUID) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer_import", "import")
	defer span.End()

	parser, err := csvimport.NewParser(r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewValidationError("file", err.Error())
	}
	if missing := parser.MissingHeaders(ColCompanyName); len(missing) > 0 {
		return nil, shared.NewValidationError("file", "CSV must have a company_name column")
	}
	rows, err := parser.ReadAll()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewValidationError("file", err.Error())
	}

	result := &Result{TotalRows: len(rows)}
	errs := csvimport.NewErrorCollection(s.maxErrors)
	owners := newOwnerCache(s.users)

	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("customer_import"), func(ctx context.Context) {
		for _, row := range rows {
			if err := s.importRow(ctx, row, owners, actor); err != nil {
				errs.Add(row.Index, err)
				logger.L(ctx).Debug("Import row failed", zap.Int("row", row.Index), zap.Error(err))
				continue
			}
			result.SuccessCount++
		}
	})

	result.ErrorCount = errs.TotalCount()
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrRowCount, result.TotalRows,
		telemetry.SpanAttrImported, result.SuccessCount,
		telemetry.SpanAttrFailed, result.ErrorCount,
	)
	if s.recorder != nil {
		s.recorder.RecordImport(ctx, result.SuccessCount, result.ErrorCount)
	}

	logger.L(ctx).Info("Customer import finished",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount),
		zap.Bool("transcoded", parser.Transcoded()),
	)
	return result, nil
}

func (s *CustomerImportService) importRow(ctx context.Context, row *csvimport.Row, owners *ownerCache, actor *uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("import aborted: %w", err)
	}

	in, errs := rowToInput(row)
	if invalid := account.ValidateCustomerInput(in); invalid != nil {
		for _, f := range invalid.Fields {
			if !errs.Has(f.Field) {
				errs.Add(f.Field, f.Message)
			}
		}
	}
	if errs.HasErrors() {
		return errs
	}

	if email := row.Get(ColCSMEmail); email != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
		owner, err := owners.resolve(lookupCtx, email)
		cancel()
		if err != nil {
			return err
		}
		in.CSMOwnerID = owner
	}

	_, err := s.customers.CreateCustomer(ctx, in, actor)
	return err
}

// rowToInput maps a row onto creation input. Cells that fail to parse are
// left unset and reported in the returned error.
func rowToInput(row *csvimport.Row) (account.CustomerInput, *shared.ValidationError) {
	in := account.CustomerInput{
		CompanyName:   row.Get(ColCompanyName),
		Industry:      row.Get(ColIndustry),
		Website:       row.Get(ColWebsite),
		Region:        account.Region(row.Get(ColRegion)),
		PlanType:      account.PlanType(row.Get(ColPlanType)),
		HealthStatus:  account.HealthStatus(row.Get(ColHealthStatus)),
		AccountStatus: account.AccountStatus(row.Get(ColAccountStatus)),
	}
	if in.PlanType == "" {
		in.PlanType = DefaultPlanType
	}
	if in.HealthStatus == "" {
		in.HealthStatus = DefaultHealth
	}

	errs := &shared.ValidationError{}
	if arr, err := row.Decimal(ColARR); err != nil {
		errs.Add(ColARR, err.Error())
	} else if arr != nil {
		in.ARR = *arr
	}
	if d, err := row.Date(ColRenewalDate); err != nil {
		errs.Add(ColRenewalDate, err.Error())
	} else {
		in.RenewalDate = d
	}
	if score, err := row.Int(ColHealthScore); err != nil {
		errs.Add(ColHealthScore, err.Error())
	} else if score != nil {
		in.HealthScore = score
	} else {
		def := DefaultHealthScore
		in.HealthScore = &def
	}
	return in, errs
}

// ownerCache memoizes csm_email lookups for one upload
type ownerCache struct {
	users   UserLookup
	results map[string]ownerLookup
}

type ownerLookup struct {
	id  *uuid.UUID
	err error
}

func newOwnerCache(users UserLookup) *ownerCache {
	return &ownerCache{users: users, results: make(map[string]ownerLookup)}
}

func (c *ownerCache) resolve(ctx context.Context, email string) (*uuid.UUID, error) {
	key := user.NormalizeEmail(email)
	if hit, ok := c.results[key]; ok {
		return hit.id, hit.err
	}

	var res ownerLookup
	u, err := c.users.FindByEmail(ctx, key)
	switch {
	case err == nil:
		id := u.ID
		res.id = &id
	case shared.IsNotFound(err):
		res.err = shared.NewValidationError(ColCSMEmail, fmt.Sprintf("CSM with email '%s' not found", email))
	case errors.Is(err, context.DeadlineExceeded):
		res.err = fmt.Errorf("csm_email lookup timed out for '%s'", email)
	default:
		res.err = fmt.Errorf("csm_email lookup failed: %w", err)
	}
	c.results[key] = res
	return res.id, res.err
}
