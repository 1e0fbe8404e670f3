package persistence

import (
	"fmt"
	"strings"

	"github.com/cshub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"company_name":   true,
	"account_status": true,
	"health_status":  true,
	"health_score":   true,
	"arr":            true,
	"renewal_date":   true,
}

// RiskSortFields contains allowed sort fields for risks
var RiskSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"severity":   true,
	"status":     true,
	"due_date":   true,
}

// OpportunitySortFields contains allowed sort fields for opportunities
var OpportunitySortFields = map[string]bool{
	"created_at":          true,
	"updated_at":          true,
	"stage":               true,
	"probability":         true,
	"value":               true,
	"expected_close_date": true,
}

// paginate applies a whitelisted ORDER BY with an id tiebreaker, then LIMIT/OFFSET
func paginate(query *gorm.DB, f shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(f.OrderBy, allowed, "created_at")
	query = query.Order(fmt.Sprintf("%s %s, id ASC", field, ValidateSortOrder(f.OrderDir)))
	if f.PageSize > 0 {
		query = query.Limit(f.PageSize).Offset(f.Offset())
	}
	return query
}
