package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cshub/backend/internal/domain/ledger"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	AggregateModel
	CustomerID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_customer_number"`
	InvoiceNumber      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoices_customer_number"`
	InvoiceDate        time.Time `gorm:"not null"`
	BillingPeriodStart *time.Time
	BillingPeriodEnd   *time.Time
	InvoiceAmount      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	PaidAmount         decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	DueDate            time.Time            `gorm:"not null;index"`
	Status             ledger.InvoiceStatus `gorm:"type:varchar(30);not null;index"`
	Notes              string               `gorm:"type:text"`
	CreatedBy          *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		CustomerID:         m.CustomerID,
		InvoiceNumber:      m.InvoiceNumber,
		InvoiceDate:        m.InvoiceDate,
		BillingPeriodStart: m.BillingPeriodStart,
		BillingPeriodEnd:   m.BillingPeriodEnd,
		InvoiceAmount:      m.InvoiceAmount,
		PaidAmount:         m.PaidAmount,
		DueDate:            m.DueDate,
		Status:             m.Status,
		Notes:              m.Notes,
		CreatedBy:          m.CreatedBy,
	}
}

// InvoiceModelFromDomain creates a model from a domain Invoice
func InvoiceModelFromDomain(i *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		CustomerID:         i.CustomerID,
		InvoiceNumber:      i.InvoiceNumber,
		InvoiceDate:        i.InvoiceDate,
		BillingPeriodStart: i.BillingPeriodStart,
		BillingPeriodEnd:   i.BillingPeriodEnd,
		InvoiceAmount:      i.InvoiceAmount,
		PaidAmount:         i.PaidAmount,
		DueDate:            i.DueDate,
		Status:             i.Status,
		Notes:              i.Notes,
		CreatedBy:          i.CreatedBy,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
