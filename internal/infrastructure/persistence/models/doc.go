// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain stays free of ORM tags;
// each model has a FromDomain constructor and a ToDomain mapper.
//
// Structure:
//   - base.go: shared columns (id, timestamps, version)
//   - account.go: customers, churn_records, risks
//   - pipeline.go: opportunities, opportunity_stage_changes
//   - ledger.go: invoices
//   - user.go: users
package models
