// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── members/         # Members with their family and details
//	├── groups/          # Registration periods, groups and categories
//	├── registrations/   # Registrations and balance items
//	├── payments/        # Payments settling balance items
//	├── sessions/        # Import session progress
//	├── audit/           # Audit events
//	└── fixtures/        # Seed data for tests and demos
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./memberimport.db")
//
//	membersRepo := members.NewRepository(db.DB)
//	list, err := membersRepo.List(ctx, organizationID)
//
// The backend package combines the repositories into the importer's
// Backend port.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the models to Models so they are migrated
package database
