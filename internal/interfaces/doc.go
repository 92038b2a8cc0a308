// Package interfaces documents the core abstractions used throughout the application.
//
// The package holds no code that runs. checks.go asserts at compile time that
// the types wired together in entrypoint satisfy the interfaces their
// consumers declare.
//
// # Interface Categories
//
// ## Import Pipeline
//
//   - ColumnMatcher: Maps one spreadsheet column to one field (internal/importers/matcher.go)
//   - BaseMatcher: Identity fields applied before duplicates are known (internal/importers/matcher.go)
//   - Backend: Where phase 2 stores members, registrations and payments (internal/importers/backend.go)
//
// ## Import Service
//
//   - Auditor: Records uploads, previews and commits (internal/services/import_service.go)
//   - CommitEnqueuer: Runs commits in the background (internal/services/import_service.go)
//
// ## Background Work
//
//   - ImportCommitter: Executes a queued commit (internal/tasks/commit_import.go)
//   - AuditEventCleaner: Applies audit retention (internal/tasks/cleanup_audit.go)
//   - SessionExpirer: Drops idle import sessions (internal/scheduler/session_cleanup.go)
//   - TaskStatusReader: Task status for the HTTP API (internal/http/tasks.go)
//
// # Adding a New Column Matcher
//
// To recognise a new kind of column:
//
//  1. Add a matcher in internal/importers/matchers/
//
//     type AllergiesMatcher struct{ detector }
//
//     func Allergies(opts ...Option) AllergiesMatcher {
//         return AllergiesMatcher{personDetector("allergies", "Allergies", importers.CategoryMember,
//             []string{"allergie", "allergies", "allergy"}, opts...)}
//     }
//
//     func (m AllergiesMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error
//
//  2. Add it to Default in internal/importers/matchers/defaults.go. Matchers
//     are tried in list order, so put it after the matchers whose headers it
//     could shadow.
//
// # Adding a New Members Backend
//
//  1. Implement Backend in internal/backend/
//
//     type GraphQL struct { client *http.Client }
//
//     func (g *GraphQL) Members(ctx context.Context, organizationID string) ([]entities.Member, error)
//     ...
//
//  2. Add a compile-time check to checks.go:
//
//     var _ importers.Backend = (*backend.GraphQL)(nil)
//
//  3. Select it from BACKEND_MODE in internal/entrypoint/app.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks of this module.
package interfaces
