// Package importers turns spreadsheet rows into member imports.
//
// # Architecture
//
// The import runs in two phases:
//
//	Sheet → DetectColumns → MatchedColumn → Pipeline.Preview → ImportMemberResult → Importer.Import → Backend
//
// Phase 1 (Pipeline) is pure parsing. Every row is identified first: the
// identity columns (names, birth day, member number, national register
// number) are read into an ImportMemberBaseResult and compared with the
// existing members. Probable duplicates wait for a confirmation
// (FindExistingMemberResult.MarkEqual / MarkNotEqual). The build step then
// applies every matched column onto an ImportMemberResult seeded from the
// confirmed existing member. Cell errors are collected as ImportError values
// and never stop a row or the sheet.
//
// Phase 2 (Importer) saves members, registrations and payments row by row
// through the Backend port. Each step sets its own imported flag, so running
// Import again on the same results only retries what failed.
//
// # Adding a New Column
//
// Column matchers live in the matchers sub-package. A matcher decides if a
// column belongs to its field (DoesMatch) and writes a parsed cell into the
// row result (Apply). Matchers never keep per-row state, which is what makes
// the parallel build step safe.
//
//	type ShoeSizeMatcher struct{ detector }
//
//	func (m ShoeSizeMatcher) Apply(cell *sheet.Cell, result *importers.ImportMemberResult) error {
//		// parse the cell, then result.Update(...)
//	}
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(matchers.Default(opts))
//	columns := pipeline.DetectColumns(s)
//	preview, err := pipeline.Preview(ctx, s, columns, existingMembers, period)
//
//	importer := importers.NewImporter(backend)
//	reports, err := importer.Import(ctx, preview.Results, importers.ImportContext{Period: period})
package importers
