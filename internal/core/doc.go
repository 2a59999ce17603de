// Package core implements the legal-matrix ingestion and applicability engine:
// header detection over raw spreadsheet grids, column normalization against an
// open label vocabulary, regulation extraction and hazard classification,
// hash-based change detection with version history, and per-organization
// compliance synchronization.
//
// The package has no HTTP dependencies. Callers drive it through Service:
//
//	svc := core.NewService(pool, core.DefaultTaxonomy(), core.Options{}, slog.Default())
//	preview, err := svc.PreviewImport(ctx, fileData, "matriz.csv")
//	run, err := svc.CommitImport(ctx, fileData, "matriz.csv", userID, overwrite)
//	res, err := svc.SyncOrganization(ctx, orgID)
//
// All keyword tables (header detection, column mapping, hazard categories,
// sector sentinel) live in Taxonomy and are injected, so tests can substitute
// smaller vocabularies without touching logic.
package core
