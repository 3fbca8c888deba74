// Package runstore persists write-once run artifacts keyed by run id. A run's
// artifact JSON and its micro-row CSV must remain loadable independent of the
// live database.
package runstore

import "context"

// Store is the run artifact store. Saves are write-once: saving an id that
// already exists fails with models.ErrRunExists.
type Store interface {
	SaveArtifact(ctx context.Context, runID string, data []byte) error
	LoadArtifact(ctx context.Context, runID string) ([]byte, error)
	ListRuns(ctx context.Context) ([]string, error)

	// SaveMicroRows persists the flat delimited micro-row table and returns
	// the durable reference recorded in the artifact.
	SaveMicroRows(ctx context.Context, runID string, data []byte) (string, error)
	LoadMicroRows(ctx context.Context, runID string) ([]byte, error)
}
