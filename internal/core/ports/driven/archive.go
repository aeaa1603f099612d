package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// Archive searches an open audio archive and fetches files from it.
// Each method enforces its own timeout.
type Archive interface {
	// Search runs an archive query and returns up to rows hits in archive order.
	Search(ctx context.Context, query string, rows int) ([]domain.ArchiveHit, error)

	// Metadata lists the files of an archive item.
	Metadata(ctx context.Context, identifier string) ([]domain.ArchiveFile, error)

	// Download streams one file of an item into w.
	Download(ctx context.Context, identifier, filename string, w io.Writer) error
}
