package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/service"
)

// Summary counts the outcome of one import run.
type Summary struct {
	Scanned   int `json:"scanned"`
	Imported  int `json:"imported"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Importer uploads every supported file of a directory for one owner.
type Importer struct {
	documents service.DocumentService
}

// New creates a new Importer.
func New(documents service.DocumentService) *Importer {
	return &Importer{documents: documents}
}

// Run scans root and uploads each file, skipping files whose name and extracted text
// already exist for the owner. A failed file is logged and counted; the run continues.
func (im *Importer) Run(ctx context.Context, ownerID, root string) (Summary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to resolve import directory: %w", err)
	}

	files, err := Scan(ctx, absRoot)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Scanned: len(files)}
	logger.InfoContext(ctx, "import started", "dir", absRoot, "owner_id", ownerID, "files", len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		content, err := os.ReadFile(file.AbsPath)
		if err != nil {
			summary.Failed++
			logger.WarnContext(ctx, "failed to read file", "path", file.RelPath, "error", err)
			continue
		}

		res, err := im.documents.Upload(ctx, service.UploadRequest{
			OwnerID:       ownerID,
			Filename:      filepath.Base(file.AbsPath),
			Content:       content,
			SkipUnchanged: true,
		})
		if err != nil {
			summary.Failed++
			logger.WarnContext(ctx, "failed to import file", "path", file.RelPath, "error", err)
			continue
		}
		if res.Unchanged {
			summary.Unchanged++
			continue
		}
		summary.Imported++
	}

	logger.InfoContext(ctx, "import finished",
		"imported", summary.Imported,
		"unchanged", summary.Unchanged,
		"failed", summary.Failed,
	)
	return summary, nil
}
