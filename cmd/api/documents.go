package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"knowledge-search/internal/importer"
	"knowledge-search/internal/service"
)

var (
	ingestOwner string
	ingestFile  string
	askOwner    string
	importOwner string
	importDir   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Upload and index one file",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a question from an owner's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Index every supported file in a directory",
	Long: `Walks a directory and uploads each pdf, docx, doc and txt file for the owner.
Files whose name and extracted text are already indexed are skipped.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOwner, "owner", "", "owner id")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path of the file to ingest")
	_ = ingestCmd.MarkFlagRequired("owner")
	_ = ingestCmd.MarkFlagRequired("file")

	askCmd.Flags().StringVar(&askOwner, "owner", "", "owner id")
	_ = askCmd.MarkFlagRequired("owner")

	importCmd.Flags().StringVar(&importOwner, "owner", "", "owner id")
	importCmd.Flags().StringVar(&importDir, "dir", "", "directory to import")
	_ = importCmd.MarkFlagRequired("owner")
	_ = importCmd.MarkFlagRequired("dir")

	rootCmd.AddCommand(ingestCmd, askCmd, importCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	content, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	res, err := a.documents.Upload(ctx, service.UploadRequest{
		OwnerID:  ingestOwner,
		Filename: filepath.Base(ingestFile),
		Content:  content,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %s as %s (%d passages)\n", res.Document.Filename, res.Document.ID, len(res.Document.ChunkIDs))
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	result, err := a.engine.Answer(ctx, askOwner, args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	summary, err := importer.New(a.documents).Run(ctx, importOwner, importDir)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Scanned %d, imported %d, unchanged %d, failed %d\n",
		summary.Scanned, summary.Imported, summary.Unchanged, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d files failed to import", summary.Failed)
	}
	return nil
}
