package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-search/internal/domain"
)

// fakeRunner is a test double for CommandRunner.
type fakeRunner struct {
	output []byte
	err    error

	name  string
	args  []string
	input []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.name = name
	f.args = args
	// The input file is the second to last argument and must exist while the command runs.
	if len(args) >= 2 {
		f.input, _ = os.ReadFile(args[len(args)-2])
	}
	return f.output, f.err
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly </w:t></w:r><w:r><w:t>report.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Revenue grew.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.FileType
		wantErr  bool
	}{
		{filename: "report.pdf", want: domain.FileTypePDF},
		{filename: "REPORT.PDF", want: domain.FileTypePDF},
		{filename: "notes.docx", want: domain.FileTypeDOCX},
		{filename: "old.Doc", want: domain.FileTypeDOC},
		{filename: "readme.txt", want: domain.FileTypeTXT},
		{filename: "archive.tar.txt", want: domain.FileTypeTXT},
		{filename: "image.png", wantErr: true},
		{filename: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFileType(tt.filename)
			if tt.wantErr {
				var unsupported *domain.UnsupportedFileTypeError
				require.ErrorAs(t, err, &unsupported)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_PlainText(t *testing.T) {
	e := New("", &fakeRunner{})

	text, err := e.Extract(context.Background(), []byte("Hello, world."), "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", text)

	text, err = e.Extract(context.Background(), []byte{'o', 'k', 0xff}, "bad.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok�", text)
}

func TestExtract_Word(t *testing.T) {
	e := New("", &fakeRunner{})
	content := buildDocx(t, sampleDocumentXML)

	for _, name := range []string{"report.docx", "report.doc"} {
		text, err := e.Extract(context.Background(), content, name)
		require.NoError(t, err, name)
		assert.Equal(t, "Quarterly report.\nRevenue grew.", text)
	}
}

func TestExtract_WordErrors(t *testing.T) {
	e := New("", &fakeRunner{})

	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{name: "legacy binary", content: []byte{0xd0, 0xcf, 0x11, 0xe0}, wantErr: ErrNotOOXML},
		{name: "missing document part", content: func() []byte {
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			_, _ = zw.Create("docProps/core.xml")
			_ = zw.Close()
			return buf.Bytes()
		}()},
		{name: "malformed xml", content: buildDocx(t, "<w:document><w:body>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), tt.content, "file.doc")

			var extErr *domain.ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, "file.doc", extErr.Filename)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtract_PDF(t *testing.T) {
	runner := &fakeRunner{output: []byte("Page one text about revenue.\f")}
	e := New("/usr/bin/pdftotext", runner)

	text, err := e.Extract(context.Background(), []byte("%PDF-1.7 body"), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Page one text about revenue.\f", text)
	assert.Equal(t, "/usr/bin/pdftotext", runner.name)
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, []byte("%PDF-1.7 body"), runner.input)

	_, statErr := os.Stat(runner.args[len(runner.args)-2])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestExtract_PDFErrors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *fakeRunner
		wantErr error
	}{
		{name: "image only", runner: &fakeRunner{output: []byte("  \f 12 \n 3  ")}, wantErr: ErrImageOnlyPDF},
		{name: "empty output", runner: &fakeRunner{}, wantErr: ErrImageOnlyPDF},
		{name: "tool missing", runner: &fakeRunner{err: ErrPDFToolNotFound}, wantErr: ErrPDFToolNotFound},
		{name: "tool crashed", runner: &fakeRunner{err: errors.New("exit status 1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New("", tt.runner)

			_, err := e.Extract(context.Background(), []byte("%PDF"), "scan.pdf")

			var extErr *domain.ExtractionError
			require.ErrorAs(t, err, &extErr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestExtract_Unsupported(t *testing.T) {
	e := New("", &fakeRunner{})

	_, err := e.Extract(context.Background(), []byte("x"), "slides.pptx")

	var unsupported *domain.UnsupportedFileTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "pptx", unsupported.Extension)
}
