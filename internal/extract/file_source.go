package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/record"
)

const defaultMaxBytes = 16 << 20

var envelopeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return common.CompileSchema("envelope.json", BuildEnvelopeJSONSchema())
})

// BuildEnvelopeJSONSchema describes the accepted extraction payload shapes.
func BuildEnvelopeJSONSchema() map[string]any {
	content := map[string]any{"type": []string{"object", "string", "array"}}
	return map[string]any{
		"type":          "object",
		"minProperties": 1,
		"properties": map[string]any{
			"content": content,
			"data": map[string]any{
				"type":       "object",
				"properties": map[string]any{"content": content},
			},
		},
	}
}

// FileSource reads extraction JSON documents from the local filesystem.
type FileSource struct {
	logger   *slog.Logger
	maxBytes int64
}

type FileSourceOption func(*FileSource)

// WithMaxBytes caps the size of a document.
func WithMaxBytes(n int64) FileSourceOption {
	return func(s *FileSource) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

func NewFileSource(logger *slog.Logger, opts ...FileSourceOption) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileSource{logger: logger, maxBytes: defaultMaxBytes}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *FileSource) Load(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("extract.open.failed", "path", path, "error", err)
		return Document{}, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.maxBytes+1))
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Document{}, common.NewAppError("DOCUMENT_TOO_LARGE",
			fmt.Sprintf("%s exceeds %d bytes", path, s.maxBytes), common.ErrInvalidInput)
	}

	doc, err := Parse(path, data)
	if err != nil {
		s.logger.Warn("extract.parse.failed", "path", path, "error", err)
		return Document{}, err
	}
	s.logger.Debug("extract.load.ok",
		"path", path,
		"fields", doc.Record.Len(),
		"product", doc.ProductName,
		"company", doc.CompanyName,
	)
	return doc, nil
}

// Parse validates the envelope shape and decodes the ordered record.
func Parse(source string, data []byte) (Document, error) {
	schema, err := envelopeSchema()
	if err != nil {
		return Document{}, err
	}
	if err := common.ValidateJSON(schema, data); err != nil {
		return Document{}, fmt.Errorf("%s: %w", source, err)
	}
	rec, err := record.Decode(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w: %v", source, common.ErrInvalidInput, err)
	}
	return NewDocument(source, data, rec), nil
}
