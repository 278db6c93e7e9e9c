package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/record"
)

// Source turns a path into an extraction Document.
type Source interface {
	Load(ctx context.Context, path string) (Document, error)
}

// Document is one certificate's extracted fields plus its identity.
type Document struct {
	Source      string
	SHA256      string
	Record      *record.Record
	ProductName string
	CompanyName string
}

// NewDocument derives identity fields from rec. raw is hashed when given.
func NewDocument(source string, raw []byte, rec *record.Record) Document {
	d := Document{
		Source:      source,
		Record:      rec,
		ProductName: rec.FirstString(constants.ProductFields...),
		CompanyName: rec.FirstString(constants.CompanyFields...),
	}
	if len(raw) > 0 {
		sum := sha256.Sum256(raw)
		d.SHA256 = hex.EncodeToString(sum[:])
	}
	return d
}
