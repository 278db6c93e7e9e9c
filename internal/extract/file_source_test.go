package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labcert/internal/common"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestFileSource_Load(t *testing.T) {
	p := writeFile(t, "cert.json", `{"content": {
		"product_name": "Sweet Whey Powder",
		"supplier": "Mahaan Proteins Ltd",
		"test_parameter_1_name": "Moisture",
		"observed_result_1": 4.2,
		"specification_1": "Max 5.0%"
	}}`)

	doc, err := NewFileSource(nil).Load(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, doc.Source)
	assert.Equal(t, "Sweet Whey Powder", doc.ProductName)
	assert.Equal(t, "Mahaan Proteins Ltd", doc.CompanyName)
	assert.Len(t, doc.SHA256, 64)
	assert.Equal(t, []string{"product_name", "supplier", "test_parameter_1_name", "observed_result_1", "specification_1"}, doc.Record.Keys())
	n, ok := doc.Record.GetNumber("observed_result_1")
	require.True(t, ok)
	assert.Equal(t, 4.2, n)
}

func TestFileSource_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array payload", `[{"a": 1}]`},
		{"empty object", `{}`},
		{"numeric content", `{"content": 5}`},
		{"not json", `moisture: 4`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileSource(nil).Load(context.Background(), writeFile(t, "x.json", tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrInvalidInput), err.Error())
		})
	}
}

func TestFileSource_TooLarge(t *testing.T) {
	p := writeFile(t, "big.json", `{"product_name": "Whey protein concentrate"}`)
	_, err := NewFileSource(nil, WithMaxBytes(10)).Load(context.Background(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(nil).Load(context.Background(), filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource(nil).Load(ctx, "whatever.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_ContentString(t *testing.T) {
	doc, err := Parse("inline", []byte(`{"content": "{\"product\": \"Soy Lecithin\", \"company_name\": \"ADM\"}"}`))
	require.NoError(t, err)
	assert.Equal(t, "Soy Lecithin", doc.ProductName)
	assert.Equal(t, "ADM", doc.CompanyName)
}
