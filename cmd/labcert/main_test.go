package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPath = "../../configs/catalog.yaml"

const passingDoc = `{"content": {
	"product_name": "Skimmed Milk Powder",
	"test_parameter_1_name": "Moisture",
	"observed_result_1": "3.1",
	"specification_1": "Max 4.0%",
	"test_parameter_2_name": "Protein",
	"observed_result_2": "35",
	"specification_2": "Min 34%",
	"test_parameter_3_name": "Milk Fat",
	"observed_result_3": "0.9",
	"specification_3": "Max 1.25%",
	"test_parameter_4_name": "Total Plate Count",
	"observed_result_4": "5000",
	"specification_4": "Max 10000 cfu/g",
	"test_parameter_5_name": "Salmonella",
	"observed_result_5": "Absent",
	"specification_5": "Absent in 25 g"
}}`

var failingDoc = strings.Replace(passingDoc, `"observed_result_1": "3.1"`, `"observed_result_1": "4.6"`, 1)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DB_URL", "")
	t.Setenv("LABCERT_REPORT_DIR", "")
	t.Setenv("LABCERT_CATALOG", catalogPath)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestEvaluate_Text(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "pass.json", passingDoc)
	out, _, err := execute(t, "evaluate", "-p", "smp", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Moisture")
	assert.Contains(t, out, "Within Spec")
	assert.Contains(t, out, "COMPLIANT")
	assert.NotContains(t, out, "NON-COMPLIANT")
}

func TestEvaluate_JSON(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "pass.json", passingDoc)
	out, _, err := execute(t, "evaluate", "--product", "smp", "--format", "json", doc)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "smp", got["product"])
	assert.Equal(t, false, got["non_compliant"])
}

func TestEvaluate_Strict(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "fail.json", failingDoc)

	out, _, err := execute(t, "evaluate", "-p", "smp", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "NON-COMPLIANT")

	_, _, err = execute(t, "evaluate", "-p", "smp", "--strict", doc)
	assert.ErrorContains(t, err, "non-compliant")
}

func TestEvaluate_UnknownProduct(t *testing.T) {
	doc := writeDoc(t, t.TempDir(), "pass.json", passingDoc)
	_, stderr, err := execute(t, "evaluate", "-p", "ghee", doc)
	require.Error(t, err)
	assert.Contains(t, stderr, "ghee")
}

func TestBatchThenReports(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", passingDoc)
	writeDoc(t, dir, "b.json", failingDoc)
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "labcert.db")

	out, _, err := execute(t, "--db", dsn, "-p", "smp", "batch", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLIANT      a.json [smp]")
	assert.Contains(t, out, "NON-COMPLIANT  b.json [smp]")
	assert.Contains(t, out, "succeeded=2 non_compliant=1 failed=0")

	out, _, err = execute(t, "--db", dsn, "reports", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "b.json")
	assert.Contains(t, out, "a.json")

	xlsx := filepath.Join(t.TempDir(), "summary.xlsx")
	_, _, err = execute(t, "--db", dsn, "reports", "export", "--out", xlsx)
	require.NoError(t, err)
	assert.FileExists(t, xlsx)
}

func TestReports_NoStore(t *testing.T) {
	_, _, err := execute(t, "reports", "list")
	assert.ErrorIs(t, err, errNoStore)
}

func TestCatalog(t *testing.T) {
	out, _, err := execute(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "smp: moisture[numeric]")
	assert.Contains(t, out, "lecithin_adm:")
}
