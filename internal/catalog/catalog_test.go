package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

const sampleYAML = `
detection_limit: 3
parameters:
  moisture:
    label: Moisture
    aliases: [moisture, moisture content]
  toluene:
    aliases: [residual toluene]
    exclude: [color]
  salmonella:
    policy: absence
    annotate: [375 g]
  appearance:
    policy: textual
    rule: 'result.contains("white")'
products:
  - name: Lecithin_ADM
    required: [moisture, toluene, salmonella]
    critical: [moisture]
    specs:
      toluene: "Max 2 ppm"
      moisture: "Max 1%"
  - name: whey
    required: [moisture, appearance]
    parameters:
      moisture:
        aliases: [water]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Lecithin_ADM", "whey"}, c.Products())
	assert.Equal(t, 3.0, c.DetectionLimit())

	p, ok := c.Product("lecithin adm")
	require.True(t, ok)
	assert.Equal(t, []string{"moisture", "toluene", "salmonella"}, p.Required())
	assert.True(t, p.IsCritical("Moisture"))
	assert.False(t, p.IsCritical("toluene"))

	sal := p.Parameter("salmonella")
	assert.Equal(t, constants.PolicyZeroTolerance, sal.Policy)
	assert.Equal(t, []string{"375 g"}, sal.Annotations())

	m := p.Parameter("moisture")
	assert.Equal(t, "Moisture", m.Label)
	assert.Equal(t, []string{"moisture", "moisturecontent"}, m.AliasKeys())

	spec, ok := p.SpecSheet().Lookup(p.Parameter("toluene"))
	require.True(t, ok)
	assert.Equal(t, "Max 2 ppm", spec)
	assert.Equal(t, 2, p.SpecSheet().Len())

	w, ok := c.Product("WHEY")
	require.True(t, ok)
	assert.Equal(t, []string{"water"}, w.Parameter("moisture").AliasKeys())
	assert.True(t, w.IsCritical("appearance"), "critical defaults to every required key")

	app := w.Parameter("appearance")
	assert.Equal(t, constants.PolicyCategorical, app.Policy)
	require.NotNil(t, app.Rule)
	ok, err = app.Rule.Match("white powder", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing products", "parameters: {}\n"},
		{"unknown top-level key", "products: []\nextra: 1\n"},
		{"product without required", "products:\n  - name: x\n"},
		{"unknown policy", "parameters:\n  a:\n    policy: fuzzy\nproducts:\n  - name: x\n    required: [a]\n"},
		{"rule not bool", "parameters:\n  a:\n    rule: 'result'\nproducts:\n  - name: x\n    required: [a]\n"},
		{"bad yaml", "products: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrValidation), err.Error())
		})
	}
}

func TestParse_DuplicateProduct(t *testing.T) {
	_, err := Parse([]byte("products:\n  - name: Whey\n    required: [a]\n  - name: whey\n    required: [b]\n"))
	require.Error(t, err)
}

func TestLoad_DefaultCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog.yaml"))
	require.NoError(t, err)

	p, ok := c.Detect("Soy Lecithin Fluid", "ADM Specialty Ingredients")
	require.True(t, ok)
	assert.Equal(t, "lecithin_adm", p.Name())

	tol := p.Parameter("toluene")
	assert.False(t, tol.Matches(textnorm.Key("Color (10% solution in toluene)")))
	assert.True(t, tol.Matches(textnorm.Key("Residual Toluene")))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestProductKeys(t *testing.T) {
	tests := []struct {
		product, company string
		full, short      string
	}{
		{"Whey Protein Concentrate 80", "Calpro Specialities", "whey_calpro", "whey"},
		{"Sweet whey powder", "Mahaan Proteins", "whey_mahaan", "whey"},
		{"Skimmed Milk Powder", "Amul", "skimmed_amul", "skimmed"},
		{"Lecithin", "", "", "lecithin"},
		{"", "ADM", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			full, short := ProductKeys(tt.product, tt.company, constants.ProductKeywords)
			assert.Equal(t, tt.full, full)
			assert.Equal(t, tt.short, short)
		})
	}
}

func TestDetect_FallsBackToKeyword(t *testing.T) {
	c, err := New(Options{}, ProductSpec{Name: "whey", Required: []string{"moisture"}})
	require.NoError(t, err)

	p, ok := c.Detect("Whey Permeate", "Unknown Dairy")
	require.True(t, ok)
	assert.Equal(t, "whey", p.Name())

	_, ok = c.Detect("Casein", "Unknown")
	assert.False(t, ok)
}

func TestParseKeysFile(t *testing.T) {
	in := strings.Join([]string{
		`"Lecithin_ADM" - Mandatory Values - {"moisture", "acetone", 'peroxide'}`,
		`# comment line`,
		`Whey_Mahaan - Mandatory Values - {moisture}`,
		`Broken - Mandatory Values - no braces`,
	}, "\n")
	entries, err := ParseKeysFile(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, KeysEntry{Product: "Lecithin_ADM", Keys: []string{"moisture", "acetone", "peroxide"}}, entries[0])
	assert.Equal(t, []string{"moisture"}, entries[1].Keys)
	assert.Empty(t, entries[2].Keys)
}

func TestParseSpecSheet(t *testing.T) {
	in := "# Lecithin specs\nMoisture | Max 1.0%\n\nacetone insoluble|Min 62%\nno separator\n | empty key\n"
	lines, err := ParseSpecSheet(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []SpecLine{
		{Key: "Moisture", Spec: "Max 1.0%"},
		{Key: "acetone insoluble", Spec: "Min 62%"},
	}, lines)
}

func TestSpecSheetLookup(t *testing.T) {
	sheet := NewSpecSheet([]SpecLine{
		{Key: "Colour 10% in toluene", Spec: "Max 14"},
		{Key: "Acetone Insoluble", Spec: "Min 62%"},
		{Key: "Residual toluene ppm", Spec: "Max 2"},
		{Key: "", Spec: "ignored"},
	})
	assert.Equal(t, 3, sheet.Len())

	spec, ok := sheet.Lookup(NewParameter("acetone", constants.PolicyNumeric, "acetone insoluble"))
	require.True(t, ok)
	assert.Equal(t, "Min 62%", spec)

	tol := NewParameter("toluene", constants.PolicyNumeric, "residual toluene").WithExclude("colour")
	spec, ok = sheet.Lookup(tol)
	require.True(t, ok)
	assert.Equal(t, "Max 2", spec)

	_, ok = sheet.Lookup(NewParameter("viscosity", constants.PolicyNumeric))
	assert.False(t, ok)
}

func TestWithLegacy(t *testing.T) {
	base, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	merged, err := base.WithLegacy(
		[]KeysEntry{
			{Product: "lecithin_adm", Keys: []string{"moisture", "acetone"}},
			{Product: "Casein_Fonterra", Keys: []string{"protein"}},
		},
		map[string][]SpecLine{"Casein_Fonterra": {{Key: "protein", Spec: "Min 88%"}}},
	)
	require.NoError(t, err)

	p, ok := merged.Product("Lecithin_ADM")
	require.True(t, ok)
	assert.Equal(t, []string{"moisture", "acetone"}, p.Required())
	assert.True(t, p.IsCritical("acetone"))
	assert.Equal(t, constants.PolicyZeroTolerance, p.Parameter("salmonella").Policy)

	cp, ok := merged.Detect("Acid Casein", "Fonterra Co-operative")
	require.True(t, ok)
	spec, ok := cp.SpecSheet().Lookup(cp.Parameter("protein"))
	require.True(t, ok)
	assert.Equal(t, "Min 88%", spec)

	w, ok := merged.Product("whey")
	require.True(t, ok)
	assert.Equal(t, []string{"water"}, w.Parameter("moisture").AliasKeys())

	// base stays untouched
	orig, _ := base.Product("Lecithin_ADM")
	assert.Equal(t, []string{"moisture", "toluene", "salmonella"}, orig.Required())
}

func TestParameterMatches(t *testing.T) {
	p := NewParameter("yeast_and_mold", constants.PolicyNumeric, "Yeast & Mould", "yeastmold")
	assert.True(t, p.Matches(textnorm.Key("Yeast and Mould / Yeast & Mould count")))
	assert.True(t, p.Matches("yeast"), "label contained in alias")
	assert.False(t, p.Matches(""))
	assert.True(t, p.Mentioned("yeastmouldresult"))
	assert.False(t, p.Mentioned("moistureresult"))

	bare := NewParameter("pH", constants.PolicyNumeric)
	assert.Equal(t, []string{"ph"}, bare.AliasKeys())
}
