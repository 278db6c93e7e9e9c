package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/record"
)

func param(key string, aliases ...string) catalog.Parameter {
	return catalog.NewParameter(key, constants.PolicyNumeric, aliases...)
}

func TestResolve_NumberedTriplet(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Moisture",
		"observed_result_1", "4.2",
		"specification_1", "Max 5.0%",
	)
	res := New(nil).Resolve(rec, param("moisture", "moisture"), catalog.SpecSheet{})

	assert.Equal(t, "4.2", res.Result.String())
	assert.Equal(t, "Max 5.0%", res.Spec.String())
	assert.Equal(t, SchemeNumbered, res.Scheme)
	assert.Equal(t, SourceRecord, res.SpecSource)
	assert.Equal(t, "observed_result_1", res.ResultField)
	assert.True(t, res.Complete())
}

func TestResolve_NumberedVariants(t *testing.T) {
	tests := []struct {
		name string
		rec  *record.Record
	}{
		{"bare index label", record.FromPairs(
			"test_parameter_2", "Moisture content",
			"observed_results_2", 3.1,
			"specifications_2", "<= 4",
		)},
		{"prefixed companions", record.FromPairs(
			"test_parameter_7_name", "MOISTURE (%)",
			"test_parameter_7_observed_results", 3.1,
			"test_parameter_7_specifications", "<= 4",
		)},
		{"quality standard", record.FromPairs(
			"quality_standard_3", "Moisture",
			"result_3", 3.1,
			"limit_3", "<= 4",
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(nil).Resolve(tt.rec, param("moisture"), catalog.SpecSheet{})
			require.True(t, res.Complete())
			assert.Equal(t, "3.1", res.Result.String())
			assert.Equal(t, "<= 4", res.Spec.String())
			assert.Equal(t, SchemeNumbered, res.Scheme)
		})
	}
}

func TestResolve_NumberedAscendingIndex(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_10_name", "Moisture (retest)",
		"observed_result_10", "9",
		"specification_10", "Max 5",
		"test_parameter_2_name", "Moisture",
		"observed_result_2", "4",
		"specification_2", "Max 5",
	)
	res := New(nil).Resolve(rec, param("moisture"), catalog.SpecSheet{})
	assert.Equal(t, "4", res.Result.String(), "lowest index wins")
}

func TestResolve_FirstMatchWins(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Plate count",
		"observed_result_1", "100",
		"specification_1", "Max 1000",
		"test_parameter_2_name", "Total plate count",
		"observed_result_2", "200",
		"specification_2", "Max 10000",
	)
	res := New(nil).Resolve(rec, param("total_plate_count", "total plate count", "plate count"), catalog.SpecSheet{})
	assert.Equal(t, "100", res.Result.String())
}

func TestResolve_NamedTriplet(t *testing.T) {
	rec := record.FromPairs(
		"product_name", "Soy Lecithin",
		"characteristic_ai_name", "Acetone Insoluble",
		"characteristic_ai_result", "63.5 %",
		"characteristic_ai_limit", "Min 62%",
	)
	res := New(nil).Resolve(rec, param("acetone", "acetone insoluble"), catalog.SpecSheet{})
	assert.Equal(t, SchemeNamed, res.Scheme)
	assert.Equal(t, "63.5 %", res.Result.String())
	assert.Equal(t, "Min 62%", res.Spec.String())
	assert.Equal(t, "characteristic_ai_limit", res.SpecField)
}

func TestResolve_ProductNameIsNotACandidate(t *testing.T) {
	rec := record.FromPairs("product_name", "Moisture Guard", "product_result", "x")
	res := New(nil).Resolve(rec, param("moisture"), catalog.SpecSheet{})
	assert.False(t, res.Found())
}

func TestResolve_FlatFallback(t *testing.T) {
	rec := record.FromPairs(
		"salmonella_observed", "Absent",
		"salmonella_spec", "Absent in 375 g",
		"salmonella_result", "ignored, observed came first",
	)
	res := New(nil).Resolve(rec, param("salmonella"), catalog.SpecSheet{})
	assert.Equal(t, SchemeFlat, res.Scheme)
	assert.Equal(t, "Absent", res.Result.String())
	assert.Equal(t, "Absent in 375 g", res.Spec.String())
	assert.Equal(t, "salmonella_observed", res.ResultField)
}

func TestResolve_FlatFillsMissingSide(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Moisture",
		"observed_result_1", "4.2",
		"moisture_limit", "Max 5",
	)
	res := New(nil).Resolve(rec, param("moisture"), catalog.SpecSheet{})
	assert.Equal(t, SchemeNumbered, res.Scheme)
	assert.Equal(t, "4.2", res.Result.String())
	assert.Equal(t, "Max 5", res.Spec.String())
	assert.Equal(t, "moisture_limit", res.SpecField)
}

func TestResolve_Missing(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Protein",
		"observed_result_1", "80",
		"specification_1", "Min 78",
	)
	res := New(nil).Resolve(rec, param("moisture"), catalog.SpecSheet{})
	assert.False(t, res.Found())
	assert.False(t, res.Result.Present())
	assert.False(t, res.Spec.Present())
	assert.Equal(t, SchemeNone, res.Scheme)
	assert.Equal(t, SourceNone, res.SpecSource)
}

func TestResolve_BlankValuesAreAbsent(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Moisture",
		"observed_result_1", "   ",
		"specification_1", "Max 5",
	)
	res := New(nil).Resolve(rec, param("moisture"), catalog.SpecSheet{})
	assert.False(t, res.Result.Present())
	assert.True(t, res.Spec.Present())
}

func TestResolve_ExcludedLabel(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Color (10% solution in toluene)",
		"observed_result_1", "12",
		"specification_1", "Max 14",
		"test_parameter_2_name", "Residual Toluene",
		"observed_result_2", "<1",
		"specification_2", "Max 2 ppm",
	)
	tol := param("toluene", "toluene").WithExclude("color")
	res := New(nil).Resolve(rec, tol, catalog.SpecSheet{})
	assert.Equal(t, "<1", res.Result.String())
}

func TestResolve_SpecSheetFallback(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Peroxide value",
		"observed_result_1", "1.2",
	)
	sheet := catalog.NewSpecSheet([]catalog.SpecLine{{Key: "Peroxide value", Spec: "Max 10 meq/kg"}})
	res := New(nil).Resolve(rec, param("peroxide", "peroxide value"), sheet)
	assert.Equal(t, "Max 10 meq/kg", res.Spec.String())
	assert.Equal(t, SourceSheet, res.SpecSource)
}

func TestResolve_Annotation(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_4_name", "Salmonella",
		"observed_result_4", "Absent",
		"specification_4", "Absent",
		"salmonella_sample", "3X125 g composite",
	)
	def := catalog.NewParameter("salmonella", constants.PolicyZeroTolerance).
		WithAnnotate("15x25 g", "3x125 g", "375 g")
	res := New(nil).Resolve(rec, def, catalog.SpecSheet{})
	assert.Equal(t, "3x125 g", res.Note)

	plain := New(nil).Resolve(rec, catalog.NewParameter("salmonella", constants.PolicyZeroTolerance), catalog.SpecSheet{})
	assert.Empty(t, plain.Note)
}
