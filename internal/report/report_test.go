package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/resolve"
)

func lecithin(t *testing.T) *catalog.Product {
	t.Helper()
	c, err := catalog.New(catalog.Options{
		Parameters: []catalog.Parameter{
			catalog.NewParameter("moisture", constants.PolicyNumeric, "moisture"),
			catalog.NewParameter("salmonella", constants.PolicyZeroTolerance, "salmonella").WithAnnotate("375 g"),
			catalog.NewParameter("appearance", constants.PolicyCategorical, "appearance"),
		},
	}, catalog.ProductSpec{
		Name:     "lecithin_adm",
		Required: []string{"moisture", "salmonella", "appearance", "viscosity"},
		Critical: []string{"moisture", "salmonella"},
		Specs:    []catalog.SpecLine{{Key: "viscosity", Spec: "Max 15000"}},
	})
	require.NoError(t, err)
	p, ok := c.Product("lecithin_adm")
	require.True(t, ok)
	return p
}

func TestAssemble(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Moisture",
		"observed_result_1", "0.4",
		"specification_1", "Max 1.0%",
		"test_parameter_2_name", "Salmonella (375 g)",
		"observed_result_2", "<3",
		"specification_2", "Absent",
		"test_parameter_3_name", "Appearance",
		"observed_result_3", "Brown paste",
		"specification_3", "Amber liquid",
		"viscosity_result", "9,800 cP",
	)
	rep := NewAssembler(nil, nil, nil).Assemble(rec, lecithin(t))

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "lecithin_adm", rep.Product)
	assert.Equal(t, []string{"moisture", "salmonella", "appearance", "viscosity"},
		[]string{rep.Rows[0].Parameter, rep.Rows[1].Parameter, rep.Rows[2].Parameter, rep.Rows[3].Parameter})

	assert.Equal(t, constants.StatusWithinSpec, rep.Rows[0].Verdict.Status)
	assert.Equal(t, "0.4", rep.Rows[0].RawResult)
	assert.Equal(t, "Max 1.0%", rep.Rows[0].RawSpec)

	assert.Equal(t, constants.StatusWithinSpec, rep.Rows[1].Verdict.Status)
	assert.Equal(t, "375 g", rep.Rows[1].Note)

	assert.Equal(t, constants.StatusTextualMismatch, rep.Rows[2].Verdict.Status)
	assert.False(t, rep.Rows[2].Critical)

	assert.Equal(t, constants.StatusWithinSpec, rep.Rows[3].Verdict.Status)
	assert.Equal(t, resolve.SourceSheet, rep.Rows[3].SpecSource)

	assert.False(t, rep.NonCompliant, "only non-critical rows failed")
	assert.Len(t, rep.Failures(), 1)
	assert.Equal(t, 3, rep.Counts()[constants.StatusWithinSpec])
}

func TestAssemble_CriticalFailureFlagsReport(t *testing.T) {
	rec := record.FromPairs(
		"test_parameter_1_name", "Moisture",
		"observed_result_1", "1.4",
		"specification_1", "Max 1.0%",
	)
	rep := NewAssembler(nil, nil, nil).Assemble(rec, lecithin(t))

	assert.True(t, rep.NonCompliant)
	assert.Equal(t, constants.StatusExceedsUpperBound, rep.Rows[0].Verdict.Status)
	assert.Equal(t, constants.StatusMissing, rep.Rows[1].Verdict.Status)
}

func TestAssemble_EmptyRecordYieldsMissingRows(t *testing.T) {
	rep := NewAssembler(nil, nil, nil).Assemble(record.FromPairs(), lecithin(t))
	require.Len(t, rep.Rows, 4)
	for _, row := range rep.Rows[:3] {
		assert.Equal(t, constants.StatusMissing, row.Verdict.Status, row.Parameter)
	}
	assert.True(t, rep.NonCompliant)
}
