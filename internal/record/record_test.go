package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FlatObjectKeepsOrder(t *testing.T) {
	rec, err := Decode([]byte(`{"test_parameter_2_name":"Ash","test_parameter_1_name":"Moisture","observed_result_1":4.2}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"test_parameter_2_name", "test_parameter_1_name", "observed_result_1"}, rec.Keys())
	n, ok := rec.GetNumber("observed_result_1")
	require.True(t, ok)
	assert.InDelta(t, 4.2, n, 1e-9)
	assert.True(t, rec.Get("observed_result_1").IsNumber())
}

func TestDecode_Envelope(t *testing.T) {
	t.Run("content object", func(t *testing.T) {
		rec, err := Decode([]byte(`{"filename":"a.pdf","content":{"product_name":"Whey Powder","moisture_result":"3.1"}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"product_name", "moisture_result"}, rec.Keys())
	})

	t.Run("content string", func(t *testing.T) {
		rec, err := Decode([]byte(`{"content":"{\"product\":\"SMP\",\"salmonella_result\":\"Absent\"}"}`))
		require.NoError(t, err)
		s, ok := rec.GetString("salmonella_result")
		require.True(t, ok)
		assert.Equal(t, "Absent", s)
	})

	t.Run("content list merged first wins", func(t *testing.T) {
		rec, err := Decode([]byte(`{"content":[{"a":"1"},{"a":"2","b":"3"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, rec.Keys())
		assert.Equal(t, "1", rec.Get("a").String())
	})

	t.Run("data wrapper", func(t *testing.T) {
		rec, err := Decode([]byte(`{"success":true,"data":{"content":{"x":"y"}}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, rec.Keys())
	})
}

func TestDecode_RejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestValue(t *testing.T) {
	assert.False(t, Absent.Present())
	assert.False(t, Of("   ").Present())
	assert.True(t, Of("ND").Present())
	assert.True(t, Of(0).Present())

	n, ok := Of(12).Number()
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	_, ok = Of("12").Number()
	assert.False(t, ok, "text is not a number until parsed")

	s, ok := Of(true).Text()
	assert.True(t, ok)
	assert.Equal(t, "true", s)

	_, ok = Of(map[string]any{"a": 1}).Text()
	assert.False(t, ok)
}

func TestRecordAccessors(t *testing.T) {
	rec := FromPairs(
		"Product_Name", "Soya Lecithin",
		"supplier", "ADM Europe",
		"blank", "  ",
	)
	s, ok := rec.GetString("product_name")
	assert.True(t, ok)
	assert.Equal(t, "Soya Lecithin", s)

	_, ok = rec.GetString("blank")
	assert.False(t, ok)

	assert.Equal(t, "ADM Europe", rec.FirstString("company_name", "supplier"))
	assert.Equal(t, "", rec.FirstString("missing"))

	var nilRec *Record
	assert.Equal(t, 0, nilRec.Len())
	assert.False(t, nilRec.Get("x").Present())
}

func TestFromMapSortsKeys(t *testing.T) {
	rec := FromMap(map[string]any{"b": 1, "a": "x"})
	assert.Equal(t, []string{"a", "b"}, rec.Keys())
	assert.Equal(t, map[string]any{"a": "x", "b": 1.0}, rec.Map())
}
