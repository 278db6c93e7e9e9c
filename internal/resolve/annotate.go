package resolve

import (
	"strings"

	"github.com/joseph-ayodele/labcert/internal/catalog"
	"github.com/joseph-ayodele/labcert/internal/record"
	"github.com/joseph-ayodele/labcert/internal/textnorm"
)

// annotate returns the first configured note pattern found in the matched label,
// the resolved values, or any field whose key mentions the parameter.
func annotate(rec *record.Record, def catalog.Parameter, res Resolution) string {
	patterns := def.Annotations()
	if len(patterns) == 0 {
		return ""
	}
	texts := []string{res.Label, res.Result.String(), res.Spec.String()}
	rec.Each(func(key string, v record.Value) bool {
		if def.Mentioned(textnorm.Key(key)) {
			texts = append(texts, v.String())
		}
		return true
	})
	for _, p := range patterns {
		lp := strings.ToLower(p)
		for _, t := range texts {
			if t != "" && strings.Contains(strings.ToLower(t), lp) {
				return p
			}
		}
	}
	return ""
}
