package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/common"
	"github.com/joseph-ayodele/labcert/internal/rules"
)

type fileDoc struct {
	DetectionLimit  float64             `yaml:"detection_limit"`
	ProductKeywords []string            `yaml:"product_keywords"`
	Parameters      map[string]paramDoc `yaml:"parameters"`
	Products        []productDoc        `yaml:"products"`
}

type paramDoc struct {
	Label    string   `yaml:"label"`
	Aliases  []string `yaml:"aliases"`
	Policy   string   `yaml:"policy"`
	Exclude  []string `yaml:"exclude"`
	Annotate []string `yaml:"annotate"`
	Rule     string   `yaml:"rule"`
}

type productDoc struct {
	Name       string              `yaml:"name"`
	Required   []string            `yaml:"required"`
	Critical   []string            `yaml:"critical"`
	Specs      yaml.Node           `yaml:"specs"`
	Parameters map[string]paramDoc `yaml:"parameters"`
}

// Load reads and validates a YAML catalog file.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse validates a YAML catalog document against its schema and builds the catalog.
func Parse(data []byte) (*Catalog, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", common.ErrInvalidInput, err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog is not JSON-compatible: %v", common.ErrInvalidInput, err)
	}
	schema, err := catalogSchemaOnce()
	if err != nil {
		return nil, err
	}
	if err := common.ValidateJSON(schema, asJSON); err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", common.ErrInvalidInput, err)
	}

	opts := Options{
		ProductKeywords: doc.ProductKeywords,
		DetectionLimit:  doc.DetectionLimit,
	}
	for key, pd := range doc.Parameters {
		def, err := pd.build(key)
		if err != nil {
			return nil, err
		}
		opts.Parameters = append(opts.Parameters, def)
	}

	specs := make([]ProductSpec, 0, len(doc.Products))
	for _, prod := range doc.Products {
		ps := ProductSpec{
			Name:     prod.Name,
			Required: prod.Required,
			Critical: prod.Critical,
		}
		for key, pd := range prod.Parameters {
			def, err := pd.build(key)
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", prod.Name, err)
			}
			ps.Parameters = append(ps.Parameters, def)
		}
		lines, err := specLines(&prod.Specs)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", prod.Name, err)
		}
		ps.Specs = lines
		specs = append(specs, ps)
	}
	return New(opts, specs...)
}

func (pd paramDoc) build(key string) (Parameter, error) {
	policy, ok := constants.CanonicalizePolicy(pd.Policy)
	if !ok {
		return Parameter{}, fmt.Errorf("%w: parameter %s: unknown policy %q", common.ErrInvalidInput, key, pd.Policy)
	}
	def := NewParameter(key, policy, pd.Aliases...).
		WithExclude(pd.Exclude...).
		WithAnnotate(pd.Annotate...)
	if strings.TrimSpace(pd.Label) != "" {
		def.Label = strings.TrimSpace(pd.Label)
	}
	if strings.TrimSpace(pd.Rule) != "" {
		r, err := rules.Compile(pd.Rule)
		if err != nil {
			return Parameter{}, fmt.Errorf("%w: parameter %s rule: %v", common.ErrInvalidInput, key, err)
		}
		def.Rule = r
	}
	return def, nil
}

// specLines keeps the mapping order of a "specs:" block.
func specLines(n *yaml.Node) ([]SpecLine, error) {
	if n == nil || n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: specs must be a mapping", common.ErrInvalidInput)
	}
	lines := make([]SpecLine, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		lines = append(lines, SpecLine{Key: n.Content[i].Value, Spec: n.Content[i+1].Value})
	}
	return lines, nil
}
