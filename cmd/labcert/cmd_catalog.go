package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/labcert/internal/core"
)

func newCatalogCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Validate the catalog and print each product's evaluation plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.config()
			if cfg.Catalog.Path == "" {
				return fmt.Errorf("no catalog configured (set LABCERT_CATALOG or --catalog)")
			}
			cat, err := core.LoadCatalog(cfg.Catalog.Path, root.keysFile, root.sheets)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range cat.Products() {
				p, _ := cat.Product(name)
				keys := make([]string, 0, len(p.Required()))
				for _, k := range p.Required() {
					def := p.Parameter(k)
					entry := fmt.Sprintf("%s[%s]", k, def.Policy)
					if !p.IsCritical(k) {
						entry += "(info)"
					}
					keys = append(keys, entry)
				}
				fmt.Fprintf(w, "%s: %s\n", p.Name(), strings.Join(keys, ", "))
				if n := p.SpecSheet().Len(); n > 0 {
					fmt.Fprintf(w, "  spec sheet: %d entries\n", n)
				}
			}
			return nil
		},
	}
}
