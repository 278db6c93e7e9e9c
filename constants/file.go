package constants

import "strings"

// AllowedExtensions holds the extraction file extensions picked up by batch and watch modes.
var AllowedExtensions = map[string]struct{}{
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsExtractionFile reports whether path carries an allowed extension.
func IsExtractionFile(path string) bool {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return false
	}
	_, ok := AllowedExtensions[NormalizeExt(path[i:])]
	return ok
}

// Record fields carrying document identity.
var (
	ProductFields = []string{"product_name", "product"}
	CompanyFields = []string{"company_name", "supplier", "manufacturing_vendor_site_name"}
)

// ProductKeywords are matched against the product name before falling back to its first word.
var ProductKeywords = []string{"Lecithin", "Whey", "SMP", "Permeate", "Casein"}
