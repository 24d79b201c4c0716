// Package catalog assigns backend products to the storefront's fixed set of
// display categories and synthesizes display ratings. The backend does not
// guarantee clean categorization, so classification cascades through signals
// of decreasing authority: collection membership, product-type aliases, an
// exact product-type key, keyword scanning, and a few last-resort substrings.
package catalog

import "strings"

// FallbackCategory is used when no signal matches and the product carries
// no raw type of its own.
const FallbackCategory = "General"

// Categories lists the display categories in declared order. Keyword
// scanning checks categories in this order and the first match wins.
var Categories = []string{
	"Oxygen Concentrator",
	"BiPAP",
	"CPAP",
	"Patient Monitor",
	"Nebulizer",
	"Suction Machine",
	"Thermometer",
	"Hospital Furniture",
	"Wheelchair",
	"Masks & Accessories",
}

// categoryKeywords maps each category to the substrings that suggest it.
// Matched case-insensitively against title + type + tags.
var categoryKeywords = map[string][]string{
	"Oxygen Concentrator": {"oxygen", "concentrator", "portable", "dedakj", "philips", "evox", "5l", "10l", "flow", "oxy med"},
	"BiPAP":               {"bipap", "bi-level", "resmed", "bmc", "dreamstation", "airsense", "lumis", "bilevel"},
	"CPAP":                {"cpap", "auto cpap", "apnea", "sleep", "airsense", "resmart"},
	"Patient Monitor":     {"monitor", "multipara", "vital", "ecg", "pulse", "oximeter", "heart rate", "bpl"},
	"Nebulizer":           {"nebulizer", "compressor", "mesh", "inhaler", "omron"},
	"Suction Machine":     {"suction", "aspirator", "vacuum", "phlegm"},
	"Thermometer":         {"thermometer", "infrared", "digital", "temperature", "gun"},
	"Hospital Furniture":  {"bed", "mattress", "table", "trolley", "stretcher", "fowler", "ward", "overbed"},
	"Wheelchair":          {"wheelchair", "karma", "walker", "commode"},
	"Masks & Accessories": {"mask", "tubing", "cannula", "filter", "full face", "nasal"},
}

// categoryAliases maps each category to normalized alternate spellings and
// collection handles. Alias matching is exact after normalization, so it is
// a much stronger signal than keyword scanning.
var categoryAliases = map[string][]string{
	"Oxygen Concentrator": {"oxygenconcentrator", "oxygenconcentrators", "oxygen"},
	"BiPAP":               {"bipap", "bipapmachine", "bilevel"},
	"CPAP":                {"cpap", "cpapmachine", "autocpap"},
	"Patient Monitor":     {"patientmonitor", "patientmonitors", "monitor", "multiparamonitor"},
	"Nebulizer":           {"nebulizer", "nebulizers"},
	"Suction Machine":     {"suctionmachine", "suctionmachines", "aspirator"},
	"Thermometer":         {"thermometer", "thermometers"},
	"Hospital Furniture":  {"hospitalfurniture", "hospitalbed", "hospitalbeds"},
	"Wheelchair":          {"wheelchair", "wheelchairs"},
	"Masks & Accessories": {"masksandaccessories", "mask", "masks", "cpapmask", "bipapmask"},
}

// Collection identifies a backend collection a product belongs to.
type Collection struct {
	Title  string
	Handle string
}

// normalizeKey lowercases, spells out "&", and strips everything outside
// [a-z0-9] so "Masks & Accessories" and "masks-and-accessories" compare equal.
func normalizeKey(value string) string {
	v := strings.ToLower(value)
	v = strings.ReplaceAll(v, "&", "and")
	var b strings.Builder
	for _, r := range v {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// categoryFromAliases returns the first category with an alias exactly
// matching one of the normalized raw values, or "" when none match.
func categoryFromAliases(rawValues []string) string {
	normalized := make(map[string]bool, len(rawValues))
	for _, v := range rawValues {
		if v == "" {
			continue
		}
		normalized[normalizeKey(v)] = true
	}
	if len(normalized) == 0 {
		return ""
	}
	for _, category := range Categories {
		for _, alias := range categoryAliases[category] {
			if normalized[alias] {
				return category
			}
		}
	}
	return ""
}

// Infer classifies a product into exactly one display category.
//
// Precedence, highest first:
//  1. alias match against collection titles/handles
//  2. alias match against the raw product type
//  3. exact match of the raw product type against a category key
//  4. keyword substring scan over title + type + tags
//  5. last-resort substrings
//  6. the raw product type, or FallbackCategory when empty
//
// Collection membership is the most authoritative signal the backend
// offers; keyword scanning is the least.
func Infer(title string, tags []string, productType string, collections []Collection) string {
	collectionValues := make([]string, 0, len(collections)*2)
	for _, c := range collections {
		collectionValues = append(collectionValues, c.Title, c.Handle)
	}
	if cat := categoryFromAliases(collectionValues); cat != "" {
		return cat
	}

	if cat := categoryFromAliases([]string{productType}); cat != "" {
		return cat
	}

	if _, ok := categoryKeywords[productType]; ok {
		return productType
	}

	searchString := strings.ToLower(title + " " + productType + " " + strings.Join(tags, " "))

	for _, category := range Categories {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(searchString, keyword) {
				return category
			}
		}
	}

	switch {
	case strings.Contains(searchString, "oxygen"):
		return "Oxygen Concentrator"
	case strings.Contains(searchString, "bipap"):
		return "BiPAP"
	case strings.Contains(searchString, "cpap"):
		return "CPAP"
	case strings.Contains(searchString, "monitor"):
		return "Patient Monitor"
	}

	if productType != "" {
		return productType
	}
	return FallbackCategory
}

// Keywords returns the keyword list for a category. When the category is
// unknown, it falls back to a fuzzy match over category names (substring,
// case-insensitive) the way the listing page's category filter does.
func Keywords(category string) []string {
	if kws, ok := categoryKeywords[category]; ok {
		return kws
	}
	lower := strings.ToLower(category)
	for _, name := range Categories {
		if strings.Contains(strings.ToLower(name), lower) {
			return categoryKeywords[name]
		}
	}
	return nil
}
