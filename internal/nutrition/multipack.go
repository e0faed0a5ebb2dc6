package nutrition

import "regexp"

// Patterns run against FoldName output, so punctuation is already spaces and
// "K-Cup", "k cup" and "KCup" collapse to a small set of spellings.
var (
	podPattern       = regexp.MustCompile(`\b(pods?|capsules?|k ?cups?|keurig|nespresso)\b`)
	barPattern       = regexp.MustCompile(`\b(protein|granola|candy|energy|cereal|snack|chocolate|nut|fruit|breakfast) bars?\b`)
	multiPackPattern = regexp.MustCompile(`\b(multi ?packs?|variety packs?|value packs?|family packs?|\d+ ?(packs?|pk|count|ct)|pack of \d+|box of \d+)\b`)
	drinkPattern     = regexp.MustCompile(`\b(milk|juice|water|soda|coffee|tea|drink|beverage|smoothie|broth|soup|kefir|lemonade|cola)\b`)
)

// IsMultiPack reports whether a product name describes a package of several
// consumable units (pods, capsules, N-packs, counts) rather than one serving.
// It is a heuristic gate for the plausibility checker and the estimator, not
// a classification to rely on elsewhere.
func IsMultiPack(name string) bool {
	folded := FoldName(name)
	return podPattern.MatchString(folded) || multiPackPattern.MatchString(folded)
}

func isPodProduct(folded string) bool { return podPattern.MatchString(folded) }

func isBarProduct(folded string) bool { return barPattern.MatchString(folded) }

func isDrink(folded string) bool { return drinkPattern.MatchString(folded) }
