package analytics

import "strings"

// Expense category names produced by the default classifier.
const (
	CategoryAdsTargeted   = "Ads (targeted)"
	CategoryAdsContextual = "Ads (contextual)"
	CategoryCreatives     = "Creatives"
	CategoryDelivery      = "Delivery"
	CategoryPackaging     = "Packaging"
	CategoryReturns       = "Returns"
	CategoryWebsite       = "Website"
	CategorySubscriptions = "Subscriptions"
	CategoryOther         = "Other"
)

// QuickExpensePrefix marks descriptions written by the quick-expense flow;
// the text after it is taken verbatim as the category.
const QuickExpensePrefix = "Quick expense:"

// legacyQuickExpensePrefix is the prefix older ledgers were written with.
const legacyQuickExpensePrefix = "быстрая затрата:"

// Classifier assigns an expense description to a category.
type Classifier interface {
	Classify(description string) string
}

// Matcher reports whether a description belongs to some class.
type Matcher interface {
	Match(description string) bool
}

// CategoryRule maps a set of lowercase keywords to a category.
type CategoryRule struct {
	Category string
	Keywords []string
}

// KeywordClassifier matches descriptions against an ordered rule table.
// The first rule with a keyword contained in the lowercased description wins.
type KeywordClassifier struct {
	rules    []CategoryRule
	fallback string
}

// NewKeywordClassifier returns a classifier over rules, falling back to
// CategoryOther when nothing matches.
func NewKeywordClassifier(rules []CategoryRule) *KeywordClassifier {
	return &KeywordClassifier{rules: rules, fallback: CategoryOther}
}

// DefaultClassifier returns the classifier with the built-in rule table.
func DefaultClassifier() *KeywordClassifier {
	return NewKeywordClassifier(DefaultRules())
}

// DefaultRules is the built-in keyword table. Order matters.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{CategoryAdsTargeted, []string{"таргет", "социальн", "targeted", "social", "instagram", "facebook"}},
		{CategoryAdsContextual, []string{"контекст", "яндекс", "google", "поиск", "реклам", "context", "search", "advert"}},
		{CategoryCreatives, []string{"креатив", "дизайн", "фото", "видео", "creative", "design", "photo", "video"}},
		{CategoryDelivery, []string{"доставк", "курьер", "почта", "тк", "deliver", "courier", "shipping", "postage"}},
		{CategoryPackaging, []string{"упаковк", "коробк", "пленк", "packag", "box", "wrap"}},
		{CategoryReturns, []string{"возврат", "отмен", "refund", "return", "cancel"}},
		{CategoryWebsite, []string{"сайт", "хостинг", "домен", "website", "hosting", "domain"}},
		{CategorySubscriptions, []string{"подписк", "сервис", "приложен", "subscription", "saas", "software"}},
	}
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(description string) string {
	lower := strings.ToLower(description)
	for _, rule := range k.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	if category, ok := quickExpenseCategory(description); ok {
		return category
	}
	return k.fallback
}

func quickExpenseCategory(description string) (string, bool) {
	lower := strings.ToLower(description)
	if !strings.Contains(lower, strings.ToLower(QuickExpensePrefix)) && !strings.Contains(lower, legacyQuickExpensePrefix) {
		return "", false
	}
	_, rest, _ := strings.Cut(description, ":")
	category, _, _ := strings.Cut(rest, ":")
	category = strings.TrimSpace(category)
	return category, category != ""
}

// KeywordMatcher matches descriptions containing any of its lowercase keywords.
type KeywordMatcher []string

// DefaultAdMatcher recognises advertising spend.
func DefaultAdMatcher() KeywordMatcher {
	return KeywordMatcher{"реклам", "таргет", "контекст", "продвижен", "advert", "target", "context", "promot", "marketing"}
}

// Match implements Matcher.
func (m KeywordMatcher) Match(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range m {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// QuickExpenseCategories lists the categories offered by the quick-expense flow.
func QuickExpenseCategories() []string {
	return []string{
		CategoryAdsTargeted,
		CategoryAdsContextual,
		CategoryCreatives,
		CategoryDelivery,
		CategoryPackaging,
		CategoryReturns,
		CategoryWebsite,
		CategorySubscriptions,
		CategoryOther,
	}
}
