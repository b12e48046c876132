package category

// Primary (level 1) category names.
const (
	Strategy   = "ストラテジ系"
	Management = "マネジメント系"
	Technology = "テクノロジ系"
)

// PrimaryOrder is the fixed display order of primary categories.
var PrimaryOrder = []string{Strategy, Management, Technology}

// LV1 maps primary category names to URL-safe slugs.
var LV1 = map[string]string{
	Strategy:   "strategy",
	Management: "management",
	Technology: "technology",
}

// LV2 maps secondary category names to URL-safe slugs.
var LV2 = map[string]string{
	"企業と法務":   "corporate-law",
	"経営戦略":    "business-strategy",
	"マーケティング": "marketing",
	"財務":      "finance",
	"事業継続":    "business-continuity",

	"開発技術":         "development",
	"プロジェクトマネジメント": "project-management",
	"サービスマネジメント":   "service-management",

	"基礎理論":       "fundamentals",
	"コンピュータシステム": "computer-systems",
	"ネットワーク":     "network",
	"データベース":     "database",
	"セキュリティ":     "security",
	"新技術・先端技術":   "emerging-tech",
}

// Slugs resolves both category names. ok is false when either is unknown.
func Slugs(lv1, lv2 string) (lv1Slug, lv2Slug string, ok bool) {
	lv1Slug, ok1 := LV1[lv1]
	lv2Slug, ok2 := LV2[lv2]
	return lv1Slug, lv2Slug, ok1 && ok2
}
