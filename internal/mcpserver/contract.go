package mcpserver

// MetadataFormatContract describes the per-post metadata file that the
// index build aggregates into index.json.
const MetadataFormatContract = `# shiori Metadata Format Contract

Every post has one JSON metadata file in the items directory
(` + "`" + `docs/data/new_items/<id>.json` + "`" + `). The index build reads every file there,
skips invalid ones, and writes ` + "`" + `docs/data/index.json` + "`" + ` newest first.

## Structure

` + "```" + `json
{
  "id": "20240105-sql-joins",
  "timestamp": "2024-01-05T09:00:00+09:00",
  "title": "SQL の結合を整理する",
  "summary": "内部結合と外部結合の違い",
  "tags": ["sql", "database"],
  "category_lv1": "テクノロジ系",
  "category_lv2": "データベース",
  "post_path": "posts/20240105-sql-joins/"
}
` + "```" + `

## Rules

1. **The document is one JSON object.** Anything else is skipped as invalid.
2. **Required for the index:** ` + "`" + `id` + "`" + `, ` + "`" + `timestamp` + "`" + `, ` + "`" + `title` + "`" + `, ` + "`" + `post_path` + "`" + `.
   Files missing any of them are skipped with a warning.
3. **id** falls back to ` + "`" + `dir` + "`" + ` and then ` + "`" + `dr` + "`" + ` when absent. It names the
   redirect page directory, so use letters, digits, ` + "`" + `.` + "`" + `, ` + "`" + `_` + "`" + ` and ` + "`" + `-` + "`" + `.
4. **timestamp** is ISO-8601 (` + "`" + `YYYY-MM-DD` + "`" + ` or a full datetime). Values without a
   zone are read as UTC. Unparseable values sort last.
5. **tags** is a list of strings or one comma-separated string. Entries are
   trimmed and empty ones dropped.
6. **post_path** is relative to the site root. A leading ` + "`" + `/` + "`" + ` is removed and a
   trailing ` + "`" + `/` + "`" + ` is added.
7. **Categories** are optional, but a post appears in the category tree only
   when both levels are set. Redirect pages are generated only for known
   category names.

## Categories

| category_lv1 | category_lv2 |
|---|---|
| ストラテジ系 | 企業と法務, 経営戦略, マーケティング, 財務, 事業継続 |
| マネジメント系 | 開発技術, プロジェクトマネジメント, サービスマネジメント |
| テクノロジ系 | 基礎理論, コンピュータシステム, ネットワーク, データベース, セキュリティ, 新技術・先端技術 |
`
