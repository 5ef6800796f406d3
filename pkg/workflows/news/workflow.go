// Package news provides a polling workflow that fetches RSS feeds and keeps
// the entries matching a configured keyword list.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

var (
	defaultFeeds = []string{
		"https://feeds.content.dowjones.io/public/rss/mw_topstories",
	}

	defaultKeywords = []string{
		"stock", "market", "trading", "invest", "earnings",
		"revenue", "profit", "loss", "acquisition", "merger",
		"S&P 500", "Dow Jones", "Nasdaq", "IPO", "cryptocurrency",
		"interest rate", "Federal Reserve", "inflation", "economy",
	}

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

type Workflow struct {
	feeds    []string
	keywords []string
	parser   *gofeed.Parser
	seen     map[string]struct{}
	logger   *slog.Logger
}

func NewWorkflow(config map[string]any, logger *slog.Logger) *Workflow {
	w := &Workflow{
		feeds:    defaultFeeds,
		keywords: defaultKeywords,
		parser:   gofeed.NewParser(),
		seen:     make(map[string]struct{}),
		logger:   logger.With("workflow", "news"),
	}

	if feeds := stringSlice(config["feeds"]); len(feeds) > 0 {
		w.feeds = feeds
	}

	if keywords := stringSlice(config["keywords"]); len(keywords) > 0 {
		w.keywords = keywords
	}

	return w
}

func stringSlice(value any) []string {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))

	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

func (w *Workflow) Validate(_ context.Context, _ map[string]any) bool {
	return true
}

// Process fetches every configured feed and returns the matching articles,
// newest first. Entries already seen by this instance are skipped; the seen
// set lives on the instance, so dedupe only spans one instance's lifetime.
func (w *Workflow) Process(ctx context.Context, _ map[string]any) (map[string]any, error) {
	articles := make([]map[string]any, 0)
	sources := make(map[string]struct{})
	keywordsFound := make(map[string]struct{})

	for _, feedURL := range w.feeds {
		feed, err := w.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
		}

		for _, entry := range feed.Items {
			id := entry.GUID
			if id == "" {
				id = entry.Link
			}

			if _, ok := w.seen[id]; ok {
				continue
			}

			title := cleanText(entry.Title)
			description := cleanText(entry.Description)
			content := cleanText(entry.Content)

			matched := w.matchKeywords(title + " " + description + " " + content)
			if len(matched) == 0 {
				continue
			}

			w.seen[id] = struct{}{}

			published := entry.Published
			if published == "" {
				published = time.Now().UTC().Format(time.RFC3339)
			}

			articles = append(articles, map[string]any{
				"id":          id,
				"title":       title,
				"description": description,
				"link":        entry.Link,
				"published":   published,
				"keywords":    matched,
				"source":      feed.Title,
			})

			sources[feed.Title] = struct{}{}

			for _, kw := range matched {
				keywordsFound[kw] = struct{}{}
			}
		}
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i]["published"].(string) > articles[j]["published"].(string)
	})

	w.logger.InfoContext(ctx, "News feeds processed",
		"feeds", len(w.feeds),
		"articles", len(articles),
	)

	return map[string]any{
		"articles":       articles,
		"total_articles": len(articles),
		"sources":        sortedKeys(sources),
		"keywords_found": sortedKeys(keywordsFound),
	}, nil
}

func (w *Workflow) matchKeywords(text string) []string {
	lower := strings.ToLower(text)

	var matched []string

	for _, keyword := range w.keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}

	return matched
}

func (w *Workflow) Cleanup(_ context.Context) error {
	return nil
}

// cleanText strips markup and normalizes whitespace.
func cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTagPattern.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
