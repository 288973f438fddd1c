package news

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/checkmate/internal/chat"
	"github.com/kalambet/checkmate/internal/openai"
	"golang.org/x/sync/errgroup"
)

const (
	// searchResultCount is how many recent articles back one extraction.
	searchResultCount = 5

	// queryFallback is used verbatim as the search query when derivation
	// fails; a nonsense query simply produces no usable results downstream.
	queryFallback = "search term extraction failed"

	// searchTemperature keeps derivation and extraction mostly deterministic
	// while allowing light paraphrase over messy article text.
	searchTemperature = 0.2
)

const querySystemPrompt = `Extract the single most effective web search query for finding the date of the event the user is asking about.
Respond with ONLY the query text, no quotes and no explanation.

Examples:
"When does the Busan fireworks festival start?" -> Busan fireworks festival 2026 dates
"Is there a BTS concert soon?" -> BTS concert schedule`

const corpusSystemPromptTemplate = `Today's date is %s.
Below are recent news articles. Extract every concrete event date relevant to the user's question and respond with ONLY a JSON object of this exact shape, no prose and no markdown:

{"events": [{"start_date": "YYYY-MM-DD", "end_date": "YYYY-MM-DD", "title": "..."}]}

Rules:
- Only include events you can date from the articles.
- Do not include events that end before today's date.
- If the articles contain no relevant dated event, respond with {"events": []}.`

// SearchClient returns recency-sorted news results for a query.
type SearchClient interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// PageTextFetcher extracts the readable text of an article page.
type PageTextFetcher interface {
	FetchText(ctx context.Context, url string) string
}

// Extractor answers vague schedule questions by searching recent news and
// extracting event dates from the articles.
type Extractor struct {
	llm    chat.Chatter
	model  string
	search SearchClient
	pages  PageTextFetcher
	now    func() time.Time
}

// NewExtractor wires the search-backed extraction path together.
func NewExtractor(llm chat.Chatter, model string, search SearchClient, pages PageTextFetcher) *Extractor {
	return &Extractor{
		llm:    llm,
		model:  model,
		search: search,
		pages:  pages,
		now:    time.Now,
	}
}

// ExtractViaSearch derives a search query from the message, pulls the latest
// matching articles, and extracts event dates from their combined text. It
// never fails; any stage breaking down collapses to an empty, well-formed
// result.
func (e *Extractor) ExtractViaSearch(ctx context.Context, message string) chat.ScheduleResult {
	query := e.deriveQuery(ctx, message)

	results, err := e.search.Search(ctx, query, searchResultCount)
	if err != nil {
		slog.Warn("news search failed", "query", query, "error", err)
		return chat.EmptySchedule()
	}
	if len(results) == 0 {
		slog.Debug("news search returned no results", "query", query)
		return chat.EmptySchedule()
	}

	texts := e.fetchAll(ctx, results)
	return e.extractFromCorpus(ctx, message, strings.Join(texts, "\n\n"))
}

// deriveQuery asks the model for a compact search query, falling back to a
// fixed string when the call fails.
func (e *Extractor) deriveQuery(ctx context.Context, message string) string {
	messages := []openai.Message{
		{Role: "system", Content: querySystemPrompt},
		{Role: "user", Content: message},
	}
	answer, _, err := e.llm.Chat(ctx, e.model, messages, searchTemperature)
	if err != nil {
		slog.Warn("search query derivation failed", "error", err)
		return queryFallback
	}
	query := strings.TrimSpace(answer)
	if query == "" {
		return queryFallback
	}
	return query
}

// fetchAll downloads the article texts concurrently, one slot per result so
// ordering matches the search ranking. Individual failures surface as
// sentinel placeholders, never as errors.
func (e *Extractor) fetchAll(ctx context.Context, results []Result) []string {
	texts := make([]string, len(results))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(searchResultCount)

	for i, r := range results {
		i, r := i, r
		g.Go(func() error {
			texts[i] = e.pages.FetchText(gCtx, r.Link)
			return nil
		})
	}
	// fetchers never return errors
	_ = g.Wait()
	return texts
}

// extractFromCorpus runs the final extraction call over the joined article
// text and filters out events already in the past.
func (e *Extractor) extractFromCorpus(ctx context.Context, message, corpus string) chat.ScheduleResult {
	today := e.now().Format("2006-01-02")
	messages := []openai.Message{
		{Role: "system", Content: fmt.Sprintf(corpusSystemPromptTemplate, today)},
		{Role: "user", Content: fmt.Sprintf("Question: %s\n\nArticles:\n%s", message, corpus)},
	}

	answer, usage, err := e.llm.Chat(ctx, e.model, messages, searchTemperature)
	if err != nil {
		slog.Warn("corpus extraction failed", "error", err)
		return chat.EmptySchedule()
	}
	slog.Debug("corpus extraction finished", "tokens", usage.TotalTokens)

	var result chat.ScheduleResult
	if err := json.Unmarshal([]byte(chat.StripCodeFence(answer)), &result); err != nil {
		slog.Warn("corpus extraction returned unparseable JSON", "error", err, "response", answer)
		return chat.EmptySchedule()
	}
	return dropPastEvents(chat.Normalize(result), e.now())
}

// dropPastEvents removes events whose end date falls strictly before today.
// Undated or unparseable entries are kept; the normalizer has already
// guaranteed a start date exists.
func dropPastEvents(r chat.ScheduleResult, now time.Time) chat.ScheduleResult {
	today := now.Format("2006-01-02")
	out := chat.EmptySchedule()
	for _, ev := range r.Events {
		day := ev.EndDate
		if len(day) > 10 {
			day = day[:10]
		}
		if _, err := time.Parse("2006-01-02", day); err == nil && day < today {
			continue
		}
		out.Events = append(out.Events, ev)
	}
	return out
}
