package deepresearch

import (
	"fmt"
	"strings"
)

// charsPerToken is the deterministic byte/character heuristic the prompt
// trimmer uses to estimate token counts (§4.1: "a deterministic estimator
// (e.g., a byte/character heuristic)"). Roughly matches the ~4
// characters-per-token rule of thumb for English prose.
const charsPerToken = 4

// TrimToTokens truncates text to at most maxTokens tokens per the
// charsPerToken heuristic, cutting on a rune boundary so multi-byte UTF-8
// sequences are never split.
func TrimToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	limit := maxTokens * charsPerToken
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

const (
	sourceSnippetTokens   = 3000
	sourceBodyTokens      = 25000
	learningsBlockTokens  = 150000
)

func renderLearningsForPrompt(learnings []WeightedLearning) string {
	if len(learnings) == 0 {
		return "(none yet)"
	}
	var b strings.Builder
	for _, l := range learnings {
		fmt.Fprintf(&b, "- [reliability %.2f] %s\n", l.Reliability, l.Content)
	}
	return b.String()
}

func renderDirectionsForPrompt(directions []ResearchDirection) string {
	if len(directions) == 0 {
		return "(none)"
	}
	sorted := sortDirectionsByPriorityDesc(directions)
	var b strings.Builder
	for _, d := range sorted {
		fmt.Fprintf(&b, "- (priority %d) %s", d.Priority, d.Question)
		if d.ParentGoal != "" {
			fmt.Fprintf(&b, " [from: %s]", d.ParentGoal)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderPreferencesBlock(prefs string) string {
	if strings.TrimSpace(prefs) == "" {
		return ""
	}
	return fmt.Sprintf("\nSource preferences (apply these when judging sources):\n%s\n", strings.TrimSpace(prefs))
}

// plannerSystemPrompt and buildPlannerUserPrompt drive §4.8 step 1.
const plannerSystemPrompt = "You are a meticulous research planner. Given a topic and any prior knowledge or directions, produce a short list of distinct web search queries that will make the most progress toward a thorough answer. Prefer queries that cover different angles over near-duplicates. Mark a query as a verification query only when it exists to corroborate a specific low-reliability prior learning."

func buildPlannerUserPrompt(topic string, breadth int, seeded []WeightedLearning, directions []ResearchDirection, prefs string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic:\n%s\n\n", topic)
	fmt.Fprintf(&b, "Generate up to %d search queries.\n\n", breadth)
	b.WriteString("Prior learnings (verify low-reliability ones, extend high-reliability ones):\n")
	b.WriteString(renderLearningsForPrompt(seeded))
	b.WriteString("\nPrioritized research directions (highest priority first):\n")
	b.WriteString(renderDirectionsForPrompt(directions))
	b.WriteString(renderPreferencesBlock(prefs))
	return b.String()
}

// buildPreFilterUserPrompt drives §4.5.
const preFilterSystemPrompt = "You are a fast relevance gate for search results. Drop ONLY obvious junk: SEO spam, clickbait listicles, ad aggregators, results clearly irrelevant to the query, or results that violate stated source preferences. Otherwise pass the result through."

func buildPreFilterUserPrompt(query string, hit SearchHit, prefs string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	fmt.Fprintf(&b, "URL: %s\n", hit.URL)
	fmt.Fprintf(&b, "Domain: %s\n", domainOf(hit.URL))
	fmt.Fprintf(&b, "Title: %s\n", hit.Title)
	fmt.Fprintf(&b, "Description: %s\n", hit.Description)
	b.WriteString(renderPreferencesBlock(prefs))
	b.WriteString("\nShould this result be scraped for the query above?")
	return b.String()
}

// buildEvaluatorUserPrompt drives §4.6.
const evaluatorSystemPrompt = "You judge source reliability and suitability for a research query. Holistically judge whether each source is trustworthy and relevant — do not just keyword-match. Score from 0 (untrustworthy/irrelevant) to 1 (highly trustworthy and directly relevant)."

func buildEvaluatorUserPrompt(query string, pages []FetchedPage, prefs string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	b.WriteString(renderPreferencesBlock(prefs))
	b.WriteString("\nSources (index, url, domain, title, snippet):\n")
	for i, p := range pages {
		snippet := TrimToTokens(p.Markdown, sourceSnippetTokens)
		fmt.Fprintf(&b, "\n[%d] %s\nDomain: %s\nTitle: %s\n%s\n", i, p.URL, domainOf(p.URL), p.Title, snippet)
	}
	return b.String()
}

// buildExtractorUserPrompt drives §4.7.
const extractorSystemPrompt = "You extract weighted learnings and prioritized follow-up questions from research sources. Only state facts the sources actually support. Weight each learning by how well-supported it is across the given sources."

func buildExtractorUserPrompt(researchGoal string, pages []FetchedPage, meta []SourceMetadata, numLearnings, numFollowUps int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research goal: %s\n\n", researchGoal)
	fmt.Fprintf(&b, "Produce up to %d learnings and up to %d prioritized follow-up questions.\n\n", numLearnings, numFollowUps)
	b.WriteString("Sources (reliability, domain, title, body):\n")
	for i, p := range pages {
		rel := 0.5
		if i < len(meta) {
			rel = meta[i].ReliabilityScore
		}
		body := TrimToTokens(p.Markdown, sourceBodyTokens)
		fmt.Fprintf(&b, "\n[reliability %.2f] %s (%s)\n%s\n", rel, p.Title, domainOf(p.URL), body)
	}
	return b.String()
}

// buildReportUserPrompt drives §4.9.
const reportSystemPrompt = "You write long-form, well-organized research reports. Use every learning provided. Be as detailed as possible and aim for 3 or more pages of markdown."

func buildReportUserPrompt(topic string, learnings []WeightedLearning) string {
	var learningsBlock strings.Builder
	learningsBlock.WriteString("Learnings:\n")
	for _, l := range learnings {
		fmt.Fprintf(&learningsBlock, "<learning reliability=\"%.2f\">%s</learning>\n", l.Reliability, l.Content)
	}
	trimmed := TrimToTokens(learningsBlock.String(), learningsBlockTokens)

	var b strings.Builder
	fmt.Fprintf(&b, "Topic:\n%s\n\n", topic)
	b.WriteString(trimmed)
	return b.String()
}

func domainOf(rawURL string) string {
	rest := rawURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/?#"); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, "@"); idx >= 0 {
		rest = rest[idx+1:]
	}
	return rest
}
