package deepresearch

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type reportOutput struct {
	ReportMarkdown string `json:"reportMarkdown" jsonschema:"required"`
}

func reportSchema() Schema {
	return Schema{
		Kind: KindObject,
		Fields: []Field{
			{Name: "reportMarkdown", Kind: KindString, Required: true},
		},
	}
}

// WriteReport implements §4.9. It is never budget-gated: the caller
// should invoke it regardless of BudgetState.Reached (§4.2, §7
// BudgetReached policy: "report still produced").
func WriteReport(ctx context.Context, gw Gateway, budget *Budget, topic string, result ResearchResult) (string, error) {
	var out reportOutput
	usage, err := gw.GenerateStructured(ctx, reportSchema(), reportSystemPrompt, buildReportUserPrompt(topic, result.Learnings), &out)
	budget.Record(usage)
	if err != nil {
		return "", ModelError{Op: "report", Err: err}
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(out.ReportMarkdown, "\n"))
	b.WriteString("\n\n## Sources\n\n")

	sources := make([]SourceMetadata, len(result.SourceMeta))
	copy(sources, result.SourceMeta)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].ReliabilityScore > sources[j].ReliabilityScore
	})

	for _, s := range sources {
		title := s.Title
		if title == "" {
			title = s.URL
		}
		fmt.Fprintf(&b, "- [%s](%s) — Reliability: %.2f\n", title, s.URL, s.ReliabilityScore)
		if s.ReliabilityReasoning != "" {
			fmt.Fprintf(&b, "  %s\n", s.ReliabilityReasoning)
		}
		if s.PublishDate != "" {
			fmt.Fprintf(&b, "  Published: %s\n", s.PublishDate)
		}
	}

	return b.String(), nil
}
