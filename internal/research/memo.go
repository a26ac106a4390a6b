package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalopsmy/legalops/internal/llm"
)

// WriteMemo produces a short argument memo over the ranked results. An empty
// result set yields a fixed no-authority memo; without a configured caller
// the memo falls back to a deterministic authority list.
func WriteMemo(ctx context.Context, exec *llm.StageExecutor, q Query, results []CaseResult) (string, bool, error) {
	if len(results) == 0 {
		return emptyResultMemo(q), false, nil
	}
	if exec == nil {
		return fallbackMemo(q, results), true, nil
	}

	memo, _, err := exec.RunText(ctx, "argument_memo", buildMemoPrompt(q, results))
	if err != nil {
		return "", false, err
	}
	return memo, false, nil
}

func buildMemoPrompt(q Query, results []CaseResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a short argument memo for a Malaysian civil matter on: %s\n\n", q.Text)
	sb.WriteString("Authorities, best match first. Rely only on these; binding decisions lead.\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s %s (%s, %d, binding=%t)\n  MS: %s\n  EN: %s\n",
			r.Title, r.Citation, r.Court, r.Year, r.Binding, r.HeadnoteMS, r.HeadnoteEN)
	}
	sb.WriteString("\nStructure the memo as: issue, governing authorities, application, recommended position.")
	return sb.String()
}

func emptyResultMemo(q Query) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Argument memo\n\nQuery: %s\n\nNo authority was found for this query.\n", q.Text)
	sb.WriteString("Broaden the search terms or drop the year filter and run the search again.\n")
	return sb.String()
}

func fallbackMemo(q Query, results []CaseResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Argument memo (auto-generated authority list)\n\nQuery: %s\n\nAuthorities:\n", q.Text)
	for _, r := range results {
		label := "persuasive"
		if r.Binding {
			label = "binding"
		}
		fmt.Fprintf(&sb, "- %s %s (%s, %d, %s)\n", r.Title, r.Citation, r.Court, r.Year, label)
	}
	sb.WriteString("\nReview the authorities above and prepare the argument manually.\n")
	return sb.String()
}
