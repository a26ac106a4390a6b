// Package bundle renders the hearing bundle: evidence outputs composed to
// markdown, converted to HTML, and printed to PDF through headless Chromium.
package bundle

import (
	"fmt"
	"strings"

	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/evidence"
	"github.com/legalopsmy/legalops/internal/intake"
)

// BuildMarkdown composes the bundle document: cover, exhibit index,
// certificates, drafts, and the hearing skeleton.
func BuildMarkdown(snap intake.MatterSnapshot, st *evidence.State, primary, companion *drafting.PleadingDraft) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Hearing Bundle — %s\n\n", snap.MatterID)
	fmt.Fprintf(&sb, "**Court:** %s\n\n**Case type:** %s\n\n", snap.Court, snap.CaseType)
	for _, p := range snap.Parties {
		fmt.Fprintf(&sb, "**%s:** %s\n\n", capitalize(p.Role), p.Name)
	}

	if st.Packet != nil {
		sb.WriteString("## Exhibit Index\n\n")
		sb.WriteString("| Exhibit | Title | Pages |\n|---|---|---|\n")
		for _, e := range st.Packet.Exhibits {
			fmt.Fprintf(&sb, "| %s | %s | %d |\n", e.ID, e.Title, e.Pages)
		}
		fmt.Fprintf(&sb, "\nEstimated bundle length: %d pages.\n\n", st.Packet.PageEstimate)

		sb.WriteString("### Assembly\n\n")
		for _, ins := range st.Packet.Instructions {
			fmt.Fprintf(&sb, "1. %s\n", ins)
		}
		sb.WriteString("\n")
	}

	if primary != nil {
		fmt.Fprintf(&sb, "## Pleading (%s)\n\n```\n%s\n```\n\n", primary.Language, primary.Text())
	}
	if companion != nil {
		fmt.Fprintf(&sb, "## Pleading Companion (%s)\n\n```\n%s\n```\n\n", companion.Language, companion.Text())
	}

	for _, c := range st.Certificates {
		fmt.Fprintf(&sb, "## Translation Certificate — %s\n\n", c.Filename)
		for _, item := range c.Checklist {
			mark := " "
			if item.Satisfied {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s", mark, item.Item)
			if item.Note != "" {
				fmt.Fprintf(&sb, " (%s)", item.Note)
			}
			sb.WriteString("\n")
		}
		if len(c.Warnings) > 0 {
			sb.WriteString("\n**Warnings**\n\n")
			for _, w := range c.Warnings {
				fmt.Fprintf(&sb, "- %s\n", w)
			}
		}
		fmt.Fprintf(&sb, "\n```\n%s\n```\n\n", c.Affidavit)
	}

	if st.Hearing != nil {
		sb.WriteString("## Hearing Preparation\n\n")
		for _, tab := range st.Hearing.Tabs {
			fmt.Fprintf(&sb, "### Tab: %s\n\n", tab.Name)
			for _, item := range tab.Items {
				fmt.Fprintf(&sb, "- %s\n", item)
			}
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "### Oral Opening (BM)\n\n```\n%s\n```\n\n", st.Hearing.OpeningMS)
		fmt.Fprintf(&sb, "### Counsel Notes (EN)\n\n```\n%s\n```\n\n", st.Hearing.NotesEN)
		if len(st.Hearing.FAQs) > 0 {
			sb.WriteString("### Anticipated Questions\n\n")
			for _, f := range st.Hearing.FAQs {
				fmt.Fprintf(&sb, "**Q:** %s\n\n**A:** %s *(%s, confidence %.2f)*\n\n", f.Question, f.Answer, f.Authority, f.Confidence)
			}
		}
	}

	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
