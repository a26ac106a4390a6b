package drafting

import "testing"

func draftPair(primaryParas, companionParas map[int]string) (PleadingDraft, PleadingDraft) {
	primary := PleadingDraft{Language: "ms", ParagraphMap: primaryParas}
	primary.Body = primary.ReconstructBody()
	companion := PleadingDraft{Language: "en", ParagraphMap: companionParas}
	companion.Body = companion.ReconstructBody()
	return primary, companion
}

func TestQAAllChecksPass(t *testing.T) {
	primary, companion := draftPair(
		map[int]string{
			1: "PLAINTIF menuntut RM 50,000 daripada DEFENDAN.",
			2: "Bayaran sepatutnya dibuat pada 12/03/2026 menurut Tan v Lim [2019] 2 MLJ 100.",
		},
		map[int]string{
			1: "The PLAINTIFF claims RM 50,000 from the DEFENDANT.",
			2: "Payment was due on 12/03/2026 per Tan v Lim [2019] 2 MLJ 100.",
		},
	)
	report := RunConsistencyQA(primary, companion, nil)
	for _, c := range report.Checks {
		if !c.Passed {
			t.Fatalf("check %s failed: %s", c.Name, c.Detail)
		}
	}
	if report.BlockForHuman {
		t.Fatal("block_for_human must be false when all checks pass")
	}
	if len(report.Checks) != 5 {
		t.Fatalf("got %d checks, want the fixed list of 5", len(report.Checks))
	}
}

func TestQABlocksOnHighSeverityFailure(t *testing.T) {
	primary, companion := draftPair(
		map[int]string{1: "PLAINTIF menuntut RM 50,000."},
		map[int]string{1: "The PLAINTIFF claims RM 60,000."},
	)
	report := RunConsistencyQA(primary, companion, nil)
	var sums *ConsistencyCheck
	for i := range report.Checks {
		if report.Checks[i].Name == "monetary_sums" {
			sums = &report.Checks[i]
		}
	}
	if sums == nil || sums.Passed {
		t.Fatalf("monetary_sums must fail: %+v", report.Checks)
	}
	if sums.FixSuggestion == "" {
		t.Fatal("failed checks carry a fix suggestion")
	}
	if !report.BlockForHuman {
		t.Fatal("a failed high-severity check must set block_for_human")
	}
}

func TestQAMediumFailureDoesNotBlock(t *testing.T) {
	primary, companion := draftPair(
		map[int]string{1: "PLAINTIF dan DEFENDAN menandatangani perjanjian itu. Perjanjian itu sah."},
		map[int]string{1: "The PLAINTIFF and the DEFENDANT signed the agreement."},
	)
	report := RunConsistencyQA(primary, companion, nil)
	blockedByMediumOnly := true
	for _, c := range report.Checks {
		if !c.Passed && c.Severity == SeverityHigh {
			blockedByMediumOnly = false
		}
	}
	if !blockedByMediumOnly {
		t.Fatalf("setup error: a high check failed: %+v", report.Checks)
	}
	var terms *ConsistencyCheck
	for i := range report.Checks {
		if report.Checks[i].Name == "defined_terms" {
			terms = &report.Checks[i]
		}
	}
	if terms.Passed {
		t.Fatal("defined_terms should fail on mismatched counts")
	}
	if report.BlockForHuman {
		t.Fatal("medium-severity failures must not block")
	}
}

func TestQAParagraphCountMismatchBlocks(t *testing.T) {
	primary, companion := draftPair(
		map[int]string{1: "Perenggan pertama.", 2: "Perenggan kedua."},
		map[int]string{1: "First paragraph."},
	)
	report := RunConsistencyQA(primary, companion, nil)
	if !report.BlockForHuman {
		t.Fatal("paragraph count mismatch is high severity and must block")
	}
}

func TestQADivergenceFlagsFailOtherwisePassingCheck(t *testing.T) {
	primary, companion := draftPair(
		map[int]string{1: "Bayaran pada 12/03/2026."},
		map[int]string{1: "Payment on 12/03/2026."},
	)
	flags := []DivergenceFlag{{Paragraph: 1, Kind: "dates", Detail: "translator saw different dates", Severity: SeverityHigh}}
	report := RunConsistencyQA(primary, companion, flags)
	for _, c := range report.Checks {
		if c.Name == "date_consistency" && c.Passed {
			t.Fatal("per-paragraph divergence flags must fail the date check")
		}
	}
	if !report.BlockForHuman {
		t.Fatal("flagged date divergence must block")
	}
}
