package evidence

import (
	"testing"

	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/intake"
)

func packetFixture() (*drafting.PleadingDraft, *drafting.PleadingDraft, []intake.Document, []TranslationCertificate) {
	primary := &drafting.PleadingDraft{Language: "ms"}
	companion := &drafting.PleadingDraft{Language: "en"}
	docs := []intake.Document{
		{ID: "DOC-1", Filename: "perjanjian.pdf", PageCount: 4},
		{ID: "DOC-2", Filename: "invoice.pdf", PageCount: 2},
		{ID: "DOC-3", Filename: "surat.pdf"},
	}
	certs := []TranslationCertificate{{DocumentID: "DOC-1"}}
	return primary, companion, docs, certs
}

func TestPacketNumbersExhibitsBySubmissionOrder(t *testing.T) {
	primary, companion, docs, certs := packetFixture()
	packet := BuildPacket(primary, companion, docs, certs)

	wantIDs := []string{"A1", "A2(T)", "B1", "B1(T)", "B1(A)", "B2", "B3"}
	if len(packet.Exhibits) != len(wantIDs) {
		t.Fatalf("got %d exhibits, want %d: %+v", len(packet.Exhibits), len(wantIDs), packet.Exhibits)
	}
	for i, want := range wantIDs {
		if packet.Exhibits[i].ID != want {
			t.Fatalf("exhibit[%d] = %s, want %s", i, packet.Exhibits[i].ID, want)
		}
	}
}

func TestPacketNumberingIsStableAcrossRebuilds(t *testing.T) {
	primary, companion, docs, certs := packetFixture()
	first := BuildPacket(primary, companion, docs, certs)
	second := BuildPacket(primary, companion, docs, certs)
	for i := range first.Exhibits {
		if first.Exhibits[i].ID != second.Exhibits[i].ID {
			t.Fatalf("exhibit %d renumbered: %s vs %s", i, first.Exhibits[i].ID, second.Exhibits[i].ID)
		}
	}
}

func TestPacketSectionsAndPageEstimates(t *testing.T) {
	primary, companion, docs, certs := packetFixture()
	packet := BuildPacket(primary, companion, docs, certs)

	if len(packet.Sections) != 3 {
		t.Fatalf("got %d sections", len(packet.Sections))
	}
	if packet.Sections[0].PageEstimate != 2*pleadingPageEstimate {
		t.Fatalf("pleadings estimate = %d", packet.Sections[0].PageEstimate)
	}
	// 4 + 2 + 1 (pageless doc counts as one page).
	if packet.Sections[1].PageEstimate != 7 {
		t.Fatalf("documents estimate = %d", packet.Sections[1].PageEstimate)
	}
	if packet.Sections[2].PageEstimate != translationPageAllow+affidavitPageEstimate {
		t.Fatalf("translations estimate = %d", packet.Sections[2].PageEstimate)
	}
	if packet.PageEstimate != 2*pleadingPageEstimate+7+translationPageAllow+affidavitPageEstimate {
		t.Fatalf("total estimate = %d", packet.PageEstimate)
	}
	if len(packet.Instructions) == 0 {
		t.Fatal("assembly instructions must be present")
	}
}

func TestPacketWithoutDraftsHasNoASeries(t *testing.T) {
	_, _, docs, certs := packetFixture()
	packet := BuildPacket(nil, nil, docs, certs)
	for _, e := range packet.Exhibits {
		if e.Kind == ExhibitPleading {
			t.Fatalf("unexpected pleading exhibit %s", e.ID)
		}
	}
	if packet.Exhibits[0].ID != "B1" {
		t.Fatalf("first exhibit = %s", packet.Exhibits[0].ID)
	}
}
