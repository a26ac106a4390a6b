package evidence

import (
	"fmt"

	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/intake"
)

const (
	pleadingPageEstimate  = 10
	translationPageAllow  = 5
	affidavitPageEstimate = 3
)

// BuildPacket assembles the exhibit index. Numbering is stable: pleadings
// take the A series in primary-then-companion order, documents take the B
// series in submission order. Certified translations append a (T) exhibit
// and its affidavit an (A) exhibit immediately after the source document.
func BuildPacket(primary, companion *drafting.PleadingDraft, docs []intake.Document, certs []TranslationCertificate) Packet {
	certByDoc := map[string]TranslationCertificate{}
	for _, c := range certs {
		certByDoc[c.DocumentID] = c
	}

	var exhibits []Exhibit
	var pleadingIDs, documentIDs, translationIDs []string

	a := 0
	if primary != nil {
		a++
		id := fmt.Sprintf("A%d", a)
		exhibits = append(exhibits, Exhibit{ID: id, Title: "Pleading (" + languageName(primary.Language) + ")", Kind: ExhibitPleading, Pages: pleadingPageEstimate})
		pleadingIDs = append(pleadingIDs, id)
	}
	if companion != nil {
		a++
		id := fmt.Sprintf("A%d(T)", a)
		exhibits = append(exhibits, Exhibit{ID: id, Title: "Pleading companion (" + languageName(companion.Language) + ")", Kind: ExhibitPleading, Pages: pleadingPageEstimate, Translated: true})
		pleadingIDs = append(pleadingIDs, id)
	}

	b := 0
	for _, doc := range docs {
		b++
		pages := doc.PageCount
		if pages < 1 {
			pages = 1
		}
		id := fmt.Sprintf("B%d", b)
		exhibits = append(exhibits, Exhibit{ID: id, Title: doc.Filename, Kind: ExhibitDocument, DocumentID: doc.ID, Pages: pages})
		documentIDs = append(documentIDs, id)

		if _, ok := certByDoc[doc.ID]; !ok {
			continue
		}
		tID := fmt.Sprintf("B%d(T)", b)
		exhibits = append(exhibits, Exhibit{ID: tID, Title: doc.Filename + " (certified translation)", Kind: ExhibitDocument, DocumentID: doc.ID, Pages: translationPageAllow, Translated: true})
		aID := fmt.Sprintf("B%d(A)", b)
		exhibits = append(exhibits, Exhibit{ID: aID, Title: doc.Filename + " (translator's affidavit)", Kind: ExhibitDocument, DocumentID: doc.ID, Pages: affidavitPageEstimate})
		translationIDs = append(translationIDs, tID, aID)
	}

	sections := []PacketSection{
		{Title: "Pleadings", ExhibitIDs: pleadingIDs, PageEstimate: sumPages(exhibits, pleadingIDs)},
		{Title: "Documents", ExhibitIDs: documentIDs, PageEstimate: sumPages(exhibits, documentIDs)},
		{Title: "Certified translations and affidavits", ExhibitIDs: translationIDs, PageEstimate: sumPages(exhibits, translationIDs)},
	}

	total := 0
	for _, e := range exhibits {
		total += e.Pages
	}

	return Packet{
		Exhibits: exhibits,
		Sections: sections,
		Instructions: []string{
			"Bind exhibits in series order; A series before B series.",
			"Place each certified translation (T) and its affidavit (A) directly behind the source exhibit.",
			"Tab every exhibit with its exhibit ID.",
			"Paginate continuously and update the index before filing.",
		},
		PageEstimate: total,
	}
}

func sumPages(exhibits []Exhibit, ids []string) int {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	total := 0
	for _, e := range exhibits {
		if want[e.ID] {
			total += e.Pages
		}
	}
	return total
}
