package drafting

import "fmt"

type Template struct {
	ID                           string
	CourtLevel                   string
	Jurisdiction                 string
	Language                     string
	SectionsOrder                []string
	MandatoryClauses             []string
	RequiresTranslationAffidavit bool
}

var templateRegistry = []Template{
	{
		ID:           "TPL-HighCourt-MS-v2",
		CourtLevel:   "high",
		Jurisdiction: "peninsular",
		Language:     "ms",
		SectionsOrder: []string{
			"pihak-pihak", "latar belakang", "fakta material", "isu undang-undang", "tuntutan",
		},
		MandatoryClauses: []string{"pengataan pihak", "relif dituntut"},
	},
	{
		ID:           "TPL-HighCourt-EN-v2",
		CourtLevel:   "high",
		Jurisdiction: "sabah_sarawak",
		Language:     "en",
		SectionsOrder: []string{
			"parties", "background", "material facts", "legal issues", "prayers",
		},
		MandatoryClauses:             []string{"statement of parties", "relief sought"},
		RequiresTranslationAffidavit: true,
	},
	{
		ID:           "TPL-SessionsCourt-MS-v1",
		CourtLevel:   "sessions",
		Jurisdiction: "peninsular",
		Language:     "ms",
		SectionsOrder: []string{
			"pihak-pihak", "fakta material", "tuntutan",
		},
		MandatoryClauses: []string{"pengataan pihak", "relif dituntut"},
	},
}

func Templates() []Template {
	out := make([]Template, len(templateRegistry))
	copy(out, templateRegistry)
	return out
}

// SelectTemplate picks a template by (court level, jurisdiction, language).
// Compliance violations warn but never block: the lawyer decides.
func SelectTemplate(courtLevel, jurisdiction, language string) (Template, []string, error) {
	warnings := complianceWarnings(courtLevel, jurisdiction, language)

	for _, tpl := range templateRegistry {
		if tpl.CourtLevel == courtLevel && tpl.Jurisdiction == jurisdiction && tpl.Language == language {
			return tpl, warnings, nil
		}
	}
	// Nearest match on court level keeps drafting possible when the exact
	// language/jurisdiction combination has no template yet.
	for _, tpl := range templateRegistry {
		if tpl.CourtLevel == courtLevel {
			warnings = append(warnings, fmt.Sprintf(
				"no exact template for (%s, %s, %s); using %s", courtLevel, jurisdiction, language, tpl.ID))
			return tpl, warnings, nil
		}
	}
	return Template{}, warnings, fmt.Errorf("no template for court level %q", courtLevel)
}

func complianceWarnings(courtLevel, jurisdiction, language string) []string {
	var warnings []string
	if courtLevel == "high" && jurisdiction == "peninsular" && language != "ms" {
		warnings = append(warnings,
			"Peninsular Malaysia High Court pleadings are filed in Bahasa Malaysia; an English primary draft will need a certified translation")
	}
	if courtLevel == "sessions" && language != "ms" {
		warnings = append(warnings,
			"Sessions Court filings are conventionally in Bahasa Malaysia")
	}
	return warnings
}
