package intake

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// VolumeStats summarizes the ingested material feeding the volume sub-score.
type VolumeStats struct {
	Documents int
	Pages     int
	Segments  int
}

// ComputeRisk is a pure function of its inputs: identical arguments always
// produce the identical score. It performs no I/O and calls no service.
func ComputeRisk(snap MatterSnapshot, vol VolumeStats, languageCounts map[string]int, now time.Time) RiskScore {
	j := jurisdictionalScore(snap)
	l := languageScore(languageCounts)
	v := volumeScore(vol)
	t := timePressureScore(snap.KeyDates, now)

	composite := math.Round((float64(j.Score)+float64(l.Score)+float64(v.Score)+float64(t.Score))/4*100) / 100
	level := RiskHigh
	switch {
	case composite < 2:
		level = RiskLow
	case composite < 4:
		level = RiskMedium
	}

	return RiskScore{
		Jurisdictional: j,
		Language:       l,
		Volume:         v,
		TimePressure:   t,
		Composite:      composite,
		Level:          level,
		NextSteps:      nextSteps(level, t.Score, l.Score),
	}
}

func jurisdictionalScore(snap MatterSnapshot) SubScore {
	distinct := map[string]bool{}
	if c := strings.TrimSpace(strings.ToLower(snap.Court)); c != "" {
		distinct[c] = true
	}
	if j := strings.TrimSpace(strings.ToLower(snap.Jurisdiction)); j != "" {
		distinct[j] = true
	}
	score := 1 + len(distinct)

	court := strings.ToLower(snap.Court)
	switch {
	case strings.Contains(court, "federal") || strings.Contains(court, "persekutuan") ||
		strings.Contains(court, "appeal") || strings.Contains(court, "rayuan"):
		score += 2
	case strings.Contains(court, "high") || strings.Contains(court, "tinggi"):
		score++
	}
	return SubScore{
		Score:     clampScore(score),
		Rationale: fmt.Sprintf("%d distinct forum reference(s), court %q", len(distinct), snap.Court),
	}
}

func languageScore(counts map[string]int) SubScore {
	ms, en, und := counts["ms"], counts["en"], counts["und"]
	total := ms + en
	score := 1
	detail := "single-language matter"
	if ms > 0 && en > 0 {
		minority := ms
		if en < ms {
			minority = en
		}
		if float64(minority)/float64(total) >= 0.25 {
			score = 4
			detail = "both languages carry substantial weight"
		} else {
			score = 3
			detail = "mixed languages with a dominant one"
		}
	}
	if und > 0 {
		score++
		detail += fmt.Sprintf(", %d undetermined segment(s)", und)
	}
	return SubScore{Score: clampScore(score), Rationale: detail}
}

func volumeScore(vol VolumeStats) SubScore {
	score := 1
	switch {
	case vol.Pages > 100 || vol.Segments > 800:
		score = 5
	case vol.Pages > 50 || vol.Segments > 400:
		score = 4
	case vol.Pages > 20 || vol.Segments > 200:
		score = 3
	case vol.Pages > 5 || vol.Segments > 50:
		score = 2
	}
	return SubScore{
		Score:     score,
		Rationale: fmt.Sprintf("%d document(s), %d page(s), %d segment(s)", vol.Documents, vol.Pages, vol.Segments),
	}
}

func timePressureScore(dates []KeyDate, now time.Time) SubScore {
	nearest := time.Duration(math.MaxInt64)
	var nearestDate KeyDate
	for _, kd := range dates {
		if kd.Date.Before(now) {
			continue
		}
		if d := kd.Date.Sub(now); d < nearest {
			nearest = d
			nearestDate = kd
		}
	}
	if nearest == time.Duration(math.MaxInt64) {
		return SubScore{Score: 2, Rationale: "no upcoming key dates extracted"}
	}

	days := int(nearest.Hours() / 24)
	score := 1
	switch {
	case days < 7:
		score = 5
	case days < 14:
		score = 4
	case days < 30:
		score = 3
	case days < 60:
		score = 2
	}
	return SubScore{
		Score:     score,
		Rationale: fmt.Sprintf("%q in %d day(s)", nearestDate.Label, days),
	}
}

func nextSteps(level RiskLevel, timeScore, langScore int) []string {
	var steps []string
	if level == RiskHigh {
		steps = append(steps, "Assign a senior lawyer to review the matter snapshot")
	}
	if timeScore >= 4 {
		steps = append(steps, "Diarise the nearest key date and prepare filings immediately")
	}
	if langScore >= 4 {
		steps = append(steps, "Queue bilingual review of low-confidence translations")
	}
	if len(steps) == 0 {
		steps = append(steps, "Proceed with standard intake review")
	}
	return steps
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}
