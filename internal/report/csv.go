package report

import (
	"fmt"
	"strings"
	"time"

	"fitmetrics/internal/domain"
)

// RenderChallengesCSV renders the top-challenges table as a CSV string.
func RenderChallengesCSV(rows []ChallengeRow) string {
	var sb strings.Builder

	sb.WriteString("challenge_id,title,type,participants,completion_rate,active\n")

	for _, c := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.6f,%t\n",
			c.ChallengeID,
			csvEscape(c.Title),
			c.Type,
			c.Participants,
			c.CompletionRate,
			c.Active,
		))
	}

	return sb.String()
}

// RenderParticipationCSV renders the daily-joins series as a CSV string.
func RenderParticipationCSV(buckets []domain.DayBucket) string {
	var sb strings.Builder

	sb.WriteString("day,joins\n")

	for _, b := range buckets {
		day := time.UnixMilli(b.Day).UTC().Format("2006-01-02")
		sb.WriteString(fmt.Sprintf("%s,%d\n", day, b.Count))
	}

	return sb.String()
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
