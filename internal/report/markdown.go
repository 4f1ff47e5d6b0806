package report

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Platform Analytics Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Challenges | %d |\n", r.Summary.TotalChallenges))
	sb.WriteString(fmt.Sprintf("| Active Challenges | %d |\n", r.Summary.ActiveChallenges))
	sb.WriteString(fmt.Sprintf("| Total Participants | %d |\n", r.Summary.TotalParticipants))
	sb.WriteString(fmt.Sprintf("| Total Completions | %d |\n", r.Summary.TotalCompletions))
	sb.WriteString(fmt.Sprintf("| Completion Rate | %.4f |\n", r.Summary.CompletionRate))
	sb.WriteString(fmt.Sprintf("| Active Users | %d |\n", r.Summary.TotalActiveUsers))
	sb.WriteString(fmt.Sprintf("| Avg Level | %.1f |\n", r.Summary.AvgLevel))
	sb.WriteString(fmt.Sprintf("| Avg Streak | %d |\n", r.Summary.AvgStreak))
	sb.WriteString("\n")

	// Challenges by type
	sb.WriteString("## Challenges by Type\n\n")
	if len(r.ByType) > 0 {
		sb.WriteString("| Type | Count |\n")
		sb.WriteString("|------|-------|\n")
		for _, row := range r.ByType {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Type, row.Count))
		}
	} else {
		sb.WriteString("No challenges available.\n")
	}
	sb.WriteString("\n")

	// Top challenges
	sb.WriteString("## Top Challenges\n\n")
	if len(r.TopChallenges) > 0 {
		sb.WriteString("| Challenge | Title | Type | Participants | CompletionRate | Status |\n")
		sb.WriteString("|-----------|-------|------|--------------|----------------|--------|\n")
		for _, c := range r.TopChallenges {
			status := "completed"
			if c.Active {
				status = "active"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.4f | %s |\n",
				c.ChallengeID, c.Title, c.Type, c.Participants, c.CompletionRate, status))
		}
	} else {
		sb.WriteString("No challenge data available.\n")
	}
	sb.WriteString("\n")

	// Participation series
	sb.WriteString("## Daily Participant Joins\n\n")
	if len(r.Participation) > 0 {
		sb.WriteString("| Day | Joins |\n")
		sb.WriteString("|-----|-------|\n")
		for _, b := range r.Participation {
			day := time.UnixMilli(b.Day).UTC().Format("2006-01-02")
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", day, b.Count))
		}
	} else {
		sb.WriteString("No participation data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
