// Package report generates the admin analytics report (Markdown + CSVs)
// from the derived dashboard stats.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fitmetrics/internal/stats"
)

// Output file names written by WriteFiles.
const (
	MarkdownFile      = "REPORT.md"
	ChallengesCSVFile = "TOP_CHALLENGES.csv"
	ParticipationFile = "PARTICIPATION.csv"
)

// Generator produces reports from the stats aggregator.
type Generator struct {
	aggregator *stats.Aggregator
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(aggregator *stats.Aggregator) *Generator {
	return &Generator{
		aggregator: aggregator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report from the current snapshot.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	generatedAt := g.now()

	dashboard, err := g.aggregator.ComputeDashboardStats(ctx, generatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("compute dashboard stats: %w", err)
	}

	byType := make([]TypeCountRow, 0, len(dashboard.ChallengesByType))
	for typ, count := range dashboard.ChallengesByType {
		byType = append(byType, TypeCountRow{Type: typ, Count: count})
	}
	sort.Slice(byType, func(i, j int) bool {
		return byType[i].Type < byType[j].Type
	})

	top := make([]ChallengeRow, len(dashboard.TopChallenges))
	for i, c := range dashboard.TopChallenges {
		top[i] = ChallengeRow{
			ChallengeID:    c.ChallengeID,
			Title:          c.Title,
			Type:           c.Type,
			Participants:   c.Participants,
			CompletionRate: c.CompletionRate,
			Active:         c.Active,
		}
	}

	return &Report{
		GeneratedAt: generatedAt,
		Summary: Summary{
			TotalChallenges:   dashboard.TotalChallenges,
			ActiveChallenges:  dashboard.ActiveChallenges,
			TotalParticipants: dashboard.TotalParticipants,
			TotalCompletions:  dashboard.TotalCompletions,
			CompletionRate:    dashboard.CompletionRate,
			TotalActiveUsers:  dashboard.TotalActiveUsers,
			AvgLevel:          dashboard.AvgLevel,
			AvgStreak:         dashboard.AvgStreak,
		},
		ByType:        byType,
		TopChallenges: top,
		Participation: dashboard.Participation,
	}, nil
}

// WriteFiles renders the report and writes all output files to dir.
func WriteFiles(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := map[string]string{
		MarkdownFile:      RenderMarkdown(r),
		ChallengesCSVFile: RenderChallengesCSV(r.TopChallenges),
		ParticipationFile: RenderParticipationCSV(r.Participation),
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
