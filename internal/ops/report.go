package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/fittrack/internal/config"
	"github.com/hpungsan/fittrack/internal/tracker"
	"github.com/hpungsan/fittrack/internal/view"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Policy string
}

// ReportOutput contains the rendered Markdown report.
type ReportOutput struct {
	Markdown    string    `json:"markdown"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Report renders the dashboard as a Markdown document.
func Report(tr *tracker.Tracker, cfg *config.Config, input ReportInput) (*ReportOutput, error) {
	d, err := Dashboard(tr, cfg, DashboardInput{Policy: input.Policy})
	if err != nil {
		return nil, err
	}
	now := tr.Now().UTC()
	return &ReportOutput{
		Markdown:    RenderReport(*d, now),
		GeneratedAt: now,
	}, nil
}

// RenderReport formats a dashboard as Markdown.
func RenderReport(d view.Dashboard, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Fitness report\n\n")
	fmt.Fprintf(&b, "Generated %s. %d activities logged, matching policy `%s`.\n\n",
		now.Format(time.RFC3339), d.SummaryCount, d.Policy)

	b.WriteString("## Goals\n\n")
	if len(d.Goals) == 0 {
		b.WriteString("_No goals yet._\n\n")
	} else {
		b.WriteString("| Goal | Progress | % |\n|---|---|---|\n")
		for _, g := range d.Goals {
			fmt.Fprintf(&b, "| %s | %s %s | %d%% |\n",
				escapeCell(g.Title), g.CurrentOverTarget, escapeCell(g.Unit), g.Percent)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recent activities\n\n")
	if len(d.Recent) == 0 {
		b.WriteString("_No activities yet._\n\n")
	} else {
		for _, a := range d.Recent {
			fmt.Fprintf(&b, "- %s: %s, %s %s\n",
				a.Day, a.Type, view.FormatAmount(a.Amount), a.Unit)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Daily volume\n\n")
	if len(d.Chart.Labels) == 0 {
		b.WriteString("_Nothing logged._\n")
	} else {
		b.WriteString("| Day | Total |\n|---|---|\n")
		for i, day := range d.Chart.Labels {
			fmt.Fprintf(&b, "| %s | %s |\n", day, view.FormatAmount(d.Chart.Values[i]))
		}
	}

	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
