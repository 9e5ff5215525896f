package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	reportEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	reportSanitizer = bluemonday.UGCPolicy()
)

// Report 统计报告的 Markdown 与渲染后的 HTML
type Report struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Report 生成统计报告，HTML 经过 bluemonday 过滤
func (s *StatisticsService) Report(ctx context.Context, userID uint, displayName string, today time.Time) (*Report, error) {
	summary, err := s.Summary(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	markdown := RenderSummaryMarkdown(summary, displayName)

	var buf bytes.Buffer
	if err := reportEngine.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return &Report{
		Markdown: markdown,
		HTML:     string(reportSanitizer.SanitizeBytes(buf.Bytes())),
	}, nil
}

// RenderSummaryMarkdown 将统计汇总写成 Markdown
func RenderSummaryMarkdown(summary *StatisticsSummary, displayName string) string {
	var b strings.Builder

	title := "Check-in report"
	if name := strings.TrimSpace(displayName); name != "" {
		title = fmt.Sprintf("Check-in report for %s", escapeMarkdown(name))
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", summary.RangeStart, summary.RangeEnd)

	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Check-ins | %d |\n", summary.Counts.CheckIns)
	fmt.Fprintf(&b, "| Completed days | %d |\n", summary.Counts.CompletedDays)
	fmt.Fprintf(&b, "| Longest streak | %d |\n", summary.LongestStreak)
	fmt.Fprintf(&b, "| Average mood | %s |\n", formatOptional(summary.AverageMood, ""))
	fmt.Fprintf(&b, "| Average sleep | %s |\n", formatOptional(summary.AverageSleep, "h"))
	fmt.Fprintf(&b, "| Medication adherence | %d%% |\n\n", summary.Medication.Percentage)

	if len(summary.Medication.PerMedication) > 0 {
		b.WriteString("## Medications\n\n")
		b.WriteString("| Medication | Taken | Total | Adherence |\n|---|---|---|---|\n")
		for _, stat := range summary.Medication.PerMedication {
			fmt.Fprintf(&b, "| %s | %d | %d | %d%% |\n", escapeMarkdown(stat.Name), stat.Taken, stat.Total, stat.Percentage)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Last 7 days\n\n")
	b.WriteString("| Date | Mood | Sleep | Medications |\n|---|---|---|---|\n")
	for _, day := range summary.Weekly {
		mood := "-"
		if day.MoodScore != nil {
			mood = fmt.Sprintf("%d", *day.MoodScore)
		}
		meds := "-"
		if day.MedsTaken != nil && day.MedsTotal != nil {
			meds = fmt.Sprintf("%d/%d", *day.MedsTaken, *day.MedsTotal)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", day.Date, mood, formatOptional(day.HoursSlept, "h"), meds)
	}
	b.WriteString("\n")

	insights := insightLines(summary.Insights)
	if len(insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, line := range insights {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return b.String()
}

func insightLines(in Insights) []string {
	var lines []string
	if in.MoodTrend != nil {
		direction := "stable"
		if in.MoodTrend.IsImproving {
			direction = "improving"
		} else if in.MoodTrend.IsDeclining {
			direction = "declining"
		}
		lines = append(lines, fmt.Sprintf("Mood is %s: %.1f this week vs %.1f before (%+d%%).",
			direction, in.MoodTrend.AvgRecentMood, in.MoodTrend.AvgPreviousMood, in.MoodTrend.ChangePercentage))
	}
	if in.SleepMood != nil {
		lines = append(lines, fmt.Sprintf("Mood after 7h+ of sleep differs by %.1f points from nights under 6h.", in.SleepMood.Impact))
	}
	if in.MedicationMood != nil {
		lines = append(lines, fmt.Sprintf("Average mood %.1f on medication days vs %.1f otherwise; adherence %d%%.",
			in.MedicationMood.AvgMoodWithMeds, in.MedicationMood.AvgMoodWithoutMeds, in.MedicationMood.AdherenceRate))
	}
	if in.SleepQuality != nil {
		line := fmt.Sprintf("Average sleep %.1fh with quality %.1f; %d%% of nights in the 7-9h range.",
			in.SleepQuality.AvgHours, in.SleepQuality.AvgQuality, in.SleepQuality.OptimalPercentage)
		if in.SleepQuality.NeedsImprovement {
			line += " Sleep needs attention."
		}
		lines = append(lines, line)
	}
	if in.Concentration != nil {
		lines = append(lines, fmt.Sprintf("Concentration averages %.1f, recent %.1f (trend %+.1f).",
			in.Concentration.AvgConcentration, in.Concentration.AvgRecentConcentration, in.Concentration.Trend))
	}
	return lines
}

func formatOptional(v *float64, unit string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
)

func escapeMarkdown(raw string) string {
	return markdownEscaper.Replace(strings.TrimSpace(raw))
}
