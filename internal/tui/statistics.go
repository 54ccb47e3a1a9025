package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/sadopc/studyboost/internal/stats"
	"github.com/sadopc/studyboost/internal/store"
)

// statisticsModel shows today's totals, week/month/year aggregates, a 7-day
// pomodoro bar chart, and a 30-day focus-time trend line.
type statisticsModel struct {
	width  int
	height int

	today *store.DailyStats
	week  []store.StatsDay
	month []store.StatsDay

	weekTotal  rangeTotal
	monthTotal rangeTotal
	yearTotal  rangeTotal

	chart barchart.Model
}

// rangeTotal is an aggregate over a trailing window of days.
type rangeTotal struct {
	pomodoros int
	focusSecs int64
}

func newStatisticsModel() statisticsModel {
	return statisticsModel{
		chart: barchart.New(60, 10),
	}
}

func (m *statisticsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m statisticsModel) refresh(svc *stats.Service, userID string) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		today, err := svc.Today(userID, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load stats: %v", err), isError: true}
		}
		days, err := svc.Daily(userID, 30, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load stats: %v", err), isError: true}
		}
		weekPoms, weekFocus, _, err := svc.WeekTotal(userID, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load stats: %v", err), isError: true}
		}
		monthPoms, monthFocus, _, err := svc.MonthTotal(userID, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load stats: %v", err), isError: true}
		}
		yearPoms, yearFocus, _, err := svc.YearTotal(userID, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load stats: %v", err), isError: true}
		}
		return statisticsDataMsg{
			today: today,
			days:  days,
			week:  rangeTotal{pomodoros: weekPoms, focusSecs: weekFocus},
			month: rangeTotal{pomodoros: monthPoms, focusSecs: monthFocus},
			year:  rangeTotal{pomodoros: yearPoms, focusSecs: yearFocus},
		}
	}
}

func (m statisticsModel) update(msg tea.Msg, svc *stats.Service, userID string) (statisticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statisticsDataMsg:
		m.today = msg.today
		m.month = msg.days
		if len(msg.days) > 7 {
			m.week = msg.days[len(msg.days)-7:]
		} else {
			m.week = msg.days
		}
		m.weekTotal = msg.week
		m.monthTotal = msg.month
		m.yearTotal = msg.year
		m.buildChart()
		return m, nil
	}
	return m, nil
}

func (m *statisticsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, day := range m.week {
		d, _ := time.Parse("2006-01-02", day.Date)
		label := d.Format("Mon 02")

		style := accentStyle
		if day.PomodorosCompleted == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "pomodoros",
				Value: float64(day.PomodorosCompleted),
				Style: style,
			}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statisticsModel) view() string {
	w := m.width - 4

	header := titleStyle.Render("Statistics")

	summary := m.renderSummary()
	chartTitle := mutedStyle.Render("  Pomodoros, last 7 days")
	chartView := m.chart.View()
	trend := m.renderTrend(w)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", summary, "", chartTitle, chartView, "", trend,
		),
	)
}

func (m statisticsModel) renderSummary() string {
	if m.today == nil {
		return mutedStyle.Render("  No data yet")
	}

	todayLine := fmt.Sprintf("  Today: %s pomodoros, %s focus, %s break",
		accentStyle.Bold(true).Render(fmt.Sprintf("%d", m.today.PomodorosCompleted)),
		formatSeconds(m.today.TotalFocusSeconds),
		formatSeconds(m.today.TotalBreakSeconds),
	)
	weekLine := mutedStyle.Render(fmt.Sprintf("  This week: %d pomodoros, %s focus",
		m.weekTotal.pomodoros, formatHours(m.weekTotal.focusSecs)))
	monthLine := mutedStyle.Render(fmt.Sprintf("  This month: %d pomodoros, %s focus",
		m.monthTotal.pomodoros, formatHours(m.monthTotal.focusSecs)))
	yearLine := mutedStyle.Render(fmt.Sprintf("  This year: %d pomodoros, %s focus",
		m.yearTotal.pomodoros, formatHours(m.yearTotal.focusSecs)))

	return lipgloss.JoinVertical(lipgloss.Left, todayLine, weekLine, monthLine, yearLine)
}

// renderTrend plots focus hours per day over the last 30 days.
func (m statisticsModel) renderTrend(w int) string {
	if len(m.month) == 0 {
		return ""
	}

	data := make([]float64, len(m.month))
	var any bool
	for i, day := range m.month {
		data[i] = float64(day.TotalFocusSeconds) / 3600
		if day.TotalFocusSeconds > 0 {
			any = true
		}
	}
	if !any {
		return mutedStyle.Render("  No focus time recorded in the last 30 days")
	}

	graphWidth := w - 14
	if graphWidth < 20 {
		graphWidth = 20
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Width(graphWidth),
		asciigraph.Caption("Focus hours, last 30 days"),
		asciigraph.Precision(1),
	)

	var indented []string
	for _, line := range strings.Split(graph, "\n") {
		indented = append(indented, "  "+line)
	}
	return highlightStyle.Render(strings.Join(indented, "\n"))
}
