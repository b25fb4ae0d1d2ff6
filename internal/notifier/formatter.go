package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"SignalReplay/internal/report"

	"github.com/shopspring/decimal"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func trendEmoji(pct float64) string {
	switch {
	case pct > 0:
		return "📈"
	case pct < 0:
		return "📉"
	default:
		return "➖"
	}
}

// FormatRunReport formats a single backtest run.
func FormatRunReport(r *report.Report) string {
	return FormatRunSummary(r.Summary())
}

// FormatRunSummary formats a stored run summary.
func FormatRunSummary(s report.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>Backtest %s</b> | %s\n", html.EscapeString(s.Symbol), s.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Signals: %s | Data: %s\n", html.EscapeString(s.Source), html.EscapeString(s.Provider)))
	b.WriteString(fmt.Sprintf("Capital: %s | Fee: %.2f%%\n\n", money(s.InitialCapital), s.FeeRate*100))

	if s.Metrics == nil {
		b.WriteString("⚠️ No overlapping timestamps between signals and prices, nothing simulated.\n")
		return b.String()
	}
	m := s.Metrics
	b.WriteString(fmt.Sprintf("%s Total return: %+.2f%% (benchmark %+.2f%%)\n", trendEmoji(m.TotalReturnPct), m.TotalReturnPct, m.BenchmarkReturnPct))
	b.WriteString(fmt.Sprintf("Annualized: %+.2f%% | Volatility: %.2f%%\n", m.AnnualizedReturnPct, m.VolatilityPct))
	b.WriteString(fmt.Sprintf("Sharpe: %.2f | Max drawdown: %.2f%%\n", m.SharpeRatio, m.MaxDrawdownPct))
	b.WriteString(fmt.Sprintf("Trades: %d | Round trips: %d | Win rate: %.1f%%\n", m.NumTrades, m.RoundTrips, m.WinRatePct))
	b.WriteString(fmt.Sprintf("💰 Final value: %s (%d samples)\n", money(m.FinalValue), s.Samples))
	return b.String()
}

// FormatSummary formats the outcome of a scheduled multi-symbol run.
func FormatSummary(reports []*report.Report, took time.Duration) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>Scheduled backtests</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(reports) == 0 {
		b.WriteString("No symbols configured.\n")
		return b.String()
	}
	for _, r := range reports {
		b.WriteString(summaryLine(r.Summary()))
	}
	b.WriteString(fmt.Sprintf("\n⏱ %d runs in %s", len(reports), took.Round(time.Millisecond)))
	return b.String()
}

// FormatRunList formats stored runs, newest first.
func FormatRunList(runs []report.Summary) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("📚 <b>Recent runs</b>\n\n")
	for _, s := range runs {
		b.WriteString(summaryLine(s))
	}
	return b.String()
}

func summaryLine(s report.Summary) string {
	sym := html.EscapeString(s.Symbol)
	if s.Metrics == nil {
		return fmt.Sprintf("  %s: no data\n", sym)
	}
	return fmt.Sprintf("  %s %s: %+.2f%% | DD %.2f%% | %d trades | %s\n",
		trendEmoji(s.Metrics.TotalReturnPct), sym, s.Metrics.TotalReturnPct,
		s.Metrics.MaxDrawdownPct, s.Metrics.NumTrades, money(s.Metrics.FinalValue))
}

// HelpText lists the supported chat commands.
func HelpText() string {
	return "🤖 <b>SignalReplay</b>\n\n" +
		"/backtest &lt;SYMBOL&gt; - run a backtest now\n" +
		"/last &lt;SYMBOL&gt; - latest stored run\n" +
		"/runs - recent runs\n" +
		"/help - this message"
}
