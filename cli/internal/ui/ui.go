package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	// Output is where every printer writes
	Output io.Writer = os.Stdout
)

// DisableColor turns off styling for non-terminal output
func DisableColor() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableStyling()
}

// PrintHeader prints a boxed title
func PrintHeader(title string, subtitle string) {
	width := 80
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	header := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)

	fmt.Fprintln(Output, header)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(Output, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(Output, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	fmt.Fprintln(Output, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintKeyValue prints aligned label/value pairs
func PrintKeyValue(pairs ...string) {
	label := color.New(color.FgCyan, color.Bold)
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		if len(pairs[i]) > width {
			width = len(pairs[i])
		}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		label.Fprintf(Output, "%-*s", width+1, pairs[i]+":")
		fmt.Fprintf(Output, " %s\n", pairs[i+1])
	}
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(Output).WithData(tableData).Render()
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Output, out)
	return nil
}

// PrintSpinner starts a spinner with message
func PrintSpinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.WithWriter(Output).Start(message)
}

// ReportRows renders commit reports as table rows
func ReportRows(reports []bulk.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		status := "ok"
		if !r.Succeeded() {
			status = "failed at " + r.FailedAt.String()
		}
		rows = append(rows, []string{
			shortID(r.CommitID),
			strings.Join(r.Tables, ","),
			fmt.Sprint(r.RowsInserted),
			fmt.Sprint(r.Chunks),
			fmt.Sprint(r.Updates),
			r.Duration.Round(time.Millisecond).String(),
			status,
		})
	}
	return rows
}

// ReportHeaders are the column names of ReportRows
var ReportHeaders = []string{"Commit", "Tables", "Rows", "Chunks", "Updates", "Duration", "Status"}

// SeedSummary is the outcome of one seed run
type SeedSummary struct {
	Table    string
	File     string
	Read     int
	Rejected int
	Reports  []bulk.Report
	Elapsed  time.Duration
}

// Markdown renders the summary as a markdown document
func (s SeedSummary) Markdown() string {
	var rows, chunks, keys, failed int
	for _, r := range s.Reports {
		rows += r.RowsInserted
		chunks += r.Chunks
		keys += r.KeysAllocated
		if !r.Succeeded() {
			failed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Seeded `%s`\n\n", s.Table)
	fmt.Fprintf(&b, "From `%s` in %s.\n\n", s.File, s.Elapsed.Round(time.Millisecond))
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| rows read | %d |\n", s.Read)
	fmt.Fprintf(&b, "| rows rejected | %d |\n", s.Rejected)
	fmt.Fprintf(&b, "| rows inserted | %d |\n", rows)
	fmt.Fprintf(&b, "| keys allocated | %d |\n", keys)
	fmt.Fprintf(&b, "| commits | %d |\n", len(s.Reports))
	fmt.Fprintf(&b, "| insert statements | %d |\n", chunks)
	if failed > 0 {
		fmt.Fprintf(&b, "\n**%d commit(s) failed and were rolled back.**\n", failed)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
