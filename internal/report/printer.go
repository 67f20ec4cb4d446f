package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableTitle heads the results table.
const TableTitle = "Command Execution Results"

// Bucket titles as printed above each non-empty bucket.
const (
	DebugTitle   = "DEBUG"
	InfoTitle    = "INFOS"
	WarningTitle = "WARNINGS"
	ErrorTitle   = "ERRORS"
)

// Pass column markers.
const (
	PassMark = "✅"
	FailMark = "❌"
)

// ANSI palette.
var (
	colorCyan       = lipgloss.Color("6")
	colorCornflower = lipgloss.Color("69")
	colorMagenta    = lipgloss.Color("5")
	colorBlue       = lipgloss.Color("4")
	colorYellow     = lipgloss.Color("3")
	colorRed        = lipgloss.Color("1")
	colorGreen      = lipgloss.Color("2")
)

// Styles contains the lipgloss styles used by a Printer.
type Styles struct {
	Rule    lipgloss.Style
	Title   lipgloss.Style
	Debug   lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	TableTitle lipgloss.Style
	Header     lipgloss.Style
	Border     lipgloss.Style
	Columns    [5]lipgloss.Style
}

// NewStyles builds the styles for renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	cell := r.NewStyle().Padding(0, 1)
	return Styles{
		Rule:    r.NewStyle().Foreground(colorCyan),
		Title:   r.NewStyle().Foreground(colorCornflower),
		Debug:   r.NewStyle().Foreground(colorMagenta),
		Info:    r.NewStyle().Foreground(colorBlue),
		Warning: r.NewStyle().Foreground(colorYellow),
		Error:   r.NewStyle().Foreground(colorRed),

		TableTitle: r.NewStyle().Bold(true).Italic(true),
		Header:     cell.Bold(true),
		Border:     r.NewStyle(),
		Columns: [5]lipgloss.Style{
			cell.Foreground(colorCyan),
			cell.Foreground(colorMagenta),
			cell.Foreground(colorYellow),
			cell.Foreground(colorRed),
			cell.Foreground(colorGreen),
		},
	}
}

// Printer writes banners, severity buckets and the results table. Colors
// are dropped when w is not a terminal.
type Printer struct {
	w      io.Writer
	width  int
	styles Styles
}

// NewPrinter returns a Printer writing to w with banners width columns wide.
func NewPrinter(w io.Writer, width int) *Printer {
	return &Printer{
		w:      w,
		width:  width,
		styles: NewStyles(lipgloss.NewRenderer(w)),
	}
}

// Banner prints title centered between '=' padding, framed by two
// full-width rules.
func (p *Printer) Banner(title string) {
	rule := p.styles.Rule.Render(strings.Repeat("=", p.width))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.styles.Title.Render(centered(title, p.width)))
	fmt.Fprintln(p.w, rule)
}

// centered pads title with (width-len(title))/2 '=' on each side. A title
// wider than width gets no padding.
func centered(title string, width int) string {
	side := (width - utf8.RuneCountInString(title)) / 2
	if side < 0 {
		side = 0
	}
	pad := strings.Repeat("=", side)
	return pad + title + pad
}

// Buckets prints each non-empty bucket under its own banner, in the order
// debug, info, warnings, errors.
func (p *Printer) Buckets(b Buckets) {
	p.bucket(DebugTitle, b.Debug, p.styles.Debug)
	p.bucket(InfoTitle, b.Info, p.styles.Info)
	p.bucket(WarningTitle, b.Warnings, p.styles.Warning)
	p.bucket(ErrorTitle, b.Errors, p.styles.Error)
}

func (p *Printer) bucket(title string, lines []string, style lipgloss.Style) {
	if len(lines) == 0 {
		return
	}
	p.Banner(title)
	// Lines are rendered one by one so lipgloss does not pad them to a
	// common width.
	for _, line := range lines {
		fmt.Fprintln(p.w, style.Render(line))
	}
	fmt.Fprintln(p.w)
}

// Table prints one row per result in execution order.
func (p *Printer) Table(results []CommandResult) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.Border).
		Headers("Command", "Exit Code", "Warnings", "Errors", "Pass").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.Header
			}
			return p.styles.Columns[col]
		})

	for _, r := range results {
		mark := FailMark
		if r.Pass() {
			mark = PassMark
		}
		t.Row(
			r.Command,
			strconv.Itoa(r.ExitCode),
			strconv.Itoa(len(r.Warnings)),
			strconv.Itoa(len(r.Errors)),
			mark,
		)
	}

	fmt.Fprintln(p.w, p.styles.TableTitle.Render(TableTitle))
	fmt.Fprintln(p.w, t.Render())
}

// Summary prints a one-line tally below the table.
func (p *Printer) Summary(s Summary) {
	fmt.Fprintf(p.w, "%d/%d commands passed, %d/%d exited zero\n", s.Passed, s.Total, s.Exited, s.Total)
}
