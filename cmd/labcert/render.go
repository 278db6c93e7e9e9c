package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/joseph-ayodele/labcert/internal/pipeline"
	"github.com/joseph-ayodele/labcert/internal/report"
	"github.com/joseph-ayodele/labcert/internal/utils"
)

const maxCell = 40

type styles struct {
	header lipgloss.Style
	cell   lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		cell:   r.NewStyle(),
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxCell {
		return string(r[:maxCell-1]) + "…"
	}
	return s
}

// renderText writes one document's verdict table followed by the overall outcome.
func renderText(w io.Writer, out pipeline.Outcome) {
	st := newStyles(w)
	rep := out.Report

	fmt.Fprintf(w, "%s %s\n", st.header.Render("Document:"), out.Document.Source)
	fmt.Fprintf(w, "%s %s\n", st.header.Render("Product: "), rep.Product)

	headers := []string{"Parameter", "Result", "Spec", "Status", "Reason", "Note"}
	rows := make([][]string, len(rep.Rows))
	for i, row := range rep.Rows {
		label := row.Label
		if !row.Critical {
			label += " (info)"
		}
		rows[i] = []string{
			clip(label), clip(row.RawResult), clip(row.RawSpec),
			row.Verdict.Status.Label(), clip(row.Verdict.Reason), clip(row.Note),
		}
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	line := func(cells []string, style func(col int) lipgloss.Style) {
		var b strings.Builder
		for i, c := range cells {
			b.WriteString(style(i).Width(widths[i] + 2).Render(c))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	line(headers, func(int) lipgloss.Style { return st.header })
	for i, r := range rows {
		status := rep.Rows[i].Verdict.Status
		line(r, func(col int) lipgloss.Style {
			switch {
			case col == 3 && status.Compliant():
				return st.pass
			case col == 3:
				return st.fail
			case !rep.Rows[i].Critical:
				return st.muted
			}
			return st.cell
		})
	}
	fmt.Fprintln(w, overall(st, rep))
	if out.XLSXPath != "" {
		fmt.Fprintf(w, "%s %s\n", st.header.Render("Workbook:"), out.XLSXPath)
	}
	fmt.Fprintln(w)
}

func overall(st styles, rep report.Report) string {
	if !rep.NonCompliant {
		return st.header.Render("Overall: ") + st.pass.Render("COMPLIANT")
	}
	var failed []string
	for _, r := range rep.Failures() {
		if r.Critical {
			failed = append(failed, r.Label)
		}
	}
	return st.header.Render("Overall: ") + st.fail.Render("NON-COMPLIANT") +
		fmt.Sprintf(" (%s)", strings.Join(failed, ", "))
}

// renderJSON writes the same document shape the gRPC service returns.
func renderJSON(w io.Writer, out pipeline.Outcome) error {
	id := out.ReportID
	if id == uuid.Nil {
		id = uuid.New()
	}
	pb, err := utils.ToPBReport(utils.ToEntityReport(id, out.Document.Source, out.Document.SHA256, time.Now(), out.Report))
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(pb)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
