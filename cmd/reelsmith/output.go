package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// terminal reports whether w is an interactive terminal. Anything else
// (pipes, buffers, files) gets plain output.
func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
	return err
}

type column struct {
	title   string
	numeric bool
}

// printTable draws rows under the given columns. Short rows are padded.
func printTable(out io.Writer, columns []column, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleDefault)
	if terminal(out) {
		tw.SetStyle(table.StyleRounded)
	}

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if col.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(columns))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}
	tw.Render()
}

type verdict int

const (
	verdictPass verdict = iota
	verdictWarn
	verdictFail
)

var (
	verdictLabels = [...]string{"OK", "WARN", "ERROR"}
	verdictColors = [...]text.Colors{{text.FgGreen}, {text.FgYellow}, {text.FgRed}}
)

const checkLabelWidth = 24

// checklist prints sectioned pass/warn/fail lines, coloured on terminals.
type checklist struct {
	out   io.Writer
	color bool
}

func newChecklist(out io.Writer) *checklist {
	return &checklist{out: out, color: terminal(out)}
}

func (c *checklist) section(title string) {
	heading := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(heading))
	if c.color {
		heading, rule = text.FgBlue.Sprint(heading), text.FgBlue.Sprint(rule)
	}
	fmt.Fprintln(c.out, heading)
	fmt.Fprintln(c.out, rule)
}

func (c *checklist) line(label string, v verdict, detail string) {
	fmt.Fprintln(c.out, formatCheck(label, v, detail, c.color))
}

func formatCheck(label string, v verdict, detail string, color bool) string {
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, label+":", verdictLabels[v])
	if detail = strings.TrimSpace(detail); detail != "" {
		line += " " + detail
	}
	if color {
		return verdictColors[v].Sprint(line)
	}
	return line
}
