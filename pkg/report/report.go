// Package report renders batch results as a text table, JSON, or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/graft/pkg/batch"
)

// Options control rendering.
type Options struct {
	// Format is one of Formats(). Empty means text.
	Format string

	// NoColor disables ANSI colors in text output.
	NoColor bool

	// Verbose lists unchanged files in the text table too.
	Verbose bool

	// ShowDiff appends each modified file's diff to text output.
	ShowDiff bool
}

// Write renders res to w in the requested format.
func Write(w io.Writer, res batch.Result, opts Options) error {
	format := opts.Format
	if format == "" {
		format = FormatText
	}

	normalized, formatErr := ValidateFormat(format)
	if formatErr != nil {
		return formatErr
	}

	switch normalized {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		encodeErr := enc.Encode(res)
		if encodeErr != nil {
			return fmt.Errorf("json encode: %w", encodeErr)
		}

		return nil
	case FormatYAML:
		data, marshalErr := yaml.Marshal(res)
		if marshalErr != nil {
			return fmt.Errorf("yaml marshal: %w", marshalErr)
		}

		_, writeErr := w.Write(data)
		if writeErr != nil {
			return fmt.Errorf("yaml write: %w", writeErr)
		}

		return nil
	default:
		_, writeErr := io.WriteString(w, Text(res, opts))
		if writeErr != nil {
			return fmt.Errorf("text write: %w", writeErr)
		}

		return nil
	}
}

// Summary returns the one-line run summary, e.g.
// "4 files considered, 2 modified (1 unchanged, 1 missing, 0 errors; 1.2 kB written)".
func Summary(res batch.Result) string {
	verb := "written"
	if res.DryRun {
		verb = "would be written"
	}

	return fmt.Sprintf("%d files considered, %d modified (%d unchanged, %d missing, %d errors; %s %s)",
		res.Total,
		res.ModifiedCount,
		res.Count(batch.StatusUnchanged),
		res.Count(batch.StatusMissing),
		res.Count(batch.StatusError),
		humanize.Bytes(uint64(max(res.BytesWritten(), 0))),
		verb,
	)
}

// Text renders the per-file table, optional diffs, and the summary line.
func Text(res batch.Result, opts Options) string {
	palette := newPalette(opts.NoColor)

	var sb strings.Builder

	header := "graft: " + res.Spec
	if res.DryRun {
		header += " (dry run)"
	}

	sb.WriteString(palette.title.Sprint(header))
	sb.WriteString("\n")

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.AppendHeader(table.Row{"Status", "Path", "Import", "Blocks", "Lines", "Detail"})

	rows := 0

	for _, f := range res.Files {
		if f.Status == batch.StatusUnchanged && !opts.Verbose {
			continue
		}

		tbl.AppendRow(table.Row{
			palette.status(f.Status),
			f.Path,
			yesNo(f.ImportInserted),
			f.BlocksInserted,
			signed(f.LinesAdded),
			f.Err,
		})

		rows++
	}

	if rows > 0 {
		sb.WriteString(tbl.Render())
		sb.WriteString("\n")
	}

	if opts.ShowDiff {
		for _, f := range res.Files {
			if f.Diff != "" {
				sb.WriteString("\n")
				sb.WriteString(f.Diff)
			}
		}
	}

	sb.WriteString(Summary(res))
	sb.WriteString("\n")

	return sb.String()
}

type palette struct {
	title     *color.Color
	modified  *color.Color
	unchanged *color.Color
	missing   *color.Color
	failed    *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title:     color.New(color.Bold),
		modified:  color.New(color.FgGreen),
		unchanged: color.New(color.FgHiBlack),
		missing:   color.New(color.FgYellow),
		failed:    color.New(color.FgRed),
	}

	if noColor {
		for _, c := range []*color.Color{p.title, p.modified, p.unchanged, p.missing, p.failed} {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) status(s batch.Status) string {
	switch s {
	case batch.StatusModified:
		return p.modified.Sprint(s)
	case batch.StatusMissing:
		return p.missing.Sprint(s)
	case batch.StatusError:
		return p.failed.Sprint(s)
	case batch.StatusUnchanged:
		return p.unchanged.Sprint(s)
	default:
		return string(s)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "-"
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}
