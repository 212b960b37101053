package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/graft/pkg/catalog"
	"github.com/Sumatoshi-tech/graft/pkg/patch"
)

// ErrInvalidSpecFiles indicates at least one file failed 'specs validate'.
var ErrInvalidSpecFiles = errors.New("invalid spec files")

// NewSpecsCommand creates the specs command group.
func NewSpecsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specs",
		Short: "List, show and validate patch specs",
	}

	cmd.AddCommand(newSpecsListCommand())
	cmd.AddCommand(newSpecsShowCommand())
	cmd.AddCommand(newSpecsValidateCommand())
	cmd.AddCommand(newSpecsSchemaCommand())

	return cmd
}

func newSpecsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and configured specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cfgErr := loadConfig(cmd)
			if cfgErr != nil {
				return cfgErr
			}

			cat, catErr := loadCatalog(cfg.SpecFiles)
			if catErr != nil {
				return catErr
			}

			return writeSpecTable(cmd.OutOrStdout(), cat, cfg.Output.NoColor)
		},
	}

	addConfigFlag(cmd)
	addCatalogFlags(cmd)
	cmd.Flags().Bool("no-color", false, "Disable colored output")

	return cmd
}

func writeSpecTable(w io.Writer, cat *catalog.Catalog, noColor bool) error {
	nameColor := color.New(color.FgCyan, color.Bold)
	if noColor {
		nameColor.DisableColor()
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Name", "Source", "Anchors", "Import", "Description"})

	for _, spec := range cat.List() {
		tw.AppendRow(table.Row{
			nameColor.Sprint(spec.Name),
			cat.Source(spec.Name),
			strconv.Itoa(len(spec.Anchors)),
			yesNo(spec.HasImport()),
			spec.Description,
		})
	}

	_, writeErr := fmt.Fprintln(w, tw.Render())
	if writeErr != nil {
		return fmt.Errorf("write spec table: %w", writeErr)
	}

	return nil
}

func newSpecsShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name|file>",
		Short: "Print one spec as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := loadConfig(cmd)
			if cfgErr != nil {
				return cfgErr
			}

			cat, catErr := loadCatalog(cfg.SpecFiles)
			if catErr != nil {
				return catErr
			}

			spec, resolveErr := cat.Resolve(args[0])
			if resolveErr != nil {
				return resolveErr
			}

			return writeSpecYAML(cmd.OutOrStdout(), spec)
		},
	}

	addConfigFlag(cmd)
	addCatalogFlags(cmd)

	return cmd
}

func writeSpecYAML(w io.Writer, spec patch.Spec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	encodeErr := enc.Encode(spec)
	if encodeErr != nil {
		return fmt.Errorf("yaml encode: %w", encodeErr)
	}

	return enc.Close()
}

func newSpecsValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check spec YAML files against the schema and compile their patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateSpecFiles(cmd.OutOrStdout(), args, noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

func validateSpecFiles(w io.Writer, files []string, noColor bool) error {
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed, color.Bold)

	if noColor {
		okColor.DisableColor()
		failColor.DisableColor()
	}

	failed := 0

	for _, file := range files {
		specs, loadErr := catalog.LoadFile(file)
		if loadErr != nil {
			failed++

			fmt.Fprintf(w, "%s %s: %v\n", failColor.Sprint("FAIL"), file, loadErr)

			continue
		}

		size := ""

		info, statErr := os.Stat(file)
		if statErr == nil {
			size = ", " + humanize.Bytes(uint64(max(info.Size(), 0)))
		}

		fmt.Fprintf(w, "%s   %s (%d specs%s)\n", okColor.Sprint("ok"), file, len(specs), size)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSpecFiles, failed, len(files))
	}

	return nil
}

func newSpecsSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema spec files must satisfy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, writeErr := cmd.OutOrStdout().Write(catalog.Schema())
			if writeErr != nil {
				return fmt.Errorf("write schema: %w", writeErr)
			}

			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
