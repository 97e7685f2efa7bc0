package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/awantoch/flowviz/api"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/graph"
	"github.com/awantoch/flowviz/parser"
	"github.com/awantoch/flowviz/utils"
	"github.com/spf13/cobra"
)

// writeError marks a failure to write the diagram file.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

func newRenderCmd() *cobra.Command {
	var (
		notation  string
		format    string
		output    string
		stylesArg string
		name      string
		publish   bool
	)
	cmd := &cobra.Command{
		Use:   constants.CmdRender + " <file|->",
		Short: constants.DescRender,
		Long:  "Render a flow document (XML or YAML) as Mermaid Markdown or PlantUML. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRender(cmd, args[0], renderFlags{
				notation: notation,
				format:   format,
				output:   output,
				styles:   stylesArg,
				name:     name,
				publish:  publish,
			})
			if err != nil {
				utils.Error("%v", err)
				exit(exitCode(err))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&notation, "as", "", "Diagram notation: mermaid or plantuml (defaults to config default_notation)")
	cmd.Flags().StringVar(&format, "format", constants.FormatAuto, "Document format: auto, xml or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path to write the diagram (defaults to stdout); a directory gets <name><ext>")
	cmd.Flags().StringVar(&stylesArg, "styles", "", "Path to a style table (overrides config styles)")
	cmd.Flags().StringVar(&name, "name", "", "Name stored with the render (defaults to the file name)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the diagram to the configured blob store")
	return cmd
}

type renderFlags struct {
	notation, format, output, styles, name string
	publish                                bool
}

func runRender(cmd *cobra.Command, src string, f renderFlags) error {
	doc, err := readDocument(src)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if f.styles != "" {
		cfg.Styles = f.styles
	}
	svc, cleanup, err := api.InitializeDependencies(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	name := f.name
	if name == "" && src != "-" {
		name = documentName(src)
	}
	rec, err := svc.Render(cmd.Context(), api.RenderArgs{
		Document: string(doc),
		Name:     name,
		Notation: f.notation,
		Format:   f.format,
		Publish:  f.publish,
	})
	if err != nil {
		return err
	}

	if f.output == "" {
		utils.User("%s", rec.Diagram)
	} else {
		path, err := writeDiagram(f.output, rec.Name, graph.Notation(rec.Notation), rec.Diagram)
		if err != nil {
			return &writeError{err}
		}
		utils.User(constants.MsgDiagramWritten, path)
	}
	if rec.URL != "" {
		utils.User(constants.MsgDiagramURL, rec.URL)
	}
	return nil
}

func readDocument(src string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if src == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, &parser.DocumentParseError{Format: parser.FormatAuto, Err: err}
	}
	return data, nil
}

// documentName strips directories and every extension: Account.flow-meta.xml -> Account.
func documentName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

func writeDiagram(output, name string, n graph.Notation, diagram string) (string, error) {
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		output = filepath.Join(output, name+api.DiagramExt(n))
	}
	if err := os.MkdirAll(filepath.Dir(output), constants.DirPermission); err != nil {
		return "", fmt.Errorf("failed to write diagram: %w", err)
	}
	if err := os.WriteFile(output, []byte(diagram), constants.FilePermission); err != nil {
		return "", fmt.Errorf("failed to write diagram: %w", err)
	}
	return output, nil
}

// exitCode maps an error class to the process exit status.
func exitCode(err error) int {
	var (
		wErr        *writeError
		notationErr *graph.UnsupportedNotationError
		cycleErr    *graph.CyclicGraphError
	)
	switch {
	case errors.As(err, &wErr):
		return constants.ExitWriteFailure
	case errors.As(err, &notationErr):
		return constants.ExitUnsupportedNotation
	case errors.Is(err, parser.ErrNoRenderableContent):
		return constants.ExitNoRenderableContent
	case errors.As(err, &cycleErr):
		return constants.ExitCyclicGraph
	default:
		return constants.ExitParseError
	}
}
