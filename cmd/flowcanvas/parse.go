package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/template"
)

func newParseCmd() *cobra.Command {
	var (
		vars    map[string]string
		missing string
	)

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "List the variables and invalid placeholders in template text",
		Long: `Parses template text the way a template node does. Reads stdin when no text is given.

With --var the text is also rendered using the given values. --missing decides
what happens to variables without a value: keep the token, replace it with
nothing, or fail.`,
		Example: `  flowcanvas parse "Hello {{name}}"
  flowcanvas parse --var name=Ada --missing error "Hello {{name}}"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := template.ParseMissingAction(missing)
			if err != nil {
				return err
			}

			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}

			res := template.Parse(text)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "variables: %s\n", strings.Join(res.Variables, ", "))
			fmt.Fprintf(out, "invalid: %s\n", strings.Join(res.Invalid, ", "))

			if len(vars) == 0 && !cmd.Flags().Changed("missing") {
				return nil
			}
			values := make(map[string]any, len(vars))
			for k, v := range vars {
				values[k] = v
			}
			rendered, err := template.NewExpander(template.WithMissingAction(action)).Expand(text, values)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			fmt.Fprintf(out, "rendered: %s\n", rendered)
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&vars, "var", nil, "variable value as name=value (repeatable)")
	cmd.Flags().StringVar(&missing, "missing", "keep", "missing variable handling: keep, empty or error")
	return cmd
}
