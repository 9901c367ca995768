package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/nodes"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/submit"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build the demo pipeline and print or submit it",
		Long:  `Builds Input -> Text ("Hello {{name}}") -> LLM and prints the submission payload, or submits it with --submit.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				s.SubmitEndpoint, _ = cmd.Flags().GetString("endpoint")
			}

			store := flowcanvas.NewStore()
			if _, err := nodes.DefaultCatalog().AddDemoPipeline(store); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if send, _ := cmd.Flags().GetBool("submit"); !send {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(submit.BuildPayload(store.Snapshot()))
			}

			logger, err := newLogger(s)
			if err != nil {
				return err
			}
			client := submit.NewClient(s.SubmitEndpoint, submit.WithTimeout(s.SubmitTimeout), submit.WithLogger(logger))
			res, err := submit.SubmitStore(cmd.Context(), client, store)
			if err != nil {
				return fmt.Errorf("submit to %s: %w", client.Endpoint(), err)
			}
			fmt.Fprintln(out, res.Summary())
			return nil
		},
	}

	cmd.Flags().Bool("submit", false, "Submit the pipeline instead of printing it")
	cmd.Flags().String("endpoint", "", "Parser service URL")
	return cmd
}
