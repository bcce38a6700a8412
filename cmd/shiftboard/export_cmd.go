package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shiftboard/internal/export"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		input    string
		fileName string
		confirm  bool
	)

	cmd := &cobra.Command{
		Use:   "export FORMAT KIND",
		Short: "Simulate an export",
		Long: `Simulate an Excel or PDF export of dashboard data.

FORMAT is excel or pdf. KIND is one of employees, schedule, shifts,
statistics or employee-schedule. The JSON input is read from --input
("-" for stdin). No file is written.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := export.ParseKind(args[1])
			if err != nil {
				return err
			}

			raw, err := c.readInput(input)
			if err != nil {
				return err
			}

			var notifier export.Notifier = export.NotifierFunc(func(_ context.Context, message string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), message)
				return err
			})
			if confirm {
				notifier = export.NewPromptNotifier(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			exporter, err := export.NewServices(notifier, export.WithLogger(c.app.logger)).
				Lookup(export.Format(args[0]))
			if err != nil {
				return err
			}

			res := export.Run(cmd.Context(), exporter, kind, raw, fileName)
			if !res.Success {
				return fmt.Errorf("export failed: %s", res.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", `JSON input file, "-" for stdin`)
	cmd.Flags().StringVarP(&fileName, "file", "f", "", "name of the exported file; defaults to <content>_<date>")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "wait for confirmation before reporting the export")
	return cmd
}

func (c *cli) readInput(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(c.in)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read export input: %w", err)
		}
		return data, nil
	}
}
