package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit"
	"github.com/ukaji3/xlsplit-go/pkg/xlsplit/output"
)

var sheetsJSON bool

func newSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets [input.xlsx]",
		Short: "List the sheet names of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runSheets,
	}
	cmd.Flags().BoolVar(&sheetsJSON, "json", false, "Print the names as JSON")
	return cmd
}

func runSheets(cmd *cobra.Command, args []string) error {
	if err := requireFile(args[0]); err != nil {
		return err
	}

	names, err := xlsplit.ListSheets(xlsplit.ListSheetsRequest{Path: args[0]})
	if err != nil {
		return fmt.Errorf("list sheets: %w", err)
	}

	out := cmd.OutOrStdout()
	if sheetsJSON {
		data, err := output.SheetNamesToJSON(names, false)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
