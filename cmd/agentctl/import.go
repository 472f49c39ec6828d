package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"fieldforce/internal/agent/importer"
	"fieldforce/pkg/requestcontext"
)

const importActor = "agentctl"

func newImportCmd() *cobra.Command {
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Import agents from a CSV file",
		Long: "Creates one agent per CSV row through the agent service. The header row names the\n" +
			"columns (first_name, surname, id_type, sa_id_no, passport_no, ...). Rows that fail\n" +
			"validation are listed with their line number and the import continues.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], updateExisting)
		},
	}

	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Replace the profile of agents whose identity number is already on file")

	return cmd
}

func runImport(cmd *cobra.Command, path string, updateExisting bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	return withDeps(cmd, func(d *deps) error {
		ctx := requestcontext.WithAdminActor(cmd.Context(), importActor)
		imp := importer.New(d.Service,
			importer.WithMetrics(d.Metrics),
			importer.WithLogger(d.Logger),
			importer.WithUpdateExisting(updateExisting),
		)

		report, err := imp.Import(ctx, f)
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d rows failed", report.Failed, len(report.Rows))
		}
		return nil
	})
}

func printReport(w io.Writer, report *importer.Report) {
	for _, row := range report.Rows {
		if row.Action != importer.ActionFailed {
			continue
		}
		fmt.Fprintf(w, "line %d: %s\n", row.Line, row.Error)
		keys := make([]string, 0, len(row.Fields))
		for k := range row.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, row.Fields[k])
		}
	}
	fmt.Fprintf(w, "created %d, updated %d, failed %d\n", report.Created, report.Updated, report.Failed)
}
