package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrlokans/memberimport/internal/entrypoint"
	"github.com/mrlokans/memberimport/internal/services"
)

type importOptions struct {
	periodID       string
	waitingList    bool
	paid           bool
	acceptProbable bool
	rejectProbable bool
}

func newImportCommand(load ConfigLoader) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import members from a spreadsheet",
		Long: "Previews the spreadsheet like the preview command does and then stores\n" +
			"every row. Rows that only look like an existing member need\n" +
			"--accept-probable or --reject-probable.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var paid *bool
			if cmd.Flags().Changed("paid") {
				paid = &opts.paid
			}

			return withApp(load, func(app *entrypoint.App) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				session, preview, err := uploadAndPreview(ctx, app.Imports, args[0], opts.periodID)
				if err != nil {
					return err
				}
				printSession(out, session, app.Imports.Matchers())
				printPreview(out, preview)

				if preview.ProbableCount() > 0 {
					if !opts.acceptProbable && !opts.rejectProbable {
						return fmt.Errorf("%d rows look like existing members, rerun with --accept-probable or --reject-probable", preview.ProbableCount())
					}
					if _, err := app.Imports.DecideAll(ctx, session.ID, opts.acceptProbable); err != nil {
						return err
					}
				}

				result, err := app.Imports.Commit(ctx, session.ID, services.CommitRequest{
					WaitingList: opts.waitingList,
					Paid:        paid,
				})
				if err != nil {
					return err
				}
				if failed := printReports(out, result.Reports); failed > 0 {
					return fmt.Errorf("%d rows could not be imported", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.periodID, "period", "", "registration period id (defaults to IMPORT_PERIOD_ID)")
	cmd.Flags().BoolVar(&opts.waitingList, "waiting-list", false, "put new registrations on the waiting list")
	cmd.Flags().BoolVar(&opts.paid, "paid", false, "mark the registration fees as paid, or unpaid with --paid=false")
	cmd.Flags().BoolVar(&opts.acceptProbable, "accept-probable", false, "treat probable duplicates as the existing member")
	cmd.Flags().BoolVar(&opts.rejectProbable, "reject-probable", false, "treat probable duplicates as new members")
	cmd.MarkFlagsMutuallyExclusive("accept-probable", "reject-probable")
	return cmd
}

// printReports writes one line per row and returns how many failed.
func printReports(w io.Writer, reports []services.ReportView) int {
	fmt.Fprintln(w, "\nImported:")
	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
			fmt.Fprintf(w, "  line %d  %s: %s\n", r.Line, r.Name, r.Error)
			continue
		}
		fmt.Fprintf(w, "  line %d  %s: ok\n", r.Line, r.Name)
	}
	fmt.Fprintf(w, "\n%d imported, %d failed\n", len(reports)-failed, failed)
	return failed
}
