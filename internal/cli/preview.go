package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/memberimport/internal/entrypoint"
	"github.com/mrlokans/memberimport/internal/services"
)

type previewOptions struct {
	periodID string
}

func newPreviewCommand(load ConfigLoader) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show how a spreadsheet would be imported",
		Long: "Reads a CSV or Excel spreadsheet, matches its columns and prints the\n" +
			"column mapping, the cells that could not be read and the rows that\n" +
			"match members already in the database. Nothing is stored.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(app *entrypoint.App) error {
				session, preview, err := uploadAndPreview(cmd.Context(), app.Imports, args[0], opts.periodID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printSession(out, session, app.Imports.Matchers())
				printPreview(out, preview)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.periodID, "period", "", "registration period id (defaults to IMPORT_PERIOD_ID)")
	return cmd
}

// uploadAndPreview runs both steps of the first import phase on path.
func uploadAndPreview(ctx context.Context, service *services.ImportService, path, periodID string) (*services.SessionView, *services.PreviewView, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	session, err := service.Upload(ctx, filepath.Base(path), f, periodID)
	if err != nil {
		return nil, nil, err
	}
	preview, err := service.Preview(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, preview, nil
}

func printSession(w io.Writer, session *services.SessionView, matchers []services.MatcherView) {
	names := make(map[string]string, len(matchers))
	for _, m := range matchers {
		names[m.ID] = m.Name
	}

	fmt.Fprintf(w, "%s: %d rows (session %s)\n\n", session.FileName, session.TotalRows, session.ID)
	fmt.Fprintln(w, "Columns:")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, column := range session.Columns {
		target := "(ignored)"
		if column.MatcherID != "" {
			target = names[column.MatcherID]
		}
		fmt.Fprintf(tw, "  %s\t%s\t-> %s\n", columnName(column.Index), column.Header, target)
	}
	_ = tw.Flush()
}

func printPreview(w io.Writer, preview *services.PreviewView) {
	if len(preview.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(preview.Errors))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, e := range preview.Errors {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Cell, e.Code, e.Message)
		}
		_ = tw.Flush()
	}

	var created, existing, probable int
	var duplicates []services.MemberPreview
	for _, m := range preview.Members {
		switch m.Status {
		case services.MemberStatusNew:
			created++
		case services.MemberStatusExisting:
			existing++
			duplicates = append(duplicates, m)
		case services.MemberStatusProbable:
			probable++
			duplicates = append(duplicates, m)
		}
	}

	if len(duplicates) > 0 {
		fmt.Fprintln(w, "\nExisting members:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, m := range duplicates {
			fmt.Fprintf(tw, "  line %d\t%s\t%s\t%s\n", m.Row+2, m.Name, m.Status, m.ExistingName)
		}
		_ = tw.Flush()
	}

	fmt.Fprintf(w, "\n%d new, %d existing, %d to confirm\n", created, existing, probable)
}

func columnName(index int) string {
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return fmt.Sprintf("#%d", index+1)
	}
	return name
}
