package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spacecol/pkg/archive"
	"github.com/matzehuels/spacecol/pkg/errors"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(cmd.Context())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			recs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No runs yet")
				printNextStep("Grow one", appName+" grow")
				return nil
			}
			fmt.Println(historyTable(recs, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", archive.DefaultListLimit, "number of runs to show")

	cmd.AddCommand(c.historyShowCommand())
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived run and export its tree",
		Example: `  spacecol history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427
  spacecol history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427 -o tree.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the tree JSON to this file")
	return cmd
}

func showRun(ctx context.Context, id, output string) error {
	store, err := openArchive(ctx)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	rec, err := store.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, archive.ErrNotFound) {
			return errors.New(errors.ErrCodeNotFound, "run %s not found", id)
		}
		return err
	}

	printKeyValue("ID", rec.ID)
	printKeyValue("Created", rec.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Source", rec.Source)
	printKeyValue("Seed", strconv.FormatUint(rec.Seed, 10))
	printKeyValue("Nodes", strconv.Itoa(rec.Nodes))
	printKeyValue("Ticks", strconv.Itoa(rec.Ticks))
	printKeyValue("Reason", rec.Reason)
	printKeyValue("Options", rec.OptionsHash)

	if output == "" {
		return nil
	}
	if err := os.WriteFile(output, rec.Tree, 0o644); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	printNewline()
	printFile(output)
	printNextStep("Render it", appName+" render "+output)
	return nil
}

// historyTable renders archived runs as a table.
func historyTable(recs []archive.Record, now time.Time) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorMoss).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorShade)).
		Headers("ID", "WHEN", "SOURCE", "SEED", "NODES", "TICKS", "REASON").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, r := range recs {
		t.Row(
			shortID(r.ID),
			relativeTime(r.CreatedAt, now),
			r.Source,
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Nodes),
			strconv.Itoa(r.Ticks),
			r.Reason,
		)
	}
	return t.Render()
}

// shortID truncates a run id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// relativeTime formats t relative to now ("just now", "5m ago", "3d ago").
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format(time.DateOnly)
}
