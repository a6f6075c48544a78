package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/checklist/internal/app"
	"github.com/five82/checklist/internal/config"
	"github.com/five82/checklist/internal/logtail"
	"github.com/five82/checklist/internal/mutation"
	"github.com/five82/checklist/internal/todos"
)

const defaultLogLines = 50

func (r *runner) listCommand() *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runList(cmd, group)
		},
	}
	cmd.Flags().BoolVarP(&group, "group", "g", false, "print pending items before done items")
	return cmd
}

func (r *runner) runList(cmd *cobra.Command, group bool) error {
	a, err := r.open()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Session.Start(cmd.Context()); err != nil {
		return err
	}
	printItems(cmd.OutOrStdout(), a.Store.Snapshot().Items, group)
	return nil
}

func (r *runner) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open()
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.Coordinator.Add(cmd.Context(), mutation.AddParams{Text: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", item.Text)
			if snap := a.Store.Snapshot(); snap.LastError != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: list refresh failed: %v\n", snap.LastError)
			}
			return nil
		},
	}
}

func (r *runner) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "done <n>",
		Aliases: []string{"toggle"},
		Short:   "Toggle the n-th item between pending and done",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := r.open()
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := selectItem(cmd, a, args[0])
			if err != nil {
				return err
			}
			updated, err := a.Coordinator.Toggle(cmd.Context(), mutation.ToggleParams{ID: item.ID, Done: item.Done})
			if err != nil {
				return err
			}
			state := "pending"
			if updated.Done {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s: %s\n", state, updated.Text)
			return nil
		},
	}
}

func (r *runner) removeCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Delete the n-th item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !r.env.Interactive() {
				return fmt.Errorf("%w: rm needs --yes when not run from a terminal", ErrUsage)
			}

			a, err := r.open()
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := selectItem(cmd, a, args[0])
			if err != nil {
				return err
			}

			confirmed := yes
			if !confirmed {
				confirmed, err = r.env.Confirm(fmt.Sprintf("Delete %q?", item.Text))
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
			}

			if err := a.Coordinator.Delete(cmd.Context(), mutation.DeleteParams{ID: item.ID, Confirmed: confirmed}); err != nil {
				return err
			}
			if confirmed {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", item.Text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Kept: %s\n", item.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func (r *runner) logCommand() *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the end of the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(r.opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("%w: %w", app.ErrConfig, err)
			}
			raw, err := logtail.Read(cfg.LogPath(), lines)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log entries in %s\n", cfg.LogPath())
				return nil
			}
			out := cmd.OutOrStdout()
			for _, line := range logtail.FormatLines(raw, r.env.Interactive()) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", defaultLogLines, "number of lines to show (0 for all)")
	return cmd
}

// selectItem loads the list and returns the item at the 1-based index arg.
func selectItem(cmd *cobra.Command, a *app.App, arg string) (todos.Item, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return todos.Item{}, fmt.Errorf("%w: item number must be a positive integer, got %q", ErrUsage, arg)
	}
	if err := a.Session.Start(cmd.Context()); err != nil {
		return todos.Item{}, err
	}
	items := a.Store.Snapshot().Items
	if n > len(items) {
		return todos.Item{}, fmt.Errorf("%w: no item %d, the list has %d", ErrUsage, n, len(items))
	}
	return items[n-1], nil
}

// printItems writes one numbered line per item. Numbers always follow list
// order so they can be passed to done and rm.
func printItems(w io.Writer, items []todos.Item, group bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	if !group {
		for i, it := range items {
			printItem(w, i+1, it)
		}
		return
	}

	done, pending := todos.Counts(items)
	sections := []struct {
		title string
		done  bool
		count int
	}{
		{"Pending", false, pending},
		{"Done", true, done},
	}
	for s, sec := range sections {
		if s > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", sec.title, sec.count)
		for i, it := range items {
			if it.Done == sec.done {
				printItem(w, i+1, it)
			}
		}
	}
}

func printItem(w io.Writer, n int, it todos.Item) {
	box := "[ ]"
	if it.Done {
		box = "[x]"
	}
	fmt.Fprintf(w, "%3d. %s %s\n", n, box, it.Text)
}
