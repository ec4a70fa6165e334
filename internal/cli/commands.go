package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskbook/internal/render"
	"taskbook/internal/storage"
	"taskbook/internal/tasks"
)

func newListCmd(a *app) *cobra.Command {
	var completed, pending bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			defer a.close()

			// default_filter is checked when the config loads.
			filter, _ := render.ParseFilter(a.cfg.DefaultFilter)
			switch {
			case completed:
				filter = render.FilterCompleted
			case pending:
				filter = render.FilterPending
			}
			return a.renderer.Render(a.stdout, a.session.Tasks(), filter)
		},
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "show only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "show only pending tasks")
	cmd.MarkFlagsMutuallyExclusive("completed", "pending")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add SUBJECT DESCRIPTION DEADLINE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			defer a.close()

			out, err := a.session.Add(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if out.SaveErr != nil {
				return fmt.Errorf("task not saved: %w", out.SaveErr)
			}
			fmt.Fprintf(a.stdout, "Added task %d: %s\n", out.Position, out.Task.Subject)
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done N",
		Short: "Mark task N complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			defer a.close()

			pos, err := tasks.ParsePosition(args[0], a.session.Len())
			if err != nil {
				return err
			}
			out, err := a.session.Complete(pos)
			if errors.Is(err, tasks.ErrAlreadyCompleted) {
				fmt.Fprintf(a.stdout, "Task %d is already completed.\n", pos)
				return nil
			}
			if err != nil {
				return err
			}
			if out.SaveErr != nil {
				return fmt.Errorf("change not saved: %w", out.SaveErr)
			}
			fmt.Fprintf(a.stdout, "Task %q marked complete %s\n", out.Task.Description, render.IconDone)
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm N",
		Short: "Delete task N",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			defer a.close()

			pos, err := tasks.ParsePosition(args[0], a.session.Len())
			if err != nil {
				return err
			}
			answer := "y"
			if !yes {
				t, _ := a.session.Task(pos)
				fmt.Fprintf(a.stdout, "Delete %q? (y/n): ", t.Description)
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.TrimSpace(line)
			}
			out, err := a.session.Delete(pos, answer)
			if errors.Is(err, tasks.ErrCancelled) {
				fmt.Fprintln(a.stdout, "Cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			if out.SaveErr != nil {
				return fmt.Errorf("deletion not saved: %w", out.SaveErr)
			}
			fmt.Fprintln(a.stdout, "Task deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to stdout as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(false); err != nil {
				return err
			}
			defer a.close()
			return storage.Export(a.stdout, a.session.Tasks(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}
