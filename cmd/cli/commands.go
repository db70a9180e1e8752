package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanLimbu/taskflow/internal"
	"github.com/sanLimbu/taskflow/internal/rest"
	"github.com/sanLimbu/taskflow/internal/client"
)

type clientFunc func() *client.Client

func listCmd(newClient clientFunc) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incomplete tasks",
		Long: `List the incomplete tasks matching a filter.

Filters: all, today, nextWeek, priority, priority-<high|medium|low>,
category-<work|personal|shopping|learning>. Unknown filters list every task.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := newClient().Tasks(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "filter key")

	return cmd
}

func statsCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadedDashboard(cmd.Context(), newClient(), "all")
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}

			return printSummary(cmd.OutOrStdout(), d)
		},
	}
}

const (
	loadPollAttempts = 20
	loadPollInterval = 250 * time.Millisecond
)

// loadedDashboard polls while the server is still loading its tasks.
func loadedDashboard(ctx context.Context, c *client.Client, filter string) (rest.DashboardResponse, error) {
	for i := 0; ; i++ {
		d, err := c.Dashboard(ctx, filter)
		if err != nil {
			return rest.DashboardResponse{}, err
		}

		if d.Loaded {
			return d, nil
		}

		if i == loadPollAttempts-1 {
			return rest.DashboardResponse{}, fmt.Errorf("tasks still loading after %d attempts", loadPollAttempts)
		}

		select {
		case <-ctx.Done():
			return rest.DashboardResponse{}, ctx.Err()
		case <-time.After(loadPollInterval):
		}
	}
}

func completeCmd(newClient clientFunc, use string, completed bool) *cobra.Command {
	short := "Mark a task as completed"
	if !completed {
		short = "Mark a task as not completed"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := newClient().SetCompleted(cmd.Context(), args[0], completed)
			if err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tcompleted=%t\n", task.ID, task.Title, task.Completed)

			return nil
		},
	}
}

func createCmd(newClient clientFunc) *cobra.Command {
	var (
		title, description, priority, category, due, dueTime string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := internal.NewCreateParams(title)

			p, err := internal.ParsePriority(priority)
			if err != nil {
				return err
			}

			c, err := internal.ParseCategory(category)
			if err != nil {
				return err
			}

			task, err := newClient().Create(cmd.Context(), rest.CreateTasksRequest{
				Title:       params.Title,
				Description: description,
				Priority:    p,
				Category:    c,
				Status:      params.Status,
				DueDate:     due,
				DueTime:     dueTime,
			})
			if err != nil {
				return fmt.Errorf("create failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "New Task\n\tID: %s\n\tTitle: %s\n\tPriority: %s\n\tCategory: %s\n",
				task.ID, task.Title, task.Priority, task.Category)

			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "title (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "high, medium or low")
	cmd.Flags().StringVarP(&category, "category", "c", "work", "work, personal, shopping or learning")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&dueTime, "due-time", "", "due time, HH:MM")

	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func searchCmd(newClient clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search incomplete tasks by title and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}
}

func printTasks(w io.Writer, tasks []rest.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tCATEGORY\tSTATUS\tDUE\tPROGRESS")

	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
			t.ID, t.Title, t.Priority, t.Category, t.Status, t.DueLabel, t.Progress)
	}

	return tw.Flush()
}

func printSummary(w io.Writer, d rest.DashboardResponse) error {
	s := d.Summary

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, d.Header)
	fmt.Fprintf(tw, "Total tasks\t%d\n", s.Stats.TotalTasks)
	fmt.Fprintf(tw, "Completed today\t%d\n", s.Stats.CompletedToday)
	fmt.Fprintf(tw, "Urgent\t%d\n", s.Stats.UrgentTasks)
	fmt.Fprintf(tw, "Due today\t%d\n", s.Stats.DueToday)
	fmt.Fprintf(tw, "Next week\t%d\n", s.Filters.NextWeek)
	fmt.Fprintf(tw, "Priority\thigh=%d medium=%d low=%d\n", s.Priorities.High, s.Priorities.Medium, s.Priorities.Low)
	fmt.Fprintf(tw, "Category\twork=%d personal=%d shopping=%d learning=%d\n",
		s.Categories.Work, s.Categories.Personal, s.Categories.Shopping, s.Categories.Learning)

	return tw.Flush()
}
