package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewSubmissionCmd создаёт группу команд для просмотра заявок.
func NewSubmissionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submission",
		Short: "Inspect delivery submissions",
	}

	cmd.AddCommand(
		newSubmissionListCmd(clientFn, outputFn),
		newSubmissionShowCmd(clientFn, outputFn),
	)

	return cmd
}

func newSubmissionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var venueName string
	var limit int
	var due bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			subs, err := client.ListSubmissions(ListSubmissionsOpts{
				Status: status,
				Venue:  venueName,
				Limit:  limit,
				Due:    due,
			})
			if err != nil {
				return err
			}

			out.Print(submissionHeaders(), submissionRows(subs), subs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (SCHEDULED, RETRY_SCHEDULED, IN_PROGRESS, SUBMITTED, FAILED, SUPERSEDED)")
	cmd.Flags().StringVar(&venueName, "venue", "", "Filter by venue")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.Flags().BoolVar(&due, "due", false, "Only submissions ready for delivery now")

	return cmd
}

func newSubmissionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show SUBMISSION_ID",
		Short: "Show a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sub, err := client.GetSubmission(args[0])
			if err != nil {
				return err
			}

			out.Detail([][2]string{
				{"ID", sub.ID},
				{"Post", sub.PostID},
				{"Venue", sub.Venue},
				{"Status", sub.Status},
				{"Attempt", strconv.Itoa(sub.Attempt)},
				{"Scheduled", sub.ScheduledAt},
				{"Last error", sub.LastError},
				{"Updated", sub.UpdatedAt},
			}, sub)
			return nil
		},
	}
}
