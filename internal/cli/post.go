package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewPostCmd создаёт группу команд для управления постами.
func NewPostCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Manage posts",
	}

	cmd.AddCommand(
		newPostScheduleCmd(clientFn, outputFn),
		newPostShowCmd(clientFn, outputFn),
		newPostListCmd(clientFn, outputFn),
		newPostSubsCmd(clientFn, outputFn),
		newPostVenueCmd(clientFn, outputFn),
	)

	return cmd
}

func newPostScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var (
		title       string
		description string
		tags        []string
		hashtags    []string
		videoURL    string
		venueName   string
		at          string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a post for publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreatePostRequest{
				Payload: PostPayload{
					Title:       title,
					Description: description,
					Tags:        tags,
					Hashtags:    hashtags,
					VideoURL:    videoURL,
				},
				Venue: venueName,
			}

			if at != "" {
				if _, err := time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at value %q, expected RFC3339", at)
				}
				req.RequestedAt = &at
			}

			scheduled, err := client.CreatePost(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Post scheduled: %s", scheduled.Post.ID))
			out.Print(
				[]string{"SUBMISSION_ID", "VENUE", "STATUS", "SCHEDULED_AT"},
				[][]string{{
					scheduled.Submission.ID,
					scheduled.Submission.Venue,
					scheduled.Submission.Status,
					scheduled.Submission.ScheduledAt,
				}},
				scheduled,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Post description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().StringSliceVar(&hashtags, "hashtag", nil, "Hashtag (repeatable)")
	cmd.Flags().StringVar(&videoURL, "video-url", "", "Rendered video URL")
	cmd.Flags().StringVar(&venueName, "venue", "", "Target venue (required)")
	cmd.Flags().StringVar(&at, "at", "", "Requested publish time, RFC3339 (default: as soon as the window allows)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("venue")

	return cmd
}

func newPostShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show POST_ID",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			post, err := client.GetPost(args[0])
			if err != nil {
				return err
			}

			out.Detail([][2]string{
				{"ID", post.ID},
				{"Title", post.Payload.Title},
				{"Description", post.Payload.Description},
				{"Tags", strings.Join(post.Payload.Tags, ", ")},
				{"Hashtags", strings.Join(post.Payload.Hashtags, ", ")},
				{"Video URL", post.Payload.VideoURL},
				{"Created", post.CreatedAt},
			}, post)
			return nil
		},
	}
}

func newPostListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			posts, err := client.ListPosts(limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "TITLE", "CREATED"}
			rows := make([][]string, len(posts))
			for i, p := range posts {
				rows[i] = []string{p.ID, p.Payload.Title, p.CreatedAt}
			}

			out.Print(headers, rows, posts)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newPostSubsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "subs POST_ID",
		Short: "List delivery chains for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			subs, err := client.ListPostSubmissions(args[0])
			if err != nil {
				return err
			}

			out.Print(submissionHeaders(), submissionRows(subs), subs)
			return nil
		},
	}
}

func newPostVenueCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "venue POST_ID VENUE",
		Short: "Schedule delivery to one more venue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := ScheduleVenueRequest{Venue: args[1]}
			if at != "" {
				if _, err := time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at value %q, expected RFC3339", at)
				}
				req.RequestedAt = &at
			}

			sub, err := client.ScheduleVenue(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Submission scheduled: %s", sub.ID))
			out.Print(submissionHeaders(), submissionRows([]SubmissionResponse{*sub}), sub)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Requested publish time, RFC3339")

	return cmd
}

// submissionHeaders — общие колонки таблицы заявок.
func submissionHeaders() []string {
	return []string{"ID", "VENUE", "ATTEMPT", "STATUS", "SCHEDULED_AT", "LAST_ERROR"}
}

// submissionRows конвертирует заявки в строки таблицы.
func submissionRows(subs []SubmissionResponse) [][]string {
	rows := make([][]string, len(subs))
	for i, s := range subs {
		rows[i] = []string{s.ID, s.Venue, strconv.Itoa(s.Attempt), s.Status, s.ScheduledAt, s.LastError}
	}
	return rows
}
