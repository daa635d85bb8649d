package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAnalyticsCmd создаёт группу команд для показателей постов.
func NewAnalyticsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Record and view post metrics",
	}

	cmd.AddCommand(
		newAnalyticsRecordCmd(clientFn, outputFn),
		newAnalyticsListCmd(clientFn, outputFn),
	)

	return cmd
}

func newAnalyticsRecordCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var views int64
	var clicks int64

	cmd := &cobra.Command{
		Use:   "record POST_ID",
		Short: "Record metrics for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			metrics, err := client.RecordMetrics(args[0], RecordMetricsRequest{
				Views:  views,
				Clicks: clicks,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Metrics recorded: %s", metrics.ID))
			out.Print(metricsHeaders(), metricsRows([]MetricsResponse{*metrics}), metrics)
			return nil
		},
	}

	cmd.Flags().Int64Var(&views, "views", 0, "View count")
	cmd.Flags().Int64Var(&clicks, "clicks", 0, "Click count")

	return cmd
}

func newAnalyticsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list POST_ID",
		Short: "List recorded metrics for a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			metrics, err := client.ListMetrics(args[0])
			if err != nil {
				return err
			}

			out.Print(metricsHeaders(), metricsRows(metrics), metrics)
			return nil
		},
	}
}

func metricsHeaders() []string {
	return []string{"ID", "VIEWS", "CLICKS", "RECORDED"}
}

func metricsRows(metrics []MetricsResponse) [][]string {
	rows := make([][]string, len(metrics))
	for i, m := range metrics {
		rows[i] = []string{
			m.ID,
			strconv.FormatInt(m.Views, 10),
			strconv.FormatInt(m.Clicks, 10),
			m.RecordedAt,
		}
	}
	return rows
}
