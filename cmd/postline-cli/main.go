// Postline CLI — инструмент командной строки для планирования постов
// и просмотра статуса доставки через HTTP API.
//
// Использование:
//
//	postline [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	post        Планирование и просмотр постов
//	submission  Просмотр заявок на доставку
//	analytics   Запись и просмотр показателей
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Postline/internal/cli"
	"github.com/shaiso/Postline/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var cfg config.CLI
	config.MustLoad(&cfg)

	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "postline",
		Short:         "Postline CLI — content publishing scheduler",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", cfg.APIURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewPostCmd(clientFn, outputFn),
		cli.NewSubmissionCmd(clientFn, outputFn),
		cli.NewAnalyticsCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
