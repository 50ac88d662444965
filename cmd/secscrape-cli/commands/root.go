package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var serverUrl *string

var rootCmd = &cobra.Command{
	Use:   "secscrape-cli",
	Short: "secscrape-cli talks to a running secscraped instance.",
}

func init() {
	serverUrl = rootCmd.PersistentFlags().String(
		"server",
		"http://localhost:8080",
		"The base url of the secscraped service.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() *resty.Client {
	return resty.New().SetBaseURL(*serverUrl)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// expect fails the command on transport errors and non-200 responses.
func expect(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("server returned status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
