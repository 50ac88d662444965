package commands

import (
	"fmt"

	"secscrape-backend/services/scraper"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeSections *[]string
var scrapeFilingType *string

func init() {
	scrapeSections = scrapeCmd.Flags().StringSlice(
		"sections", nil,
		"The section ids to extract, e.g. --sections 1,1A,7",
	)
	scrapeFilingType = scrapeCmd.Flags().String(
		"type", "",
		"Overrides filing type detection (10-K, 10-Q or 8-K).",
	)
	scrapeCmd.MarkFlagRequired("sections")
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(detectCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <filing-url> --sections <ids>",
	Short: "Scrapes sections of a filing through the service.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var report scraper.Report
		res, err := client().R().
			SetContext(cmd.Context()).
			SetBody(scraper.Request{
				FilingURL:  args[0],
				Sections:   *scrapeSections,
				FilingType: *scrapeFilingType,
			}).
			SetResult(&report).
			Post("/scrape")
		if err := expect(res, err); err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Section", "Success", "Length", "Error"})
		for _, r := range report.Results {
			t.AppendRow(table.Row{r.SectionID, r.Success, r.ContentLength, r.Error})
		}
		t.Render()

		fmt.Printf(
			"filing %s session %s: %d/%d sections ok, storage_saved=%t\n",
			report.FilingID,
			report.SessionID,
			report.Summary.Successful,
			report.Summary.Total,
			report.StorageSaved,
		)
		return nil
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect <filing-url>",
	Short: "Detects the filing type of a url.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			FilingType string `json:"filing_type"`
		}
		res, err := client().R().
			SetContext(cmd.Context()).
			SetBody(map[string]string{"filing_url": args[0]}).
			SetResult(&body).
			Post("/detect-filing-type")
		if err := expect(res, err); err != nil {
			return err
		}

		fmt.Println(body.FilingType)
		return nil
	},
}
