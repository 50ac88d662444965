package commands

import (
	"time"

	"secscrape-backend/services/sessionstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(sectionsCmd)
}

var filingsCmd = &cobra.Command{
	Use:   "filings",
	Short: "Lists every filing known to the service.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			Filings []sessionstore.Filing `json:"filings"`
		}
		res, err := client().R().
			SetContext(cmd.Context()).
			SetResult(&body).
			Get("/filings")
		if err := expect(res, err); err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Filing", "Type", "Url", "Sessions", "Unique Sections", "Updated"})
		for _, f := range body.Filings {
			t.AppendRow(table.Row{
				f.ID,
				f.FilingType,
				f.URL,
				f.TotalSessions,
				f.TotalUniqueSections,
				f.UpdatedAt.Format(time.RFC3339),
			})
		}
		t.Render()
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions <filing-id>",
	Short: "Lists the scrape sessions of a filing, newest first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			Sessions []sessionstore.Session `json:"sessions"`
		}
		res, err := client().R().
			SetContext(cmd.Context()).
			SetResult(&body).
			Get("/filings/" + args[0] + "/sessions")
		if err := expect(res, err); err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Session", "Scraped At", "Requested", "Successful", "Finalized"})
		for _, s := range body.Sessions {
			t.AppendRow(table.Row{
				s.ID,
				s.ScrapedAt.Format(time.RFC3339),
				s.RequestedSections,
				s.SuccessfulSections,
				s.Finalized,
			})
		}
		t.Render()
		return nil
	},
}

var sectionsCmd = &cobra.Command{
	Use:   "sections <filing-id> <session-id>",
	Short: "Lists the section results written under a session.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body struct {
			Sections []sessionstore.SectionResult `json:"sections"`
		}
		res, err := client().R().
			SetContext(cmd.Context()).
			SetResult(&body).
			Get("/filings/" + args[0] + "/sessions/" + args[1] + "/sections")
		if err := expect(res, err); err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Section", "Success", "Length", "Error"})
		for _, s := range body.Sections {
			t.AppendRow(table.Row{s.SectionID, s.Success, s.ContentLength, s.Error})
		}
		t.Render()
		return nil
	},
}
