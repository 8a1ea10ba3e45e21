package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/internship-portal/internal/matching"
)

func matchCmd(a *app) *cobra.Command {
	var (
		raw      matching.RawQuery
		used     []string
		asJSON   bool
		listOnly bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank opportunities for a candidate profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.matchService(nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, entry := range used {
				title, n, err := parseUsed(entry)
				if err != nil {
					return err
				}
				if err := service.SetUsed(cmd.Context(), title, n); err != nil {
					return fmt.Errorf("--used %q: %w", entry, err)
				}
			}

			if listOnly {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TITLE\tLOCATION\tSECTORS\tREMAINING")
				for _, l := range service.Listings(cmd.Context()) {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\n", l.Title, l.Location, strings.Join(l.Sectors, ", "), l.Remaining, l.Capacity)
				}
				return w.Flush()
			}

			result, err := service.Match(cmd.Context(), raw)
			if errors.Is(err, matching.ErrQueryIncomplete) {
				return errors.New(matching.IncompleteQueryMessage)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if len(result.Results) == 0 {
				fmt.Fprintln(out, "No matching opportunities.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTITLE\tSCORE\tMATCHED\tREMAINING")
			for i, r := range result.Results {
				fmt.Fprintf(w, "%d\t%s\t%s%%\t%s\t%s\n",
					i+1,
					r.Title,
					humanize.FtoaWithDigits(r.Score*100, 1),
					strings.Join(r.MatchedSkills, ", "),
					humanize.Comma(int64(r.RemainingCapacity)),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&raw.Skills, "skills", "", "Comma-separated skills")
	cmd.Flags().StringVar(&raw.Qualification, "qualification", "", "Highest qualification (diploma, bachelor, master, phd)")
	cmd.Flags().StringVar(&raw.Location, "location", "", "Preferred location (urban, rural, aspirational, any)")
	cmd.Flags().StringVar(&raw.Sectors, "sectors", "", "Comma-separated sectors of interest")
	cmd.Flags().StringVar(&raw.SocialCategory, "category", "", "Social category")
	cmd.Flags().StringVar(&raw.PastParticipation, "past", "", "Previously participated (yes or no)")
	cmd.Flags().StringArrayVar(&used, "used", nil, "Seed a consumed-slot counter as TITLE=N (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List the catalog instead of matching")
	return cmd
}

func parseUsed(entry string) (string, int, error) {
	i := strings.LastIndex(entry, "=")
	if i <= 0 {
		return "", 0, fmt.Errorf("--used %q: expected TITLE=N", entry)
	}
	n, err := strconv.Atoi(strings.TrimSpace(entry[i+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("--used %q: %w", entry, err)
	}
	return strings.TrimSpace(entry[:i]), n, nil
}
