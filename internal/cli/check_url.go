package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/wa-relay/internal/service/screening"
	"github.com/mamadbah2/wa-relay/pkg/clients/pangea"
)

type urlReport struct {
	URL      string   `json:"url"`
	Verdict  string   `json:"verdict,omitempty"`
	Score    int      `json:"score"`
	Category []string `json:"category,omitempty"`
	Flagged  bool     `json:"flagged"`
}

func newCheckURLCmd() *cobra.Command {
	var extractOnly bool

	cmd := &cobra.Command{
		Use:   "check-url [text]",
		Short: "Extract URLs from text and look up their reputation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := screening.ExtractURLs(strings.Join(args, " "))
			if extractOnly || len(urls) == 0 {
				if urls == nil {
					urls = []string{}
				}
				return printJSON(cmd.OutOrStdout(), urls)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.ScreeningEnabled() {
				return fmt.Errorf("PANGEA_INTEL_TOKEN and PANGEA_DOMAIN must be set")
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			reputations, err := pangea.NewClient(cfg.Screening).CheckURLs(ctx, urls)
			if err != nil {
				return err
			}

			reports := make([]urlReport, 0, len(urls))
			for _, url := range urls {
				rep := reputations[url]
				reports = append(reports, urlReport{
					URL:      url,
					Verdict:  rep.Verdict,
					Score:    rep.Score,
					Category: rep.Category,
					Flagged:  rep.Score > cfg.Screening.Threshold,
				})
			}
			return printJSON(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().BoolVar(&extractOnly, "extract-only", false, "only print the extracted URLs")

	return cmd
}
