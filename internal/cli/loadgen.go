package cli

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/loadgen"
)

func newLoadgenCmd(opts *globalOptions) *cobra.Command {
	cfg := loadgen.Config{}
	var fixturesFile string
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Fire suggestion requests at a running service and verify them",
		Long: `Send concurrent GET /suggestions requests for the profiles of a fixtures
file and check that every response is sorted by score, ties broken by
candidate id, and respects the limit. Exits non-zero on any violation.

Examples:
  mentormatch loadgen --fixtures profiles.yaml
  mentormatch loadgen -f profiles.yaml --requests 50000 --concurrency 32 --limit 10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fixturesFile == "" {
				fixturesFile = opts.cfg.ProfilesFile
			}
			if fixturesFile == "" {
				return ErrNoFixtures
			}
			f, err := repository.LoadFixtures(fixturesFile)
			if err != nil {
				return err
			}
			stats, err := loadgen.Run(cmd.Context(), cfg, f.Profiles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d requests, %d verified, %d failed in %s\n",
				stats.Requests, stats.Successful, stats.Failed, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:9080", "base URL of the service")
	cmd.Flags().StringVarP(&fixturesFile, "fixtures", "f", "", "YAML fixtures file with the seed profiles (defaults to config profiles_file)")
	cmd.Flags().IntVar(&cfg.Requests, "requests", loadgen.DefaultRequests, "number of requests")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", runtime.NumCPU()*2, "number of concurrent workers")
	cmd.Flags().IntVarP(&cfg.Limit, "limit", "n", 0, "limit query parameter (0 leaves it to the server)")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", loadgen.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log every failed request")
	return cmd
}
