package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/mentormatch/internal/adapters/repository"
	"github.com/okian/mentormatch/internal/loadgen"
	"github.com/okian/mentormatch/pkg/logger"
)

func newFixturesCmd(_ *globalOptions) *cobra.Command {
	var (
		out     string
		mentors int
		mentees int
		history int
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Generate a synthetic profile set as YAML",
		Long: `Generate synthetic mentors and mentees, plus optional prior match
outcomes and ratings, and write them as a fixtures file. The same seed
always produces the same file.

Examples:
  mentormatch fixtures --out profiles.yaml
  mentormatch fixtures --out big.yaml --mentors 500 --mentees 2000 --history 300 --seed 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mentors < 0 || mentees < 0 || history < 0 {
				return fmt.Errorf("counts must not be negative")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			f := loadgen.NewGenerator(seed).Fixtures(mentors, mentees, history)
			if err := repository.SaveFixtures(out, f); err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "fixtures written",
				logger.String("file", out),
				logger.Int("profiles", len(f.Profiles)),
				logger.Int("matches", len(f.Matches)),
				logger.Int("ratings", len(f.Feedback)),
				logger.Any("seed", seed))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "profiles.yaml", "output file")
	cmd.Flags().IntVar(&mentors, "mentors", 50, "number of mentors")
	cmd.Flags().IntVar(&mentees, "mentees", 200, "number of mentees")
	cmd.Flags().IntVar(&history, "history", 0, "number of prior outcomes between random pairs")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (defaults to the current time)")
	return cmd
}
