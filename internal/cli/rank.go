package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/mentormatch/internal/adapters/repository"
	service "github.com/okian/mentormatch/internal/app"
	"github.com/okian/mentormatch/internal/domain/model"
	"github.com/okian/mentormatch/internal/domain/types"
)

// ErrNoFixtures is returned by offline commands that have no profile source.
var ErrNoFixtures = errors.New("no fixtures file: pass --fixtures or set profiles_file")

type rankOutput struct {
	UserID      string             `json:"user_id"`
	Role        model.Role         `json:"role"`
	Count       int                `json:"count"`
	Suggestions []types.Suggestion `json:"suggestions"`
}

func newRankCmd(opts *globalOptions) *cobra.Command {
	var (
		fixturesFile string
		userID       string
		role         string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidates for one user offline and print JSON",
		Long: `Rank candidates for one user from a fixtures file without starting the
service. Weights, feedback blend and limits come from the configuration.

Examples:
  mentormatch rank --fixtures profiles.yaml --user-id e1 --role mentee
  mentormatch rank -f profiles.yaml -u m1 -r mentor -n 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if fixturesFile == "" {
				fixturesFile = opts.cfg.ProfilesFile
			}
			if fixturesFile == "" {
				return ErrNoFixtures
			}
			r, ok := model.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			store := repository.NewMemoryStore()
			if _, err := seedStore(ctx, store, fixturesFile); err != nil {
				return fmt.Errorf("load fixtures: %w", err)
			}
			svc := service.New(serviceOptions(opts.cfg, store)...)
			suggestions, err := svc.Suggestions(ctx, userID, r, limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rankOutput{UserID: userID, Role: r, Count: len(suggestions), Suggestions: suggestions})
		},
	}
	cmd.Flags().StringVarP(&fixturesFile, "fixtures", "f", "", "YAML fixtures file (defaults to config profiles_file)")
	cmd.Flags().StringVarP(&userID, "user-id", "u", "", "id of the user to rank candidates for")
	cmd.Flags().StringVarP(&role, "role", "r", "", "role of the user: mentor or mentee")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max suggestions (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
