package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/auth"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
)

// serviceFactory opens the database lazily so that commands which do not
// need it (catalog, token) run without one.
type serviceFactory func() (*progress.Service, error)

type cli struct {
	open    serviceFactory
	service *progress.Service
}

func (c *cli) svc() (*progress.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	c.service = s
	return s, nil
}

func newRootCmd(open serviceFactory) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:           "phasectl",
		Short:         "PhaseGate administration",
		Long:          `Inspect the phase catalog, user progress and subscriptions, and maintain admin roles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		c.catalogCmd(),
		c.progressCmd(),
		c.completeCmd(),
		c.planCmd(),
		c.grantAdminCmd(),
		c.revokeAdminCmd(),
		c.tokenCmd(),
	)
	return root
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

func (c *cli) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List all phases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tID\tPLAN\tREQUIRES")
			for _, p := range phases.Default.Ordered() {
				requires := strings.Join(p.Requires, ",")
				if requires == "" {
					requires = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Order, p.ID, p.RequiredPlan, requires)
			}
			return w.Flush()
		},
	}
}

func (c *cli) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [user-id]",
		Short: "Show a user's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			s, err := c.svc()
			if err != nil {
				return err
			}
			snap, err := s.Load(cmd.Context(), userID)
			if err != nil {
				return err
			}
			printSnapshot(cmd, snap)
			return nil
		},
	}
}

func (c *cli) completeCmd() *cobra.Command {
	var data string
	var force bool

	cmd := &cobra.Command{
		Use:   "complete [user-id] [phase]",
		Short: "Mark a phase completed for a user",
		Long:  `Mark a phase completed. Locked phases are refused unless --force is given.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			phaseID := args[1]

			var payload any
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				payload = json.RawMessage(data)
			}

			s, err := c.svc()
			if err != nil {
				return err
			}
			if !force {
				current, err := s.Load(cmd.Context(), userID)
				if err != nil {
					return err
				}
				st, ok := current.Status(phaseID)
				if !ok {
					return fmt.Errorf("%w: %s", progress.ErrUnknownPhase, phaseID)
				}
				if !st.Unlocked {
					return fmt.Errorf("phase %s is locked (%s)", phaseID, st.LockReason)
				}
			}

			snap, err := s.MarkPhaseComplete(cmd.Context(), userID, phaseID, payload)
			if err != nil {
				return err
			}
			logger.L().Info("phase completed via cli", zap.String("user_id", userID.String()), zap.String("phase", phaseID))
			printSnapshot(cmd, snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "progress data as JSON")
	cmd.Flags().BoolVar(&force, "force", false, "complete even if the phase is locked")
	return cmd
}

func (c *cli) planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [user-id] [plan]",
		Short: "Change a user's plan (free, pro, premium, gold)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			s, err := c.svc()
			if err != nil {
				return err
			}
			sub, err := s.Resolver().ChangePlan(cmd.Context(), userID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now on plan %s\n", userID, sub.Plan)
			return nil
		},
	}
}

func (c *cli) grantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin [user-id]",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			s, err := c.svc()
			if err != nil {
				return err
			}
			if err := s.Resolver().GrantAdmin(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", userID)
			return nil
		},
	}
}

func (c *cli) revokeAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-admin [user-id]",
		Short: "Remove the admin role from a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			s, err := c.svc()
			if err != nil {
				return err
			}
			if err := s.Resolver().RevokeAdmin(cmd.Context(), userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an admin\n", userID)
			return nil
		},
	}
}

// tokenCmd issues an access token signed with SUPABASE_JWT_SECRET, for
// calling the API in development.
func (c *cli) tokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Issue a development access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			verifier, err := auth.NewVerifierFromEnv()
			if err != nil {
				return err
			}
			token, err := verifier.Sign(userID, verifier.Audience(), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func printSnapshot(cmd *cobra.Command, snap *progress.Snapshot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:     %s\n", snap.UserID())
	fmt.Fprintf(out, "plan:     %s\n", snap.Tier())
	fmt.Fprintf(out, "admin:    %t\n", snap.IsAdmin())
	fmt.Fprintf(out, "progress: %d/%d (%d%%)\n", snap.CompletedCount(), snap.Catalog().Len(), snap.CompletionPercentage())
	if next, ok := snap.NextPhase(); ok {
		fmt.Fprintf(out, "next:     %s\n", next.ID)
	} else {
		fmt.Fprintln(out, "next:     -")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHASE\tSTATE\tREASON")
	for _, st := range snap.Statuses() {
		state := "locked"
		switch {
		case st.Completed:
			state = "completed"
		case st.Unlocked:
			state = "unlocked"
		}
		reason := st.LockReason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Phase.ID, state, reason)
	}
	_ = w.Flush()
}
