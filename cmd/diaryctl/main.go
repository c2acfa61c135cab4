package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/emotion_diary/internal/events"
	"github.com/Skotchmaster/emotion_diary/internal/repo"
	"github.com/Skotchmaster/emotion_diary/internal/seed"
	"github.com/Skotchmaster/emotion_diary/internal/service"
	"github.com/Skotchmaster/emotion_diary/pkg/config"
	"github.com/Skotchmaster/emotion_diary/pkg/db"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
	"github.com/Skotchmaster/emotion_diary/pkg/tokens"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     config.Config
	envFile string
	dsn     string
	timeout time.Duration
}

func (a *app) openRepo(ctx context.Context) (*repo.GormRepo, func(), error) {
	dsn := a.dsn
	if dsn == "" {
		dsn = a.cfg.DatabaseURL
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no database: set DATABASE_URL or --database-url")
	}
	gdb, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return &repo.GormRepo{DB: gdb}, func() { _ = db.Close(gdb) }, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "diaryctl",
		Short:         "Administration tool for the emotion diary backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load(a.envFile)
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before the environment")
	root.PersistentFlags().StringVar(&a.dsn, "database-url", "", "database DSN (defaults to DATABASE_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		migrateCmd(a),
		seedCmd(a),
		grantCmd(a),
		revokeCmd(a),
		tokenCmd(a),
		topicsCmd(a),
	)
	return root
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			r, closeDB, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Migrate(r.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load roles, categories, system tags and the knowledge base from YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			r, closeDB, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Migrate(r.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			sum, err := seed.Apply(ctx, r, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "roles=%d permissions=%d categories=%d system_tags=%d knowledge=%d\n",
				sum.Roles, sum.Permissions, sum.Categories, sum.SystemTags, sum.Knowledge)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "deploy/seed.yaml", "seed file")
	return cmd
}

func roleCmd(a *app, use, short string, apply func(ctx context.Context, svc *service.AdminService, userID uint, role string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id> <role>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("user id must be a positive integer, got %q", args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			ctx = logging.IntoContext(ctx, logging.New(a.cfg.LogLevel))
			r, closeDB, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			svc := &service.AdminService{Repo: r, Events: events.Noop{}}
			if err := apply(ctx, svc, uint(id), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func grantCmd(a *app) *cobra.Command {
	return roleCmd(a, "grant", "Grant a role to a user", func(ctx context.Context, svc *service.AdminService, userID uint, role string) error {
		_, err := svc.GrantRole(ctx, 0, userID, role)
		return err
	})
}

func revokeCmd(a *app) *cobra.Command {
	return roleCmd(a, "revoke", "Revoke a role from a user", func(ctx context.Context, svc *service.AdminService, userID uint, role string) error {
		_, err := svc.RevokeRole(ctx, 0, userID, role)
		return err
	})
}

func tokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an access token for a user with the roles stored for them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("user id must be a positive integer, got %q", args[0])
			}

			tcfg := a.cfg.Tokens()
			if ttl > 0 {
				tcfg.TTL = ttl
			}
			iss, err := tokens.NewIssuer(tcfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			r, closeDB, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			u, err := r.FindUserByID(ctx, uint(id))
			if err != nil {
				return fmt.Errorf("user %d: %w", id, err)
			}
			tok, exp, err := iss.Issue(tokens.ClaimSet{
				UserID: args[0],
				Name:   u.Username,
				Roles:  u.RoleNames(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to JWT_TTL)")
	return cmd
}

func topicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "Create the Kafka topics the server publishes to",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.KafkaBrokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS is not set")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()
			if err := events.EnsureTopics(ctx, a.cfg.KafkaBrokers[0], events.TopicUsers, events.TopicDiaries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topics ready: %s, %s\n", events.TopicUsers, events.TopicDiaries)
			return nil
		},
	}
}
