package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/cache"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/catalog"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/postgres"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/adapters/security"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/app/bootstrap"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/domain"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func rootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "inspectctl",
		Short:         "Operate the site inspection service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "configs/default.yaml", "Path to config file")

	cmd.AddCommand(catalogCmd())
	cmd.AddCommand(scoreCmd())
	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(userCmd(&configPath))
	return cmd
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect checklist definitions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [path]",
		Short: "Check a checklist file for duplicate or empty entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(firstArg(args))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d categories, %d items\n", len(c.Categories()), c.ItemCount())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "print [path]",
		Short: "Print the checklist as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(firstArg(args))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c.Categories())
		},
	})
	return cmd
}

func scoreCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "score <report.json>",
		Short: "Score a report file offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return printScore(cmd.OutOrStdout(), c, f)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Checklist file (built-in checklist when empty)")
	return cmd
}

func printScore(w io.Writer, c *domain.Catalog, r io.Reader) error {
	var doc struct {
		Results []domain.InspectionItemResult `json:"results"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	for _, res := range doc.Results {
		if _, ok := c.Lookup(res.ItemID); !ok {
			return fmt.Errorf("%w: unknown checklist item %q", domain.ErrInvalidInput, res.ItemID)
		}
	}
	summary := domain.ComputeScores(c, doc.Results)

	ids := make([]string, 0, len(summary.CategoryScores))
	for id := range summary.CategoryScores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%-12s %3d%%\n", id, summary.CategoryScores[id])
	}
	fmt.Fprintf(w, "%-12s %3d%% %s\n", "overall", summary.Score, summary.Evaluation)
	return nil
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			_, db, closeDB, err := openDatabase(ctx, *configPath)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := postgres.RunMigrations(ctx, db); err != nil {
				return err
			}
			names, err := postgres.MigrationNames()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied: %s\n", strings.Join(names, ", "))
			return nil
		},
	}
}

func userCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var email, password, fullName string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			cfg, db, closeDB, err := openDatabase(ctx, *configPath)
			if err != nil {
				return err
			}
			defer closeDB()
			repos := postgres.NewRepositories(db)

			signer, err := security.NewEphemeralJWTSigner(cfg.JWTIssuer)
			if err != nil {
				return err
			}
			identity := security.NewLocalIdentityProvider(
				repos.Credentials,
				security.NewBcryptHasher(cfg.BcryptCost),
				signer,
				cache.NewMemoryStore(),
				security.IdentityConfig{SessionTTL: cfg.SessionTTL},
			)
			email = strings.ToLower(strings.TrimSpace(email))
			userID, err := identity.CreateIdentity(ctx, email, password)
			if err != nil {
				return err
			}
			profile, err := repos.Profiles.Upsert(ctx, domain.UserProfile{
				ID:       userID,
				Email:    email,
				FullName: strings.TrimSpace(fullName),
				Role:     domain.RoleAdmin,
			})
			if err != nil {
				_, _ = identity.DeleteIdentity(ctx, email)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", profile.Email, profile.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&email, "email", "", "Login email")
	createAdmin.Flags().StringVar(&password, "password", "", "Initial password")
	createAdmin.Flags().StringVar(&fullName, "name", "", "Display name")
	_ = createAdmin.MarkFlagRequired("email")
	_ = createAdmin.MarkFlagRequired("password")
	cmd.AddCommand(createAdmin)
	return cmd
}

func openDatabase(ctx context.Context, configPath string) (bootstrap.Config, *gorm.DB, func(), error) {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return bootstrap.Config{}, nil, nil, err
	}
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return bootstrap.Config{}, nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return bootstrap.Config{}, nil, nil, err
	}
	return cfg, db, func() { _ = sqlDB.Close() }, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
