// cmd/property-intel/commands.go
package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"property-intel/internal/common/auth"
	"property-intel/internal/common/config"
	"property-intel/internal/common/errors"
	"property-intel/internal/models"
	"property-intel/internal/portfolio"
	"property-intel/internal/search"
)

var (
	flagAddress  string
	flagCity     string
	flagState    string
	flagSave     bool
	flagEmail    string
	flagPassword string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the usage and saved-property tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.pg.Migrate(ctx); err != nil {
				return err
			}
			a.log.Info("Schema applied", nil)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up a property and score it as an investment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			resp, err := a.search.Search(ctx, search.Request{
				UserID:  flagUser,
				Address: flagAddress,
				City:    flagCity,
				State:   flagState,
			})
			if err != nil {
				return err
			}

			if flagSave && resp.Found {
				id, created, err := a.portfolio.Save(ctx, flagUser, resp.Record)
				if err != nil {
					return err
				}
				a.log.Info("Property saved to portfolio", map[string]interface{}{
					"id":      id,
					"created": created,
				})
			}
			return printJSON(resp)
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Report this month's provider usage against the quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			state, err := a.tracker.CheckAndReport(ctx, flagUser)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"quota":     state,
				"remaining": state.Remaining(),
			})
		})
	},
}

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage saved properties",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved properties with portfolio totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			props, err := a.portfolio.List(ctx, flagUser)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"properties": props,
				"summary":    portfolio.Summarize(props),
			})
		})
	},
}

var portfolioDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved property",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.NewValidationError(fmt.Sprintf("invalid property id %q", args[0]))
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			deleted, err := a.portfolio.Delete(ctx, flagUser, id)
			if err != nil {
				return err
			}
			if !deleted {
				return errors.NewNotFoundError(fmt.Sprintf("saved property %d", id))
			}
			return printJSON(map[string]interface{}{"id": id, "deleted": true})
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify provider connectivity and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			err := a.fetcher.Ping(ctx)
			if flagUser != "" {
				meta := map[string]interface{}{"ok": err == nil}
				if err != nil {
					meta["error_code"] = string(errors.CodeOf(err))
				}
				a.recorder.Record(ctx, flagUser, "connection test", models.QueryTypeConnectionTest, meta)
			}
			if err != nil {
				return err
			}
			fmt.Println("provider connection ok")
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the identity provider and print the user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		if cfg.Identity.URL == "" {
			return errors.NewConfigurationError("identity.url is not configured")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
		defer cancel()

		identity := auth.NewIdentityClient(cfg.Identity.URL, cfg.Identity.APIKey, config.GetDuration(cfg.Identity.Timeout))
		session, err := identity.SignIn(ctx, flagEmail, flagPassword)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{
			"userId":    session.UserID,
			"email":     session.Email,
			"expiresAt": session.ExpiresAt,
		})
	},
}

func init() {
	searchCmd.Flags().StringVar(&flagAddress, "address", "", "street address")
	searchCmd.Flags().StringVar(&flagCity, "city", "", "city")
	searchCmd.Flags().StringVar(&flagState, "state", "", "two-letter state code")
	searchCmd.Flags().BoolVar(&flagSave, "save", false, "save a found property to the portfolio")

	loginCmd.Flags().StringVar(&flagEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "account password")

	portfolioCmd.AddCommand(portfolioListCmd, portfolioDeleteCmd)
}
