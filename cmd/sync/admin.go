package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"archie-shopify-sync/internal/application"
	"archie-shopify-sync/internal/bootstrap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := bootstrap.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", store.Driver())
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage shop access tokens",
}

var tokenPutCmd = &cobra.Command{
	Use:   "put",
	Short: "Validate and store an offline access token for a shop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		shop, err := requireShop(cmd)
		if err != nil {
			return err
		}
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			return fmt.Errorf("--token is required")
		}
		scopes, _ := cmd.Flags().GetStringSlice("scopes")

		app, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.TokenService.InstallToken(cmd.Context(), shop, token, scopes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token stored for %s\n", shop)
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Delete the stored access token for a shop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		shop, err := requireShop(cmd)
		if err != nil {
			return err
		}

		app, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.TokenService.RevokeToken(cmd.Context(), shop); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token revoked for %s\n", shop)
		return nil
	},
}

var integrationCmd = &cobra.Command{
	Use:   "integration",
	Short: "Manage integration keys for the sync API",
}

var integrationCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an integration key scoped to a shop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		shop, err := requireShop(cmd)
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")

		app, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		integration, err := app.Integrations.CreateIntegration(cmd.Context(), application.CreateIntegrationInput{
			ShopDomain: shop,
			Label:      label,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), integration.Key)
		return nil
	},
}

var integrationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List integration keys of a shop",
	RunE: func(cmd *cobra.Command, _ []string) error {
		shop, err := requireShop(cmd)
		if err != nil {
			return err
		}

		app, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		integrations, err := app.Integrations.ListIntegrations(cmd.Context(), shop)
		if err != nil {
			return err
		}
		for _, in := range integrations {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", in.Key, in.Label)
		}
		return nil
	},
}

var integrationDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an integration key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := services(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		key := strings.TrimSpace(args[0])
		if err := app.Integrations.DeleteIntegration(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Integration deleted")
		return nil
	},
}

func init() {
	tokenPutCmd.Flags().String("shop", "", "shop domain")
	tokenPutCmd.Flags().String("token", "", "offline access token")
	tokenPutCmd.Flags().StringSlice("scopes", nil, "granted scopes, comma separated")
	tokenRevokeCmd.Flags().String("shop", "", "shop domain")
	tokenCmd.AddCommand(tokenPutCmd, tokenRevokeCmd)

	integrationCreateCmd.Flags().String("shop", "", "shop domain")
	integrationCreateCmd.Flags().String("label", "", "human readable label")
	integrationListCmd.Flags().String("shop", "", "shop domain")
	integrationCmd.AddCommand(integrationCreateCmd, integrationListCmd, integrationDeleteCmd)

	rootCmd.AddCommand(migrateCmd, tokenCmd, integrationCmd)
}
