package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/deppfellow/pages-api/internal/database"
	"github.com/deppfellow/pages-api/internal/model"
	"github.com/deppfellow/pages-api/internal/repository"
	"github.com/deppfellow/pages-api/internal/server"
	"github.com/deppfellow/pages-api/internal/service"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an existing user",
		Long: `Mint a bearer token for an existing user.

Examples:
  # Token for user 7, ready for curl
  curl -H "Authorization: Bearer $(pages token --user=7)" localhost:8080/api/v1/pages/1
`,
		RunE: runToken,
	}

	cmd.Flags().Int64("user", 0, "User ID (required)")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetInt64("user")

	return withServices(cmd.Context(), func(ctx context.Context, repos *repository.Repositories, services *service.Services) error {
		if _, err := repos.Users.GetByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return fmt.Errorf("user %d does not exist", userID)
			}
			return err
		}

		token, err := services.Auth.IssueToken(userID)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	})
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <username>",
		Short: "Create a user and print its id and a bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, repos *repository.Repositories, services *service.Services) error {
				user := &model.User{Username: args[0]}
				if err := repos.Users.Create(ctx, user); err != nil {
					return err
				}

				token, err := services.Auth.IssueToken(user.ID)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "id: %d\ntoken: %s\n", user.ID, token)
				return nil
			})
		},
	})

	return cmd
}

// withServices opens the database without the HTTP stack and hands the
// repositories and services to fn.
func withServices(
	ctx context.Context,
	fn func(ctx context.Context, repos *repository.Repositories, services *service.Services) error,
) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	db, err := database.New(a.cfg, a.log, a.loggerService)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.NewWithDatabase(a.cfg, a.log, db)
	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		return err
	}

	return fn(ctx, repos, services)
}
