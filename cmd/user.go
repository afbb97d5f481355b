package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/user"
	userPostgres "github.com/frahmantamala/employee-management/internal/user/postgres"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var (
	newUserEmail     string
	newUserName      string
	newUserPassword  string
	newUserRole      string
	newUserSuperuser bool
)

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long:  `Create a user account. The password may also be supplied through USER_PASSWORD.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg := mustLoad()

		db, sqlDB, err := initDB(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		password := newUserPassword
		if password == "" {
			password = os.Getenv("USER_PASSWORD")
		}

		svc := user.NewService(userPostgres.NewUserRepository(db), cfg.Security.BCryptCost, lg)

		var u *user.User
		if newUserSuperuser {
			u, err = svc.CreateSuperuser(cmd.Context(), newUserEmail, newUserName, password)
		} else {
			u, err = svc.Create(cmd.Context(), user.CreateUserDTO{
				Email:    newUserEmail,
				Name:     newUserName,
				Password: password,
				Role:     newUserRole,
			})
		}
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				log.Fatalf("invalid user: %v", appErr.FieldErrors())
			}
			log.Fatalf("failed to create user: %v", err)
		}

		fmt.Printf("Created %s user %s (id %d)\n", u.Role, u.Email, u.ID)
	},
}

func init() {
	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "email address (required)")
	createUserCmd.Flags().StringVar(&newUserName, "name", "", "display name (required)")
	createUserCmd.Flags().StringVar(&newUserPassword, "password", "", "password")
	createUserCmd.Flags().StringVar(&newUserRole, "role", string(user.RoleEmployee), "admin, manager or employee")
	createUserCmd.Flags().BoolVar(&newUserSuperuser, "superuser", false, "create an admin with staff access")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("name")

	userCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(userCmd)
}
