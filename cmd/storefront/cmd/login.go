package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/api"
)

var (
	loginUsername string
	loginPassword string

	registerUsername  string
	registerEmail     string
	registerPassword  string
	registerFirstName string
	registerLastName  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		username := loginUsername
		if username == "" {
			username = prompt("Username: ")
		}
		password := loginPassword
		if password == "" {
			password = prompt("Password: ")
		}

		res, err := app.session.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		if !res.OK {
			return errors.New(res.Message)
		}

		user := app.session.CurrentUser()
		fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		password := registerPassword
		if password == "" {
			password = prompt("Password: ")
		}

		res, err := app.session.Register(cmd.Context(), api.RegisterRequest{
			Username:  registerUsername,
			Email:     registerEmail,
			Password:  password,
			Password2: password,
			FirstName: registerFirstName,
			LastName:  registerLastName,
		})
		if err != nil {
			return err
		}
		if !res.OK {
			if len(res.Fields) > 0 {
				fmt.Fprintln(os.Stderr, string(res.Fields))
			}
			return errors.New(res.Message)
		}

		user := app.session.CurrentUser()
		fmt.Printf("Registered and logged in as %s\n", user.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		// Best-effort remote call inside; local teardown always happens.
		app.session.Logout(cmd.Context())
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		user := app.session.CurrentUser()
		fmt.Printf("%s (%s)\n", user.Username, user.Email)
		if user.FirstName != "" || user.LastName != "" {
			fmt.Printf("  Name: %s %s\n", user.FirstName, user.LastName)
		}
		return nil
	},
}

// prompt reads one line from stdin.
func prompt(label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "username")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerLastName, "last-name", "", "last name")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
