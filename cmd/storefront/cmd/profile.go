package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freshmart/storefront/internal/api"
)

var (
	profilePhone      string
	profileAddress    string
	profileCity       string
	profilePostalCode string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the customer profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the customer profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		profile := app.session.Profile()
		if profile == nil {
			return errors.New("profile not available")
		}
		fmt.Printf("Name:        %s\n", profile.FullName)
		fmt.Printf("Email:       %s\n", profile.Email)
		fmt.Printf("Phone:       %s\n", profile.Phone)
		fmt.Printf("Address:     %s\n", profile.Address)
		fmt.Printf("City:        %s\n", profile.City)
		fmt.Printf("Postal code: %s\n", profile.PostalCode)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields (only set flags are sent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.requireAuth(); err != nil {
			return err
		}

		res, err := app.session.UpdateProfile(cmd.Context(), api.ProfileUpdate{
			Phone:      profilePhone,
			Address:    profileAddress,
			City:       profileCity,
			PostalCode: profilePostalCode,
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

		fmt.Println("Profile updated")
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "phone number")
	profileUpdateCmd.Flags().StringVar(&profileAddress, "address", "", "street address")
	profileUpdateCmd.Flags().StringVar(&profileCity, "city", "", "city")
	profileUpdateCmd.Flags().StringVar(&profilePostalCode, "postal-code", "", "postal code")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
