package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

var (
	tokenRoleFlag     string
	tokenCustomerFlag string
	tokenTTLFlag      time.Duration
)

// storefront token:issue is a development helper. Production tokens come from
// the identity provider.
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue",
	Short: "Mint a bearer token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.LoadSettings()
		if err != nil {
			return err
		}
		switch tokenRoleFlag {
		case auth.RoleAdmin:
		case auth.RoleCustomer:
			if tokenCustomerFlag == "" {
				return errors.New("token:issue: --customer is required for the customer role")
			}
		default:
			return fmt.Errorf("token:issue: unknown role %q", tokenRoleFlag)
		}

		keys, err := auth.NewKeys(s.JWTSecret)
		if err != nil {
			return err
		}
		token, err := keys.Issue(tokenRoleFlag, tokenCustomerFlag, tokenTTLFlag)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenRoleFlag, "role", auth.RoleAdmin, "admin or customer")
	tokenIssueCmd.Flags().StringVar(&tokenCustomerFlag, "customer", "", "Customer id for the customer role")
	tokenIssueCmd.Flags().DurationVar(&tokenTTLFlag, "ttl", 24*time.Hour, "Token lifetime")
}
