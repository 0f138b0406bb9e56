package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/libadmin/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [TOKEN]",
		Short: "Show the account and expiry of a bearer token",
		Long:  "Decodes a token without verifying it. Reads the token from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				sc := bufio.NewScanner(cmd.InOrStdin())
				if sc.Scan() {
					token = sc.Text()
				}
			}
			token = strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")
			if token == "" {
				return errors.New("no token given")
			}
			return describeToken(cmd, token, time.Now())
		},
	}
}

func describeToken(cmd *cobra.Command, token string, now time.Time) error {
	claims, err := jwt.Decode(token)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if addr := claims.Address(); addr != "" {
		fmt.Fprintf(out, "email:   %s\n", addr)
	}
	if claims.Name != "" {
		fmt.Fprintf(out, "name:    %s\n", claims.Name)
	}

	exp, err := jwt.ExpiresAt(token)
	if err != nil {
		fmt.Fprintln(out, "expires: never (treated as expired)")
		return nil
	}
	fmt.Fprintf(out, "expires: %s\n", exp.Format(time.RFC3339))
	if jwt.IsExpired(token, now) {
		fmt.Fprintln(out, "status:  expired")
	} else {
		fmt.Fprintf(out, "status:  valid for %s\n", exp.Sub(now).Round(time.Second))
	}
	return nil
}
