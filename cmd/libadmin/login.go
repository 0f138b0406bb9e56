package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xiebiao/libadmin/internal/domain/session"
	"github.com/xiebiao/libadmin/pkg/jwt"
)

func newLoginCmd(load loader) *cobra.Command {
	var (
		email     string
		showToken bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the library API and print when the token expires",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				if email, err = prompt(cmd.ErrOrStderr(), in, "Email: "); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd.ErrOrStderr(), in, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			client, err := provideAPIClient(cfg, log)
			if err != nil {
				return err
			}
			token, err := client.Login(cmd.Context(), session.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}

			exp, err := jwt.ExpiresAt(token)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "logged in as %s\n", email)
			fmt.Fprintf(out, "token expires %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
			if showToken {
				fmt.Fprintln(out, token)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email; prompted when empty")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "print the bearer token")
	return cmd
}

func prompt(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a plain line when
// stdin is piped.
func readPassword(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(w, in, label)
	}
	fmt.Fprint(w, label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
