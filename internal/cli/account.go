package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRegisterCmd(o *options) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			u, err := o.apiClient().Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s, now run `time-tracker login`\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCmd(o *options) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			c := o.apiClient()
			resp, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := o.saveToken(resp.Token); err != nil {
				return fmt.Errorf("store token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s until %s\n",
				resp.User.FullName, resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := o.clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newMeCmd(o *options) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show or update the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			u, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			if name != "" || email != "" {
				if name == "" {
					name = u.FullName
				}
				if email == "" {
					email = u.Email
				}
				if u, err = c.UpdateProfile(cmd.Context(), name, email); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.FullName, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New full name")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	return cmd
}

func newCategoriesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.authedClient()
			if err != nil {
				return err
			}
			cats, err := c.Categories(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cats))
			for _, cat := range cats {
				rows = append(rows, []string{cat.Icon, cat.Name, cat.Color})
			}
			printTable(cmd.OutOrStdout(), []string{"", "Name", "Color"}, rows)
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
