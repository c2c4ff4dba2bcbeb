package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/slicemaster/storefront/internal/api"
)

// slice login — sign in and persist the session.
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to your SliceMaster account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := reqCtx()
		defer cancel()
		profile, err := a.API.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s!\n", profile.FirstName)
		return nil
	},
}

// slice register — create an account; the backend signs you in directly.
var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a SliceMaster account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		reader := bufio.NewReader(os.Stdin)
		first := prompt(reader, "First name: ")
		last := prompt(reader, "Last name: ")
		phone := prompt(reader, "Phone: ")
		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := reqCtx()
		defer cancel()
		profile, err := a.API.Register(ctx, api.RegisterRequest{
			FirstName: first,
			LastName:  last,
			Email:     args[0],
			Phone:     phone,
			Password:  password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Account created. Welcome, %s!\n", profile.FirstName)
		return nil
	},
}

// slice logout — clear the local session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.API.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

// slice whoami — show the stored profile, refreshed from the backend when
// reachable.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.Sessions.IsAuthenticated() {
			fmt.Println("Not signed in. Run `slice login <email>` first.")
			return nil
		}

		profile, _ := a.Sessions.Profile()
		ctx, cancel := reqCtx()
		defer cancel()
		if fresh, err := a.API.Me(ctx); err == nil {
			profile = fresh
		}
		fmt.Printf("%s %s <%s>\n", profile.FirstName, profile.LastName, profile.Email)
		return nil
	},
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(label string) (string, error) {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line), nil
	}
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
