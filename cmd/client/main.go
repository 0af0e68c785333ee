package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"mobile-auth/internal/client"
)

const usage = `usage: client [flags] <command>

commands:
  register <email> <full name>   create an account (password is prompted)
  login <email>                  sign in (password is prompted)
  logout                         sign out and forget the local token
  me                             show the signed-in profile
  update [-name N] [-email E]    change profile fields
  password                       change password (both passwords are prompted)

flags:
`

var stdin = bufio.NewReader(os.Stdin)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	home, _ := os.UserHomeDir()
	server := flag.String("server", envOr("AUTH_CLIENT_SERVER", "http://localhost:3000"), "auth API base URL")
	state := flag.String("state", filepath.Join(home, ".mobile-auth", "client.db"), "local token database")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	store, err := client.OpenTokenStore(ctx, *state)
	if err != nil {
		logger.Fatalf("open token store: %v", err)
	}
	defer store.Close()

	c := client.New(*server, store, nil)
	if err := run(ctx, c, flag.Args()); err != nil {
		logger.Error(err)
		store.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) < 2 {
			return fmt.Errorf("register needs <email> <full name>")
		}
		pass, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		u, err := c.Register(ctx, rest[0], pass, strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		printUser("registered", u)
	case "login":
		if len(rest) != 1 {
			return fmt.Errorf("login needs <email>")
		}
		pass, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		u, err := c.Login(ctx, rest[0], pass)
		if err != nil {
			return err
		}
		printUser("logged in", u)
	case "logout":
		if err := c.Logout(ctx); err != nil {
			return fmt.Errorf("logout (local token removed): %w", err)
		}
		fmt.Println("logged out")
	case "me":
		u, err := c.Profile(ctx)
		if err != nil {
			return err
		}
		printUser("profile", u)
	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		name := fs.String("name", "", "new full name")
		email := fs.String("email", "", "new email")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		u, err := c.UpdateProfile(ctx, *name, *email)
		if err != nil {
			return err
		}
		printUser("updated", u)
	case "password":
		current, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		if err := c.ChangePassword(ctx, current, next); err != nil {
			return err
		}
		fmt.Println("password updated")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line read when stdin is piped.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printUser(label string, u *client.User) {
	if u == nil {
		fmt.Println(label)
		return
	}
	fmt.Printf("%s: %s <%s> (id %s, since %s)\n", label, u.FullName, u.Email, u.ID, u.CreatedAt)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
