// Command admin manages user accounts from the command line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"stockagent/internal/database"
	"stockagent/internal/logger"
	"stockagent/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() string {
	return strings.TrimSpace(`
usage: admin <command> [arguments]

Commands:
  create-user <username> <email> [-password PASSWORD]
  list-users
  deactivate-user <username>
  activate-user <username>
  reset-password <username>
`)
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("%s", usage())
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	userService := services.NewUserService(dbManager.DB())

	switch os.Args[1] {
	case "create-user":
		return createUser(userService, os.Args[2:])
	case "list-users":
		return listUsers(userService)
	case "deactivate-user":
		return setActive(userService, os.Args[2:], false)
	case "activate-user":
		return setActive(userService, os.Args[2:], true)
	case "reset-password":
		return resetPassword(userService, os.Args[2:])
	default:
		return fmt.Errorf("unknown command %q\n%s", os.Args[1], usage())
	}
}

func createUser(userService services.UserServicer, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	password := fs.String("password", "", "password (prompted if not provided)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: admin create-user <username> <email> [-password PASSWORD]")
	}
	username, email := fs.Arg(0), fs.Arg(1)

	if *password == "" {
		entered, err := promptPassword()
		if err != nil {
			return err
		}
		*password = entered
	}

	user, err := userService.CreateUser(username, email, *password)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", username, err)
	}

	fmt.Printf("User %q created successfully (id %d, email %s)\n", user.Username, user.ID, user.Email)
	return nil
}

func listUsers(userService services.UserServicer) error {
	users, err := userService.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	fmt.Printf("%-6s %-20s %-30s %-20s %s\n", "ID", "Username", "Email", "Created", "Active")
	for _, u := range users {
		fmt.Printf("%-6d %-20s %-30s %-20s %v\n",
			u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02 15:04:05"), u.IsActive)
	}
	fmt.Printf("Total users: %d\n", len(users))
	return nil
}

func setActive(userService services.UserServicer, args []string, active bool) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: admin %s-user <username>", map[bool]string{true: "activate", false: "deactivate"}[active])
	}
	username := args[0]

	if err := userService.SetUserActive(username, active); err != nil {
		return fmt.Errorf("failed to update user %q: %w", username, err)
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	fmt.Printf("User %q has been %s\n", username, state)
	return nil
}

func resetPassword(userService services.UserServicer, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: admin reset-password <username>")
	}
	username := args[0]

	password, err := promptPassword()
	if err != nil {
		return err
	}

	if err := userService.ResetPassword(username, password); err != nil {
		return fmt.Errorf("failed to reset password for %q: %w", username, err)
	}

	fmt.Printf("Password reset successfully for user %q\n", username)
	return nil
}

func promptPassword() (string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	confirm, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	password = strings.TrimRight(password, "\r\n")
	confirm = strings.TrimRight(confirm, "\r\n")
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
