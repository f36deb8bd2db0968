package commands

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lysyi3m/content-calendar/app/auth"
	"golang.org/x/term"
)

const DefaultAuthFile = "auth.secret"

// HashPassword handles the hash-password subcommand and returns the exit code.
func HashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	overwrite := fs.Bool("overwrite", false, "Overwrite existing auth file without asking")
	output := fs.String("output", authFilePath(), "Auth file to write")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: content-calendar hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates an auth file with an Argon2id password hash for basic auth.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  AUTH_FILE    Default for --output (default: ./%s)\n", DefaultAuthFile)
	}
	_ = fs.Parse(args)

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading username: %v\n", err)
		return 1
	}
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Fprintln(os.Stderr, "Username cannot be empty")
		return 1
	}

	password, err := readPassword(reader, "Enter password:   ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return 1
	}
	confirm, err := readPassword(reader, "Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password confirmation: %v\n", err)
		return 1
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "Password cannot be empty")
		return 1
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "Passwords do not match")
		return 1
	}

	if _, err := os.Stat(*output); err == nil && !*overwrite {
		fmt.Printf("Auth file already exists: %s\n", *output)
		fmt.Print("Overwrite? (y/N): ")
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(os.Stderr, "Aborted")
			return 1
		}
		*overwrite = true
	}

	if err := auth.WriteAuthFile(*output, username, password, *overwrite); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Printf("Auth file created: %s (mode: 0400 read-only)\n", *output)
	fmt.Printf("   Username: %s\n", username)
	fmt.Printf("   Start the server with AUTH_FILE=%s\n", *output)
	return 0
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func authFilePath() string {
	if path := os.Getenv("AUTH_FILE"); path != "" {
		return path
	}
	return DefaultAuthFile
}
