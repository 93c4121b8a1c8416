package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"carddemo/internal/platform/config"
	"carddemo/internal/platform/logger"
	"carddemo/internal/session"
	"carddemo/internal/session/api"
	"carddemo/internal/session/credstore"
	"carddemo/internal/session/guard"
	"carddemo/internal/session/monitor"
	"carddemo/internal/session/state"
)

// sessionctl drives the session core against a running carddemo server:
// it logs in, prints every state transition, keeps the monitor running,
// and reacts to simple commands on stdin.
func main() {
	cfg := config.FromEnv()

	serverURL := flag.String("server", "http://localhost:8080", "carddemo server base URL")
	userID := flag.String("user", "", "user ID to sign on with")
	password := flag.String("password", "", "password to sign on with")
	flag.Parse()

	log := logger.New()

	durable, err := credstore.NewFileTier(cfg.StateDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open state dir:", err)
		os.Exit(1)
	}
	creds := credstore.New(durable, credstore.NewMemoryTier())
	stateStore := state.NewStore()
	client := api.NewClient(*serverURL, api.WithLogger(log))
	manager := session.NewManager(stateStore, creds, client, session.WithLogger(log))

	mon, err := monitor.New(stateStore, creds, manager,
		monitor.WithInterval(cfg.MonitorInterval),
		monitor.WithMaxLifetime(cfg.SessionMaxLifetime),
		monitor.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "monitor init:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates, cancel := stateStore.Subscribe()
	defer cancel()
	go func() {
		for snap := range updates {
			printSnapshot(snap)
		}
	}()
	go func() {
		for event := range mon.Events() {
			fmt.Printf(">> session ended (%s), redirecting to %s\n", event.Reason, event.RedirectPath)
		}
	}()
	go func() {
		if err := mon.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("session monitor stopped", "error", err)
		}
	}()

	if *userID != "" {
		if err := manager.Login(ctx, *userID, *password); err != nil {
			fmt.Println("login failed:", err)
		}
	} else if err := manager.ValidateToken(ctx); err != nil {
		fmt.Println("no resumable session:", err)
	}

	fmt.Println("commands: status | where <path> | refresh | check | logout | quit")
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("bye")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if quit := runCommand(ctx, line, manager, mon, creds, stateStore); quit {
				return
			}
		}
	}
}

func runCommand(ctx context.Context, line string, manager *session.Manager, mon *monitor.Monitor, creds *credstore.Store, stateStore *state.Store) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "status":
		printSnapshot(stateStore.Current())
		if descriptor, err := creds.ReadSessionDescriptor(); err == nil {
			age := descriptor.Age(time.Now())
			fmt.Printf("   session age %s (logged in %s)\n",
				age.Round(time.Second),
				time.UnixMilli(descriptor.LoginTime).Format(time.RFC3339))
		}
	case "where":
		if len(fields) < 2 {
			fmt.Println("usage: where <path>")
			return false
		}
		token, _ := creds.ReadAccessToken()
		decision := guard.Decide(stateStore.Current(), token != "", true, guard.Request{Path: fields[1]})
		fmt.Printf("   %s -> %s %s\n", fields[1], decision.Outcome, decision.RedirectPath)
	case "refresh":
		if err := manager.RefreshToken(ctx); err != nil {
			fmt.Println("refresh failed:", err)
		}
	case "check":
		mon.Wake()
	case "logout":
		manager.Logout(ctx, true)
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func printSnapshot(snap state.Snapshot) {
	switch {
	case snap.Status == state.StatusAuthenticated && snap.User != nil:
		fmt.Printf(">> %s as %s (%s), landing at %s\n",
			snap.Status, snap.User.UserID, snap.User.Role, snap.User.Role.LandingPath())
	case snap.Status == state.StatusError && snap.Err != nil:
		fmt.Printf(">> %s: %v\n", snap.Status, snap.Err)
	default:
		fmt.Printf(">> %s\n", snap.Status)
	}
}
