package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ChamsBouzaiene/sidekick/internal/config"
	"github.com/ChamsBouzaiene/sidekick/internal/engine"
	"github.com/ChamsBouzaiene/sidekick/internal/providers"
	"github.com/ChamsBouzaiene/sidekick/internal/sidekick"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	sandboxFlag := flag.String("sandbox", "", "Workspace directory for file tools (default: ./sandbox)")
	sessionFlag := flag.String("session", "", "Resume an existing session by ID")
	verboseFlag := flag.Bool("verbose", false, "Log every node transition, tool call and verdict")
	flag.Parse()

	if err := run(*sandboxFlag, *sessionFlag, *verboseFlag); err != nil {
		log.Fatalf("sidekick failed: %v", err)
	}
}

func run(sandboxDir, sessionID string, verbose bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, cfgSandboxDir := loadUserConfig()
	if sandboxDir == "" {
		sandboxDir = cfgSandboxDir
	}

	clients, err := providers.NewClientsFromEnv()
	if err != nil {
		return err
	}

	var hooks engine.Hooks
	if verbose {
		hooks = engine.Hooks{engine.LoggerHook{L: log.Default()}}
	}

	s, err := sidekick.New(ctx, clients, sidekick.Options{
		SandboxDir:      sandboxDir,
		DataDir:         dataDir,
		SerperAPIKey:    os.Getenv("SERPER_API_KEY"),
		PushoverToken:   os.Getenv("PUSHOVER_TOKEN"),
		PushoverUserKey: os.Getenv("PUSHOVER_USER"),
		Hooks:           hooks,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("teardown: %v", err)
		}
	}()

	if sessionID == "" {
		sessionID, err = s.NewSession(ctx)
		if err != nil {
			return err
		}
	}
	log.Printf("Session %s ready. Commands: new, sessions, quit", sessionID)

	return repl(ctx, s, sessionID)
}

// loadUserConfig seeds the environment from the saved config and returns the
// configured data and sandbox directories (empty means use the defaults).
func loadUserConfig() (dataDir, sandboxDir string) {
	manager, err := config.NewManager()
	if err != nil {
		log.Printf("WARNING: Failed to initialize config manager: %v", err)
		return "", ""
	}
	cfg, err := manager.Load()
	if err != nil {
		log.Printf("WARNING: Failed to load user config: %v", err)
		return "", ""
	}
	if !manager.Exists() {
		// First run: write a starter file so the user has something to edit.
		if err := manager.Save(cfg); err != nil {
			log.Printf("WARNING: Failed to write starter config: %v", err)
		} else {
			log.Printf("Starter config written to %s", manager.GetConfigPath())
		}
	}
	applyConfigToEnv(cfg)
	return manager.DataDir(cfg), cfg.SandboxDir
}

func repl(ctx context.Context, s *sidekick.Sidekick, sessionID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		task, ok := prompt(ctx, scanner, "task> ")
		if !ok {
			return nil
		}

		switch strings.TrimSpace(task) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "new":
			id, err := s.NewSession(ctx)
			if err != nil {
				log.Printf("error: %v", err)
				continue
			}
			if err := s.TeardownSession(sessionID); err != nil {
				log.Printf("teardown: %v", err)
			}
			sessionID = id
			log.Printf("Session %s ready.", sessionID)
			continue
		case "sessions":
			metas, err := s.ListSessions(ctx)
			if err != nil {
				log.Printf("error: %v", err)
				continue
			}
			for _, m := range metas {
				fmt.Printf("%s  %s  %s\n", m.ID, m.UpdatedAt.Format("2006-01-02 15:04"), m.Title)
			}
			continue
		}

		criteria, ok := prompt(ctx, scanner, "success criteria (empty = your judgement)> ")
		if !ok {
			return nil
		}
		if strings.TrimSpace(criteria) == "" {
			criteria = "The answer should be clear and accurate."
		}

		res, err := s.SubmitTask(ctx, sessionID, task, criteria)
		if err != nil {
			log.Printf("error: %v", err)
			continue
		}

		fmt.Printf("\n%s\n\n", res.FinalResponse)
		fmt.Printf("[%s]\n", res.Feedback)
		if res.RequiredUserInput {
			fmt.Println("[the assistant needs more input from you to continue]")
		}
		fmt.Printf("[tokens: %d prompt, %d completion]\n\n", res.Usage.Prompt, res.Usage.Completion)
	}
}

func prompt(ctx context.Context, scanner *bufio.Scanner, label string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}
