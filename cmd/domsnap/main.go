// Command domsnap is a CLI for the accessibility snapshot engine: it
// captures a page's compact text form, searches it, and can keep a
// browser warm across calls via a background daemon.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/domsnap/domsnap"
	"github.com/domsnap/domsnap/snapdaemon"
	"github.com/domsnap/domsnap/statichost"
)

var version = "0.1.0"

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if os.Getenv("DOMSNAP_DEBUG") == "" {
		log = log.Level(zerolog.InfoLevel)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		os.Exit(0)
	}

	session := "default"
	var remaining []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--session", "-s":
			if i+1 < len(args) {
				session = args[i+1]
				i++
			}
		case "--help", "-h":
			printHelp()
			return
		case "--version", "-v":
			fmt.Println(version)
			return
		default:
			remaining = append(remaining, args[i])
		}
	}
	if envSession := os.Getenv("DOMSNAP_SESSION"); envSession != "" && session == "default" {
		session = envSession
	}

	if len(remaining) == 0 {
		printHelp()
		os.Exit(1)
	}

	var err error
	switch remaining[0] {
	case "snapshot":
		err = runSnapshot(remaining[1:], log)
	case "search":
		err = runSearch(remaining[1:], log)
	case "daemon":
		err = runDaemon(remaining[1:], session, log)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", remaining[0])
		printHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// runSnapshot handles: domsnap snapshot <file>
func runSnapshot(args []string, log zerolog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: domsnap snapshot <file>")
	}
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	partial := optionsFromEnv()
	snap := domsnap.CollectWithLogger(doc, partial, log)
	text := domsnap.Format(domsnap.BuildText(snap, nil))
	fmt.Print(text)
	return nil
}

// runSearch handles: domsnap search <file> <query> [contextLevels]
func runSearch(args []string, log zerolog.Logger) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: domsnap search <file> <query> [contextLevels]")
	}
	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	contextLevels := 0
	if len(args) >= 3 {
		n, err := strconv.Atoi(args[2])
		if err == nil {
			contextLevels = n
		}
	}

	snap := domsnap.CollectWithLogger(doc, optionsFromEnv(), log)
	result := domsnap.SearchAndFormat(snap, args[1], contextLevels, domsnap.SearchOptions{})
	if result == nil {
		return fmt.Errorf("search produced no result")
	}
	fmt.Println(*result)
	return nil
}

// loadDocument opens a static HTML file. Arguments beginning with
// "http://" or "https://" are rejected with an error, since live pages are
// only reachable through the daemon; everything else is read as a local
// HTML file.
func loadDocument(target string) (*statichost.Document, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return nil, fmt.Errorf("fetching live URLs from the one-shot snapshot/search commands requires the daemon (domsnap daemon start, then send a navigate command) — see daemon subcommand")
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return statichost.ParseString(string(data), "file://"+target)
}

func optionsFromEnv() *domsnap.PartialCollectorOptions {
	var partial domsnap.PartialCollectorOptions
	if v := os.Getenv("DOMSNAP_MAX_TEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			partial.MaxTextLength = &n
		}
	}
	if v := os.Getenv("DOMSNAP_INCLUDE_HIDDEN"); v != "" {
		b := v == "1" || strings.EqualFold(v, "true")
		partial.IncludeHidden = &b
	}
	return &partial
}

// runDaemon handles: domsnap daemon start|stop|status|run
func runDaemon(args []string, session string, log zerolog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: domsnap daemon <start|stop|status|run>")
	}

	switch args[0] {
	case "status":
		if snapdaemon.IsRunning(session) {
			fmt.Printf("daemon %q is running (pid file %s)\n", session, snapdaemon.PIDFile(session))
		} else {
			fmt.Printf("daemon %q is not running\n", session)
		}
		return nil

	case "stop":
		if !snapdaemon.IsRunning(session) {
			fmt.Printf("daemon %q is not running\n", session)
			return nil
		}
		client := snapdaemon.NewClient(session)
		if err := client.Connect(); err != nil {
			return err
		}
		defer client.Close()
		_, err := client.Send(&snapdaemon.CloseCommand{BaseCommand: snapdaemon.BaseCommand{ID: "stop", Action: "close"}})
		return err

	case "run":
		// Foreground, for supervisors and tests — no fork.
		return snapdaemon.RunForeground(session, log)

	case "start":
		if snapdaemon.IsRunning(session) {
			fmt.Printf("daemon %q is already running\n", session)
			return nil
		}
		isChild, err := snapdaemon.Daemonize(session)
		if err != nil {
			return err
		}
		if !isChild {
			fmt.Printf("daemon %q started\n", session)
			return nil
		}
		// We are the forked child: run the daemon loop until stopped.
		return snapdaemon.RunForeground(session, log)

	default:
		return fmt.Errorf("unknown daemon subcommand %q", args[0])
	}
}

func printHelp() {
	fmt.Printf(`domsnap v%s - DOM accessibility snapshot engine CLI

Usage: domsnap [options] <command> [arguments]

Options:
  --session, -s <name>  Use isolated daemon session (default: "default")
  --help, -h             Show help
  --version, -v          Show version

Environment Variables:
  DOMSNAP_SESSION            Default daemon session name
  DOMSNAP_MAX_TEXT_LENGTH    Override CollectorOptions.MaxTextLength
  DOMSNAP_INCLUDE_HIDDEN     Override CollectorOptions.IncludeHidden ("1"/"true")
  DOMSNAP_DEBUG              Any value enables debug-level logging

Commands:
  snapshot <file>             Render the accessibility snapshot of a local HTML file
  search <file> <query> [n]   Render matching lines (+-n lines of context) for query
  daemon start                Start a background session holding a live browser tab
  daemon stop                 Stop a running daemon session
  daemon status                Report whether a daemon session is running
  daemon run                  Run the daemon in the foreground (no fork)
`, version)
}
