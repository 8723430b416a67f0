package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/domain"
	"taskboard/internal/logger"
	"taskboard/internal/service"
)

const usage = `usage: taskctl <command> [flags]

commands:
  add -title T [-description D] [-priority low|medium|high]
  toggle <id>
  delete <id>
  list [-filter all|active|completed] [-json]
  stats
  export

Storage is picked from the environment (KV_DRIVER, SQLITE_PATH, DATABASE_URL, REDIS_ADDR).
`

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	logger.InitWriter(os.Stderr, stringOr(os.Getenv("LOG_LEVEL"), "warn"), cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open storage:", err)
		return 1
	}
	defer storage.Close()

	store := service.NewTaskStore(ctx, storage.KV, service.WithKey(cfg.TasksKey))
	return run(ctx, store, os.Args[1], os.Args[2:], os.Stdout)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, store *service.TaskStore, cmd string, args []string, out io.Writer) int {
	var err error
	switch cmd {
	case "add":
		err = runAdd(ctx, store, args, out)
	case "toggle":
		err = runToggle(ctx, store, args, out)
	case "delete":
		err = runDelete(ctx, store, args, out)
	case "list":
		err = runList(store, args, out)
	case "stats":
		s := store.Stats()
		fmt.Fprintf(out, "total=%d completed=%d active=%d\n", s.Total, s.Completed, s.Active)
	case "export":
		var b []byte
		if b, err = store.Snapshot(); err == nil {
			_, err = fmt.Fprintln(out, string(b))
		}
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, service.ErrPersist) {
			return 3
		}
		return 1
	}
	return 0
}

func runAdd(ctx context.Context, store *service.TaskStore, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "optional description")
	priority := fs.String("priority", "", "low, medium or high")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" && fs.NArg() > 0 {
		*title = strings.Join(fs.Args(), " ")
	}

	p, err := domain.ParsePriority(*priority)
	if err != nil {
		return err
	}

	task, err := store.Add(ctx, *title, *description, p)
	if task == nil && err == nil {
		fmt.Fprintln(out, "skipped: empty title")
		return nil
	}
	if task != nil {
		printTask(out, *task)
	}
	return err
}

func runToggle(ctx context.Context, store *service.TaskStore, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("toggle needs exactly one task id")
	}
	task, err := store.ToggleComplete(ctx, args[0])
	if task == nil && err == nil {
		fmt.Fprintf(out, "no task %s\n", args[0])
		return nil
	}
	if task != nil {
		printTask(out, *task)
	}
	return err
}

func runDelete(ctx context.Context, store *service.TaskStore, args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("delete needs exactly one task id")
	}
	deleted, err := store.Delete(ctx, args[0])
	if deleted {
		fmt.Fprintf(out, "deleted %s\n", args[0])
	} else if err == nil {
		fmt.Fprintf(out, "no task %s\n", args[0])
	}
	return err
}

func runList(store *service.TaskStore, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	filter := fs.String("filter", "all", "all, active or completed")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := domain.ParseFilter(*filter)
	if err != nil {
		return err
	}
	tasks := store.List(f)

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	}
	for _, t := range tasks {
		printTask(out, t)
	}
	return nil
}

func printTask(out io.Writer, t domain.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(out, "[%s] %s  %-6s  %s", mark, t.ID, t.Priority, t.Title)
	if t.Description != "" {
		fmt.Fprintf(out, " (%s)", t.Description)
	}
	fmt.Fprintln(out)
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
