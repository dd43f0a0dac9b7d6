// chatlink terminal client: interactive chat over a supervised WebSocket link.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/wiralabs/chatlink/internal/client"
	"github.com/wiralabs/chatlink/internal/config"
	"github.com/wiralabs/chatlink/internal/link"
	"github.com/wiralabs/chatlink/internal/wire"
)

// terminalRenderer prints admitted messages to stdout and remembers the
// last choice prompt so numeric input can be mapped back to an option.
type terminalRenderer struct {
	mu      sync.Mutex
	options []wire.Option
}

func (r *terminalRenderer) Render(msg wire.InboundMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Kind {
	case wire.KindTyping:
		if msg.IsTyping {
			fmt.Println("...")
		}
		return
	case wire.KindError:
		fmt.Printf("! %s\n", msg.Content)
	case wire.KindCampaign:
		fmt.Printf("== %s ==\n", msg.Content)
	default:
		fmt.Printf("> %s\n", msg.Content)
	}

	if len(msg.Options) > 0 {
		r.options = msg.Options
		for i, opt := range msg.Options {
			fmt.Printf("  [%d] %s\n", i+1, opt.Label)
		}
	}
}

func (r *terminalRenderer) ClearTranscript() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.options = nil
	// ANSI clear screen plus home.
	fmt.Print("\033[2J\033[H")
}

func (r *terminalRenderer) ConnectionLost(err error) {
	fmt.Printf("connection lost: %v\n", err)
}

// optionFor maps "2" to the second option of the last choice prompt.
// Returns false when the input is not a number or out of range.
func (r *terminalRenderer) optionFor(input string) (wire.Option, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(r.options) {
		return wire.Option{}, false
	}
	return r.options[n-1], true
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.LoadClient()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	renderer := &terminalRenderer{}
	transport := link.NewWSTransport(logger)
	mgr := client.NewManager(client.Config{
		Endpoint:       cfg.Endpoint,
		MaxAttempts:    cfg.MaxAttempts,
		RetryDelay:     cfg.RetryDelay,
		DedupThreshold: cfg.DedupThreshold,
		DedupCapacity:  cfg.DedupCapacity,
		GuardTTL:       cfg.GuardTTL,
		Logger:         logger,
	}, transport, renderer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr.Start(ctx)
	defer mgr.Close()

	fmt.Printf("connected to %s (ctrl-d to quit)\n", cfg.Endpoint)

	input := make(chan string)
	go func() {
		defer close(input)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case input <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-mgr.Done():
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			if opt, isChoice := renderer.optionFor(line); isChoice {
				err = mgr.ActivateChoice(ctx, opt.Value, opt.Label)
			} else {
				err = mgr.SendText(ctx, line)
			}
			if err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
		}
	}
}
