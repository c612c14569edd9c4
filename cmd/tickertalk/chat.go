package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/session"
)

var keepCharts bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&keepCharts, "keep-charts", false, "keep rendered charts after the session ends")
	rootCmd.AddCommand(chatCmd)
}

// console prints session output to a terminal.
type console struct {
	out io.Writer
}

func (c console) ShowText(text string) {
	fmt.Fprintf(c.out, "\n%s\n\n", text)
}

func (c console) ShowImage(ref core.ChartRef) {
	fmt.Fprintf(c.out, "\n[chart] %s price chart saved to %s\n\n", ref.Ticker, ref.URI)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	sess := session.New(uuid.NewString(), svc.session)
	defer func() {
		if keepCharts {
			return
		}
		if err := svc.purge(context.Background(), sess.ID()); err != nil {
			svc.log.Warn("purging charts", zap.Error(err))
		}
	}()

	return chatLoop(ctx, sess, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop reads one line per turn until EOF, "exit" or cancellation.
func chatLoop(ctx context.Context, sess *session.Session, in io.Reader, out io.Writer) error {
	display := console{out: out}
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Stock analysis assistant. Ask about a ticker, or type exit to quit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		// Errors were already shown on the display.
		_ = sess.Submit(ctx, line, display)

		if ctx.Err() != nil {
			return nil
		}
	}
}
