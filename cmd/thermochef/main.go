package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"

	"github.com/socialchef/thermochef/internal/form"
	"github.com/socialchef/thermochef/internal/httpclient"
	"github.com/socialchef/thermochef/internal/logger"
)

const defaultServer = "http://localhost:8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdin, os.Stdout, clipboard.WriteAll).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout io.Writer, writeClipboard func(string) error) *cli.App {
	return &cli.App{
		Name:      "thermochef",
		Usage:     "Convert a recipe into Thermomix TM6 steps",
		UsageText: "thermochef [--file recipe.txt] [--server URL] [--copy]",
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read the recipe from `FILE` instead of stdin",
			},
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   defaultServer,
				Usage:   "base URL of the conversion server",
				EnvVars: []string{"THERMOCHEF_SERVER"},
			},
			&cli.BoolFlag{
				Name:    "copy",
				Aliases: []string{"c"},
				Usage:   "copy the converted steps to the clipboard",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 90 * time.Second,
				Usage: "how long to wait for the server",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log requests to stderr",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("debug") {
				slog.SetDefault(logger.NewWithWriter("development", os.Stderr))
			}

			recipe, err := readRecipe(c.String("file"), stdin)
			if err != nil {
				return err
			}

			client := form.NewHTTPClient(c.String("server"), httpclient.NewInstrumentedClient(c.Duration("timeout")))
			f := form.New(client, form.ClipboardFunc(writeClipboard), form.WithCopyResetDelay(form.DefaultCopyResetDelay))
			defer f.Close()

			f.SetInput(recipe)
			if err := form.RenderState(c.App.Writer, form.State{Loading: true}); err != nil {
				return err
			}
			slog.Debug("Submitting recipe", "server", c.String("server"), "chars", len(recipe))
			f.Submit(c.Context)

			if c.Bool("copy") {
				f.Copy(c.Context)
			}
			if err := f.Render(c.App.Writer); err != nil {
				return err
			}

			if f.Snapshot().Error != "" {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func readRecipe(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read recipe: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no recipe text given: pass --file or pipe the recipe on stdin")
	}
	return string(data), nil
}
