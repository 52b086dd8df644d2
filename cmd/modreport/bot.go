package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robalyx/modreport/internal/bot"
	"github.com/robalyx/modreport/internal/setup"
	"github.com/urfave/cli/v3"
)

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Connect to Discord and handle reports",
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			// Initialize application with required dependencies
			app, err := setup.InitializeApp(ctx, "bot", c.String("log-dir"), true)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(context.Background())

			// Create bot instance
			discordBot, err := bot.New(app)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			// Start the bot and connect to Discord
			if err := discordBot.Start(ctx); err != nil {
				return fmt.Errorf("failed to start bot: %w", err)
			}

			log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

			<-ctx.Done()

			// Cleanly close down the Discord session
			discordBot.Close()

			return nil
		},
	}
}
