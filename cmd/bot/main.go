package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"marketbot/internal/config"
	"marketbot/internal/gologin"
	"marketbot/internal/listing"
	"marketbot/internal/login"
	"marketbot/internal/publisher"
	"marketbot/internal/schedule"
	"marketbot/internal/telegram"
)

const configPath = "configs/config.yaml"

func main() {
	log := newLogger()

	//load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Infof("🔧 Config loaded from %s.", configPath)

	selectors, err := config.LoadSelectors(cfg.SelectorsPath)
	if err != nil {
		log.Fatalf("❌ Failed to load selectors: %v", err)
	}

	//load listing corpus
	corpus, err := listing.LoadCorpus(cfg.TitlesPath)
	if err != nil {
		log.Fatalf("❌ Failed to load titles: %v", err)
	}
	log.Infof("📋 Loaded %d listing titles.", corpus.Len())

	//build weekly schedule
	weekly, err := schedule.FromConfig(cfg.Schedule)
	if err != nil {
		log.Fatalf("❌ Invalid schedule: %v", err)
	}

	//init telegram bot (optional)
	var notifier publisher.Notifier
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
		}
		notifier = bot
		log.Info("🤖 Telegram Bot initialized.")
	} else {
		log.Info("ℹ️ No Telegram token, notifications disabled.")
	}

	client := gologin.NewClient(cfg.GoLoginToken, log)
	ledger := listing.NewFileLedger(cfg.PostedDir, corpus, log)
	selector := listing.NewSelector(corpus, ledger, nil, log)
	clock := schedule.NewClock(weekly, log)
	sessions := publisher.NewSessionFactory(cfg, selectors, corpus, ledger, login.ConsoleConfirmer{}, log)

	pub := publisher.New(clock, weekly, selector, corpus, client, sessions, notifier, log)

	//stop cleanly on Ctrl+C / SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("🚀 Starting marketplace posting bot...")
	if err := pub.Run(ctx); err != nil {
		switch {
		case errors.Is(err, schedule.ErrNoActiveDays):
			log.Fatal("❌ No active days in the schedule. Nothing to do, exiting.")
		case errors.Is(err, context.Canceled):
			log.Info("🏁 Shutdown requested. Bye.")
		default:
			log.Fatalf("❌ Bot stopped: %v", err)
		}
	}
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	//mirror logs to a dated file next to the screenshots
	if err := os.MkdirAll("logs", 0755); err == nil {
		name := fmt.Sprintf("bot-%s.log", time.Now().Format("2006-01-02"))
		file, err := os.OpenFile(filepath.Join("logs", name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(io.MultiWriter(os.Stdout, file))
		}
	}
	return log
}
