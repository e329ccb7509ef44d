package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-tracker/internal/catalog"
	"compliance-tracker/internal/config"
	"compliance-tracker/internal/httpapi"
	"compliance-tracker/internal/notify"
	"compliance-tracker/internal/repository"
	"compliance-tracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	cat := catalog.Builtin()
	if cfg.TemplatesFile != "" {
		cat, err = catalog.LoadFile(cfg.TemplatesFile)
		if err != nil {
			log.Fatalf("templates: %v", err)
		}
		log.Printf("loaded obligation templates from %s", cfg.TemplatesFile)
	}

	deadlineRepo := repository.NewDeadlineRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	deadlineSvc := service.NewDeadlineService(deadlineRepo, profileRepo, cat)
	reminderSvc := service.NewReminderService(deadlineRepo)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegram(cfg.TelegramToken, profileRepo, reminderSvc)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
		sweep := func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := notifier.SendReminders(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("reminder sweep: %v", err)
			}
		}
		if cfg.ReminderTime != "" {
			_, err = scheduler.ScheduleDaily(cfg.ReminderTime, sweep)
		} else {
			_, err = scheduler.ScheduleInterval(cfg.ReminderInterval, sweep)
		}
		if err != nil {
			log.Fatalf("schedule reminders: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := httpapi.NewServer(deadlineSvc, profileRepo)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("compliance tracker listening on %s", cfg.HTTPAddr)
	if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
