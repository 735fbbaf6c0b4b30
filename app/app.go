package app

import (
	"log/slog"
	"os"
	"time"

	"sms-relay/config"
	"sms-relay/internal/sender"
	"sms-relay/internal/sender/twilio"
	"sms-relay/internal/store"
	"sms-relay/pkg/db"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
)

var (
	Echo   *echo.Echo
	Logger *slog.Logger
	DB     *db.DB
	Store  store.Store
	Sender sender.Sender
)

func Init() {
	config.Init()
	initLogger()
	initStore()
	initSender()
	initEcho()

	if config.BroadcastToken == "" {
		Logger.Warn("BROADCAST_TOKEN is empty; /send-alert is open to any caller")
	}
}

func initLogger() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	Logger = slog.New(handler)
}

func initStore() {
	switch config.StoreDriver {
	case config.StoreDriverMemory:
		Store = store.NewMemory()
	default:
		var err error
		DB, err = db.ConnectDB(db.Config{
			Username:        config.DBUsername,
			Password:        config.DBPassword,
			Host:            config.DBHost,
			Port:            config.DBPort,
			DBName:          config.DBName,
			MaxOpenConns:    config.DBMaxOpenConns,
			MaxIdleConns:    config.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeSec) * time.Second,
		})
		if err != nil {
			panic(err)
		}
		if err := db.MigrateFromFile(DB, "db/db.sql"); err != nil {
			panic(err)
		}
		Store = store.NewMySQL(DB)
	}
}

func initSender() {
	client := twilio.New(twilio.Config{
		AccountSID: config.TwilioAccountSID,
		AuthToken:  config.TwilioAuthToken,
		FromNumber: config.TwilioFromNumber,
		BaseURL:    config.TwilioAPIBase,
	})
	Sender = sender.NewDispatcher(client, Logger, sender.DispatcherConfig{
		Name:       "twilio",
		Timeout:    config.SendTimeout,
		MaxRetries: 2,
	})
}

func initEcho() {
	Echo = echo.New()
}
