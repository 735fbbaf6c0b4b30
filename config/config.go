package config

import (
	"sms-relay/pkg/env"
	"strconv"
	"time"
)

var (
	AppName       string
	AppListenAddr string

	StoreDriver string

	DBUsername string
	DBPassword string
	DBHost     string
	DBPort     int
	DBName     string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioAPIBase    string

	BroadcastToken   string
	BroadcastWorkers int

	SendTimeout time.Duration

	// Capacity knobs
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeSec int
)

const (
	StoreDriverMySQL  = "mysql"
	StoreDriverMemory = "memory"
)

func Init() {
	AppName = env.Default("APP_NAME", "sms-relay")
	AppListenAddr = env.Default("LISTEN_ADDR", ":8080")

	StoreDriver = env.Default("STORE_DRIVER", StoreDriverMySQL)
	if StoreDriver == StoreDriverMySQL {
		DBUsername = env.RequiredNotEmpty("DB_USER_NAME")
		DBPassword = env.RequiredNotEmpty("DB_PASSWORD")
		DBHost = env.RequiredNotEmpty("DB_HOST")
		port, err := strconv.Atoi(env.RequiredNotEmpty("DB_PORT"))
		if err != nil {
			panic("invalid DB_PORT: " + err.Error())
		}
		DBPort = port
		DBName = env.RequiredNotEmpty("DB_NAME")
	}

	TwilioAccountSID = env.RequiredNotEmpty("TWILIO_ACCOUNT_SID")
	TwilioAuthToken = env.RequiredNotEmpty("TWILIO_AUTH_TOKEN")
	TwilioFromNumber = env.RequiredNotEmpty("TWILIO_PHONE_NUMBER")
	TwilioAPIBase = env.Default("TWILIO_API_BASE", "https://api.twilio.com")

	// Empty token leaves /send-alert open; app.Init logs a warning about it.
	BroadcastToken = env.Default("BROADCAST_TOKEN", "")
	BroadcastWorkers = env.DefaultInt("BROADCAST_WORKERS", 16)

	SendTimeout = time.Duration(env.DefaultInt("SEND_TIMEOUT_SEC", 10)) * time.Second

	DBMaxOpenConns = env.DefaultInt("DB_MAX_OPEN_CONNS", 50)
	DBMaxIdleConns = env.DefaultInt("DB_MAX_IDLE_CONNS", 25)
	DBConnMaxLifetimeSec = env.DefaultInt("DB_CONN_MAX_LIFETIME_SEC", 300)
}
