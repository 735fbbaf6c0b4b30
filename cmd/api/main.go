package main

import (
	"context"
	"net/http"

	"sms-relay/app"
	"sms-relay/config"
	"sms-relay/internal/broadcast"
	"sms-relay/internal/subscription"
	"sms-relay/pkg/metrics"
	"sms-relay/pkg/middleware"
	"sms-relay/pkg/tracing"

	_ "sms-relay/docs"

	"github.com/labstack/echo/v4"
	echSwagger "github.com/swaggo/echo-swagger"
)

// @title           SMS Relay API
// @version         1.0
// @description     SMS subscription and broadcast relay: inbound webhook drives a per-number subscribe/unsubscribe state machine; broadcasts fan out to all subscribers.
// @host            localhost:8080
// @BasePath        /
func main() {
	app.Init()

	shutdownTracing, err := tracing.Init(context.Background(), config.AppName)
	if err != nil {
		app.Logger.Warn("tracing disabled", "err", err)
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	app.Echo.Use(metrics.EchoMiddleware())

	subSvc := subscription.NewService(app.Store, app.Sender, app.Logger)
	subHandler := subscription.NewHandler(subSvc, app.Logger)

	dispatcher := broadcast.NewDispatcher(app.Store, app.Sender, app.Logger, config.BroadcastWorkers)
	bcastHandler := broadcast.NewHandler(dispatcher, app.Store, app.Logger)

	operatorAuth := middleware.BearerAuth(config.BroadcastToken)

	app.Echo.POST("/twilio-webhook", subHandler.Webhook)
	app.Echo.POST("/send-alert", bcastHandler.SendAlert, operatorAuth)
	app.Echo.GET("/subscribers/count", bcastHandler.SubscriberCount, operatorAuth)

	app.Echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	app.Echo.GET("/metrics", metrics.Handler())
	app.Echo.GET("/swagger/*", echSwagger.WrapHandler)

	if err := app.Echo.Start(config.AppListenAddr); err != nil {
		panic(err)
	}
}
