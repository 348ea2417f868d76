package main

import (
	stdLog "log"
	"time"

	"github.com/bookdesk/librarian/app"
	"github.com/bookdesk/librarian/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.InfoLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
