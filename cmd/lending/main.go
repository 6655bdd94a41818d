package main

import (
	stdLog "log"
	"time"

	"github.com/Astemirdum/lending-service/lending/app"
	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:generate swag init -g cmd/lending/main.go -d ../../ -o ../../lending/swagger --parseInternal --parseDependency --outputTypes go

// @title Lending API
// @version 1.0
// @description Books, borrowings and payments of the library lending service.
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
