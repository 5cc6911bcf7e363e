package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/walrens/gateway/base/log"
)

func main() {
	_ = godotenv.Load()
	defer log.Sync()

	if err := newApp().Run(os.Args); err != nil {
		log.Log().WithField("err", err).Error("walrens failed")
		log.Sync()
		os.Exit(1)
	}
}
