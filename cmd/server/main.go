package main

import (
	"log"

	"github.com/joho/godotenv"

	"givehub/internal/app"
)

// @title           GiveHub Verification API
// @version         1.0
// @description     Organization verification workflow for the GiveHub donation platform.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on config and environment")
	}
	app.Run()
}
