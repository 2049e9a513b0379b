package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/chdsbd/eve/internal"
	"github.com/chdsbd/eve/internal/env"

	"github.com/gofiber/fiber/v3"
)

func main() {
	portFlag := flag.String("port", "8000", "port to listen on")
	envRoot := flag.String("env-root", "", "directory containing environment files")
	appVersion := flag.String("app-version", "", "application version override")

	flag.Parse()

	port := strings.TrimSpace(*portFlag)
	if port == "" {
		log.Fatal("port is required")
	}

	app := internal.SetupApp(*envRoot, *appVersion)

	fmt.Println("APP VERSION:", env.VERSION)

	if err := app.Listen(fmt.Sprintf(":%s", port), fiber.ListenConfig{
		EnablePrefork: env.PREFORK,
	}); err != nil {
		log.Fatalf("Error listening on port %s: %v", port, err)
	}
}
