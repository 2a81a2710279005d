// Package main es el punto de entrada del RawBT Daemon.
// RawBT Daemon es un servicio que recibe documentos de impresión RawBT
// vía WebSocket y los entrega al spool de impresión.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/judwhite/go-svc"

	"github.com/adcondev/rawbt-daemon/internal/daemon"
)

func main() {
	consoleMode := flag.Bool("console", false, "Run in console mode (not as service)")
	configFile := flag.String("config", "", "Optional YAML file overriding the build environment")
	flag.Parse()

	prg := &daemon.Program{ConfigFile: *configFile}

	if *consoleMode || isInteractive() {
		prg.Console = true
		runConsole(prg)
		return
	}

	// Run as a service
	if err := svc.Run(prg, syscall.SIGINT, syscall.SIGTERM); err != nil {
		log.Fatal(err)
	}
}

// runConsole runs the program in console mode
func runConsole(prg *daemon.Program) {
	if err := prg.Init(nil); err != nil {
		log.Fatalf("Init failed: %v", err)
	}

	if err := prg.Start(); err != nil {
		log.Fatalf("Start failed: %v", err)
	}

	log.Println("═══════════════════════════════════════════════════════")
	log.Println("  🧾 RAWBT DAEMON - Modo Consola")
	log.Println("  Presiona Ctrl+C para detener...")
	log.Println("═══════════════════════════════════════════════════════")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down...")
	if err := prg.Stop(); err != nil {
		log.Printf("Stop failed: %v", err)
	}
}

// isInteractive checks if running from a terminal (not as service)
func isInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// If stdin is a character device (terminal), we're interactive
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
