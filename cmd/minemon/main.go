package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robotalks/minefield/pkg/events"
)

var (
	eventsURL = "mqtt://localhost:1883/minefield/"
	deviceID  string
)

func init() {
	if val := os.Getenv("MINES_EVENTS_URL"); val != "" {
		eventsURL = val
	}
	flag.StringVar(&eventsURL, "events", eventsURL, "Events URL: mqtt:// or nats://.")
	flag.StringVar(&deviceID, "id", deviceID, "Only show events of this device.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	bus := events.MustOpen(eventsURL)
	defer bus.Close()

	sub, err := bus.Subscribe(deviceID, func(ev *events.GameEvent) {
		log.Printf("%s: [%s] %s", ev.DeviceID, ev.Kind, ev.String())
	})
	if err != nil {
		log.Fatalln(err)
	}
	defer sub.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
