package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wfunc/taparena/network"
)

// send wraps a payload in the JSON envelope and writes it.
func send(c *websocket.Conn, eventType string, payload interface{}) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	return c.WriteJSON(network.Event{Type: eventType, Payload: raw})
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			var event network.Event
			if err := c.ReadJSON(&event); err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s %s", event.Type, string(event.Payload))
		}
	}()

	log.Println("Commands: create <name> | join <gameId> <name> | ready | tap | again | leave | quit")

	// Input loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				name := "anon"
				if len(fields) > 1 {
					name = fields[1]
				}
				err = send(c, network.EventCreateGame, network.CreateGameRequest{Name: name})
			case "join":
				if len(fields) < 2 {
					log.Println("usage: join <gameId> <name>")
					continue
				}
				name := "anon"
				if len(fields) > 2 {
					name = fields[2]
				}
				err = send(c, network.EventJoinGame, network.JoinGameRequest{GameID: fields[1], Name: name})
			case "ready":
				err = send(c, network.EventSetReady, nil)
			case "tap":
				err = send(c, network.EventTap, nil)
			case "again":
				err = send(c, network.EventGoAgain, nil)
			case "leave":
				err = send(c, network.EventLeaveGame, nil)
			case "quit":
				c.Close()
				return
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			if err != nil {
				log.Printf("Send failed: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
