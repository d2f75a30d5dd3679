// A small terminal client for the vault API. Lists and searches the
// collection, and with -watch stays connected to the push channel printing
// change events as they arrive.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
)

type game struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	MinPlayers int      `json:"minPlayers"`
	MaxPlayers int      `json:"maxPlayers"`
	Playtime   string   `json:"playtime"`
	MinAge     int      `json:"minAge"`
	Emoji      string   `json:"emoji"`
	Mechanics  []string `json:"mechanics"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "vault server address")
	search := flag.String("search", "", "search term")
	players := flag.Int("players", 0, "filter by supported player count")
	maxTime := flag.Int("maxtime", 0, "filter by maximum playtime in minutes")
	minAge := flag.Int("minage", 0, "filter by minimum age")
	sortBy := flag.String("sort", "name", "sort key: name|players|playtime|added")
	order := flag.String("order", "asc", "sort order: asc|desc")
	watch := flag.Bool("watch", false, "stay connected and print change events")
	flag.Parse()

	if *watch {
		watchEvents(*addr)
		return
	}

	q := url.Values{}
	if *search != "" {
		q.Set("search", *search)
	}
	if *players > 0 {
		q.Set("players", fmt.Sprint(*players))
	}
	if *maxTime > 0 {
		q.Set("maxTime", fmt.Sprint(*maxTime))
	}
	if *minAge > 0 {
		q.Set("minAge", fmt.Sprint(*minAge))
	}
	q.Set("sortBy", *sortBy)
	q.Set("order", *order)

	resp, err := http.Get("http://" + *addr + "/api/games?" + q.Encode())
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var games []game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		log.Fatalf("Bad response: %v", err)
	}

	fmt.Printf("%d games\n", len(games))
	for _, g := range games {
		emoji := g.Emoji
		if emoji == "" {
			emoji = "🎲"
		}
		fmt.Printf("%s %-30s %d-%d players  %-14s %d+\n",
			emoji, g.Name, g.MinPlayers, g.MaxPlayers, g.Playtime, g.MinAge)
	}
}

func watchEvents(addr string) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var event struct {
				Type  string `json:"type"`
				Count int    `json:"count"`
			}
			if err := c.ReadJSON(&event); err != nil {
				log.Println("Read error:", err)
				return
			}
			log.Printf("<- %s (%d games)", event.Type, event.Count)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupt received, closing connection.")
	}
}
