package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func handleEvents(games *Games, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gm := gameFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		// Subscribe before reading the current state so no transition falls
		// between the two.
		ch := broker.Subscribe(gm.ID)
		defer broker.Unsubscribe(gm.ID, ch)
		// A game discarded before Subscribe would never close ch.
		if _, err := games.Get(gm.ID); err != nil {
			writeGameError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		initial, err := json.Marshal(newSessionView(gm.ID, gm.Session.Snapshot()))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", initial)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data, ok := <-ch:
				if !ok {
					fmt.Fprintf(w, "event: closed\ndata: {}\n\n")
					flusher.Flush()
					return
				}
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				games.keepAlive(gm)
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
