package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/gorilla/websocket"
)

// Follow connects to a host's live scene and calls apply for each message
// newer than the last one applied. It returns when ctx is cancelled (nil) or
// the connection fails.
func Follow(ctx context.Context, addr string, apply func(Message)) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/live"}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("net: dial %s: %w", addr, err)
	}
	defer ws.Close()
	log.Printf("[VIEWER] Following %s", addr)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.Close()
		case <-stop:
		}
	}()

	var last uint64
	var site string
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("net: host closed the session: %w", err)
			}
			return fmt.Errorf("net: read: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[VIEWER] Ignoring malformed message: %v", err)
			continue
		}
		if msg.Type != MessageScene {
			continue
		}
		// a restarted host has a new site and starts counting again
		if msg.Site == site && msg.Lamport <= last {
			continue
		}
		last, site = msg.Lamport, msg.Site
		apply(msg)
	}
}

// IsClosed reports whether err came from the host ending the session.
func IsClosed(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}
