package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"taskboard/internal/logger"

	"github.com/gorilla/websocket"
)

// ws_smoke connects to a running server's change feed, optionally adds a
// task through the API and prints every message received for -for.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	token := flag.String("token", "", "bearer token when AUTH_ENABLED is set")
	title := flag.String("add", "", "add a task with this title after connecting")
	wait := flag.Duration("for", 3*time.Second, "how long to print messages")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	if *token != "" {
		u.RawQuery = url.Values{"token": {*token}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal("dial", "url", u.String(), "error", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		logger.Fatal("write ping", "error", err)
	}

	if *title != "" {
		if err := addTask(*addr, *token, *title); err != nil {
			logger.Fatal("add task", "error", err)
		}
	}

	deadline := time.Now().Add(*wait)
	count := 0
	for {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		count++
		var obj map[string]any
		if json.Unmarshal(msg, &obj) == nil {
			logger.Info("received", "type", obj["type"], "bytes", len(msg))
		}
		fmt.Println(string(msg))
	}

	logger.Info("smoke test finished", "messages", count)
}

func addTask(addr, token, title string) error {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/v1/tasks", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
