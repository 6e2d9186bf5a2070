package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Command-line client for the bookstore:
//
//	client search <topic>          list items under a topic
//	client info <id>               show one item
//	client purchase <id> <amount>  buy one unit, offering <amount>
//
// Purchases go through the order gateway; reads go to the catalog directly.
func main() {
	catalogURL := flag.String("catalog", envOr("CATALOG_URL", "http://localhost:5000"), "catalog server base URL")
	gatewayURL := flag.String("gateway", envOr("GATEWAY_URL", "http://localhost:4000"), "order gateway base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	client := &http.Client{Timeout: 10 * time.Second}

	switch args[0] {
	case "search", "s":
		if len(args) != 2 {
			usage()
		}
		get(client, *catalogURL+"/search/"+args[1])

	case "info", "i":
		if len(args) != 2 {
			usage()
		}
		get(client, *catalogURL+"/info/"+args[1])

	case "purchase", "p":
		if len(args) != 3 {
			usage()
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			log.Fatalf("invalid id: %v", err)
		}
		amount, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			log.Fatalf("invalid amount: %v", err)
		}
		body, _ := json.Marshal(map[string]int64{"id": id, "orderCost": amount})
		resp, err := client.Post(*gatewayURL+"/purchase", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		dump(resp.Body)

	default:
		usage()
	}
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	dump(resp.Body)
}

func dump(r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatalf("failed to read response: %v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(pretty.String())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  client search <topic>
  client info <id>
  client purchase <id> <amount>`)
	os.Exit(2)
}
