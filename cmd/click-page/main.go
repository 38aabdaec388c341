// Click page server
//
// Serves the shift-click classification page on a fixed port so it can be
// driven by hand or by an external WebDriver client.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/thesyncim/shiftclick/cmd/click-page/server"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	cfg := server.DefaultConfig()
	cfg.Addr = *addr
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	bound, err := srv.Start()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Printf(`
Shift+Click Test Page
=====================
1. Open %s
2. Click the button, then Shift+click it
3. The result line shows which one the page saw

`, srv.URL())
	log.Printf("Listening on %s", bound)

	// Block forever
	select {}
}
