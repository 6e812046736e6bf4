// reqdump accepts raw TCP connections and dumps each parsed request
// head. Useful for poking at the parser with curl or netcat.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"

	"github.com/tixx/currency-converter/internal/request"
)

func main() {
	port := flag.String("port", "42069", "port to listen on")
	flag.Parse()

	ln, err := net.Listen("tcp", ":"+*port)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Listening to TCP connections on port %s ...\n", *port)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("Could not accept conn: %s\n", err)
			continue
		}

		req, err := request.FromReader(conn)
		if err != nil {
			log.Printf("Could not parse request: %s\n", err)
			conn.Close()
			continue
		}

		fmt.Printf("Request line:\n- Method: %v\n- Target: %v\n- Version: %v\n", req.Method, req.Target, req.Version)
		fmt.Printf("Headers:\n")
		for _, f := range req.Headers.All() {
			fmt.Printf("- %s: %s\n", f.Name, f.Value)
		}

		conn.Close()
	}
}
