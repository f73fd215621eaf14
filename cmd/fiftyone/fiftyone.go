package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/coreos/go-systemd/daemon"
	"github.com/stobias123/fiftyone/pkg/pwdhash"
	"github.com/stobias123/fiftyone/server"
)

func main() {
	parser := argparse.NewParser("fiftyone", "Dataset API server")
	configFilePath := parser.String("c", "config", &argparse.Options{Help: "Config file path", Default: "fiftyone.json"})
	port := parser.String("p", "port", &argparse.Options{Help: "HTTP listen address", Default: ":5151"})
	newKey := parser.Flag("", "newkey", &argparse.Options{Help: "Generate an API key, print it and its apiKeyHash, and exit"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if *newKey {
		key := pwdhash.NewKey()
		fmt.Printf("API key:    %v\n", key)
		fmt.Printf("apiKeyHash: %v\n", pwdhash.HashKeyBase64(key))
		return
	}

	s, err := server.NewServer(*configFilePath)
	if err != nil {
		panic(err)
	}
	s.ListenForKillSignals()

	// Tell systemd that we're alive
	daemon.SdNotify(false, daemon.SdNotifyReady)

	if err := s.ListenHTTP(*port); err != nil {
		fmt.Printf("%v\n", err)
	}
}
