// Package main is the entry point for the stegomidi API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/stegomidi/pkg/api"
	"github.com/james-see/stegomidi/pkg/converter/schemes"
	"github.com/james-see/stegomidi/pkg/stego"
	"github.com/james-see/stegomidi/pkg/workspace"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	workdir := flag.String("workdir", workspace.DefaultRoot(), "Workspace root for saved files")
	scheme := flag.String("scheme", schemes.AdaptiveID, "Default encoding scheme (adaptive, legacy)")
	interval := flag.Int("interval", stego.DefaultConfig().KeyframeInterval, "Data notes per keyframe")
	flag.Parse()

	fmt.Printf("Starting stegomidi API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	cfg := stego.DefaultConfig()
	cfg.KeyframeInterval = *interval

	if err := api.StartServer(*port, *workdir, *scheme, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
