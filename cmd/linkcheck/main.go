// Command linkcheck builds the link schema and prints it with its fingerprint.
// It exits non-zero when any declaration is invalid.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dealflow/backend/internal/application/links"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		asJSON   bool
		logLevel string
	)
	flag.BoolVar(&asJSON, "json", false, "Print the canonical JSON encoding instead of a table")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	schema, entities, err := links.Schema()
	if err != nil {
		log.Error("Link schema is invalid", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}

	if asJSON {
		data, err := schema.Encode()
		if err != nil {
			log.Fatal("Failed to encode schema", zap.Error(err))
		}
		fmt.Println(string(data))
		return
	}

	fingerprint, err := schema.Fingerprint()
	if err != nil {
		log.Fatal("Failed to fingerprint schema", zap.Error(err))
	}
	for _, rel := range schema.Relations() {
		fmt.Println(rel.String())
	}
	fmt.Printf("\n%d entities, %d relations, fingerprint %s\n", entities.Count(), schema.Len(), fingerprint)
}
