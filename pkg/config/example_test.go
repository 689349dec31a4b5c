package config_test

import (
	"fmt"

	"github.com/ajitpratap0/tables/pkg/config"
)

// ExampleNewConfig shows the defaults the CLI starts from.
func ExampleNewConfig() {
	cfg := config.NewConfig()

	fmt.Println("Log level:", cfg.Logging.Level)
	fmt.Println("Compression:", cfg.Envelope.Compression)
	fmt.Println("Eager decode:", cfg.Codec.Eager)
	fmt.Println("Valid:", cfg.Validate() == nil)

	// Output:
	// Log level: info
	// Compression: none
	// Eager decode: true
	// Valid: true
}
