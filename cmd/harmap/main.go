package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harmap/harmap/internal/geodata"
	"github.com/harmap/harmap/internal/server"
)

// Options defines all CLI flags and env vars for the harmap server.
// Flags: --host, --port, --data-dir, --web-dir, --data-file
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR, SERVICE_DATA_FILE
type Options struct {
	Host     string `doc:"Host to bind to" default:"0.0.0.0"`
	Port     int    `doc:"Port to listen on" short:"p" default:"8091"`
	DataDir  string `doc:"Directory holding the GeoJSON data" default:".data"`
	WebDir   string `doc:"Optional web/ directory overriding the embedded page" default:""`
	DataFile string `doc:"GeoJSON file name inside the data directory" default:"points.geojson"`
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:     opts.Host,
		Port:     fmt.Sprintf("%d", opts.Port),
		DataDir:  opts.DataDir,
		WebDir:   opts.WebDir,
		DataFile: opts.DataFile,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		srv := newServer(opts)

		hooks.OnStart(func() {
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("harmap viewer starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s/%s\n", opts.DataDir, opts.DataFile)
			fmt.Println()
			fmt.Printf("  Map:     %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := http.ListenAndServe(addr, srv); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		})
	})

	cli.Root().Use = "harmap"
	cli.Root().Short = "Map viewer for HAR-derived IP geolocation points"
	cli.Root().Version = "0.1.0"

	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the OpenAPI description (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			doc := newServer(opts).OpenAPI()

			var out []byte
			var err error
			if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
				out, err = yaml.Marshal(doc)
			} else {
				out, err = json.MarshalIndent(doc, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "marshal openapi: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(out))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// validate subcommand: run the loader checks against a file and exit
	validateCmd := &cobra.Command{
		Use:   "validate <file.geojson>",
		Short: "Validate a GeoJSON point file without starting the server",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			coll, err := geodata.NewFileLoader(args[0]).Load(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("OK: %d point features\n", coll.Count())
		},
	}
	cli.Root().AddCommand(validateCmd)

	cli.Run()
}
