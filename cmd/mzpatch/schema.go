package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mzpatch/internal/atomicfile"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/gate"
)

var flagSchemaOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a bundle's config.json",
	Long: `Print the JSON Schema describing config.json, for editors and bundle
authors. With --out the schema is written to a file instead.

Examples:
  mzpatch schema
  mzpatch schema --out ./schemas/config.schema.json`,
	Args: cobra.NoArgs,
	Run:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&flagSchemaOut, "out", "", "Path to write the JSON schema")
}

func runSchema(cmd *cobra.Command, args []string) {
	data, err := json.MarshalIndent(buildSchema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: marshal schema: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if flagSchemaOut == "" {
		os.Stdout.Write(data)
		return
	}
	if err := atomicfile.WriteFile(flagSchemaOut, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", flagSchemaOut)
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(domain.Config))
	schema.Title = "mzpatch bundle config"
	schema.Description = fmt.Sprintf("Structural configuration of a patch bundle, versions %d to %d.", gate.MinVersion, gate.MaxVersion)
	return schema
}
