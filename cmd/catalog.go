// =============================================================================
// FRSC Operations E-Dashboard - Catalog Command
// =============================================================================
//
// COMMAND USAGE:
//   edash catalog [--file catalog.yaml]
//
// Prints the team leaders, routes, offences and currency types the dashboard
// would offer. Without --file the catalog_file setting is used, and without
// that the built-in lists.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frsc-ops/edashboard/internal/catalog"
)

// catalogFile overrides catalog_file from the configuration.
var catalogFile string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := mainConfig.CatalogFile
		if catalogFile != "" {
			path = catalogFile
		}
		cat, err := catalog.Load(path)
		if err != nil {
			return err
		}
		return printCatalog(os.Stdout, cat)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(
		&catalogFile,
		"file",
		"",
		"YAML, CSV or XLSX catalog file to show",
	)
}

func printCatalog(out io.Writer, cat *catalog.Catalog) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "TEAM LEADERS (%d)\n", len(cat.TeamLeaders))
	for _, l := range cat.TeamLeaders {
		fmt.Fprintf(w, "  %s\t%s\n", l.Name, l.Pin)
	}

	fmt.Fprintf(w, "\nROUTES (%d)\n", len(cat.Routes))
	for _, r := range cat.Routes {
		fmt.Fprintf(w, "  %s\n", r)
	}

	fmt.Fprintf(w, "\nOFFENCES (%d)\n", len(cat.Offences))
	for _, o := range cat.Offences {
		fmt.Fprintf(w, "  %s\t%s\n", o.Code, o.Name)
	}

	fmt.Fprintf(w, "\nCURRENCIES (%d)\n", len(cat.Currencies))
	for _, c := range cat.Currencies {
		fmt.Fprintf(w, "  %s\n", c)
	}

	return w.Flush()
}
