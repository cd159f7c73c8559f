package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	clio "github.com/matzehuels/clustermap/pkg/io"
)

// demoCommand creates the demo command, which writes a synthetic matrix with
// hidden block structure.
func (c *CLI) demoCommand() *cobra.Command {
	var (
		rows, cols int
		seed       uint64
		output     string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write a demo matrix to try clustermap on",
		Example: `  clustermap demo -o demo.csv
  clustermap render demo.csv -k 3 -f svg,png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows < 2 || cols < 2 {
				return fmt.Errorf("demo matrix needs at least 2 rows and 2 columns, got %dx%d", rows, cols)
			}
			ds := clio.Demo(rows, cols, seed)
			if err := clio.Export(ds, output); err != nil {
				return err
			}
			printSuccess("Wrote %d×%d demo matrix", rows, cols)
			printFile(output)
			printNextStep("Render it", fmt.Sprintf("%s render %s -k 3", appName, output))
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 64, "number of rows")
	cmd.Flags().IntVar(&cols, "cols", 48, "number of columns")
	cmd.Flags().Uint64Var(&seed, "seed", 12345, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "demo.csv", "output file (.csv, .tsv or .json)")
	return cmd
}
