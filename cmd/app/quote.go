package main

import (
	"encoding/json"
	"io"
	"os"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/core/application/usecases/queries"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var quoteInput string

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Score, decide and price a request without storing it",
	Long: "Reads request attributes as JSON, in the same shape as POST /api/v1/quotes, " +
		"from --file or stdin and prints the quote.",
	RunE: func(c *cobra.Command, _ []string) error {
		var in io.Reader = c.InOrStdin()
		if quoteInput != "" && quoteInput != "-" {
			f, err := os.Open(quoteInput)
			if err != nil {
				return eris.Wrap(err, "open request file")
			}
			defer f.Close()
			in = f
		}

		var attrs httpin.RequestAttributes
		if err := json.NewDecoder(in).Decode(&attrs); err != nil {
			return eris.Wrap(err, "decode request attributes")
		}
		snapshot, err := attrs.Snapshot()
		if err != nil {
			return err
		}
		query, err := queries.NewQuoteQuery(snapshot)
		if err != nil {
			return err
		}

		app, err := cmd.NewCompositionRoot(c.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		quote, err := app.CreateQuoteQueryHandler().Handle(c.Context(), query)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(httpin.ToQuote(quote))
	},
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteInput, "file", "f", "", "JSON request file (default stdin)")
	rootCmd.AddCommand(quoteCmd)
}
