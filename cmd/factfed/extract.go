package main

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/factfed/discovery"
	"github.com/pevans/factfed/extract"
	"github.com/pevans/factfed/scraper"
	"github.com/spf13/cobra"
)

func (a *app) newExtractCmd() *cobra.Command {
	var (
		title  string
		isHTML bool
		url    string
	)

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract metadata from one article",
		Long: `Run metadata extraction over the flattened text of one article and print
the result as JSON. The input is read from a file, or from stdin when the
file is omitted or "-".

With --html the input is a saved article page. Its title, body text, class
names and category links are taken from the markup and the full report is
printed.

Examples:
  # Extract from flattened text
  factfed extract --title "【錯誤】網傳影片" article.txt

  # Extract from a saved page
  curl -s https://tfc-taiwan.org.tw/fact-check-reports/... | factfed extract --html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			if !isHTML {
				return printJSON(cmd.OutOrStdout(), extract.Extract(string(content), title))
			}

			doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
			if err != nil {
				return fmt.Errorf("failed to parse HTML: %w", err)
			}

			site := scraper.DefaultTFCConfig()
			article := discovery.ExtractArticle(doc.Selection, site.ArticleConfig, url)
			if title != "" {
				article.Title = title
			}

			rep, err := discovery.ToReport(article, site)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "article title, used when the text carries no verdict")
	cmd.Flags().BoolVar(&isHTML, "html", false, "input is an HTML article page")
	cmd.Flags().StringVar(&url, "url", "", "content URL recorded with --html")

	return cmd
}
