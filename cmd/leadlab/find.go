package main

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/finder"
)

var (
	findURLs     []string
	findURLsFile string
	findTopic    string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Harvest candidate leads from list/article URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := append([]string(nil), findURLs...)
		if findURLsFile != "" {
			fromFile, err := readURLsFile(findURLsFile)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}
		if len(urls) == 0 {
			return errors.New("no URLs provided: use --urls or --urls-file")
		}

		f := finder.New(env.Config.Finder.BlockedDomains)
		rows := f.FromURLs(cmd.Context(), urls, findTopic)
		if len(rows) == 0 {
			cmd.Println("finder produced no candidates; try different sources")
			return nil
		}
		return addRows(cmd, rows)
	},
}

func readURLsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

func init() {
	findCmd.Flags().StringSliceVar(&findURLs, "urls", nil, "list/article URLs to parse")
	findCmd.Flags().StringVar(&findURLsFile, "urls-file", "", "text file with one URL per line")
	findCmd.Flags().StringVar(&findTopic, "topic", "podcast", "category hint: podcast, network or event")
	rootCmd.AddCommand(findCmd)
}
