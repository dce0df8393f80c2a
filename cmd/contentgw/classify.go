package main

import (
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"contentgw/internal/safety"
)

// newClassifyCommand scores content locally without starting the server.
// Nothing is fetched; URLs are assessed from their scheme and host.
func newClassifyCommand() *cobra.Command {
	var (
		rawURL   string
		imageURL string
	)
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text, a URL or an image URL and print the verdict as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			switch {
			case rawURL != "":
				assessment, err := safety.AssessURL(rawURL)
				if err != nil {
					return err
				}
				return enc.Encode(assessment)
			case imageURL != "":
				verdict, err := safety.ModerateImage(imageURL)
				if err != nil {
					return err
				}
				return enc.Encode(verdict)
			}

			text := strings.Join(args, " ")
			if text == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to classify: pass text, --url or --image")
			}
			return enc.Encode(safety.Classify(text))
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "assess a page URL")
	cmd.Flags().StringVar(&imageURL, "image", "", "moderate an image URL")
	return cmd
}
