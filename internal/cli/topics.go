package cli

import (
	"embed"

	"github.com/openslx/slotctl/pkg/cobrax/topics"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

func installTopics(rootCmd *cobra.Command) error {
	m, err := topics.Load(topicFiles, "topics", topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	})
	if err != nil {
		return err
	}
	m.Install(rootCmd)
	return nil
}
