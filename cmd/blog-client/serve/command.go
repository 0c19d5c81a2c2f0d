package serve

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/blog-client/internal/business"
	"github.com/openkcm/blog-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"serve",
		"Blog client views server",
		"Blog client views server restores the persisted session and serves the blog views",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
