package migrate

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/blog-client/internal/business"
	"github.com/openkcm/blog-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Blog client migrations",
		"Blog client migrations create the table of the postgres token store",
		buildInfo,
		cmdutils.RunAsJob,
		business.MigrateMain,
	)
}
