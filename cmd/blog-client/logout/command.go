package logout

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/blog-client/internal/business"
	"github.com/openkcm/blog-client/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Blog client logout",
		"Blog client logout removes the persisted token from the configured token store",
		buildInfo,
		cmdutils.RunAsJob,
		business.LogoutMain,
	)
}
