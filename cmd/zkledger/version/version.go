package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/zkledger/consts"
	"github.com/thesecretlab-dev/zkledger/schema"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints out the version",
		RunE:  versionFunc,
	}
	return cmd
}

func versionFunc(*cobra.Command, []string) error {
	fmt.Printf("%s@%s (%s) default encoding %s\n", consts.Name, consts.Version, consts.ID, schema.Default.Name())
	return nil
}
