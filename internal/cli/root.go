package cli

import (
	"io"
	"os"

	"github.com/ksysoev/wbs-import/pkg/core"
	"github.com/spf13/cobra"
)

type options struct {
	importMode      bool
	input           string
	dryRun          bool
	tracker         string
	reportPath      string
	envFile         string
	issuePrefix     string
	exportPath      string
	cleanup         bool
	deleteAllIssues bool
	logLevel        string
}

const (
	trackerPlane  = "plane"
	trackerGitHub = "github"
)

// NewRootCmd builds the wbs-import command. Output goes to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "wbs-import",
		Short: "Create Plane modules and issues from a work breakdown structure",
		Long: `wbs-import replays a work breakdown structure into a Plane project.

The input is a JSON object mapping work package names to lists of task titles:

  {"WP1 Backend": ["Design schema", "Write migrations"], "WP2 Frontend": []}

Every work package becomes a module, every task an issue linked to its module.
Modules and issues are processed one at a time in file order. A failure on
one entity is recorded and the run continues; the summary at the end lists
everything that failed.

CONFIGURATION:
  PLANE_API_KEY, PLANE_WORKSPACE_SLUG, PLANE_PROJECT_ID and PLANE_HOST are read
  from action inputs, the environment, or a .env file. They may be omitted
  with --dry-run.

EXAMPLES:
  # Simulate without calling the API
  wbs-import --input wbs.json --dry-run

  # Import and keep a YAML report
  wbs-import --input wbs.json --report result.yaml

  # Import into GitHub milestones and issues instead
  wbs-import --input wbs.json --tracker github --issue-prefix "[WBS]"

  # Export all modules, issues and comments
  wbs-import --export backup.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the mode follows the flag that was given, even when its value is empty
			opts.importMode = cmd.Flags().Changed("input")
			if cmd.Flags().Changed("export") && opts.exportPath == "" {
				return &core.ConfigurationError{Reason: "--export requires a file path"}
			}

			return run(cmd.Context(), opts, out, os.Getenv)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.input, "input", "", "path to the work breakdown structure JSON file")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "simulate the import without making API calls")
	flags.StringVar(&opts.tracker, "tracker", trackerPlane, "tracker to import into: plane or github")
	flags.StringVar(&opts.reportPath, "report", "", "also write the run result to this file (.json, .yaml or .yml)")
	flags.StringVar(&opts.envFile, "env-file", "", "dotenv file to load (default .env if present)")
	flags.StringVar(&opts.issuePrefix, "issue-prefix", "", "prefix for issue titles (github tracker only)")
	flags.StringVar(&opts.exportPath, "export", "", "export all modules, issues and comments to this file and exit")
	flags.BoolVar(&opts.cleanup, "cleanup", false, "delete all modules and their issues and exit")
	flags.BoolVar(&opts.deleteAllIssues, "delete-all-issues", false, "delete every issue in the project and exit")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug or info")

	cmd.MarkFlagsMutuallyExclusive("input", "export", "cleanup", "delete-all-issues")
	cmd.MarkFlagsOneRequired("input", "export", "cleanup", "delete-all-issues")

	return cmd
}
