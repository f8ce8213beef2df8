package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort          = "Manage testing, stable and oldstable slots of boot images"
	MsgDeployShort        = "Stage the build output as a new testing revision"
	MsgPromoteShort       = "Promote testing to stable and stable to oldstable"
	MsgCleanupShort       = "Remove revisions that are unreferenced and outside the keep window"
	MsgStatusShort        = "Show where every slot points"
	MsgReloadShort        = "Ask the dnbd3 servers to rescan their images"
	MsgConfigShort        = "Inspect the configuration"
	MsgConfigDumpShort    = "Print the effective configuration"
	MsgConfigDefShort     = "Show the name of the default image"
	MsgConfigBuiltinShort = "Print the built-in default configuration"
	MsgVersionShort       = "Print version information"
	MsgCompletionShort    = "Generate shell completion script"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v DEBUG, -vv TRACE)"
	MsgFlagQuiet       = "Only log warnings and errors"
	MsgFlagConfig      = "Config file (default $XDG_CONFIG_HOME/slotctl/config.yml)"
	MsgFlagImage       = "Image to operate on (default general.default-image)"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagMetricsFile = "Write run metrics to this file for the node exporter textfile collector"
	MsgFlagSet         = "Override a config key, e.g. --set images.bwlp.keep-testing=5 (repeatable)"
	MsgFlagRoot        = "Treat this directory as / for all slot paths"
	MsgFlagDryRun      = "Log every action without performing it"
	MsgFlagDumpAs      = "Encoding of the dump: yaml, toml or json"

	// Error messages
	MsgErrNoCommand = "no command specified"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/promote-long.txt
	msgPromoteLongRaw string
	MsgPromoteLong    = strings.TrimSpace(msgPromoteLongRaw)

	//go:embed msgs/cleanup-long.txt
	msgCleanupLongRaw string
	MsgCleanupLong    = strings.TrimSpace(msgCleanupLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
