package types

import "time"

// ActionKind describes a single filesystem mutation reported by a command
type ActionKind string

const (
	ActionRename     ActionKind = "rename"
	ActionCopyLink   ActionKind = "copy-link"
	ActionCreateLink ActionKind = "create-link"
	ActionRewrite    ActionKind = "rewrite-config"
	ActionDeleteLink ActionKind = "delete-link"
	ActionDeleteTree ActionKind = "delete-tree"
	ActionDeleteFile ActionKind = "delete-file"
	ActionCreateDir  ActionKind = "create-dir"
	ActionCopyFile   ActionKind = "copy-file"
	ActionSkip       ActionKind = "skip"
	ActionRunCommand ActionKind = "run-command"
)

// Action is one step performed (or, on dry runs, planned) by a command
type Action struct {
	Kind   ActionKind `json:"kind"`
	Path   string     `json:"path"`
	Target string     `json:"target,omitempty"`
	Note   string     `json:"note,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// AreaPromotion is the promotion outcome for one area
type AreaPromotion struct {
	Area    AreaKind `json:"area"`
	Skipped bool     `json:"skipped"`
	Reason  string   `json:"reason,omitempty"`
	Actions []Action `json:"actions"`
}

// PromotionReport is returned by the promote command
type PromotionReport struct {
	Image     string          `json:"image"`
	DryRun    bool            `json:"dryRun"`
	Areas     []AreaPromotion `json:"areas"`
	Timestamp time.Time       `json:"timestamp"`
}

// AreaCleanup is the retention outcome for one area
type AreaCleanup struct {
	Area           AreaKind        `json:"area"`
	Policy         RetentionPolicy `json:"policy"`
	LiveSet        []string        `json:"liveSet"`
	DeletedLinks   []string        `json:"deletedLinks"`
	DeletedContent []string        `json:"deletedContent"`
	Kept           []string        `json:"kept"`
	Errors         []string        `json:"errors,omitempty"`
}

// Deleted returns every path removed (or, on dry runs, to be removed)
func (a AreaCleanup) Deleted() []string {
	out := make([]string, 0, len(a.DeletedLinks)+len(a.DeletedContent))
	out = append(out, a.DeletedLinks...)
	return append(out, a.DeletedContent...)
}

// CleanupReport is returned by the cleanup command
type CleanupReport struct {
	Image     string        `json:"image"`
	DryRun    bool          `json:"dryRun"`
	Areas     []AreaCleanup `json:"areas"`
	Timestamp time.Time     `json:"timestamp"`
}

// SlotState is one slot link as found on disk
type SlotState struct {
	Slot     Slot   `json:"slot"`
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Target   string `json:"target,omitempty"`
	Resolved string `json:"resolved,omitempty"`
	Dangling bool   `json:"dangling,omitempty"`
}

// RevisionState is one numbered revision as found on disk
type RevisionState struct {
	Path     string   `json:"path"`
	Revision Revision `json:"revision"`
	Live     bool     `json:"live"`
}

// AreaStatus describes the slots and revisions of one area
type AreaStatus struct {
	Area      AreaKind        `json:"area"`
	Base      string          `json:"base"`
	Slots     []SlotState     `json:"slots"`
	Revisions []RevisionState `json:"revisions"`
	Errors    []string        `json:"errors,omitempty"`
}

// StatusReport is returned by the status command
type StatusReport struct {
	Image     string       `json:"image"`
	Areas     []AreaStatus `json:"areas"`
	Timestamp time.Time    `json:"timestamp"`
}

// AreaDeploy is the outcome of staging one area's testing revision
type AreaDeploy struct {
	Area     AreaKind `json:"area"`
	Revision string   `json:"revision"`
	Actions  []Action `json:"actions"`
}

// DeployReport is returned by the deploy command
type DeployReport struct {
	Image     string       `json:"image"`
	DryRun    bool         `json:"dryRun"`
	Areas     []AreaDeploy `json:"areas"`
	Timestamp time.Time    `json:"timestamp"`
}

// ReloadReport is returned by the reload command
type ReloadReport struct {
	DryRun    bool      `json:"dryRun"`
	Actions   []Action  `json:"actions"`
	Timestamp time.Time `json:"timestamp"`
}
