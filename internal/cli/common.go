package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/exprir/internal/errors"
)

// Version information for the expr-ir tool
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-19"
)

// CommitSHA is set during build with -ldflags.
var CommitSHA = "unknown"

// VersionInfo contains version and build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	CommitSHA string `json:"commit_sha"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns structured version information
func GetVersionInfo() *VersionInfo {
	return &VersionInfo{
		Version:   Version,
		BuildDate: BuildDate,
		CommitSHA: CommitSHA,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes version information to w, as JSON when jsonOutput is set.
func PrintVersion(w io.Writer, toolName string, jsonOutput bool) error {
	info := GetVersionInfo()

	if jsonOutput {
		data, err := json.MarshalIndent(map[string]interface{}{
			"tool":         toolName,
			"version_info": info,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	fmt.Fprintf(w, "%s v%s\n", toolName, info.Version)
	fmt.Fprintf(w, "Build Date: %s\n", info.BuildDate)
	if info.CommitSHA != "unknown" && info.CommitSHA != "" {
		fmt.Fprintf(w, "Commit: %s\n", info.CommitSHA)
	}
	fmt.Fprintf(w, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform: %s/%s\n", info.Platform, info.Arch)
	return nil
}

// CheckVersion reports whether this build satisfies a semver constraint
// such as ">= 0.2, < 1". An empty constraint always passes.
func CheckVersion(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.NewStandardError(errors.CategoryConfig, errors.CodeVersionMismatch,
			fmt.Sprintf("invalid version constraint %q: %v", constraint, err), nil)
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	if !c.Check(v) {
		return errors.VersionMismatch(Version, constraint)
	}
	return nil
}
