package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a one-line version string
func (i Info) String() string {
	return fmt.Sprintf("prisma-bulk version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString returns a detailed version string
func (i Info) FullString() string {
	return fmt.Sprintf(`prisma-bulk version %s
Build Date: %s
Git Commit: %s
Platform: %s
Go Version: %s`, i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
}

// Satisfies reports whether v meets constraint, e.g. ">= 0.1, < 1.0"
func Satisfies(v, constraint string) (bool, error) {
	current, err := goversion.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", v, err)
	}
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(current), nil
}

// Require fails when the running CLI does not meet constraint. Scripts use it
// to pin the tool before seeding.
func Require(constraint string) error {
	ok, err := Satisfies(Version, constraint)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("prisma-bulk %s does not satisfy %q", Version, constraint)
	}
	return nil
}
