package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"mediatorr/internal/config"
	"mediatorr/internal/services/command"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace warns when the filesystem holding path has less than minGiB
// available. A threshold <= 0 disables the check.
func CheckFreeSpace(name, path string, minGiB int) Result {
	if minGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "check disabled"}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Warn: true, Detail: fmt.Sprintf("%s (statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	threshold := uint64(minGiB) << 30
	detail := fmt.Sprintf("%s free on %s (minimum %s)", humanize.IBytes(free), path, humanize.IBytes(threshold))
	if free < threshold {
		return Result{Name: name, Warn: true, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

type tool struct {
	name     string
	command  string
	purpose  string
	optional bool
}

// CheckTools reports the external executables. mkbrr and mediainfo are
// required; python is only needed for guessit.
func CheckTools(cfg *config.Config) []Result {
	tools := []tool{
		{name: "mkbrr", command: cfg.Tools.Mkbrr, purpose: "torrent creation and announce rewrites"},
		{name: "mediainfo", command: cfg.Tools.MediaInfo, purpose: "technical notes"},
		{name: "python", command: cfg.Tools.Python, purpose: "guessit title guessing", optional: true},
	}
	results := make([]Result, 0, len(tools))
	for _, t := range tools {
		results = append(results, lookupTool(t))
	}
	return results
}

func lookupTool(t tool) Result {
	res := Result{Name: t.name}
	command := strings.TrimSpace(t.command)
	if command == "" {
		res.Detail = "command not configured"
	} else if path, err := exec.LookPath(command); err != nil {
		res.Detail = fmt.Sprintf("binary %q not found (needed for %s)", command, t.purpose)
	} else {
		res.Passed = true
		res.Detail = path
		return res
	}
	res.Warn = t.optional
	return res
}

// CheckGuessit verifies that the guessit module imports. Failure only warns:
// titles then fall back to file names.
func CheckGuessit(ctx context.Context, exec command.Executor, python string) Result {
	const name = "guessit"
	if exec == nil {
		exec = command.OSExecutor{}
	}
	if _, err := exec.Output(ctx, python, []string{"-c", "import guessit"}); err != nil {
		return Result{Name: name, Warn: true, Detail: "not importable; titles fall back to file names"}
	}
	return Result{Name: name, Passed: true, Detail: "importable"}
}
