package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"buildwatchdog/internal/models"
	"buildwatchdog/internal/shell"
)

// DefaultTimeout bounds a single AWS CLI invocation.
const DefaultTimeout = 30 * time.Second

// CLIOptions configures the AWS CLI fetcher.
type CLIOptions struct {
	Command string // executable name or path, "aws" when empty
	Profile string
	Region  string
	Timeout time.Duration
}

// CLI fetches build state by running `aws codebuild batch-get-builds`.
type CLI struct {
	runner  shell.Runner
	command string
	profile string
	region  string
	timeout time.Duration
}

// NewCLI creates an AWS CLI backed fetcher.
func NewCLI(runner shell.Runner, opts CLIOptions) *CLI {
	if runner == nil {
		runner = shell.Exec{}
	}
	command := strings.TrimSpace(opts.Command)
	if command == "" {
		command = "aws"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CLI{
		runner:  runner,
		command: command,
		profile: opts.Profile,
		region:  opts.Region,
		timeout: timeout,
	}
}

type batchGetBuildsOutput struct {
	Builds []cliBuild `json:"builds"`
}

type cliBuild struct {
	ID           string     `json:"id"`
	BuildNumber  int64      `json:"buildNumber"`
	BuildStatus  string     `json:"buildStatus"`
	ProjectName  string     `json:"projectName"`
	CurrentPhase string     `json:"currentPhase"`
	Phases       []cliPhase `json:"phases"`
}

type cliPhase struct {
	PhaseType         string `json:"phaseType"`
	PhaseStatus       string `json:"phaseStatus"`
	DurationInSeconds int64  `json:"durationInSeconds"`
}

// Args returns the argument list passed to the AWS CLI for buildID.
func (c *CLI) Args(buildID string) []string {
	args := []string{"codebuild"}
	if c.profile != "" {
		args = append(args, "--profile", c.profile)
	}
	if c.region != "" {
		args = append(args, "--region", c.region)
	}
	return append(args, "batch-get-builds", "--ids", buildID, "--output", "json")
}

// Fetch runs the query and decodes the first build in the response.
func (c *CLI) Fetch(ctx context.Context, buildID string) (snap models.BuildSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindUnexpected, nil, "Unexpected error: %v", r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, runErr := c.runner.Run(callCtx, c.command, c.Args(buildID)...)
	if runErr != nil {
		return models.BuildSnapshot{}, classifyRunError(callCtx, runErr)
	}
	if res.ExitCode != 0 {
		return models.BuildSnapshot{}, classifyStderr(string(res.Stderr))
	}

	var out batchGetBuildsOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return models.BuildSnapshot{}, newError(KindMalformed, err, "Invalid response from AWS CLI.")
	}
	if len(out.Builds) == 0 {
		return models.BuildSnapshot{}, newError(KindNotFound, nil, "Build ID '%s' not found.", buildID)
	}
	return out.Builds[0].snapshot(), nil
}

func (b cliBuild) snapshot() models.BuildSnapshot {
	phases := make([]models.PhaseRecord, 0, len(b.Phases))
	for _, p := range b.Phases {
		rec := models.PhaseRecord{
			PhaseType:       p.PhaseType,
			DurationSeconds: p.DurationInSeconds,
		}
		if p.PhaseStatus != "" {
			rec.PhaseStatus = models.ParseBuildStatus(p.PhaseStatus)
		}
		phases = append(phases, rec)
	}
	return models.BuildSnapshot{
		BuildID:      b.ID,
		BuildNumber:  b.BuildNumber,
		Status:       models.ParseBuildStatus(b.BuildStatus),
		ProjectName:  b.ProjectName,
		CurrentPhase: b.CurrentPhase,
		Phases:       phases,
	}
}

func classifyRunError(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newError(KindTimeout, err, "AWS CLI request timed out. Check your network connection.")
	case errors.Is(err, exec.ErrNotFound):
		return newError(KindToolMissing, err, "AWS CLI not installed. Please install it first.")
	default:
		return newError(KindUnexpected, err, "Unexpected error: %v", err)
	}
}

// classifyStderr maps AWS CLI error output onto a Kind. Matching is by
// substring and first match wins, so anything unrecognised is a tool failure.
func classifyStderr(stderr string) *Error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "could not be found"):
		return newError(KindToolMissing, nil, "AWS CLI not found. Please install AWS CLI.")
	case strings.Contains(lower, "credentials"):
		return newError(KindCredentialInvalid, nil, "Invalid AWS credentials. Please configure AWS CLI.")
	case strings.Contains(lower, "expired"):
		return newError(KindCredentialExpired, nil, "AWS credentials expired. Please refresh your credentials.")
	default:
		return newError(KindToolFailure, nil, "AWS CLI Error: %s", msg)
	}
}
