package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	"github.com/aws/aws-sdk-go-v2/service/codebuild/types"
	"github.com/aws/smithy-go"

	"buildwatchdog/internal/models"
)

// BatchGetBuildsAPI is the subset of the CodeBuild client the SDK fetcher uses.
type BatchGetBuildsAPI interface {
	BatchGetBuilds(ctx context.Context, params *codebuild.BatchGetBuildsInput, optFns ...func(*codebuild.Options)) (*codebuild.BatchGetBuildsOutput, error)
}

// SDKOptions configures the AWS SDK fetcher.
type SDKOptions struct {
	Profile  string
	Region   string
	Endpoint string // optional endpoint override, e.g. LocalStack
	Timeout  time.Duration
}

// SDK fetches build state through the CodeBuild API directly.
type SDK struct {
	client  BatchGetBuildsAPI
	timeout time.Duration
}

// NewSDK loads the default AWS configuration chain and builds a CodeBuild client.
func NewSDK(ctx context.Context, opts SDKOptions) (*SDK, error) {
	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		optFns = append(optFns, awsconfig.WithSharedConfigProfile(opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if opts.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return NewSDKWithClient(codebuild.NewFromConfig(cfg), opts.Timeout), nil
}

// NewSDKWithClient wraps an existing CodeBuild client.
func NewSDKWithClient(client BatchGetBuildsAPI, timeout time.Duration) *SDK {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SDK{client: client, timeout: timeout}
}

// Fetch calls BatchGetBuilds for buildID.
func (s *SDK) Fetch(ctx context.Context, buildID string) (snap models.BuildSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(KindUnexpected, nil, "Unexpected error: %v", r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, apiErr := s.client.BatchGetBuilds(callCtx, &codebuild.BatchGetBuildsInput{
		Ids: []string{buildID},
	})
	if apiErr != nil {
		return models.BuildSnapshot{}, classifySDKError(callCtx, apiErr)
	}
	if out == nil || len(out.Builds) == 0 {
		return models.BuildSnapshot{}, newError(KindNotFound, nil, "Build ID '%s' not found.", buildID)
	}
	return sdkSnapshot(out.Builds[0]), nil
}

func sdkSnapshot(b types.Build) models.BuildSnapshot {
	phases := make([]models.PhaseRecord, 0, len(b.Phases))
	for _, p := range b.Phases {
		rec := models.PhaseRecord{
			PhaseType:       string(p.PhaseType),
			DurationSeconds: aws.ToInt64(p.DurationInSeconds),
		}
		if p.PhaseStatus != "" {
			rec.PhaseStatus = models.ParseBuildStatus(string(p.PhaseStatus))
		}
		phases = append(phases, rec)
	}
	return models.BuildSnapshot{
		BuildID:      aws.ToString(b.Id),
		BuildNumber:  aws.ToInt64(b.BuildNumber),
		Status:       models.ParseBuildStatus(string(b.BuildStatus)),
		ProjectName:  aws.ToString(b.ProjectName),
		CurrentPhase: aws.ToString(b.CurrentPhase),
		Phases:       phases,
	}
}

func classifySDKError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(KindTimeout, err, "AWS API request timed out. Check your network connection.")
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case strings.HasPrefix(code, "ExpiredToken"), code == "RequestExpired":
			return newError(KindCredentialExpired, err, "AWS credentials expired. Please refresh your credentials.")
		case code == "UnrecognizedClientException", code == "InvalidClientTokenId",
			code == "InvalidSignatureException", strings.HasPrefix(code, "AccessDenied"):
			return newError(KindCredentialInvalid, err, "Invalid AWS credentials. Please configure your AWS profile.")
		}
		return newError(KindToolFailure, err, "AWS API Error: %s", apiErr.ErrorMessage())
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "expired"):
		return newError(KindCredentialExpired, err, "AWS credentials expired. Please refresh your credentials.")
	case strings.Contains(lower, "credential"):
		return newError(KindCredentialInvalid, err, "Invalid AWS credentials. Please configure your AWS profile.")
	}
	return newError(KindUnexpected, err, "Unexpected error: %v", err)
}
