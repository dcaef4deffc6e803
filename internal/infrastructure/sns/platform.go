package sns

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/hub-activity-api/internal/config"
	"github.com/hub-activity-api/internal/domain"
)

// Platform abstracts the push subsystem a deployment may or may not have.
// The SNS-backed implementation exchanges raw device tokens for platform
// endpoints bound to the deployment's platform-application identity; the
// no-op implementation is selected at startup when that identity is absent,
// so constrained environments never fail at registration time.
type Platform interface {
	// Supported reports whether this deployment can issue push tokens at all.
	Supported() bool
	// EnsureChannel idempotently registers the notification channel/category.
	EnsureChannel(ctx context.Context) error
	// IssueEndpoint exchanges a raw device token for a platform endpoint ARN.
	IssueEndpoint(ctx context.Context, token string, platform domain.PushPlatform) (string, error)
}

type snsPlatform struct {
	client         *sns.Client
	platformAppARN string
}

// NewPlatform probes the environment and returns the SNS-backed platform, or
// the no-op platform when no platform-application ARN is configured.
func NewPlatform(cfg *config.Config) (Platform, error) {
	if cfg.SNSPlatformAppARN == "" {
		return NoopPlatform{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &snsPlatform{
		client:         sns.NewFromConfig(awsCfg),
		platformAppARN: cfg.SNSPlatformAppARN,
	}, nil
}

func (p *snsPlatform) Supported() bool { return true }

// EnsureChannel is a no-op for SNS: the platform application itself is the
// channel, and it is provisioned out of band. Verifying it exists on every
// registration would cost a round trip for nothing.
func (p *snsPlatform) EnsureChannel(_ context.Context) error { return nil }

func (p *snsPlatform) IssueEndpoint(ctx context.Context, token string, _ domain.PushPlatform) (string, error) {
	out, err := p.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: &p.platformAppARN,
		Token:                  &token,
	})
	if err != nil {
		return "", fmt.Errorf("create platform endpoint: %w", err)
	}
	if out.EndpointArn == nil {
		return "", fmt.Errorf("create platform endpoint: empty ARN: %w", domain.ErrPushUnavailable)
	}
	return *out.EndpointArn, nil
}

// NoopPlatform is the capability stand-in for deployments without a push
// identity. Every call succeeds without doing anything; IssueEndpoint reports
// ErrPushUnavailable so callers surface "no token" instead of crashing.
type NoopPlatform struct{}

func (NoopPlatform) Supported() bool { return false }

func (NoopPlatform) EnsureChannel(_ context.Context) error { return nil }

func (NoopPlatform) IssueEndpoint(_ context.Context, _ string, _ domain.PushPlatform) (string, error) {
	return "", fmt.Errorf("no platform application configured: %w", domain.ErrPushUnavailable)
}
