// Package sns delivers push notifications through AWS SNS mobile push.
// Stored subscriber tokens are SNS platform endpoint ARNs.
package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"genius-keeper-backend/pkg/push"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentPublishes bounds the per-endpoint fan-out of one multicast.
const maxConcurrentPublishes = 16

type api interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
	CreatePlatformEndpoint(ctx context.Context, params *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
}

type Client struct {
	sns         api
	platformArn string
	log         *logrus.Entry
}

func NewClient(ctx context.Context, region, platformArn string) (*Client, error) {
	if platformArn == "" {
		return nil, errors.New("SNS_PLATFORM_ARN not set")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newClient(awssns.NewFromConfig(cfg), platformArn), nil
}

func newClient(a api, platformArn string) *Client {
	return &Client{
		sns:         a,
		platformArn: platformArn,
		log:         logrus.WithField("component", "sns"),
	}
}

// RegisterEndpoint converts a device token into a platform endpoint ARN.
// SNS returns the existing ARN when the token is already registered.
func (c *Client) RegisterEndpoint(ctx context.Context, deviceToken string) (string, error) {
	out, err := c.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(c.platformArn),
		Token:                  aws.String(deviceToken),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create platform endpoint: %w", err)
	}
	return aws.ToString(out.EndpointArn), nil
}

// SendMulticast publishes msg to every endpoint concurrently. SNS has no
// batch publish for mobile endpoints, so the batch is emulated here while
// keeping one result per endpoint in input order.
func (c *Client) SendMulticast(ctx context.Context, endpoints []string, msg push.Message) ([]push.Result, error) {
	if len(endpoints) == 0 {
		return nil, nil
	}

	raw, err := encodeMessage(msg)
	if err != nil {
		return nil, err
	}

	results := make([]push.Result, len(endpoints))
	var g errgroup.Group
	g.SetLimit(maxConcurrentPublishes)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			out, err := c.sns.Publish(ctx, &awssns.PublishInput{
				MessageStructure: aws.String("json"),
				Message:          aws.String(raw),
				TargetArn:        aws.String(endpoint),
			})
			results[i] = push.Result{Token: endpoint}
			if err != nil {
				results[i].Err = err
				results[i].Failure = classify(err)
				return nil
			}
			results[i].MessageID = aws.ToString(out.MessageId)
			return nil
		})
	}
	_ = g.Wait()

	success := 0
	for _, r := range results {
		if r.Success() {
			success++
		}
	}
	c.log.WithFields(logrus.Fields{"success": success, "failure": len(results) - success}).Info("[SNS] Multicast sent")
	return results, nil
}

// classify maps SNS exceptions onto the two pruneable categories. A
// disabled or missing endpoint is SNS's "not registered". An invalid
// parameter only marks the ARN unusable when it names the target; other
// invalid parameters (message too long, bad attributes) are payload faults.
func classify(err error) push.FailureKind {
	var disabled *types.EndpointDisabledException
	var notFound *types.NotFoundException
	var invalid *types.InvalidParameterException
	switch {
	case err == nil:
		return push.FailureNone
	case errors.As(err, &disabled), errors.As(err, &notFound):
		return push.FailureUnregistered
	case errors.As(err, &invalid) && namesTarget(invalid):
		return push.FailureInvalidToken
	default:
		return push.FailureOther
	}
}

func namesTarget(err *types.InvalidParameterException) bool {
	msg := strings.ToLower(err.ErrorMessage())
	return strings.Contains(msg, "targetarn") || strings.Contains(msg, "endpoint")
}

func encodeMessage(msg push.Message) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"data": push.Payload(msg),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode GCM payload: %w", err)
	}
	apns, err := json.Marshal(map[string]any{
		"aps": map[string]any{
			"alert": map[string]string{"title": msg.Title, "body": msg.Body},
		},
		"link": msg.Link,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode APNS payload: %w", err)
	}
	raw, err := json.Marshal(map[string]string{
		"default": msg.Body,
		"GCM":     string(gcm),
		"APNS":    string(apns),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode SNS message: %w", err)
	}
	return string(raw), nil
}
