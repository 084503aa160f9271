package scoring

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	"github.com/okian/fraudstream/internal/domain/model"
)

// InvokeEndpointAPI is the subset of the SageMaker runtime client we use.
type InvokeEndpointAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// SageMakerEndpoint invokes a hosted SageMaker model.
type SageMakerEndpoint struct {
	client InvokeEndpointAPI
}

// NewSageMakerEndpoint wraps an existing runtime client.
func NewSageMakerEndpoint(client InvokeEndpointAPI) *SageMakerEndpoint {
	return &SageMakerEndpoint{client: client}
}

// NewSageMakerEndpointFromConfig builds the runtime client from cfg. A
// non-empty baseEndpoint overrides the resolved service URL (e.g. LocalStack).
func NewSageMakerEndpointFromConfig(cfg aws.Config, baseEndpoint string) *SageMakerEndpoint {
	client := sagemakerruntime.NewFromConfig(cfg, func(o *sagemakerruntime.Options) {
		if baseEndpoint != "" {
			o.BaseEndpoint = aws.String(baseEndpoint)
		}
	})
	return NewSageMakerEndpoint(client)
}

// Invoke implements Endpoint.
func (s *SageMakerEndpoint) Invoke(ctx context.Context, req model.ScoringRequest) ([]byte, error) {
	out, err := s.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(req.EndpointName),
		ContentType:  aws.String(req.ContentType),
		Accept:       aws.String(req.Accept),
		Body:         req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvoke, req.EndpointName, err)
	}
	return out.Body, nil
}
