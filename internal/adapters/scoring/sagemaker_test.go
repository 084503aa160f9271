package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/fraudstream/internal/adapters/scoring"
	"github.com/okian/fraudstream/internal/domain/model"
)

type fakeRuntime struct {
	got  *sagemakerruntime.InvokeEndpointInput
	body []byte
	err  error
}

func (f *fakeRuntime) InvokeEndpoint(_ context.Context, in *sagemakerruntime.InvokeEndpointInput, _ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &sagemakerruntime.InvokeEndpointOutput{Body: f.body}, nil
}

func TestSageMakerEndpointInvoke(t *testing.T) {
	rt := &fakeRuntime{body: []byte(`{"predictions":[{"predicted_label":0,"score":0.1}]}`)}
	ep := scoring.NewSageMakerEndpoint(rt)

	body, err := ep.Invoke(context.Background(), model.NewScoringRequest("cc-fraud", []byte("1,2,3\n")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"predictions":[{"predicted_label":0,"score":0.1}]}`, string(body))

	require.NotNil(t, rt.got)
	assert.Equal(t, "cc-fraud", aws.ToString(rt.got.EndpointName))
	assert.Equal(t, "text/csv", aws.ToString(rt.got.ContentType))
	assert.Equal(t, "application/json", aws.ToString(rt.got.Accept))
	assert.Equal(t, []byte("1,2,3\n"), rt.got.Body)
}

func TestSageMakerEndpointError(t *testing.T) {
	rt := &fakeRuntime{err: errors.New("ValidationError: endpoint not found")}
	ep := scoring.NewSageMakerEndpoint(rt)

	_, err := ep.Invoke(context.Background(), model.NewScoringRequest("missing", []byte("1\n")))
	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrInvoke)
	assert.Contains(t, err.Error(), "missing")
	assert.Contains(t, err.Error(), "endpoint not found")
}
