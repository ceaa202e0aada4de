package provider_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthousehold/inventory-service/internal/provider"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	fail   map[string]bool
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.fail[aws.ToString(in.TargetArn)] {
		return nil, errors.New("EndpointDisabled")
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSProvider_PublishesPerEndpoint(t *testing.T) {
	fake := &fakeSNS{fail: map[string]bool{"arn:disabled": true}}
	p := provider.NewSNSProviderWithClient(fake)

	res, err := p.SendMulticast(context.Background(), testMessage("arn:one", "arn:disabled"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	require.Len(t, fake.inputs, 2)

	in := fake.inputs[0]
	assert.Equal(t, "json", aws.ToString(in.MessageStructure))

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &envelope))
	assert.Equal(t, "Milk expires today", envelope["default"])

	var gcm struct {
		Notification struct {
			Title string `json:"title"`
			Color string `json:"color"`
		} `json:"notification"`
		Android struct {
			Priority string `json:"priority"`
		} `json:"android"`
	}
	require.NoError(t, json.Unmarshal([]byte(envelope["GCM"]), &gcm))
	assert.Equal(t, "Smart Household Assistant", gcm.Notification.Title)
	assert.Equal(t, "#4F46E5", gcm.Notification.Color)
	assert.Equal(t, "high", gcm.Android.Priority)
	assert.Contains(t, envelope["APNS"], `"sound":"default"`)
}
