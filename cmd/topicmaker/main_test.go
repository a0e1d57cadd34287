package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/niksmo/shopcore/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

func TestTopicSpecs(t *testing.T) {
	var cfg config.Config
	cfg.Broker.Topics.ProductPurchases = "purchases"
	cfg.Broker.Groups.Popularity = "popularity"

	specs := topicSpecs(cfg)
	require.Len(t, specs, 2)
	assert.Equal(t, topicSpec{"purchases", cleanupDelete}, specs[0])
	assert.Equal(t, topicSpec{"popularity-table", cleanupCompact}, specs[1])

	c := specs[1].configs()
	assert.Equal(t, cleanupCompact, *c["cleanup.policy"])
	assert.Equal(t, minInsyncReplicas, *c["min.insync.replicas"])
}

func TestReport(t *testing.T) {
	errBroker := errors.New("broker unavailable")
	responses := kadm.CreateTopicResponses{
		"a": {Topic: "a"},
		"b": {Topic: "b", Err: kerr.TopicAlreadyExists},
		"c": {Topic: "c", Err: errBroker},
	}

	var out bytes.Buffer
	err := report(&out, responses)

	assert.ErrorIs(t, err, errBroker)
	assert.Contains(t, out.String(), `topic: "a" successfully created`)
	assert.Contains(t, out.String(), `topic: "b" already exists`)
	assert.NotContains(t, out.String(), `"c"`)
}
