package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/shopcore/config"
	"github.com/niksmo/shopcore/internal/adapter"
	"github.com/niksmo/shopcore/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	cleanupDelete     = "delete"
	cleanupCompact    = "compact"
	minInsyncReplicas = "1"
)

// A topicSpec is one topic the shop produces to or goka keeps a table in.
type topicSpec struct {
	name   string
	policy string
}

func (s topicSpec) configs() map[string]*string {
	return map[string]*string{
		"cleanup.policy":      kadm.StringPtr(s.policy),
		"min.insync.replicas": kadm.StringPtr(minInsyncReplicas),
	}
}

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		fmt.Println("broker.seed_brokers is empty, nothing to do")
		return
	}

	cl := createClient(cfg)
	defer cl.Close()

	specs := topicSpecs(cfg)
	printStart(specs)
	defer printComplete(time.Now())

	if err := makeTopics(sigCtx, cl, cfg, specs); err != nil {
		fmt.Printf("failed to create topics:\n%s\n", err)
	}
}

// topicSpecs lists the purchase stream and the popularity group table.
func topicSpecs(cfg config.Config) []topicSpec {
	return []topicSpec{
		{
			name:   cfg.Broker.Topics.ProductPurchases,
			policy: cleanupDelete,
		},
		{
			name:   string(goka.GroupTable(goka.Group(cfg.Broker.Groups.Popularity))),
			policy: cleanupCompact,
		},
	}
}

func createClient(cfg config.Config) *kadm.Client {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}

	if files := cfg.Broker.TLS; files.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(
			files.CAFile, files.CertFile, files.KeyFile,
		)
		if err != nil {
			panic(err)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	cl, err := kadm.NewOptClient(opts...)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cfg config.Config, specs []topicSpec,
) error {
	var errs []error
	for _, s := range specs {
		responses, err := cl.CreateTopics(
			ctx,
			cfg.Broker.Partitions,
			cfg.Broker.ReplicationFactor,
			s.configs(),
			s.name,
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		if err := report(os.Stdout, responses); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// report prints the outcome per topic. Existing topics are not errors.
func report(w io.Writer, responses kadm.CreateTopicResponses) error {
	var errs []error
	for _, res := range responses.Sorted() {
		switch {
		case res.Err == nil:
			fmt.Fprintf(w, "topic: %q successfully created\n", res.Topic)
		case errors.Is(res.Err, kerr.TopicAlreadyExists):
			fmt.Fprintf(w, "topic: %q already exists\n", res.Topic)
		default:
			errs = append(errs, fmt.Errorf("%s: %w", res.Topic, res.Err))
		}
	}
	return errors.Join(errs...)
}

func printStart(specs []topicSpec) {
	fmt.Println("initializing topics...")
	for _, s := range specs {
		fmt.Printf("\t- %q (%s)\n", s.name, s.policy)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}
