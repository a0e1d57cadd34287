package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var ErrNoSchemaIdentifier = errors.New("schema identifier is not set")

// DefaultPurchaseTopic is the topic purchase events are produced to
// unless configured otherwise.
const DefaultPurchaseTopic = "product_purchases"

// A Serde frames avro payloads with the schema registry wire header.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

var _ Serde = (*sr.Serde)(nil)

// TopicSubject names the value subject of topic the way the registry's
// topic name strategy does.
func TopicSubject(topic string) string {
	return topic + "-value"
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject    string
	identifier SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(o *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		o.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(o *serdeOpts) error {
		if si == nil {
			return ErrNoSchemaIdentifier
		}
		o.identifier = si
		return nil
	}
}

// NewSerdePurchaseV1 requires [SchemaIdentifierOpt]. The subject defaults
// to the value subject of [DefaultPurchaseTopic].
func NewSerdePurchaseV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdePurchaseV1"

	o := serdeOpts{subject: TopicSubject(DefaultPurchaseTopic)}
	s, err := registerSerde(
		ctx, o, opts, PurchaseSchemaTextV1, PurchaseV1{},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// registerSerde resolves the registry id of schemaText and binds it to
// the type of example.
func registerSerde(
	ctx context.Context,
	o serdeOpts,
	opts []Opt,
	schemaText string,
	example any,
) (*sr.Serde, error) {
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.identifier == nil {
		return nil, ErrNoSchemaIdentifier
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, err
	}

	id, err := o.identifier.DetermineID(ctx, o.subject, schemaText)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", o.subject, err)
	}

	s := new(sr.Serde)
	s.Register(
		id,
		example,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return s, nil
}
