package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	orderType   = "Food Order"
	orderSource = "Restaurant App"
)

// PutItemAPI is the slice of the DynamoDB client the sink needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type DynamoConfig struct {
	Region          string
	Table           string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type DynamoSink struct {
	client PutItemAPI
	table  string
	now    func() time.Time
}

func NewDynamoSinkWithClient(client PutItemAPI, table string) *DynamoSink {
	return &DynamoSink{client: client, table: table, now: time.Now}
}

// NewDynamoSink builds a client from the default AWS credential chain, or
// from static keys when both are configured.
func NewDynamoSink(ctx context.Context, cfg DynamoConfig) (*DynamoSink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoSinkWithClient(client, cfg.Table), nil
}

func (s *DynamoSink) Put(ctx context.Context, key string, blob []byte) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"orderId":     &types.AttributeValueMemberS{Value: key},
			"createdAt":   &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
			"orderType":   &types.AttributeValueMemberS{Value: orderType},
			"orderSource": &types.AttributeValueMemberS{Value: orderSource},
			"orderData":   &types.AttributeValueMemberS{Value: string(blob)},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb archive put %s: %w", key, err)
	}
	return nil
}
