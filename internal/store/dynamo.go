package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/smehra/dreamfilm/internal/model"
)

// DynamoDB key constants for the single-table design. All dream records
// share the sort key META so the partition key alone identifies an entry.
const (
	pkPrefix = "DREAM#"
	skMeta   = "META"
)

// DynamoAPI is the slice of the DynamoDB client the store uses.
// *dynamodb.Client satisfies it.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore implements DreamStore using AWS DynamoDB.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

// Compile-time interface check.
var _ DreamStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// dreamPK returns the partition key for a dream.
func dreamPK(id string) string {
	return pkPrefix + id
}

// Put marshals the dream and writes it with PK and SK attributes.
func (s *DynamoStore) Put(ctx context.Context, dream *model.Dream) error {
	item, err := attributevalue.MarshalMap(dream)
	if err != nil {
		return fmt.Errorf("marshal dream %s: %w", dream.ID, err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: dreamPK(dream.ID)}
	item["SK"] = &types.AttributeValueMemberS{Value: skMeta}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s: %w", dreamPK(dream.ID), err)
	}

	log.Debug().Str("dreamId", dream.ID).Msg("Dream persisted to DynamoDB")
	return nil
}

// Get reads a dream by ID. Returns nil, nil if the item does not exist.
func (s *DynamoStore) Get(ctx context.Context, id string) (*model.Dream, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: dreamPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem PK=%s: %w", dreamPK(id), err)
	}
	if result.Item == nil {
		return nil, nil
	}

	dream, err := unmarshalDream(result.Item)
	if err != nil {
		return nil, fmt.Errorf("unmarshal dream %s: %w", id, err)
	}
	return dream, nil
}

// List scans the table and returns all dreams, newest first. The journal is
// a personal dataset; a paginated Scan is fine at this scale.
func (s *DynamoStore) List(ctx context.Context) ([]*model.Dream, error) {
	var dreams []*model.Dream

	var startKey map[string]types.AttributeValue
	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("Scan %s: %w", s.tableName, err)
		}

		for _, item := range result.Items {
			dream, err := unmarshalDream(item)
			if err != nil {
				log.Warn().Err(err).Msg("Skipping undecodable dream record")
				continue
			}
			dreams = append(dreams, dream)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.Slice(dreams, func(i, j int) bool {
		return dreams[i].CreatedAt.After(dreams[j].CreatedAt)
	})
	return dreams, nil
}

// unmarshalDream decodes a table item, recovering the ID from the partition
// key (the ID field itself is excluded from marshalling via dynamodbav:"-").
func unmarshalDream(item map[string]types.AttributeValue) (*model.Dream, error) {
	var dream model.Dream
	if err := attributevalue.UnmarshalMap(item, &dream); err != nil {
		return nil, err
	}

	if pk, ok := item["PK"].(*types.AttributeValueMemberS); ok {
		dream.ID = strings.TrimPrefix(pk.Value, pkPrefix)
	}
	return &dream, nil
}
