package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

const (
	// DefaultDynamoTable is keyed by the "station" string attribute.
	DefaultDynamoTable = "stations"

	maxDynamoBatchSize = 25
)

// DynamoDBClient is the subset of the DynamoDB API the store uses.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore keeps one item per station in a DynamoDB table.
type DynamoStore struct {
	client     DynamoDBClient
	table      string
	batchSize  int
	maxRetries int
	clock      clock
	sleep      func(time.Duration)
}

var _ models.StationStore = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoDBClient, table string, batchSize, maxRetries int) *DynamoStore {
	if table == "" {
		table = DefaultDynamoTable
	}
	if batchSize <= 0 || batchSize > maxDynamoBatchSize {
		batchSize = maxDynamoBatchSize
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &DynamoStore{
		client:     client,
		table:      table,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		clock:      systemClock{},
		sleep:      time.Sleep,
	}
}

func (d *DynamoStore) InsertIfAbsent(ctx context.Context, s models.Station) (bool, error) {
	s.Seq = d.clock.Now().UnixNano()

	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return false, fmt.Errorf("marshaling station: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#station)"),
		ExpressionAttributeNames: map[string]string{
			"#station": "station",
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return false, nil
		}
		return false, fmt.Errorf("putting station in DynamoDB: %w", err)
	}

	return true, nil
}

func (d *DynamoStore) FindByName(ctx context.Context, name string) (*models.Station, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"station": &types.AttributeValueMemberS{Value: name},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting station from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var s models.Station
	if err := attributevalue.UnmarshalMap(result.Item, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling station: %w", err)
	}
	return &s, nil
}

func (d *DynamoStore) ListAll(ctx context.Context) ([]models.Station, error) {
	items, err := d.scan(ctx, nil)
	if err != nil {
		return nil, err
	}

	stations := make([]models.Station, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &stations); err != nil {
		return nil, fmt.Errorf("unmarshaling stations: %w", err)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Seq < stations[j].Seq
	})
	return stations, nil
}

// DeleteAll removes every item in batches. DynamoDB has no table-wide delete,
// so a failure part way leaves the remaining items in place.
func (d *DynamoStore) DeleteAll(ctx context.Context) error {
	items, err := d.scan(ctx, aws.String("#station"))
	if err != nil {
		return err
	}

	for i := 0; i < len(items); i += d.batchSize {
		end := i + d.batchSize
		if end > len(items) {
			end = len(items)
		}

		requests := make([]types.WriteRequest, 0, end-i)
		for _, item := range items[i:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{"station": item["station"]},
				},
			})
		}

		if err := d.writeBatch(ctx, requests); err != nil {
			return err
		}
	}

	log.Debug().Int("deleted", len(items)).Str("table", d.table).Msg("Deleted stations from DynamoDB")
	return nil
}

func (d *DynamoStore) scan(ctx context.Context, projection *string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(d.table),
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: startKey,
		}
		if projection != nil {
			input.ProjectionExpression = projection
			input.ExpressionAttributeNames = map[string]string{"#station": "station"}
		}

		out, err := d.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scanning stations: %w", err)
		}
		items = append(items, out.Items...)

		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (d *DynamoStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := requests
	var lastErr error

	for retry := 0; retry <= d.maxRetries; retry++ {
		if retry > 0 {
			d.sleep(time.Duration(1<<retry) * 100 * time.Millisecond)
		}

		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{d.table: pending},
		})
		if err != nil {
			lastErr = err
			continue
		}
		if out == nil || len(out.UnprocessedItems[d.table]) == 0 {
			return nil
		}

		pending = out.UnprocessedItems[d.table]
		lastErr = fmt.Errorf("%d unprocessed deletes", len(pending))
	}

	return fmt.Errorf("batch deleting stations after %d retries: %w", d.maxRetries, lastErr)
}
