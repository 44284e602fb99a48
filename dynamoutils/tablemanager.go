package dynamoutils

import (
	"context"
	"errors"
	"log"
	net "net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/db"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DefaultLocalEndpoint = "http://localhost:8000"
	DefaultRegion        = "eu-west-3"

	maxBatchSize = 25 // forced by aws
)

type TableDefinition struct {
	TableName string

	PartitionKey AttributeDefinition
	SortKey      AttributeDefinition
}

type AttributeDefinition struct {
	Name       string
	ScalarType types.ScalarAttributeType
}

func CreateTable(client *dynamodb.Client, tableDefinition TableDefinition) (*types.TableDescription, error) {
	var tableDesc *types.TableDescription
	attributeDefinitions := []types.AttributeDefinition{{
		AttributeName: aws.String(tableDefinition.PartitionKey.Name),
		AttributeType: tableDefinition.PartitionKey.ScalarType,
	}}
	if tableDefinition.SortKey.Name != "" {
		attributeDefinitions = append(attributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(tableDefinition.SortKey.Name),
			AttributeType: tableDefinition.SortKey.ScalarType,
		})
	}

	table, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName:            aws.String(tableDefinition.TableName),
		AttributeDefinitions: attributeDefinitions,
		KeySchema:            createKeySchema(tableDefinition.PartitionKey.Name, tableDefinition.SortKey.Name),
		BillingMode:          types.BillingModePayPerRequest,
	})

	if err != nil {
		log.Printf("Couldn't create table %v. Here's why: %v\n", tableDefinition.TableName, err)
	} else {
		waiter := dynamodb.NewTableExistsWaiter(client)
		err = waiter.Wait(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(tableDefinition.TableName)}, 5*time.Minute)
		if err != nil {
			log.Printf("Wait for table exists failed. Here's why: %v\n", err)
		}
		tableDesc = table.TableDescription
	}
	return tableDesc, err
}

func CreateReservationTable(client *dynamodb.Client) (*types.TableDescription, error) {
	return CreateTable(client, TableDefinition{
		TableName:    db.ReservationTableName,
		PartitionKey: AttributeDefinition{"PK", types.ScalarAttributeTypeS},
		SortKey:      AttributeDefinition{"SK", types.ScalarAttributeTypeS},
	})
}

// CreateLocalClient targets a DynamoDB Local instance; an empty endpoint
// means DefaultLocalEndpoint.
func CreateLocalClient(endpoint string) *dynamodb.Client {
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("localhost"),
		config.WithHTTPClient(
			http.NewBuildableClient().
				WithTransportOptions(func(tr *net.Transport) {
					tr.ExpectContinueTimeout = 0
					tr.MaxIdleConns = 1000
				}),
		),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.Credentials = credentials.NewStaticCredentialsProvider("local", "local", "")
	})
}

func CreateAwsClient(region string) *dynamodb.Client {
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(so *retry.StandardOptions) {
				so.RateLimiter = ratelimit.NewTokenRateLimit(1000000)
				so.MaxAttempts = 0
			})
		}),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return dynamodb.NewFromConfig(cfg)
}

// CreateAwsPrivateClient reaches DynamoDB through a VPC endpoint taken from DDB_URL.
func CreateAwsPrivateClient(region string) *dynamodb.Client {
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(os.Getenv("DDB_URL"))
	})
}

func GetExistingTableNames(client *dynamodb.Client) (tableNames []string, err error) {
	result, err := client.ListTables(context.TODO(), &dynamodb.ListTablesInput{})
	if err != nil {
		return []string{}, err
	}
	return result.TableNames, nil
}

func DeleteTable(client *dynamodb.Client, tableName string) (*dynamodb.DeleteTableOutput, error) {
	table, err := client.DeleteTable(context.TODO(), &dynamodb.DeleteTableInput{TableName: &tableName})

	if err != nil {
		log.Printf("Could not delete table %v: %v\n", tableName, err)
	}

	return table, err
}

// AddHotelBatch writes the items a hotel needs before it can take reservations:
// its room types, zeroed counters and a free lock. Counters and lock of a hotel
// that is already seeded are left untouched, so re-seeding only refreshes room types.
func AddHotelBatch(client *dynamodb.Client, hotelId string, roomTypes []model.RoomType) error {
	var putItems []map[string]types.AttributeValue
	for _, roomType := range roomTypes {
		item, err := db.BuildRoomTypeItem(hotelId, roomType)
		if err != nil {
			return err
		}
		putItems = append(putItems, item)
	}

	if err := doPaginatedBatchWrite(client, db.ReservationTableName, putItems); err != nil {
		return err
	}

	for _, input := range hotelStateInputs(hotelId) {
		_, err := client.PutItem(context.TODO(), input)
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			log.Printf("Hotel %v already has item %v, keeping it\n", hotelId, itemSk(input.Item))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func hotelStateInputs(hotelId string) []*dynamodb.PutItemInput {
	var inputs []*dynamodb.PutItemInput
	for _, item := range []map[string]types.AttributeValue{db.BuildStatsItem(hotelId), db.BuildLockItem(hotelId)} {
		inputs = append(inputs, &dynamodb.PutItemInput{
			TableName:           aws.String(db.ReservationTableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(SK)"),
		})
	}
	return inputs
}

func itemSk(item map[string]types.AttributeValue) string {
	if sk, ok := item["SK"].(*types.AttributeValueMemberS); ok {
		return sk.Value
	}
	return ""
}

// AddReservationsBatch imports reservations, e.g. from a CSV log.
func AddReservationsBatch(client *dynamodb.Client, hotelId string, reservations []model.Reservation) error {
	var putItems []map[string]types.AttributeValue
	for _, reservation := range reservations {
		item, err := db.BuildReservationItem(hotelId, reservation)
		if err != nil {
			return err
		}
		putItems = append(putItems, item)
	}

	return doPaginatedBatchWrite(client, db.ReservationTableName, putItems)
}

func doPaginatedBatchWrite(client *dynamodb.Client, tableName string, items []map[string]types.AttributeValue) error {
	var writeRequests []types.WriteRequest
	for _, item := range items {
		writeRequests = append(writeRequests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	batches := splitInBatches(writeRequests, maxBatchSize)

	var errMutex sync.Mutex
	var batchErr error

	parallelJobExecutor := utils.NewSimpleParallelJobExecutor(getConcurrentLoadingUnits())
	parallelJobExecutor.RegisterConsumer(func(tag string) bool { return true }, NewSimpleBatchRequestConsumer(len(batches)))
	parallelJobExecutor.RegisterErrorHandler(func(err error) {
		log.Printf("Encountered error while loading batch: %v\n", err)
		errMutex.Lock()
		batchErr = errors.Join(batchErr, err)
		errMutex.Unlock()
	})
	parallelJobExecutor.Start()

	for _, batch := range batches {
		parallelJobExecutor.SubmitJob(func() (utils.Result, error) {
			return utils.NewResult(len(batch), tableName), writeBatch(client, tableName, batch)
		})
	}

	parallelJobExecutor.Stop()

	return batchErr
}

// writeBatch resubmits unprocessed items until DynamoDB accepts all of them.
func writeBatch(client *dynamodb.Client, tableName string, batch []types.WriteRequest) error {
	retrier := utils.NewExponentialRetrierFactory[struct{}](10, 50*time.Millisecond, 0.1, 2*time.Second)()
	pending := map[string][]types.WriteRequest{tableName: batch}

	return retrier.Do(func() error {
		output, err := client.BatchWriteItem(context.TODO(), &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		if len(output.UnprocessedItems) > 0 {
			pending = output.UnprocessedItems
			return errors.New("unprocessed items left in batch")
		}
		return nil
	})
}

func splitInBatches(writeRequests []types.WriteRequest, batchSize int) [][]types.WriteRequest {
	var batches [][]types.WriteRequest
	for startIndex := 0; startIndex < len(writeRequests); startIndex += batchSize {
		excludedEndIndex := min(startIndex+batchSize, len(writeRequests))
		batches = append(batches, writeRequests[startIndex:excludedEndIndex])
	}
	return batches
}

type SimpleBatchRequestConsumer struct {
	totalBatchesCount    int
	consumedBatchesCount int
}

func NewSimpleBatchRequestConsumer(totalBatchesCount int) *SimpleBatchRequestConsumer {
	return &SimpleBatchRequestConsumer{totalBatchesCount: totalBatchesCount}
}

func (c *SimpleBatchRequestConsumer) Consume(result utils.Result) {
	c.consumedBatchesCount++
	if c.consumedBatchesCount%5 == 0 || c.consumedBatchesCount == c.totalBatchesCount {
		log.Printf("Consumed %v out of %v batches for table %v", c.consumedBatchesCount, c.totalBatchesCount, result.Tag())
	}
}

func createKeySchema(partitionKeyName string, sortKeyName string) []types.KeySchemaElement {
	schema := []types.KeySchemaElement{{
		AttributeName: aws.String(partitionKeyName),
		KeyType:       types.KeyTypeHash,
	}}

	if sortKeyName != "" {
		schema = append(schema, types.KeySchemaElement{
			AttributeName: aws.String(sortKeyName),
			KeyType:       types.KeyTypeRange,
		})
	}

	return schema
}

func getConcurrentLoadingUnits() int {
	concurrentLoadingUnits := 10
	concurrentLoadingUnitsEnv := os.Getenv("CONCURRENT_LOADING_UNITS")
	if concurrentLoadingUnitsEnv != "" {
		var err error
		concurrentLoadingUnits, err = strconv.Atoi(concurrentLoadingUnitsEnv)
		if err != nil {
			log.Fatalf("Malformed CONCURRENT_LOADING_UNITS env variable (%v): %v", concurrentLoadingUnitsEnv, err)
		}
	}
	return concurrentLoadingUnits
}
