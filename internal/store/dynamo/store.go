// Package dynamo stores catalog records in a DynamoDB table keyed by
// category (partition key) and productId (sort key).
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/pricofy/product-catalog/internal/domain"
)

// Attribute names.
const (
	attrCategory     = "category"
	attrProductID    = "productId"
	attrName         = "name"
	attrDescription  = "description"
	attrPrice        = "price"
	attrInStock      = "inStock"
	attrTranslations = "translations"
	attrUpdatedAt    = "updatedAt"
)

// API is the part of the DynamoDB client the store uses.
type API interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// item is the stored shape of a record. Price is a DynamoDB number kept as
// its decimal string.
type item struct {
	Category     string                `dynamodbav:"category"`
	ProductID    string                `dynamodbav:"productId"`
	Name         string                `dynamodbav:"name"`
	Description  string                `dynamodbav:"description"`
	Price        attributevalue.Number `dynamodbav:"price"`
	InStock      bool                  `dynamodbav:"inStock"`
	Translations map[string]string     `dynamodbav:"translations,omitempty"`
	UpdatedAt    string                `dynamodbav:"updatedAt,omitempty"`
}

// Store is a catalog store on one DynamoDB table.
type Store struct {
	client    API
	tableName string
}

// New creates a Store on tableName.
func New(client API, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Get reads one record by its composite key.
func (s *Store) Get(ctx context.Context, key domain.Key) (*domain.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       keyAttributes(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %w", domain.ErrBackend, key, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return decodeRecord(out.Item)
}

// Query reads every record of a category, following pagination. The
// filter is a server-side contains() on description.
func (s *Store) Query(ctx context.Context, category, filter string) ([]domain.Record, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrCategory).Equal(expression.Value(category)))
	if filter != "" {
		builder = builder.WithFilter(expression.Name(attrDescription).Contains(filter))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build query: %w", domain.ErrBackend, err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	records := []domain.Record{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to query %s: %w", domain.ErrBackend, category, err)
		}
		for _, av := range page.Items {
			rec, err := decodeRecord(av)
			if err != nil {
				return nil, err
			}
			records = append(records, *rec)
		}
	}
	return records, nil
}

// Put writes the full item, replacing any existing one.
func (s *Store) Put(ctx context.Context, rec domain.Record) error {
	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("%w: failed to marshal %s: %w", domain.ErrBackend, rec.Key(), err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put %s: %w", domain.ErrBackend, rec.Key(), err)
	}
	return nil
}

// Update applies a targeted SET over the supplied fields and returns the
// whole item after the update. The item must already exist.
func (s *Store) Update(ctx context.Context, key domain.Key, changes domain.Changes) (*domain.Record, error) {
	expr, err := updateExpression(changes)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build update: %w", domain.ErrBackend, err)
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: failed to update %s: %w", domain.ErrBackend, key, err)
	}
	return decodeRecord(out.Attributes)
}

// updateExpression sets only the fields present in changes plus
// updatedAt, conditioned on the item existing.
func updateExpression(changes domain.Changes) (expression.Expression, error) {
	update := expression.Set(expression.Name(attrUpdatedAt), expression.Value(domain.FormatTimestamp(changes.UpdatedAt)))
	if changes.Name != nil {
		update = update.Set(expression.Name(attrName), expression.Value(*changes.Name))
	}
	if changes.Description != nil {
		update = update.Set(expression.Name(attrDescription), expression.Value(*changes.Description))
	}
	if changes.Price != nil {
		update = update.Set(expression.Name(attrPrice), expression.Value(attributevalue.Number(changes.Price.String())))
	}
	if changes.InStock != nil {
		update = update.Set(expression.Name(attrInStock), expression.Value(*changes.InStock))
	}
	if changes.Translations != nil {
		update = update.Set(expression.Name(attrTranslations), expression.Value(changes.Translations))
	}

	exists := expression.AttributeExists(expression.Name(attrCategory)).
		And(expression.AttributeExists(expression.Name(attrProductID)))

	return expression.NewBuilder().
		WithUpdate(update).
		WithCondition(exists).
		Build()
}

func keyAttributes(key domain.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrCategory:  &types.AttributeValueMemberS{Value: key.Category},
		attrProductID: &types.AttributeValueMemberS{Value: key.ProductID},
	}
}

func toItem(rec domain.Record) item {
	return item{
		Category:     rec.Category,
		ProductID:    rec.ProductID,
		Name:         rec.Name,
		Description:  rec.Description,
		Price:        attributevalue.Number(rec.Price.String()),
		InStock:      rec.InStock,
		Translations: rec.Translations,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func decodeRecord(av map[string]types.AttributeValue) (*domain.Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, fmt.Errorf("%w: failed to decode item: %w", domain.ErrBackend, err)
	}

	rec := &domain.Record{
		Category:     it.Category,
		ProductID:    it.ProductID,
		Name:         it.Name,
		Description:  it.Description,
		InStock:      it.InStock,
		Translations: it.Translations,
		UpdatedAt:    it.UpdatedAt,
	}
	if it.Price != "" {
		price, err := decimal.NewFromString(string(it.Price))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid price %q on %s: %w", domain.ErrBackend, it.Price, rec.Key(), err)
		}
		rec.Price = price
	}
	return rec, nil
}
