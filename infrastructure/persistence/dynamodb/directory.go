package dynamodb

import (
	"context"
	"fmt"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Directory implements ports.Directory against the same table. User
// profile items are written by the identity pipeline under USER#<id> with
// their email on GSI1, so an email lookup is one index query.
type Directory struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewDirectory creates a new Directory
func NewDirectory(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.Directory {
	return &Directory{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type userItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     string `dynamodbav:"UserID"`
	Email      string `dynamodbav:"Email"`
}

// GetUserByEmail resolves an email to a user ID; empty when no account
// exists for it.
func (d *Directory) GetUserByEmail(ctx context.Context, email valueobjects.Email) (string, error) {
	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		IndexName:              aws.String(d.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("EMAIL#%s", email.String())},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(result.Items) == 0 {
		return "", nil
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return "", fmt.Errorf("failed to unmarshal user item: %w", err)
	}
	return item.UserID, nil
}

// SpaceExists reports whether the space's metadata item is present
func (d *Directory) SpaceExists(ctx context.Context, spaceID valueobjects.SpaceID) (bool, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(spaceID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		ProjectionExpression: aws.String("PK"),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check space existence: %w", err)
	}
	return result.Item != nil, nil
}
