package dynamodb

import (
	"context"
	"fmt"
	"time"

	"spaces-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConnectionRepository implements ports.ConnectionRepository for the
// presence Lambdas. Connection rows carry a TTL so stale sockets age out
// even when the disconnect handler never fires.
type ConnectionRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.ConnectionRepository {
	return &ConnectionRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

const connectionTTL = 2 * time.Hour

type connectionItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	EntityType   string `dynamodbav:"EntityType"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	UserID       string `dynamodbav:"UserID"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

func connectionPK(connectionID string) string {
	return fmt.Sprintf("CONN#%s", connectionID)
}

// Save records a live connection for a user
func (r *ConnectionRepository) Save(ctx context.Context, connectionID, userID string) error {
	now := time.Now().UTC()
	item := connectionItem{
		PK:           connectionPK(connectionID),
		SK:           "METADATA",
		GSI1PK:       fmt.Sprintf("USER#%s", userID),
		GSI1SK:       connectionPK(connectionID),
		EntityType:   "CONNECTION",
		ConnectionID: connectionID,
		UserID:       userID,
		ConnectedAt:  now.Format(time.RFC3339Nano),
		TTL:          now.Add(connectionTTL).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	r.logger.Debug("Connection recorded",
		zap.String("connectionID", connectionID),
		zap.String("userID", userID),
	)
	return nil
}

// Delete removes a connection record
func (r *ConnectionRepository) Delete(ctx context.Context, connectionID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: connectionPK(connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// GetByUserID retrieves the connection IDs of a user's live sockets
func (r *ConnectionRepository) GetByUserID(ctx context.Context, userID string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "CONN#"},
		},
	}

	var connectionIDs []string
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query connections: %w", err)
		}
		for _, raw := range page.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable connection item", zap.Error(err))
				continue
			}
			connectionIDs = append(connectionIDs, item.ConnectionID)
		}
	}
	return connectionIDs, nil
}
