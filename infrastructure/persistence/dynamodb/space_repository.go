package dynamodb

import (
	"context"
	"fmt"
	"time"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SpaceRepository implements ports.SpaceRepository. The space metadata
// item shares the SPACE#<id> partition with its memberships and journal
// entries; join codes get their own JOINCODE#<code> partition so
// redemption is a single key lookup.
type SpaceRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSpaceRepository creates a new SpaceRepository
func NewSpaceRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.SpaceRepository {
	return &SpaceRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type spaceItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	SpaceID     string `dynamodbav:"SpaceID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description,omitempty"`
	OwnerUserID string `dynamodbav:"OwnerUserID"`
	JoinCode    string `dynamodbav:"JoinCode"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

type joinCodeItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SpaceID    string `dynamodbav:"SpaceID"`
}

func spacePK(id valueobjects.SpaceID) string {
	return fmt.Sprintf("SPACE#%s", id.String())
}

func joinCodePK(code string) string {
	return fmt.Sprintf("JOINCODE#%s", code)
}

// Create persists a new space's metadata item
func (r *SpaceRepository) Create(ctx context.Context, space *entities.Space) error {
	av, err := attributevalue.MarshalMap(r.toItem(space))
	if err != nil {
		return fmt.Errorf("failed to marshal space: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	r.logger.Debug("Space persisted", zap.String("spaceID", space.ID().String()))
	return nil
}

// GetByID retrieves a space; nil when absent
func (r *SpaceRepository) GetByID(ctx context.Context, id valueobjects.SpaceID) (*entities.Space, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item spaceItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal space item: %w", err)
	}
	return r.fromItem(item)
}

// Update overwrites the space's metadata item
func (r *SpaceRepository) Update(ctx context.Context, space *entities.Space) error {
	av, err := attributevalue.MarshalMap(r.toItem(space))
	if err != nil {
		return fmt.Errorf("failed to marshal space: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to update space: %w", err)
	}
	return nil
}

// Delete removes the space's metadata item. Member and journal rows in
// the partition are cleaned up by their own repositories.
func (r *SpaceRepository) Delete(ctx context.Context, id valueobjects.SpaceID) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}
	return nil
}

// GetSpaceIDByJoinCode resolves a join code; zero SpaceID when unknown
func (r *SpaceRepository) GetSpaceIDByJoinCode(ctx context.Context, code string) (valueobjects.SpaceID, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: joinCodePK(code)},
			"SK": &types.AttributeValueMemberS{Value: "SPACE"},
		},
	})
	if err != nil {
		return valueobjects.SpaceID{}, fmt.Errorf("failed to look up join code: %w", err)
	}
	if result.Item == nil {
		return valueobjects.SpaceID{}, nil
	}

	var item joinCodeItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return valueobjects.SpaceID{}, fmt.Errorf("failed to unmarshal join code item: %w", err)
	}
	spaceID, err := valueobjects.NewSpaceIDFromString(item.SpaceID)
	if err != nil {
		return valueobjects.SpaceID{}, fmt.Errorf("join code row carries invalid space ID %q: %w", item.SpaceID, err)
	}
	return spaceID, nil
}

// PutJoinCode writes the join-code mapping
func (r *SpaceRepository) PutJoinCode(ctx context.Context, code string, spaceID valueobjects.SpaceID) error {
	item := joinCodeItem{
		PK:         joinCodePK(code),
		SK:         "SPACE",
		EntityType: "JOIN_CODE",
		SpaceID:    spaceID.String(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal join code: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put join code: %w", err)
	}
	return nil
}

// DeleteJoinCode removes a join-code mapping
func (r *SpaceRepository) DeleteJoinCode(ctx context.Context, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: joinCodePK(code)},
			"SK": &types.AttributeValueMemberS{Value: "SPACE"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete join code: %w", err)
	}
	return nil
}

func (r *SpaceRepository) toItem(space *entities.Space) spaceItem {
	return spaceItem{
		PK:          spacePK(space.ID()),
		SK:          "METADATA",
		EntityType:  "SPACE",
		SpaceID:     space.ID().String(),
		Name:        space.Name(),
		Description: space.Description(),
		OwnerUserID: space.OwnerUserID(),
		JoinCode:    space.JoinCode(),
		CreatedAt:   space.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   space.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func (r *SpaceRepository) fromItem(item spaceItem) (*entities.Space, error) {
	id, err := valueobjects.NewSpaceIDFromString(item.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space ID %q: %w", item.SpaceID, err)
	}
	createdAt, err := parseItemTime(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt: %w", err)
	}
	updatedAt, err := parseItemTime(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt: %w", err)
	}
	return entities.ReconstructSpace(id, item.Name, item.Description, item.OwnerUserID, item.JoinCode, createdAt, updatedAt), nil
}
