package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// MembershipRepository implements ports.MembershipRepository. Membership
// rows live under the space partition (SPACE#<id> / MEMBER#<user>) so a
// space's roster is a single query; GSI1 inverts the key so a user's
// spaces are one query too.
type MembershipRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.MembershipRepository {
	return &MembershipRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type membershipItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	SpaceID    string `dynamodbav:"SpaceID"`
	UserID     string `dynamodbav:"UserID"`
	Role       string `dynamodbav:"Role"`
	JoinedAt   string `dynamodbav:"JoinedAt"`
	AddedBy    string `dynamodbav:"AddedBy"`
}

func membershipPK(spaceID valueobjects.SpaceID) string {
	return fmt.Sprintf("SPACE#%s", spaceID.String())
}

func membershipSK(userID string) string {
	return fmt.Sprintf("MEMBER#%s", userID)
}

// Create writes the membership row conditionally. A losing concurrent
// writer or a pre-existing row surfaces as AlreadyMember, which is how
// the (space, user) uniqueness invariant is enforced without a read.
func (r *MembershipRepository) Create(ctx context.Context, m *entities.Membership) error {
	item := membershipItem{
		PK:         membershipPK(m.SpaceID()),
		SK:         membershipSK(m.UserID()),
		GSI1PK:     fmt.Sprintf("USER#%s", m.UserID()),
		GSI1SK:     fmt.Sprintf("SPACE#%s", m.SpaceID().String()),
		EntityType: "MEMBERSHIP",
		SpaceID:    m.SpaceID().String(),
		UserID:     m.UserID(),
		Role:       string(m.Role()),
		JoinedAt:   m.JoinedAt().Format(time.RFC3339Nano),
		AddedBy:    m.AddedBy(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal membership: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return pkgerrors.NewAlreadyMember(m.SpaceID().String(), m.UserID())
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	r.logger.Debug("Membership persisted",
		zap.String("spaceID", m.SpaceID().String()),
		zap.String("userID", m.UserID()),
		zap.String("role", string(m.Role())),
	)

	return nil
}

// Get retrieves a membership; nil when the user is not a member
func (r *MembershipRepository) Get(ctx context.Context, spaceID valueobjects.SpaceID, userID string) (*entities.Membership, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: membershipPK(spaceID)},
			"SK": &types.AttributeValueMemberS{Value: membershipSK(userID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return membershipFromItemMap(result.Item)
}

// ListBySpace queries the space partition for its member rows
func (r *MembershipRepository) ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Membership, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: membershipPK(spaceID)},
			":sk": &types.AttributeValueMemberS{Value: "MEMBER#"},
		},
	}
	return r.queryMemberships(ctx, input)
}

// ListByUser queries the inverted index for a user's memberships
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Membership, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
			":sk": &types.AttributeValueMemberS{Value: "SPACE#"},
		},
	}
	return r.queryMemberships(ctx, input)
}

// Delete removes a membership row. Deleting an absent row is a no-op.
func (r *MembershipRepository) Delete(ctx context.Context, spaceID valueobjects.SpaceID, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: membershipPK(spaceID)},
			"SK": &types.AttributeValueMemberS{Value: membershipSK(userID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

func (r *MembershipRepository) queryMemberships(ctx context.Context, input *dynamodb.QueryInput) ([]*entities.Membership, error) {
	var memberships []*entities.Membership
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query memberships: %w", err)
		}
		for _, item := range page.Items {
			m, err := membershipFromItemMap(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable membership item", zap.Error(err))
				continue
			}
			memberships = append(memberships, m)
		}
	}
	return memberships, nil
}

func membershipFromItemMap(av map[string]types.AttributeValue) (*entities.Membership, error) {
	var item membershipItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal membership item: %w", err)
	}

	spaceID, err := valueobjects.NewSpaceIDFromString(item.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space ID %q: %w", item.SpaceID, err)
	}
	joinedAt, err := parseItemTime(item.JoinedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid JoinedAt: %w", err)
	}

	return entities.ReconstructMembership(spaceID, item.UserID, entities.Role(item.Role), joinedAt, item.AddedBy), nil
}
