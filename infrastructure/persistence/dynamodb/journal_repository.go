package dynamodb

import (
	"context"
	"fmt"
	"sort"
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

// JournalRepository implements ports.JournalRepository. Entries live in
// the space partition under JOURNAL#<entryID> so a space's journal is one
// query and a single entry is one key lookup.
type JournalRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.JournalRepository {
	return &JournalRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type journalItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	EntryID    string `dynamodbav:"EntryID"`
	SpaceID    string `dynamodbav:"SpaceID"`
	AuthorID   string `dynamodbav:"AuthorID"`
	Title      string `dynamodbav:"Title"`
	Content    string `dynamodbav:"Content"`
	WordCount  int    `dynamodbav:"WordCount"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func journalSK(entryID string) string {
	return fmt.Sprintf("JOURNAL#%s", entryID)
}

// Create persists a journal entry
func (r *JournalRepository) Create(ctx context.Context, entry *entities.JournalEntry) error {
	item := journalItem{
		PK:         spacePK(entry.SpaceID()),
		SK:         journalSK(entry.ID()),
		EntityType: "JOURNAL_ENTRY",
		EntryID:    entry.ID(),
		SpaceID:    entry.SpaceID().String(),
		AuthorID:   entry.AuthorID(),
		Title:      entry.Title(),
		Content:    entry.Content(),
		WordCount:  entry.WordCount(),
		CreatedAt:  entry.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  entry.UpdatedAt().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	r.logger.Debug("Journal entry persisted",
		zap.String("spaceID", entry.SpaceID().String()),
		zap.String("entryID", entry.ID()),
	)
	return nil
}

// GetByID retrieves one entry; nil when absent
func (r *JournalRepository) GetByID(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) (*entities.JournalEntry, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(spaceID)},
			"SK": &types.AttributeValueMemberS{Value: journalSK(entryID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return journalFromItemMap(result.Item)
}

// ListBySpace retrieves a space's entries, newest first
func (r *JournalRepository) ListBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.JournalEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: spacePK(spaceID)},
			":sk": &types.AttributeValueMemberS{Value: "JOURNAL#"},
		},
	}

	var entries []*entities.JournalEntry
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query journal entries: %w", err)
		}
		for _, item := range page.Items {
			entry, err := journalFromItemMap(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable journal item", zap.Error(err))
				continue
			}
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt().After(entries[j].CreatedAt())
	})
	return entries, nil
}

// Delete removes an entry. Deleting an absent entry is a no-op.
func (r *JournalRepository) Delete(ctx context.Context, spaceID valueobjects.SpaceID, entryID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: spacePK(spaceID)},
			"SK": &types.AttributeValueMemberS{Value: journalSK(entryID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return nil
}

func journalFromItemMap(av map[string]types.AttributeValue) (*entities.JournalEntry, error) {
	var item journalItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journal item: %w", err)
	}

	spaceID, err := valueobjects.NewSpaceIDFromString(item.SpaceID)
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

	return entities.ReconstructJournalEntry(item.EntryID, spaceID, item.AuthorID, item.Title, item.Content, item.WordCount, createdAt, updatedAt), nil
}
