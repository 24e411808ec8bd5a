package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/entities"
	"spaces-backend/domain/core/valueobjects"
	pkgerrors "spaces-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// InvitationRepository implements ports.InvitationRepository on the
// single-table layout.
//
// Three item shapes per invitation:
//   - the metadata item under INVITATION#<id> / METADATA, indexed on GSI1
//     by invitee email for inbox queries
//   - a pending-uniqueness guard under SPACE#<space> / INVITE#<email>,
//     written with attribute_not_exists so a second pending invitation for
//     the same pair loses the race; released when the invitation leaves
//     PENDING, and reclaimable once its TTL passes so an invitation that
//     expired without resolution never blocks a re-invite
//   - when the invitation carries a code, a lookup row under
//     INVITECODE#<code> / INVITATION pointing back at the metadata item.
//     The code row outlives the PENDING state so an accept-by-code of a
//     resolved invitation reports its terminal status instead of not-found.
type InvitationRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewInvitationRepository creates a new InvitationRepository. indexName is
// the invitee GSI; when empty, invitee queries degrade to filtered scans.
func NewInvitationRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.InvitationRepository {
	return &InvitationRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// invitationItem is the DynamoDB shape of the invitation metadata item
type invitationItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	GSI1PK        string `dynamodbav:"GSI1PK"`
	GSI1SK        string `dynamodbav:"GSI1SK"`
	EntityType    string `dynamodbav:"EntityType"`
	InvitationID  string `dynamodbav:"InvitationID"`
	SpaceID       string `dynamodbav:"SpaceID"`
	InviteeEmail  string `dynamodbav:"InviteeEmail"`
	InviterUserID string `dynamodbav:"InviterUserID"`
	Status        string `dynamodbav:"Status"`
	Role          string `dynamodbav:"Role"`
	Message       string `dynamodbav:"Message,omitempty"`
	SpaceName     string `dynamodbav:"SpaceName,omitempty"`
	InviterName   string `dynamodbav:"InviterName,omitempty"`
	Code          string `dynamodbav:"Code,omitempty"`
	CreatedAt     string `dynamodbav:"CreatedAt"`
	ExpiresAt     string `dynamodbav:"ExpiresAt"`
	AcceptedAt    string `dynamodbav:"AcceptedAt,omitempty"`
	AcceptedBy    string `dynamodbav:"AcceptedBy,omitempty"`
	CancelledAt   string `dynamodbav:"CancelledAt,omitempty"`
	CancelledBy   string `dynamodbav:"CancelledBy,omitempty"`
}

// invitationGuardItem reserves the (space, invitee) pending slot. TTL is
// the invitation's expiry in epoch seconds so the table's TTL sweep removes
// guards whose invitation expired without ever being resolved.
type invitationGuardItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	InvitationID string `dynamodbav:"InvitationID"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// invitationCodeItem resolves a code to its invitation
type invitationCodeItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	InvitationID string `dynamodbav:"InvitationID"`
}

func invitationPK(id valueobjects.InvitationID) string {
	return fmt.Sprintf("INVITATION#%s", id.String())
}

func invitationGuardPK(spaceID valueobjects.SpaceID) string {
	return fmt.Sprintf("SPACE#%s", spaceID.String())
}

func invitationGuardSK(email valueobjects.Email) string {
	return fmt.Sprintf("INVITE#%s", email.String())
}

func invitationCodePK(code string) string {
	return fmt.Sprintf("INVITECODE#%s", code)
}

// Create writes the metadata item, the uniqueness guard, and the optional
// code row in one transaction. The guard's attribute_not_exists condition
// is what enforces at most one PENDING invitation per (space, invitee).
func (r *InvitationRepository) Create(ctx context.Context, inv *entities.Invitation) error {
	metaAV, err := attributevalue.MarshalMap(r.toItem(inv))
	if err != nil {
		return fmt.Errorf("failed to marshal invitation: %w", err)
	}

	guard := invitationGuardItem{
		PK:           invitationGuardPK(inv.SpaceID()),
		SK:           invitationGuardSK(inv.InviteeEmail()),
		EntityType:   "INVITATION_GUARD",
		InvitationID: inv.ID().String(),
		CreatedAt:    inv.CreatedAt().Format(time.RFC3339Nano),
		TTL:          inv.ExpiresAt().Unix(),
	}
	guardAV, err := attributevalue.MarshalMap(guard)
	if err != nil {
		return fmt.Errorf("failed to marshal invitation guard: %w", err)
	}

	// An expired guard no longer reserves the slot. The TTL sweep deletes
	// it eventually, but the condition lets a fresh invitation claim the
	// pair the moment the old one expires.
	writes := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guardAV,
				ConditionExpression: aws.String("attribute_not_exists(PK) OR #ttl < :now"),
				ExpressionAttributeNames: map[string]string{
					"#ttl": "TTL",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": &types.AttributeValueMemberN{
						Value: strconv.FormatInt(inv.CreatedAt().Unix(), 10),
					},
				},
			},
		},
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                metaAV,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
	}

	if inv.HasCode() {
		codeRow := invitationCodeItem{
			PK:           invitationCodePK(inv.Code()),
			SK:           "INVITATION",
			EntityType:   "INVITATION_CODE",
			InvitationID: inv.ID().String(),
		}
		codeAV, err := attributevalue.MarshalMap(codeRow)
		if err != nil {
			return fmt.Errorf("failed to marshal invitation code row: %w", err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                codeAV,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && hasConditionalFailure(canceled) {
			r.logger.Debug("Duplicate pending invitation rejected",
				zap.String("spaceID", inv.SpaceID().String()),
				zap.String("invitee", inv.InviteeEmail().String()),
			)
			return pkgerrors.NewInvitationAlreadyExists(inv.SpaceID().String(), inv.InviteeEmail().String())
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	r.logger.Debug("Invitation persisted",
		zap.String("invitationID", inv.ID().String()),
		zap.String("spaceID", inv.SpaceID().String()),
	)

	return nil
}

// GetByID retrieves an invitation by ID; nil when absent
func (r *InvitationRepository) GetByID(ctx context.Context, id valueobjects.InvitationID) (*entities.Invitation, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: invitationPK(id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}
	return r.fromItemMap(result.Item)
}

// GetByCode resolves a code row to its invitation; nil when the code is
// unknown or the metadata item is gone.
func (r *InvitationRepository) GetByCode(ctx context.Context, code string) (*entities.Invitation, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: invitationCodePK(code)},
			"SK": &types.AttributeValueMemberS{Value: "INVITATION"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitation code: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var row invitationCodeItem
	if err := attributevalue.UnmarshalMap(result.Item, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invitation code row: %w", err)
	}

	id, err := valueobjects.NewInvitationIDFromString(row.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("invitation code row carries invalid ID %q: %w", row.InvitationID, err)
	}
	return r.GetByID(ctx, id)
}

// GetByInvitee queries the invitee GSI for all invitations addressed to an
// email, any status. Without a configured index it degrades to a filtered
// scan.
func (r *InvitationRepository) GetByInvitee(ctx context.Context, email valueobjects.Email) ([]*entities.Invitation, error) {
	if r.indexName == "" {
		cond := expression.Name("InviteeEmail").Equal(expression.Value(email.String()))
		return r.scanInvitations(ctx, &cond)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("INVITEE#%s", email.String())},
		},
	}

	var invitations []*entities.Invitation
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query invitations by invitee: %w", err)
		}
		for _, item := range page.Items {
			inv, err := r.fromItemMap(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable invitation item", zap.Error(err))
				continue
			}
			invitations = append(invitations, inv)
		}
	}
	return invitations, nil
}

// GetBySpace resolves a space's pending invitations through its guard rows.
// Resolved invitations have released their guard and no longer appear here.
func (r *InvitationRepository) GetBySpace(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Invitation, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: invitationGuardPK(spaceID)},
			":sk": &types.AttributeValueMemberS{Value: "INVITE#"},
		},
	}

	var invitations []*entities.Invitation
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query invitations by space: %w", err)
		}
		for _, item := range page.Items {
			var guard invitationGuardItem
			if err := attributevalue.UnmarshalMap(item, &guard); err != nil {
				r.logger.Warn("Skipping unreadable invitation guard", zap.Error(err))
				continue
			}
			id, err := valueobjects.NewInvitationIDFromString(guard.InvitationID)
			if err != nil {
				r.logger.Warn("Invitation guard carries invalid ID",
					zap.String("invitationID", guard.InvitationID),
				)
				continue
			}
			inv, err := r.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if inv != nil {
				invitations = append(invitations, inv)
			}
		}
	}
	return invitations, nil
}

// ListAll scans for every invitation metadata item. Admin use only.
func (r *InvitationRepository) ListAll(ctx context.Context) ([]*entities.Invitation, error) {
	return r.scanInvitations(ctx, nil)
}

// UpdateStatus persists a status transition and releases the pending
// guard in the same transaction, freeing the (space, invitee) slot.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, inv *entities.Invitation) error {
	metaAV, err := attributevalue.MarshalMap(r.toItem(inv))
	if err != nil {
		return fmt.Errorf("failed to marshal invitation: %w", err)
	}

	writes := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                metaAV,
				ConditionExpression: aws.String("attribute_exists(PK)"),
			},
		},
	}

	if !inv.IsPending() {
		writes = append(writes, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: invitationGuardPK(inv.SpaceID())},
					"SK": &types.AttributeValueMemberS{Value: invitationGuardSK(inv.InviteeEmail())},
				},
			},
		})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && hasConditionalFailure(canceled) {
			return pkgerrors.NewInvitationNotFound()
		}
		return fmt.Errorf("failed to update invitation status: %w", err)
	}

	return nil
}

func (r *InvitationRepository) scanInvitations(ctx context.Context, extra *expression.ConditionBuilder) ([]*entities.Invitation, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("INVITATION"))
	if extra != nil {
		filter = filter.And(*extra)
	}

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var invitations []*entities.Invitation
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitations: %w", err)
		}
		for _, item := range page.Items {
			inv, err := r.fromItemMap(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable invitation item", zap.Error(err))
				continue
			}
			invitations = append(invitations, inv)
		}
	}
	return invitations, nil
}

func (r *InvitationRepository) toItem(inv *entities.Invitation) invitationItem {
	item := invitationItem{
		PK:            invitationPK(inv.ID()),
		SK:            "METADATA",
		GSI1PK:        fmt.Sprintf("INVITEE#%s", inv.InviteeEmail().String()),
		GSI1SK:        fmt.Sprintf("INVITATION#%s#%s", inv.CreatedAt().Format(time.RFC3339Nano), inv.ID().String()),
		EntityType:    "INVITATION",
		InvitationID:  inv.ID().String(),
		SpaceID:       inv.SpaceID().String(),
		InviteeEmail:  inv.InviteeEmail().String(),
		InviterUserID: inv.InviterUserID(),
		Status:        string(inv.Status()),
		Role:          string(inv.Role()),
		Message:       inv.Message(),
		SpaceName:     inv.SpaceName(),
		InviterName:   inv.InviterName(),
		Code:          inv.Code(),
		CreatedAt:     inv.CreatedAt().Format(time.RFC3339Nano),
		ExpiresAt:     inv.ExpiresAt().Format(time.RFC3339Nano),
		AcceptedBy:    inv.AcceptedBy(),
		CancelledBy:   inv.CancelledBy(),
	}
	if at := inv.AcceptedAt(); at != nil {
		item.AcceptedAt = at.Format(time.RFC3339Nano)
	}
	if at := inv.CancelledAt(); at != nil {
		item.CancelledAt = at.Format(time.RFC3339Nano)
	}
	return item
}

func (r *InvitationRepository) fromItemMap(av map[string]types.AttributeValue) (*entities.Invitation, error) {
	var item invitationItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invitation item: %w", err)
	}

	id, err := valueobjects.NewInvitationIDFromString(item.InvitationID)
	if err != nil {
		return nil, fmt.Errorf("invalid invitation ID %q: %w", item.InvitationID, err)
	}
	spaceID, err := valueobjects.NewSpaceIDFromString(item.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("invalid space ID %q: %w", item.SpaceID, err)
	}
	email, err := valueobjects.NewEmail(item.InviteeEmail)
	if err != nil {
		return nil, fmt.Errorf("invalid invitee email %q: %w", item.InviteeEmail, err)
	}

	createdAt, err := parseItemTime(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt: %w", err)
	}
	expiresAt, err := parseItemTime(item.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid ExpiresAt: %w", err)
	}

	var acceptedAt, cancelledAt *time.Time
	if item.AcceptedAt != "" {
		t, err := parseItemTime(item.AcceptedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid AcceptedAt: %w", err)
		}
		acceptedAt = &t
	}
	if item.CancelledAt != "" {
		t, err := parseItemTime(item.CancelledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid CancelledAt: %w", err)
		}
		cancelledAt = &t
	}

	return entities.ReconstructInvitation(entities.ReconstructInvitationParams{
		ID:            id,
		SpaceID:       spaceID,
		InviteeEmail:  email,
		InviterUserID: item.InviterUserID,
		Status:        entities.InvitationStatus(item.Status),
		Role:          entities.Role(item.Role),
		Message:       item.Message,
		SpaceName:     item.SpaceName,
		InviterName:   item.InviterName,
		Code:          item.Code,
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
		AcceptedAt:    acceptedAt,
		AcceptedBy:    item.AcceptedBy,
		CancelledAt:   cancelledAt,
		CancelledBy:   item.CancelledBy,
	})
}

// hasConditionalFailure reports whether a cancelled transaction failed on a
// condition check rather than throttling or capacity.
func hasConditionalFailure(canceled *types.TransactionCanceledException) bool {
	for _, reason := range canceled.CancellationReasons {
		if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func parseItemTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
