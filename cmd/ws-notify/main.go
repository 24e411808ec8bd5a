// Package main implements the notification Lambda. EventBridge routes
// invitation and membership events here; the handler resolves the affected
// user's live WebSocket connections and pushes the event to each socket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	appconfig "spaces-backend/infrastructure/config"
	dynamorepo "spaces-backend/infrastructure/persistence/dynamodb"

	"spaces-backend/application/ports"
	"spaces-backend/domain/core/valueobjects"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

var (
	connections ports.ConnectionRepository
	directory   ports.Directory
	apiGwClient *apigatewaymanagementapi.Client
	logger      *zap.Logger
)

// eventBridgeEvent is the envelope EventBridge delivers to the Lambda
type eventBridgeEvent struct {
	DetailType string          `json:"detail-type"`
	Source     string          `json:"source"`
	Detail     json.RawMessage `json:"detail"`
}

// eventDetail carries the union of fields the routed event types use
type eventDetail struct {
	SpaceID      string `json:"space_id"`
	InvitationID string `json:"invitation_id"`
	InviteeEmail string `json:"invitee_email"`
	UserID       string `json:"user_id"`
	AcceptedBy   string `json:"accepted_by"`
	CancelledBy  string `json:"cancelled_by"`
}

// socketMessage is the frame pushed to connected clients
type socketMessage struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func init() {
	ctx := context.Background()

	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	connections = dynamorepo.NewConnectionRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
	directory = dynamorepo.NewDirectory(client, cfg.DynamoDBTable, cfg.IndexName, logger)

	if cfg.WebSocketEndpoint != "" {
		apiGwClient = apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String(cfg.WebSocketEndpoint)
		})
	}
}

// targetUser picks the user a routed event should notify. Created
// invitations notify the invitee, which takes an email to user lookup;
// everything else names the user directly.
func targetUser(ctx context.Context, detailType string, detail eventDetail) (string, error) {
	switch detailType {
	case "invitation.created":
		email, err := valueobjects.NewEmail(detail.InviteeEmail)
		if err != nil {
			return "", err
		}
		return directory.GetUserByEmail(ctx, email)
	case "invitation.accepted":
		return detail.AcceptedBy, nil
	case "invitation.cancelled":
		return detail.CancelledBy, nil
	case "space.member_joined", "space.member_removed":
		return detail.UserID, nil
	default:
		return "", nil
	}
}

func handler(ctx context.Context, event eventBridgeEvent) error {
	var detail eventDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to decode event detail: %w", err)
	}

	userID, err := targetUser(ctx, event.DetailType, detail)
	if err != nil {
		return err
	}
	if userID == "" {
		logger.Debug("No notification target", zap.String("detailType", event.DetailType))
		return nil
	}

	connectionIDs, err := connections.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve connections: %w", err)
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	if apiGwClient == nil {
		logger.Warn("WebSocket endpoint not configured, dropping notification",
			zap.String("detailType", event.DetailType),
		)
		return nil
	}

	payload, err := json.Marshal(socketMessage{
		Type:      event.DetailType,
		Timestamp: time.Now().Unix(),
		Data:      event.Detail,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal socket message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		_, err := apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connectionID),
			Data:         payload,
		})
		if err != nil {
			// A gone socket is routine; remove its record and move on.
			logger.Info("Dropping stale connection",
				zap.String("connectionID", connectionID),
				zap.Error(err),
			)
			if delErr := connections.Delete(ctx, connectionID); delErr != nil {
				logger.Warn("Failed to remove stale connection",
					zap.String("connectionID", connectionID),
					zap.Error(delErr),
				)
			}
		}
	}

	logger.Info("Notification delivered",
		zap.String("detailType", event.DetailType),
		zap.String("userID", userID),
		zap.Int("sockets", len(connectionIDs)),
	)
	return nil
}

func main() {
	lambda.Start(handler)
}
