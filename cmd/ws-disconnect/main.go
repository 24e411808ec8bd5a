// Package main implements the WebSocket disconnect Lambda. It removes the
// connection record; rows also carry a TTL so missed disconnects age out.
package main

import (
	"context"
	"log"
	"net/http"

	appconfig "spaces-backend/infrastructure/config"
	dynamorepo "spaces-backend/infrastructure/persistence/dynamodb"

	"spaces-backend/application/ports"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

var (
	connections ports.ConnectionRepository
	logger      *zap.Logger
)

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
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	if err := connections.Delete(ctx, connectionID); err != nil {
		logger.Error("Failed to delete connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	logger.Info("WebSocket connection removed", zap.String("connectionID", connectionID))

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
