// Package main implements the WebSocket connect Lambda. It authenticates
// the socket's JWT and records the connection for presence delivery.
package main

import (
	"context"
	"log"
	"net/http"

	appconfig "spaces-backend/infrastructure/config"
	dynamorepo "spaces-backend/infrastructure/persistence/dynamodb"

	"spaces-backend/application/ports"
	"spaces-backend/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

var (
	connections ports.ConnectionRepository
	validator   *auth.JWTValidator
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

	jwtCfg := auth.JWTConfig{SecretKey: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
	if cfg.JWTAudience != "" {
		jwtCfg.Audience = []string{cfg.JWTAudience}
	}
	validator, err = auth.NewJWTValidator(jwtCfg)
	if err != nil {
		log.Fatalf("Failed to create JWT validator: %v", err)
	}
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	// Browsers cannot set headers on WebSocket upgrades, so the token
	// arrives as a query parameter.
	token := request.QueryStringParameters["token"]
	if token == "" {
		token = request.Headers["Authorization"]
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.Warn("WebSocket authentication failed",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	if err := connections.Save(ctx, connectionID, claims.UserID); err != nil {
		logger.Error("Failed to store connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	logger.Info("WebSocket connection established",
		zap.String("connectionID", connectionID),
		zap.String("userID", claims.UserID),
	)

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
