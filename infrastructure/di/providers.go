package di

import (
	"context"
	"fmt"

	"spaces-backend/application/ports"
	"spaces-backend/application/services"
	"spaces-backend/infrastructure/config"
	"spaces-backend/infrastructure/messaging/eventbridge"
	"spaces-backend/infrastructure/persistence/dynamodb"
	"spaces-backend/interfaces/http/rest"
	"spaces-backend/pkg/auth"
	"spaces-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideInvitationRepository creates an invitation repository
func ProvideInvitationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InvitationRepository {
	return dynamodb.NewInvitationRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideMembershipRepository creates a membership repository
func ProvideMembershipRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.MembershipRepository {
	return dynamodb.NewMembershipRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideSpaceRepository creates a space repository
func ProvideSpaceRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SpaceRepository {
	return dynamodb.NewSpaceRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideJournalRepository creates a journal repository
func ProvideJournalRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.JournalRepository {
	return dynamodb.NewJournalRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideConnectionRepository creates a WebSocket connection repository
func ProvideConnectionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConnectionRepository {
	return dynamodb.NewConnectionRepository(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideDirectory creates the user/space directory lookup. Returns nil
// when the directory check is disabled; services treat a nil directory as
// "skip the existence check".
func ProvideDirectory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Directory {
	if !cfg.EnableDirectory {
		return nil
	}
	return dynamodb.NewDirectory(client, cfg.DynamoDBTable, cfg.IndexName, logger)
}

// ProvideMetrics creates metrics instance. Metrics methods no-op when the
// CloudWatch client is withheld, so disabling metrics keeps the wiring intact.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil)
	}
	return observability.NewMetrics(namespace, client)
}

// ProvideJWTValidator creates the JWT validator for HTTP authentication.
// Config validation requires a real secret in production; local development
// falls back to a fixed one.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "local-development-secret"
	}
	jwtCfg := auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	}
	if cfg.JWTAudience != "" {
		jwtCfg.Audience = []string{cfg.JWTAudience}
	}
	return auth.NewJWTValidator(jwtCfg)
}

// ProvideMembershipService creates the membership service
func ProvideMembershipService(
	memberships ports.MembershipRepository,
	spaces ports.SpaceRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.MembershipService {
	return services.NewMembershipService(memberships, spaces, eventBus, logger)
}

// ProvideSpaceService creates the space service
func ProvideSpaceService(
	spaces ports.SpaceRepository,
	memberships ports.MembershipRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.SpaceService {
	return services.NewSpaceService(spaces, memberships, eventBus, logger)
}

// ProvideInvitationService creates the invitation service
func ProvideInvitationService(
	invitations ports.InvitationRepository,
	memberships *services.MembershipService,
	eventBus ports.EventBus,
	directory ports.Directory,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.InvitationService {
	return services.NewInvitationService(invitations, memberships, eventBus, directory, metrics, logger)
}

// ProvideJournalService creates the journal service
func ProvideJournalService(
	journal ports.JournalRepository,
	memberships ports.MembershipRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *services.JournalService {
	return services.NewJournalService(journal, memberships, eventBus, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	spaceSvc *services.SpaceService,
	membershipSvc *services.MembershipService,
	invitationSvc *services.InvitationService,
	journalSvc *services.JournalService,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, spaceSvc, membershipSvc, invitationSvc, journalSvc, validator, logger)
}
