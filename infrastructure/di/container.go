package di

import (
	"spaces-backend/application/ports"
	"spaces-backend/application/services"
	"spaces-backend/infrastructure/config"
	"spaces-backend/interfaces/http/rest"
	"spaces-backend/pkg/auth"
	"spaces-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	Logger            *zap.Logger
	InvitationRepo    ports.InvitationRepository
	MembershipRepo    ports.MembershipRepository
	SpaceRepo         ports.SpaceRepository
	JournalRepo       ports.JournalRepository
	ConnectionRepo    ports.ConnectionRepository
	EventBus          ports.EventBus
	Directory         ports.Directory
	Metrics           *observability.Metrics
	JWTValidator      *auth.JWTValidator
	MembershipService *services.MembershipService
	SpaceService      *services.SpaceService
	InvitationService *services.InvitationService
	JournalService    *services.JournalService
	Router            *rest.Router
}
