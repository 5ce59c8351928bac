package http

import (
	"github.com/cheflamb/brigade-api/internal/application/billing"
	"github.com/cheflamb/brigade-api/internal/application/notification"
	"github.com/cheflamb/brigade-api/internal/infrastructure/dynamo"
	"github.com/cheflamb/brigade-api/internal/infrastructure/fcm"
	jwtinfra "github.com/cheflamb/brigade-api/internal/infrastructure/jwt"
	"github.com/cheflamb/brigade-api/internal/infrastructure/sns"
)

// Deps holds everything the router wires into handlers. Services are built in
// main because the background worker shares the notification dispatcher.
type Deps struct {
	NotificationSvc notification.Service
	BillingSvc      billing.Service
	UserRepo        *dynamo.UserRepo
	PushSubRepo     *dynamo.PushSubscriptionRepo
	SMSSender       sns.SMSSender
	PushSender      fcm.PushSender
	JWTProvider     *jwtinfra.Provider
}
