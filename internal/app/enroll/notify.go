package enroll

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	entitystore "github.com/msajedian/topedu/internal/app/store/entities"
	"github.com/msajedian/topedu/internal/app/system/mailer"
)

// Notify sends the email matching an invite outcome: the "you've been
// added" note for existing accounts, the join-link invitation for
// pending records. Delivery failures are logged, never surfaced; the
// roster write already stands.
func (e *Engine) Notify(ctx context.Context, kind entitystore.Kind, entityID primitive.ObjectID, out InviteOutcome) {
	entityName, err := e.entityName(ctx, kind, entityID)
	if err != nil {
		e.log.Warn("skipping notification, entity lookup failed",
			zap.String("entity_id", entityID.Hex()),
			zap.Error(err))
		return
	}

	var msg mailer.Email
	switch {
	case out.UserAdded != nil:
		msg = mailer.BuildAddedEmail(mailer.AddedEmailData{
			SiteName:   e.siteName,
			EntityKind: string(kind),
			EntityName: entityName,
			Role:       string(out.Role),
		})
		msg.To = out.UserAdded.Email
	case out.Pending != nil:
		msg = mailer.BuildInvitationEmail(mailer.InvitationEmailData{
			SiteName:   e.siteName,
			EntityKind: string(kind),
			EntityName: entityName,
			Role:       string(out.Pending.Role),
			JoinLink:   mailer.JoinLink(e.frontendURL, string(kind), entityID.Hex(), out.Pending.ID.Hex()),
		})
		msg.To = out.Pending.Email
	default:
		return
	}

	if err := e.mail.Send(ctx, msg); err != nil {
		e.log.Warn("invitation email failed to send",
			zap.String("to", msg.To),
			zap.Error(err))
	}
}

// ResendInvitation re-sends the email for a stored pending record. If
// an account with the pending email has appeared since the invite, the
// "added" template is sent instead of the join link.
func (e *Engine) ResendInvitation(ctx context.Context, kind entitystore.Kind, entityID, pendingID primitive.ObjectID) error {
	pu, _, err := e.target(kind).PendingByID(ctx, entityID, pendingID)
	if err != nil {
		return mapEntityErr(err, kind)
	}

	out := InviteOutcome{Role: pu.Role}
	user, err := e.users.GetByEmail(ctx, pu.Email)
	switch {
	case err == nil:
		out.UserAdded = user
	case err == mongo.ErrNoDocuments:
		out.Pending = &pu
	default:
		return mapEntityErr(err, kind)
	}

	e.Notify(ctx, kind, entityID, out)
	return nil
}
